package ebay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
)

type countingLookup struct {
	calls int32
	delay time.Duration
	err   error
}

func (c *countingLookup) SoldPrices(ctx context.Context, query string) (models.MarketStats, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.err != nil {
		return models.MarketStats{}, c.err
	}
	return models.MarketStats{AveragePrice: 100, SoldCount: 1}, nil
}

func TestCachedLookupMemoizesPerKey(t *testing.T) {
	inner := &countingLookup{}
	cache := NewCachedLookup(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.SoldPrices(ctx, "macbook"); err != nil {
			t.Fatalf("SoldPrices: %v", err)
		}
	}
	if _, err := cache.SoldPrices(ctx, "iphone"); err != nil {
		t.Fatalf("SoldPrices: %v", err)
	}

	if got := atomic.LoadInt32(&inner.calls); got != 2 {
		t.Errorf("inner lookup called %d times; want 2 (one per distinct key)", got)
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d entries; want 2", cache.Len())
	}
}

func TestCachedLookupSingleFlight(t *testing.T) {
	inner := &countingLookup{delay: 100 * time.Millisecond}
	cache := NewCachedLookup(inner, time.Minute)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := cache.SoldPrices(context.Background(), "macbook"); err != nil {
				t.Errorf("SoldPrices: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&inner.calls); got != 1 {
		t.Errorf("inner lookup called %d times for one in-flight key; want 1", got)
	}
}

func TestCachedLookupDoesNotCacheErrors(t *testing.T) {
	inner := &countingLookup{err: errors.New("down")}
	cache := NewCachedLookup(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cache.SoldPrices(ctx, "macbook"); err == nil {
			t.Fatal("expected lookup error to propagate")
		}
	}

	if got := atomic.LoadInt32(&inner.calls); got != 2 {
		t.Errorf("inner lookup called %d times; want 2 (errors are retried)", got)
	}
	if cache.Len() != 0 {
		t.Errorf("cache holds %d entries after failures; want 0", cache.Len())
	}
}
