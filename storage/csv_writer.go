package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
)

// CSVWriter exports valued listings to a CSV file. It is safe for concurrent
// use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"id", "title", "asking_price", "location", "link",
		"resale_value", "profit", "avg_sale_time_days", "has_profit", "value_source",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteResults appends the valued listings to the CSV file.
func (c *CSVWriter) WriteResults(listings []*models.ValuedListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := []string{
			l.ID,
			l.Title,
			strconv.FormatFloat(l.AskingPrice, 'f', 2, 64),
			l.Location,
			l.Link,
			strconv.FormatFloat(l.ResaleValue, 'f', 2, 64),
			strconv.FormatFloat(l.Profit, 'f', 2, 64),
			strconv.Itoa(l.AvgSaleTimeDays),
			strconv.FormatBool(l.HasProfit),
			l.ValueSource,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
