package craigslist

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// renderPage loads a URL in headless Chrome and returns the rendered HTML.
// Only used as a fallback when the static fetch finds no listings.
func (s *Scraper) renderPage(ctx context.Context, pageURL string) (string, error) {
	chromeBin := s.findChromeBinary()
	if chromeBin == "" {
		return "", fmt.Errorf("no Chrome binary found; set CHROME_BIN")
	}
	s.logger.Debug("[craigslist] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.ExecPath(chromeBin),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 60*time.Second)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}
	return html, nil
}

// findChromeBinary locates a usable Chrome/Chromium binary, preferring the
// configured CHROME_BIN.
func (s *Scraper) findChromeBinary() string {
	if s.cfg.ChromeBin != "" {
		if _, err := os.Stat(s.cfg.ChromeBin); err == nil {
			return s.cfg.ChromeBin
		}
	}

	candidates := []string{
		"google-chrome",
		"google-chrome-stable",
		"chromium",
		"chromium-browser",
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
