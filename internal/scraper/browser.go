package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 45 * time.Second

// BrowserFetcher renders pages in headless Chrome before returning their HTML.
// Listing sites that build their event cards client-side return an empty shell
// to HTTPFetcher.
type BrowserFetcher struct {
	userAgent string
	execPath  string
	timeout   time.Duration
	settle    time.Duration
}

// NewBrowserFetcher creates a fetcher that drives Chrome at execPath, or the
// first Chrome/Chromium found on PATH when execPath is empty.
func NewBrowserFetcher(userAgent, execPath string) *BrowserFetcher {
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &BrowserFetcher{
		userAgent: userAgent,
		execPath:  execPath,
		timeout:   defaultRenderTimeout,
		settle:    time.Second,
	}
}

func (f *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.UserAgent(f.userAgent))
	if f.execPath != "" {
		opts = append(opts, chromedp.ExecPath(f.execPath))
	}
	return opts
}

// Fetch loads pageURL in a fresh browser, waits for the body and a short
// settle period for scripts, and returns the rendered document.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, f.timeout)
	defer cancelRun()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}

	return html, nil
}
