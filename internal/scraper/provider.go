package scraper

import (
	"context"
	"time"

	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/logger"
)

// DefaultDelay separates consecutive requests to the same provider.
const DefaultDelay = 1500 * time.Millisecond

// Provider is one listing site: the pages to read and how to read them.
type Provider struct {
	Name      string
	URLs      []string
	Fetcher   Fetcher
	Extractor Extractor
	Delay     time.Duration

	wait func(ctx context.Context, d time.Duration) error
}

// Report is the outcome of one provider's collection pass.
type Report struct {
	Source   string
	Events   []*event.Event
	Pages    int
	Failures int
	Duration time.Duration
}

// Collect fetches every URL in order, pausing Delay between requests, and
// extracts events from each page. A page that fails to load is logged and
// counted but never stops the pass. Cancelling ctx stops before the next
// request.
func (p *Provider) Collect(ctx context.Context) *Report {
	started := time.Now()
	report := &Report{
		Source: p.Name,
		Events: make([]*event.Event, 0),
	}

	wait := p.wait
	if wait == nil {
		wait = sleep
	}

	for i, pageURL := range p.URLs {
		if i > 0 && p.Delay > 0 {
			if err := wait(ctx, p.Delay); err != nil {
				logger.Warn("provider interrupted", logger.Fields{"source": p.Name, "remaining": len(p.URLs) - i}, err)
				break
			}
		}

		page, err := p.Fetcher.Fetch(ctx, pageURL)
		if err != nil {
			report.Failures++
			logger.Warn("fetch failed", logger.Fields{"source": p.Name, "url": pageURL}, err)
			continue
		}
		report.Pages++

		found := 0
		for evt := range p.Extractor.Extract(page, pageURL) {
			report.Events = append(report.Events, evt)
			found++
		}
		logger.Debug("page extracted", logger.Fields{"source": p.Name, "url": pageURL, "events": found})
	}

	report.Duration = time.Since(started)
	logger.Info("provider finished", logger.Fields{
		"source":   p.Name,
		"events":   len(report.Events),
		"pages":    report.Pages,
		"failures": report.Failures,
	})
	return report
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
