package cli

import (
	"fmt"
	"time"

	"github.com/stagedoor/london-acting-events/internal/config"
	"github.com/stagedoor/london-acting-events/internal/scraper"
)

// buildProviders turns provider config into runnable providers. Rendered
// providers share one browser fetcher; the rest share one HTTP fetcher.
func buildProviders(cfg *config.Config, loc *time.Location, now func() time.Time) ([]*scraper.Provider, error) {
	var (
		httpFetcher    = scraper.NewHTTPFetcher(cfg.UserAgent)
		browserFetcher *scraper.BrowserFetcher
	)

	providers := make([]*scraper.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		ex, err := scraper.NewExtractor(pc.Strategy, scraper.Options{
			Source:    pc.Name,
			Location:  loc,
			Now:       now,
			Selectors: pc.Selectors,
		})
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", pc.Name, err)
		}

		var fetcher scraper.Fetcher = httpFetcher
		if pc.Render {
			if browserFetcher == nil {
				browserFetcher = scraper.NewBrowserFetcher(cfg.UserAgent, cfg.ChromePath)
			}
			fetcher = browserFetcher
		}

		providers = append(providers, &scraper.Provider{
			Name:      pc.Name,
			URLs:      pc.URLs,
			Fetcher:   fetcher,
			Extractor: ex,
			Delay:     cfg.RequestDelay,
		})
	}
	return providers, nil
}
