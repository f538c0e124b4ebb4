package scraper

import (
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/stagedoor/london-acting-events/internal/event"
)

// Extractor turns the text of one fetched page into events. Implementations
// never fail: records they cannot read are skipped.
type Extractor interface {
	Extract(page, pageURL string) iter.Seq[*event.Event]
}

// Options configures an extractor built from the registry.
type Options struct {
	// Source labels every event produced.
	Source string
	// Location is used for timestamps that carry no offset.
	Location *time.Location
	// Now returns the reference time for year inference and future checks.
	Now func() time.Time
	// Selectors overrides DefaultSelectors for the listing strategy.
	Selectors Selectors
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Factory builds an Extractor from options.
type Factory func(Options) Extractor

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		StrategyJSONLD:  func(o Options) Extractor { return NewStructuredData(o) },
		StrategyListing: func(o Options) Extractor { return NewListing(o) },
	}
)

// Register makes a strategy available to NewExtractor under name, replacing
// any previous registration.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// NewExtractor builds the strategy registered under name.
func NewExtractor(name string, opts Options) (Extractor, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown extraction strategy: %q", name)
	}
	return f(opts), nil
}

// Strategies lists registered strategy names in sorted order.
func Strategies() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
