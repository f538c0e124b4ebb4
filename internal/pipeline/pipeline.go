package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/logger"
	"github.com/stagedoor/london-acting-events/internal/manual"
	"github.com/stagedoor/london-acting-events/internal/metrics"
	"github.com/stagedoor/london-acting-events/internal/scraper"
)

// Snapshotter persists the previous run's output.
type Snapshotter interface {
	LoadSnapshot() (event.Snapshot, error)
	SaveSnapshot(event.Snapshot) error
}

// Result is the output of one cycle.
type Result struct {
	// Events are the unique upcoming events, sorted by start.
	Events []*event.Event `json:"events"`
	// New are the events absent from the previous snapshot, in Events order.
	New []*event.Event `json:"new"`
	// Snapshot replaces the previous one.
	Snapshot event.Snapshot `json:"-"`
	// SourceCounts tallies Events by source.
	SourceCounts map[string]int `json:"source_counts"`
	// Reports hold per-provider collection details, in provider order.
	Reports   []*scraper.Report `json:"-"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Collect runs every provider concurrently and waits for all of them. Each
// goroutine writes only its own slot, so reports come back in provider order.
func Collect(ctx context.Context, providers []*scraper.Provider) []*scraper.Report {
	reports := make([]*scraper.Report, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			reports[i] = p.Collect(gctx)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// Process merges curated and fetched events, keeps the unique upcoming ones
// and detects which are new relative to previous.
func Process(curated []*event.Event, fetched [][]*event.Event, now time.Time, previous event.Snapshot) *Result {
	events := event.Upcoming(event.Aggregate(curated, fetched...), now)

	return &Result{
		Events:       events,
		New:          event.Diff(previous, events),
		Snapshot:     event.CreateSnapshot(events),
		SourceCounts: event.CountBySource(events),
		FetchedAt:    now,
	}
}

// Pipeline wires collection, curated events and snapshot storage together.
type Pipeline struct {
	Providers []*scraper.Provider
	Manual    []manual.Entry
	Horizon   time.Duration
	Location  *time.Location
	Store     Snapshotter
	// Metrics is optional.
	Metrics *metrics.Recorder
	// Refresh rebuilds the snapshot without reporting any event as new.
	Refresh bool
}

// Run executes one cycle at now. The previous snapshot is read before any
// provider runs and the new one is written after all have finished. A
// cancelled run leaves the snapshot untouched.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (*Result, error) {
	started := time.Now()

	previous, err := p.Store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	horizon := p.Horizon
	if horizon <= 0 {
		horizon = manual.DefaultHorizon
	}
	curated, err := manual.Expand(p.Manual, now, horizon, p.Location)
	if err != nil {
		return nil, fmt.Errorf("expanding manual events: %w", err)
	}

	logger.Info("collecting events", logger.Fields{
		"providers": len(p.Providers),
		"manual":    len(curated),
		"previous":  len(previous),
	})

	reports := Collect(ctx, p.Providers)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collecting events: %w", err)
	}

	fetched := make([][]*event.Event, len(reports))
	for i, r := range reports {
		fetched[i] = r.Events
		if p.Metrics != nil {
			p.Metrics.ObserveSource(r.Source, len(r.Events), r.Failures)
		}
	}

	result := Process(curated, fetched, now, previous)
	result.Reports = reports
	if p.Refresh {
		result.New = []*event.Event{}
	}

	if err := p.Store.SaveSnapshot(result.Snapshot); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	if p.Metrics != nil {
		p.Metrics.ObserveRun(len(result.Events), len(result.New), time.Since(started), time.Now())
	}

	logger.Info("run complete", logger.Fields{
		"events":  len(result.Events),
		"new":     len(result.New),
		"sources": result.SourceCounts,
	})

	return result, nil
}
