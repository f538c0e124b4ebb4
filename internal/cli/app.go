package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stagedoor/london-acting-events/internal/calendar"
	"github.com/stagedoor/london-acting-events/internal/config"
	"github.com/stagedoor/london-acting-events/internal/logger"
	"github.com/stagedoor/london-acting-events/internal/manual"
	"github.com/stagedoor/london-acting-events/internal/metrics"
	"github.com/stagedoor/london-acting-events/internal/notifier"
	"github.com/stagedoor/london-acting-events/internal/pipeline"
	"github.com/stagedoor/london-acting-events/internal/status"
	"github.com/stagedoor/london-acting-events/internal/storage"
)

// MetricsFile is the textfile-collector output in the output directory.
const MetricsFile = "metrics.prom"

// app is one configured instance: everything a cycle needs, built once.
type app struct {
	cfg      *config.Config
	loc      *time.Location
	outDir   string
	pipeline *pipeline.Pipeline
	recorder *metrics.Recorder
	notifier notifier.Notifier
	venues   []string
	now      func() time.Time
}

func newApp(o *options, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(o.dataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	entries, err := manual.Load(cfg.ManualFile)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		loc:      loc,
		outDir:   o.outDir,
		recorder: metrics.New(),
		venues:   venues(entries),
		now:      time.Now,
	}

	providers, err := buildProviders(cfg, loc, a.now)
	if err != nil {
		return nil, err
	}

	a.pipeline = &pipeline.Pipeline{
		Providers: providers,
		Manual:    entries,
		Horizon:   cfg.ManualHorizon,
		Location:  loc,
		Store:     store,
		Metrics:   a.recorder,
		Refresh:   o.refresh,
	}

	digest := notifier.DigestOptions{Location: loc, FeedURL: cfg.FeedURL()}
	switch {
	case o.dryRun:
		out := stdout
		if strings.EqualFold(o.format, string(FormatJSON)) {
			out = stderr
		}
		a.notifier = notifier.NewDryRunNotifier(out, digest)
	case cfg.Email.Enabled:
		n, err := notifier.NewEmailNotifier(notifier.SMTPSettings{
			Host:     cfg.Email.SMTP.Host,
			Port:     cfg.Email.SMTP.Port,
			Username: cfg.Email.SMTP.Username,
			Password: cfg.Email.SMTP.Password,
		}, cfg.Email.From, cfg.Email.To, digest)
		if err != nil {
			return nil, fmt.Errorf("configuring email: %w", err)
		}
		a.notifier = n
	}

	logger.Debug("configured", logger.Fields{
		"config":    o.configPath,
		"data_dir":  o.dataDir,
		"out":       o.outDir,
		"providers": len(providers),
		"manual":    len(entries),
		"timezone":  cfg.Timezone,
		"email":     cfg.Email.Enabled,
		"dry_run":   o.dryRun,
	})

	return a, nil
}

// cycle runs the pipeline once and publishes its output. Failing to write the
// calendar or status page fails the cycle; a failed email does not.
func (a *app) cycle(ctx context.Context) (*pipeline.Result, error) {
	now := a.now()

	result, err := a.pipeline.Run(ctx, now)
	if err != nil {
		return nil, err
	}

	feed := calendar.DefaultOptions(a.cfg.FeedURL())
	feed.Timezone = a.cfg.Timezone
	if err := calendar.WriteFile(filepath.Join(a.outDir, calendar.FeedFile), result.Events, feed); err != nil {
		return nil, err
	}

	page := status.NewPage(result.Events, result.New, result.SourceCounts, a.cfg.FeedURL(), now)
	page.Location = a.loc
	page.Venues = a.venues
	if err := status.WriteFile(filepath.Join(a.outDir, status.PageFile), page); err != nil {
		return nil, err
	}

	if err := a.recorder.WriteFile(filepath.Join(a.outDir, MetricsFile)); err != nil {
		logger.Warn("metrics not written", logger.Fields{"out": a.outDir}, err)
	}

	if a.notifier != nil && len(result.New) > 0 {
		if err := a.notifier.Notify(ctx, result.New); err != nil {
			logger.Error("notification failed", logger.Fields{"new": len(result.New)}, err)
		}
	}

	logger.Info("published", logger.Fields{"out": a.outDir, "events": len(result.Events), "new": len(result.New)})
	return result, nil
}

// published lists the files a cycle writes.
func (a *app) published() []string {
	return []string{
		filepath.Join(a.outDir, calendar.FeedFile),
		filepath.Join(a.outDir, status.PageFile),
		filepath.Join(a.outDir, MetricsFile),
	}
}

// venues names the curated venues for the status page: the part of each
// title before " - ", in list order without repeats.
func venues(entries []manual.Entry) []string {
	seen := make(map[string]bool, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name, _, _ := strings.Cut(e.Title, " - ")
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
