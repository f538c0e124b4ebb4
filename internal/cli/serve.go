package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/stagedoor/london-acting-events/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run aggregation cycles on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(o, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return a.serve(cmd.Context(), o.runImmediately)
		},
	}
	cmd.Flags().BoolVar(&o.runImmediately, "immediate", false, "Run one cycle at startup before waiting for the schedule")
	return cmd
}

// serve runs cycles on the cron schedule until ctx is done. Overlapping
// cycles are skipped rather than queued.
func (a *app) serve(ctx context.Context, immediate bool) error {
	log := cronLogger{}
	c := cron.New(
		cron.WithLocation(a.loc),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	if _, err := c.AddFunc(a.cfg.Schedule, func() { a.scheduledCycle(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", a.cfg.Schedule, err)
	}

	var srv *http.Server
	if a.cfg.MetricsListen != "" {
		srv = &http.Server{
			Addr:              a.cfg.MetricsListen,
			Handler:           a.recorder.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", logger.Fields{"addr": srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", logger.Fields{"addr": srv.Addr}, err)
			}
		}()
	}

	if immediate {
		a.scheduledCycle(ctx)
	}

	c.Start()
	logger.Info("scheduler started", logger.Fields{"schedule": a.cfg.Schedule, "timezone": a.cfg.Timezone})

	<-ctx.Done()
	logger.Info("shutting down", nil)

	stopped := c.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	select {
	case <-stopped.Done():
	case <-shutdownCtx.Done():
		logger.Warn("running cycle did not finish before shutdown", nil)
	}

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stopping metrics server: %w", err)
		}
	}
	return nil
}

// scheduledCycle runs one cycle and logs its failure; the scheduler keeps going.
func (a *app) scheduledCycle(ctx context.Context) {
	if _, err := a.cycle(ctx); err != nil {
		logger.Error("scheduled run failed", nil, err)
	}
}

// cronLogger routes scheduler messages through the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, pairs(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, pairs(keysAndValues), err)
}

func pairs(keysAndValues []interface{}) logger.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
