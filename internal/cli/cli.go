package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stagedoor/london-acting-events/internal/logger"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitNewEvents = 2
)

// errNewEvents signals a successful run that found new events while
// --exit-code-on-new is set.
var errNewEvents = errors.New("new events found")

// options holds the flag values shared by all commands.
type options struct {
	configPath     string
	dataDir        string
	outDir         string
	format         string
	sortOrder      string
	logLevel       string
	verbose        bool
	dryRun         bool
	refresh        bool
	exitCodeOnNew  bool
	runImmediately bool
}

func (o *options) outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}
	return format, nil
}

// NewRootCmd creates the root command. Without a subcommand it behaves like
// run.
func NewRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "acting-events",
		Short: "Aggregate London acting industry events into a calendar feed",
		Long: `Collects acting, theatre and film industry events in London from listing
sites and a curated venue list, publishes them as a subscribable iCalendar
feed with a status page, and reports events that are new since the last run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLevel(o.logLevel)
			if err != nil {
				return err
			}
			if o.verbose {
				level = logger.LevelDebug
			}
			logger.Default().SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, o)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "acting-events.yaml", "Path to YAML config file")
	flags.StringVar(&o.dataDir, "data-dir", "~/.local/share/acting-events", "Data directory for snapshots")
	flags.StringVar(&o.outDir, "out", "public", "Output directory for calendar.ics, index.html and metrics.prom")
	flags.StringVar(&o.format, "format", "text", "Output format: text or json")
	flags.StringVar(&o.sortOrder, "sort", string(SortByDate), "Order of reported new events: date, source or title")
	flags.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&o.verbose, "verbose", false, "Enable verbose logging (same as --log-level debug)")
	flags.BoolVar(&o.dryRun, "dry-run", false, "Print the email digest instead of sending it")
	flags.BoolVar(&o.refresh, "refresh", false, "Refresh snapshot without reporting new events")

	cmd.Flags().BoolVar(&o.exitCodeOnNew, "exit-code-on-new", false, "Exit with status 2 when new events are found")

	cmd.AddCommand(newRunCmd(o), newServeCmd(o), newSourcesCmd(o))
	return cmd
}

func newRunCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one aggregation cycle and publish the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, o)
		},
	}
	cmd.Flags().BoolVar(&o.exitCodeOnNew, "exit-code-on-new", false, "Exit with status 2 when new events are found")
	return cmd
}

// runOnce is the main command logic
func runOnce(cmd *cobra.Command, o *options) error {
	format, err := o.outputFormat()
	if err != nil {
		return err
	}
	order, err := parseSortOrder(o.sortOrder)
	if err != nil {
		return err
	}

	a, err := newApp(o, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	result, err := a.cycle(cmd.Context())
	if err != nil {
		return err
	}

	out := newOutputResult(result, a.published(), o.refresh)
	sortEvents(out.NewEvents, order)
	if err := WriteOutput(cmd.OutOrStdout(), out, format, o.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if o.exitCodeOnNew && len(result.New) > 0 {
		return errNewEvents
	}
	return nil
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNewEvents):
		return ExitNewEvents
	default:
		logger.Error("run failed", nil, err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
