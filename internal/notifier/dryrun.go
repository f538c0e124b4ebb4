package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/stagedoor/london-acting-events/internal/event"
)

// DryRunNotifier prints the digest that would be emailed
type DryRunNotifier struct {
	out  io.Writer
	opts DigestOptions
}

// NewDryRunNotifier creates a dry-run notifier writing to out, or stdout when
// out is nil.
func NewDryRunNotifier(out io.Writer, opts DigestOptions) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out, opts: opts}
}

// Notify prints the digest
func (n *DryRunNotifier) Notify(ctx context.Context, events []*event.Event) error {
	if len(events) == 0 {
		return nil
	}

	d := FormatDigest(events, n.opts)
	if _, err := fmt.Fprintf(n.out, "--- Email (dry run) ---\nSubject: %s\n\n%s", d.Subject, d.Body); err != nil {
		return fmt.Errorf("writing digest: %w", err)
	}
	return nil
}
