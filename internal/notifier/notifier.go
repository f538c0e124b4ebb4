package notifier

import (
	"context"

	"github.com/stagedoor/london-acting-events/internal/event"
)

// Notifier defines the interface for announcing new events
type Notifier interface {
	// Notify sends one digest covering events
	Notify(ctx context.Context, events []*event.Event) error
}
