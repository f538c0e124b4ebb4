// Command acting-events aggregates London acting industry events into an
// iCalendar feed and status page.
package main

import (
	_ "time/tzdata"

	"github.com/stagedoor/london-acting-events/internal/cli"
)

func main() {
	cli.Execute()
}
