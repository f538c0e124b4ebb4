package main

import (
	"fmt"
	"os"
	"time"

	"github.com/stagedoor/london-acting-events/internal/calendar"
	"github.com/stagedoor/london-acting-events/internal/config"
	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/manual"
)

func main() {
	loc, err := time.LoadLocation(config.DefaultTimezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	entries, err := manual.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading curated events: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	curated, err := manual.Expand(entries, now, manual.DefaultHorizon, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error expanding curated events: %v\n", err)
		os.Exit(1)
	}
	events := event.Upcoming(event.Aggregate(curated), now)

	// Write to file (owner read/write only)
	filename := "test-acting-events.ics"
	if err := calendar.WriteFile(filename, events, calendar.DefaultOptions(config.DefaultSiteURL+"/calendar.ics")); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	if err := os.Chmod(filename, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting permissions: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s (%d curated events)\n\n", filename, len(events))
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nUpcoming:")
	for _, evt := range events {
		fmt.Printf("  %s  %s\n", evt.Start.In(loc).Format("Mon 02 Jan 15:04"), evt.Title)
	}
}
