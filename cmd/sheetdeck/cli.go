package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/asheshgoplani/sheetdeck/internal/config"
	"github.com/asheshgoplani/sheetdeck/internal/statedb"
)

// Column widths for events output
const (
	colTime  = 12
	colPanel = 10
	colType  = 14
)

func handleEvents(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(w)
	limit := fs.Int("n", 20, "Number of events to show")
	panelID := fs.String("panel", "", "Only show events of this panel")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return fmt.Errorf("-n must be positive")
	}

	homeDir, err := config.GetHomeDir()
	if err != nil {
		return err
	}
	db, err := openState(homeDir)
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := db.RecentEvents(*panelID, *limit)
	if err != nil {
		return err
	}
	if *jsonOutput {
		return writeEventsJSON(w, events)
	}
	writeEventsTable(w, events)
	return nil
}

type eventJSON struct {
	Panel  string    `json:"panel"`
	Type   string    `json:"type"`
	Source string    `json:"source,omitempty"`
	At     time.Time `json:"at"`
}

func writeEventsJSON(w io.Writer, events []statedb.EventRow) error {
	out := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, eventJSON{Panel: ev.PanelID, Type: ev.Type, Source: ev.Source, At: ev.At})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeEventsTable(w io.Writer, events []statedb.EventRow) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events recorded yet.")
		return
	}
	fmt.Fprintf(w, "%-*s %-*s %-*s %s\n", colTime, "TIME", colPanel, "PANEL", colType, "EVENT", "SOURCE")
	for _, ev := range events {
		fmt.Fprintf(w, "%-*s %-*s %-*s %s\n",
			colTime, ev.At.Local().Format("15:04:05.000"),
			colPanel, truncate(ev.PanelID, colPanel),
			colType, ev.Type,
			ev.Source)
	}
}

func handleConfig(args []string, w io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sheetdeck config <init|path>")
	}
	switch args[0] {
	case "init":
		path, err := config.CreateExampleConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Config: %s\n", path)
		return nil
	case "path":
		path, err := config.GetUserConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, path)
		return nil
	default:
		return fmt.Errorf("unknown config command %q", args[0])
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
