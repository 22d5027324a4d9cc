package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/tracker"
)

// openTracker loads the tracker from the configured database for commands
// that run without the server. The returned func releases every resource.
func openTracker(ctx context.Context) (*tracker.Tracker, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	pub, err := newPublisher(cfg.Events)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	tr, err := tracker.New(ctx, db, tracker.Options{Publisher: pub})
	if err != nil {
		pub.Close()
		db.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := pub.Close(); err != nil {
			slog.Error("publisher close error", "error", err)
		}
		if err := db.Close(); err != nil {
			slog.Error("store close error", "error", err)
		}
	}
	return tr, closeFn, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
