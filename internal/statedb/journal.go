package statedb

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/asheshgoplani/sheetdeck/internal/logging"
)

var storageLog = logging.ForComponent(logging.CompStorage)

// Journal writes events to the database from its own goroutine so the UI
// loop never waits on disk. Record never blocks; when the buffer is full
// the event is dropped and counted.
type Journal struct {
	db      *StateDB
	ch      chan EventRow
	dropped atomic.Int64
}

// NewJournal creates a journal with room for buffer pending events.
func NewJournal(db *StateDB, buffer int) *Journal {
	if buffer <= 0 {
		buffer = 64
	}
	return &Journal{db: db, ch: make(chan EventRow, buffer)}
}

// Record queues ev for writing.
func (j *Journal) Record(ev EventRow) {
	select {
	case j.ch <- ev:
	default:
		j.dropped.Add(1)
		logging.Aggregate(logging.CompStorage, "journal_dropped", slog.String("panel", ev.PanelID))
	}
}

// Dropped returns how many events were discarded because the buffer was
// full.
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Run writes queued events until ctx is done, then drains what is left.
func (j *Journal) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-j.ch:
			j.write(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-j.ch:
					j.write(ev)
				default:
					return nil
				}
			}
		}
	}
}

func (j *Journal) write(ev EventRow) {
	if err := j.db.AppendEvent(ev); err != nil {
		storageLog.Warn("journal_write_failed",
			slog.String("panel", ev.PanelID),
			slog.String("type", ev.Type),
			slog.String("error", err.Error()))
		return
	}
	_ = j.db.Touch()
}
