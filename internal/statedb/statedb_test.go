package statedb

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *StateDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), FileName)
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", FileName)

	db1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db1.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db1.SaveFacets("sheet", map[string]string{"heading": "Hi", "open": ""}); err != nil {
		t.Fatalf("SaveFacets: %v", err)
	}
	db1.Close()

	db2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer db2.Close()
	if err := db2.Migrate(); err != nil {
		t.Fatalf("Migrate twice: %v", err)
	}

	facets, err := db2.LoadFacets("sheet")
	if err != nil {
		t.Fatalf("LoadFacets: %v", err)
	}
	if facets["heading"] != "Hi" {
		t.Errorf("heading = %q, want Hi", facets["heading"])
	}
	if v, ok := facets["open"]; !ok || v != "" {
		t.Errorf("open = %q, %v; want present and empty", v, ok)
	}

	version, err := db2.GetMeta("schema_version")
	if err != nil || version != "1" {
		t.Errorf("schema_version = %q, %v", version, err)
	}
}

func TestSaveFacetsReplaces(t *testing.T) {
	db := newTestDB(t)

	if err := db.SaveFacets("a", map[string]string{"open": "", "block-bg": ""}); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveFacets("b", map[string]string{"heading": "B"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveFacets("a", map[string]string{"heading": "A"}); err != nil {
		t.Fatal(err)
	}

	a, _ := db.LoadFacets("a")
	if len(a) != 1 || a["heading"] != "A" {
		t.Errorf("a = %v, want only heading=A", a)
	}
	b, _ := db.LoadFacets("b")
	if b["heading"] != "B" {
		t.Errorf("b = %v", b)
	}

	none, err := db.LoadFacets("missing")
	if err != nil || len(none) != 0 {
		t.Errorf("missing = %v, %v", none, err)
	}
}

func TestRecentEvents(t *testing.T) {
	db := newTestDB(t)
	base := time.Unix(1700000000, 0)

	for i, typ := range []string{"opened", "closing", "closed", "opened"} {
		panel := "a"
		if i == 3 {
			panel = "b"
		}
		if err := db.AppendEvent(EventRow{PanelID: panel, Type: typ, Source: "method", At: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	all, err := db.RecentEvents("", 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}

	last2, _ := db.RecentEvents("a", 2)
	if len(last2) != 2 || last2[0].Type != "closing" || last2[1].Type != "closed" {
		t.Errorf("last2 = %+v", last2)
	}
	if !last2[1].At.Equal(base.Add(2 * time.Second)) {
		t.Errorf("At = %v", last2[1].At)
	}

	n, err := db.PruneEvents(1)
	if err != nil || n != 3 {
		t.Errorf("PruneEvents = %d, %v; want 3", n, err)
	}
	left, _ := db.RecentEvents("", 10)
	if len(left) != 1 || left[0].PanelID != "b" {
		t.Errorf("left = %+v", left)
	}
}

func TestTouchLastModified(t *testing.T) {
	db := newTestDB(t)

	ts, err := db.LastModified()
	if err != nil || ts != 0 {
		t.Fatalf("LastModified before touch = %d, %v", ts, err)
	}
	if err := db.Touch(); err != nil {
		t.Fatal(err)
	}
	ts, err = db.LastModified()
	if err != nil || ts == 0 {
		t.Errorf("LastModified = %d, %v", ts, err)
	}
}

func TestConcurrentAppend(t *testing.T) {
	db := newTestDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := db.AppendEvent(EventRow{PanelID: "p", Type: "opened"}); err != nil {
					t.Errorf("AppendEvent: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	rows, _ := db.RecentEvents("p", 1000)
	if len(rows) != 80 {
		t.Errorf("rows = %d, want 80", len(rows))
	}
}

func TestPragmasOnEveryConnection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Hold both so the pool has to open a second connection
	c1, err := db.db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer c1.Close()
	c2, err := db.db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer c2.Close()

	for i, c := range []*sql.Conn{c1, c2} {
		var timeout int
		if err := c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("conn %d busy_timeout: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("conn %d busy_timeout = %d, want 5000", i, timeout)
		}
		var mode string
		if err := c.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("conn %d journal_mode: %v", i, err)
		}
		if mode != "wal" {
			t.Errorf("conn %d journal_mode = %q, want wal", i, mode)
		}
	}
}

func TestJournalDrainsOnCancel(t *testing.T) {
	db := newTestDB(t)
	j := NewJournal(db, 4)

	j.Record(EventRow{PanelID: "p", Type: "opened"})
	j.Record(EventRow{PanelID: "p", Type: "closing"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := j.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rows, _ := db.RecentEvents("p", 10)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if ts, _ := db.LastModified(); ts == 0 {
		t.Error("journal writes should touch last_modified")
	}
}

func TestJournalDropsWhenFull(t *testing.T) {
	db := newTestDB(t)
	j := NewJournal(db, 1)

	j.Record(EventRow{PanelID: "p", Type: "opened"})
	j.Record(EventRow{PanelID: "p", Type: "closing"})

	if got := j.Dropped(); got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
}
