package storage

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"futoconnect/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// TestTimedDB_ExecContext verifies ExecContext records timing.
func TestTimedDB_ExecContext(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)

	_, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")
	if err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_QueryContext verifies QueryContext records timing and returns rows.
func TestTimedDB_QueryContext(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)

	tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")

	rows, err := tdb.QueryContext(context.Background(), "SELECT id, val FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	count := 0
	for rows.Next() {
		count++
	}
	rows.Close()

	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2", collector.TotalRecorded())
	}
}

// TestTimedDB_QueryRowContext verifies QueryRowContext passes results through.
func TestTimedDB_QueryRowContext(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), perf.NewCollector(100), 0)
	tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")

	var val string
	if err := tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}
}

// TestTimedDB_NilCollector verifies TimedDB works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, 0)

	_, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello")
	if err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
}

// TestTimedDB_DefaultThreshold verifies non-positive thresholds fall back to the default.
func TestTimedDB_DefaultThreshold(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, -5)
	if tdb.threshold != DefaultSlowQueryMs {
		t.Errorf("threshold = %v, want %d", tdb.threshold, DefaultSlowQueryMs)
	}
	tdb = NewTimedDB(tdb.RawDB(), nil, 7)
	if tdb.threshold != 7 {
		t.Errorf("threshold = %v, want 7", tdb.threshold)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and still timed.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO nonexistent_table VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}

	var val string
	err := tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "missing").Scan(&val)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2 (must record even on error)", collector.TotalRecorded())
	}
}

// TestTimedDB_CancelledContext verifies a cancelled context returns an error and is still timed.
func TestTimedDB_CancelledContext(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimedDB_ConcurrentMixedOps verifies no races under concurrent Exec and QueryRow calls.
func TestTimedDB_ConcurrentMixedOps(t *testing.T) {
	collector := perf.NewCollector(1000)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)
	ctx := context.Background()
	tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "seed", "data")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				tdb.ExecContext(ctx, "UPDATE test SET val = ? WHERE id = 'seed'", time.Now().String())
				return
			}
			var v string
			tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = 'seed'").Scan(&v)
		}(i)
	}
	wg.Wait()

	if collector.TotalRecorded() != 21 {
		t.Errorf("TotalRecorded = %d, want 21", collector.TotalRecorded())
	}
}

func TestStatementLabel(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT id FROM announcements WHERE id = ?", "SELECT announcements"},
		{"  select count(*)\n\t FROM announcements", "SELECT announcements"},
		{"INSERT INTO announcements (id) SELECT ?", "INSERT announcements"},
		{"UPDATE announcements SET isRead = 1 WHERE id = ?", "UPDATE announcements"},
		{`DELETE FROM "announcements" WHERE id = ?`, "DELETE announcements"},
		{"PRAGMA user_version", "PRAGMA"},
		{"", "empty"},
	}
	for _, tt := range tests {
		if got := statementLabel(tt.query); got != tt.want {
			t.Errorf("statementLabel(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// TestTimedDB_SnapshotGroupsByTable verifies perf entries are keyed by statement label.
func TestTimedDB_SnapshotGroupsByTable(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, 0)
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3"} {
		tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", id, "v")
	}

	snap := collector.Snapshot(time.Time{}, 10)
	if len(snap.SlowestQueries) != 1 {
		t.Fatalf("expected one bucket, got %+v", snap.SlowestQueries)
	}
	if got := snap.SlowestQueries[0]; got.Path != "INSERT test" || got.Count != 3 {
		t.Errorf("unexpected bucket %+v", got)
	}
}
