package trace

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchemaAndRecordsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	sink, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sink.Close()

	if err := sink.Record(3, "statement", "set x to 10"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var count int
	row := sink.db.QueryRow(`SELECT COUNT(*) FROM trace_events WHERE line = 3 AND kind = 'statement'`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("query trace_events: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d matching rows, want 1", count)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()
	if err := second.Record(1, "run_start", ""); err != nil {
		t.Errorf("Record after reopen: %v", err)
	}
}
