package postgres

import (
	"database/sql"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get snapshot: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("pq: relation historical_snapshots does not exist")) {
		t.Fatalf("expected unrelated error to be reported")
	}
}

func TestChunkRows(t *testing.T) {
	t.Run("keeps small batches whole", func(t *testing.T) {
		rows := toAnySlice([]int{1, 2, 3})
		chunks := chunkRows(rows, 4)
		if len(chunks) != 1 || len(chunks[0]) != 3 {
			t.Fatalf("unexpected chunks: %+v", chunks)
		}
	})

	t.Run("splits by parameter budget", func(t *testing.T) {
		rows := make([]any, 25001)
		chunks := chunkRows(rows, 4)
		if len(chunks) != 2 {
			t.Fatalf("expected 2 chunks, got %d", len(chunks))
		}
		if len(chunks[0])*4 > maxInsertParams {
			t.Fatalf("first chunk binds %d params", len(chunks[0])*4)
		}
		if len(chunks[0])+len(chunks[1]) != len(rows) {
			t.Fatalf("rows lost while chunking")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if chunks := chunkRows(nil, 4); chunks != nil {
			t.Fatalf("expected nil, got %+v", chunks)
		}
	})
}

func TestNullString(t *testing.T) {
	if got := nullString("  "); got.Valid {
		t.Fatalf("blank slot must be NULL")
	}
	if got := nullString(" CDM "); !got.Valid || got.String != "CDM" {
		t.Fatalf("unexpected value %+v", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
