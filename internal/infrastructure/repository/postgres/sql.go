package postgres

import (
	"database/sql"
	"errors"
	"strings"
)

// maxInsertParams keeps multi-row inserts under the 65535 bind parameter cap.
const maxInsertParams = 60000

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func toAnySlice[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

// chunkRows splits models so every INSERT binds at most maxInsertParams values.
func chunkRows(rows []any, columns int) [][]any {
	if len(rows) == 0 {
		return nil
	}
	size := len(rows)
	if columns > 0 {
		if perChunk := maxInsertParams / columns; perChunk < size {
			size = perChunk
		}
	}

	out := make([][]any, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

func nullString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
