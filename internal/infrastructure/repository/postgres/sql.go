package postgres

import (
	"database/sql"
	"errors"
)

// insertChunkRows keeps multi-row inserts well below the 65535 bind
// parameter limit of the postgres wire protocol for every table here.
const insertChunkRows = 1000

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func chunkRows[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
