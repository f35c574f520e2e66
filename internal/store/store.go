// Package store implements the contracts repositories on PostgreSQL (pgx) and Redis.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a single-row lookup matches nothing
var ErrNotFound = errors.New("not found")

// mapNoRows converts pgx.ErrNoRows into ErrNotFound
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func marketStrings[T ~string](markets []T) []string {
	out := make([]string, len(markets))
	for i, m := range markets {
		out[i] = string(m)
	}
	return out
}
