package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrVersionConflict is returned when an update's version no longer matches
// the stored row. Callers map it to a concurrency-conflict error.
var ErrVersionConflict = errors.New("version conflict")

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// staleRowError resolves a zero-rows-affected optimistic update: the row is
// either gone (pgx.ErrNoRows) or its version drifted (ErrVersionConflict).
func staleRowError(ctx context.Context, q queryRower, table, id string) error {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id=$1)`, table)
	var exists bool
	if err := q.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrVersionConflict
	}
	return pgx.ErrNoRows
}
