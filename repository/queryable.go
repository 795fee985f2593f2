package repository

import (
	"context"
	"errors"
	"fmt"

	"rallyledger/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryable abstracts over pgxpool.Pool and pgx.Tx so repositories work
// both standalone and inside a unit of work
type Queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// storageError tags a backing-store failure so callers can match
// entities.ErrStorageUnavailable and retry with backoff
func storageError(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, errors.Join(entities.ErrStorageUnavailable, err))
}
