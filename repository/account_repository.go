package repository

import (
	"context"
	"fmt"

	"rallyledger/database"
	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface over the
// credit_accounts projection table
type AccountRepository struct {
	q      Queryable
	userID string
	clubID string
}

// NewAccountRepository creates an account repository for reads outside a
// unit of work
func NewAccountRepository(db *database.DB, userID, clubID string) *AccountRepository {
	return &AccountRepository{q: db.Pool, userID: userID, clubID: clubID}
}

// NewAccountRepositoryScoped creates an account repository bound to a
// transaction and account scope
func NewAccountRepositoryScoped(tx Queryable, userID, clubID string) interfaces.AccountRepository {
	return &AccountRepository{q: tx, userID: userID, clubID: clubID}
}

// Get returns the cached projection row, or nil when the account has no
// history yet
func (r *AccountRepository) Get(ctx context.Context) (*entities.AccountBalance, error) {
	query := `
		SELECT user_id, club_id, available, pending, updated_at
		FROM credit_accounts
		WHERE user_id = $1 AND club_id = $2
	`

	var balance entities.AccountBalance
	err := r.q.QueryRow(ctx, query, r.userID, r.clubID).Scan(
		&balance.UserID,
		&balance.ClubID,
		&balance.Available,
		&balance.Pending,
		&balance.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to get account %s/%s", r.userID, r.clubID), err)
	}

	return &balance, nil
}

// Lock upserts the account row and takes its row lock. The insert-or-touch
// keeps the lock until the surrounding transaction ends, which serializes
// every append for this account without coupling different accounts.
func (r *AccountRepository) Lock(ctx context.Context) (*entities.AccountBalance, error) {
	query := `
		INSERT INTO credit_accounts (user_id, club_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, club_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, club_id, available, pending, updated_at
	`

	var balance entities.AccountBalance
	err := r.q.QueryRow(ctx, query, r.userID, r.clubID).Scan(
		&balance.UserID,
		&balance.ClubID,
		&balance.Available,
		&balance.Pending,
		&balance.UpdatedAt,
	)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to lock account %s/%s", r.userID, r.clubID), err)
	}

	return &balance, nil
}

// Apply adjusts the cached projection columns. The CHECK constraints on the
// table are the last line of defense against a negative projection.
func (r *AccountRepository) Apply(ctx context.Context, availableDelta, pendingDelta int64) error {
	query := `
		UPDATE credit_accounts
		SET available = available + $1, pending = pending + $2, updated_at = NOW()
		WHERE user_id = $3 AND club_id = $4
	`

	result, err := r.q.Exec(ctx, query, availableDelta, pendingDelta, r.userID, r.clubID)
	if err != nil {
		return storageError(fmt.Sprintf("failed to apply balance deltas for account %s/%s", r.userID, r.clubID), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s/%s not locked before apply: %w", r.userID, r.clubID, entities.ErrNotFound)
	}

	return nil
}
