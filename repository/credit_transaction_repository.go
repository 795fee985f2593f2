package repository

import (
	"context"
	"fmt"
	"time"

	"rallyledger/database"
	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/google/uuid"
)

// CreditTransactionRepository implements the append-only transaction log
// over the credit_transactions table
type CreditTransactionRepository struct {
	q      Queryable
	userID string
	clubID string
}

// NewCreditTransactionRepository creates a repository for reads outside a
// unit of work
func NewCreditTransactionRepository(db *database.DB, userID, clubID string) *CreditTransactionRepository {
	return &CreditTransactionRepository{q: db.Pool, userID: userID, clubID: clubID}
}

// NewCreditTransactionRepositoryScoped creates a repository bound to a
// transaction and account scope
func NewCreditTransactionRepositoryScoped(tx Queryable, userID, clubID string) interfaces.CreditTransactionRepository {
	return &CreditTransactionRepository{q: tx, userID: userID, clubID: clubID}
}

// Append durably writes a new ledger entry. Entries are never updated or
// deleted afterwards.
func (r *CreditTransactionRepository) Append(ctx context.Context, tx *entities.CreditTransaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	query := `
		INSERT INTO credit_transactions (id, user_id, club_id, type, amount, event_id, redemption_request_id, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		tx.ID,
		r.userID,
		r.clubID,
		tx.Type,
		tx.Amount,
		tx.EventID,
		tx.RedemptionRequestID,
		tx.Description,
	).Scan(&tx.CreatedAt)

	if err != nil {
		return storageError(fmt.Sprintf("failed to append %s transaction for account %s/%s", tx.Type, r.userID, r.clubID), err)
	}

	// Reflect the repository scope on the entity
	tx.UserID = r.userID
	tx.ClubID = r.clubID

	return nil
}

// List returns the account's entries newest first. The before cursor makes
// the listing restartable: passing the cursor of the last seen entry
// resumes strictly below it. The row comparison pages on (created_at, id),
// matching the sort order, so entries sharing a stamp never straddle a
// page boundary unseen.
func (r *CreditTransactionRepository) List(ctx context.Context, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error) {
	query := `
		SELECT id, user_id, club_id, type, amount, event_id, redemption_request_id, description, created_at
		FROM credit_transactions
		WHERE user_id = $1 AND club_id = $2
		  AND ($3::timestamptz IS NULL OR (created_at, id) < ($3, $4::uuid))
		ORDER BY created_at DESC, id DESC
		LIMIT $5
	`

	var beforeAt *time.Time
	var beforeID *uuid.UUID
	if before != nil {
		beforeAt = &before.CreatedAt
		beforeID = &before.ID
	}

	rows, err := r.q.Query(ctx, query, r.userID, r.clubID, beforeAt, beforeID, limit)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to list transactions for account %s/%s", r.userID, r.clubID), err)
	}
	defer rows.Close()

	var txs []*entities.CreditTransaction
	for rows.Next() {
		var tx entities.CreditTransaction
		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.ClubID,
			&tx.Type,
			&tx.Amount,
			&tx.EventID,
			&tx.RedemptionRequestID,
			&tx.Description,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate transactions", err)
	}

	return txs, nil
}

// SumAvailable derives the available balance from the log. Within a unit
// of work that already holds the account lock this value is the
// authoritative input to a spend decision.
func (r *CreditTransactionRepository) SumAvailable(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_transactions
		WHERE user_id = $1 AND club_id = $2
		  AND type IN ('confirmed', 'redeemed', 'forfeited', 'expired')
	`

	var available int64
	err := r.q.QueryRow(ctx, query, r.userID, r.clubID).Scan(&available)
	if err != nil {
		return 0, storageError(fmt.Sprintf("failed to derive available balance for account %s/%s", r.userID, r.clubID), err)
	}

	return available, nil
}
