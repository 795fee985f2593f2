package repository

import (
	"context"
	"errors"
	"fmt"

	"rallyledger/database"
	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RedemptionRepository implements the RedemptionRepository interface over
// the redemptions table
type RedemptionRepository struct {
	q      Queryable
	userID string
	clubID string
}

// NewRedemptionRepository creates a repository for reads outside a unit of
// work
func NewRedemptionRepository(db *database.DB, userID, clubID string) *RedemptionRepository {
	return &RedemptionRepository{q: db.Pool, userID: userID, clubID: clubID}
}

// NewRedemptionRepositoryScoped creates a repository bound to a
// transaction and account scope
func NewRedemptionRepositoryScoped(tx Queryable, userID, clubID string) interfaces.RedemptionRepository {
	return &RedemptionRepository{q: tx, userID: userID, clubID: clubID}
}

// Create persists a committed redemption. The unique constraint on
// request_id is the idempotency backstop behind the service-level check.
func (r *RedemptionRepository) Create(ctx context.Context, record *entities.RedemptionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO redemptions (id, request_id, user_id, club_id, catalog_item_id, credits_spent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.ID,
		record.RequestID,
		r.userID,
		r.clubID,
		record.CatalogItemID,
		record.CreditsSpent,
		record.Status,
	).Scan(&record.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("redemption request %s already recorded: %w", record.RequestID, entities.ErrDuplicateRequest)
		}
		return storageError(fmt.Sprintf("failed to create redemption record for request %s", record.RequestID), err)
	}

	record.UserID = r.userID
	record.ClubID = r.clubID

	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByRequestID returns the record for an idempotency key, or nil. Looked
// up globally, not account-scoped: a request ID identifies exactly one
// redemption no matter who retries it.
func (r *RedemptionRepository) GetByRequestID(ctx context.Context, requestID string) (*entities.RedemptionRecord, error) {
	query := `
		SELECT id, request_id, user_id, club_id, catalog_item_id, credits_spent, status, created_at
		FROM redemptions
		WHERE request_id = $1
	`

	var record entities.RedemptionRecord
	err := r.q.QueryRow(ctx, query, requestID).Scan(
		&record.ID,
		&record.RequestID,
		&record.UserID,
		&record.ClubID,
		&record.CatalogItemID,
		&record.CreditsSpent,
		&record.Status,
		&record.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to get redemption by request %s", requestID), err)
	}

	return &record, nil
}

// ListByAccount returns the account's redemptions, newest first
func (r *RedemptionRepository) ListByAccount(ctx context.Context, limit int) ([]*entities.RedemptionRecord, error) {
	query := `
		SELECT id, request_id, user_id, club_id, catalog_item_id, credits_spent, status, created_at
		FROM redemptions
		WHERE user_id = $1 AND club_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, r.userID, r.clubID, limit)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to list redemptions for account %s/%s", r.userID, r.clubID), err)
	}
	defer rows.Close()

	var records []*entities.RedemptionRecord
	for rows.Next() {
		var record entities.RedemptionRecord
		err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.UserID,
			&record.ClubID,
			&record.CatalogItemID,
			&record.CreditsSpent,
			&record.Status,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan redemption record: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate redemptions", err)
	}

	return records, nil
}
