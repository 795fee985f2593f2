package repository

import (
	"context"
	"fmt"

	"rallyledger/database"
	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PendingGrantRepository implements the PendingGrantRepository and
// PendingGrantReader interfaces over the pending_grants table
type PendingGrantRepository struct {
	q      Queryable
	userID string
	clubID string
}

// NewPendingGrantReader creates an unscoped reader for loading a user's
// outstanding grants across all clubs
func NewPendingGrantReader(db *database.DB) interfaces.PendingGrantReader {
	return &PendingGrantRepository{q: db.Pool}
}

// NewPendingGrantRepositoryScoped creates a grant repository bound to a
// transaction and account scope
func NewPendingGrantRepositoryScoped(tx Queryable, userID, clubID string) interfaces.PendingGrantRepository {
	return &PendingGrantRepository{q: tx, userID: userID, clubID: clubID}
}

const pendingGrantColumns = `id, user_id, club_id, event_id, amount, transaction_id, resolved, resolution, granted_at, resolved_at`

// Create records a new unresolved grant
func (r *PendingGrantRepository) Create(ctx context.Context, grant *entities.PendingGrant) error {
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}

	query := `
		INSERT INTO pending_grants (id, user_id, club_id, event_id, amount, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING granted_at
	`

	err := r.q.QueryRow(ctx, query,
		grant.ID,
		r.userID,
		r.clubID,
		grant.EventID,
		grant.Amount,
		grant.TransactionID,
	).Scan(&grant.GrantedAt)

	if err != nil {
		return storageError(fmt.Sprintf("failed to create pending grant for user %s event %s", r.userID, grant.EventID), err)
	}

	grant.UserID = r.userID
	grant.ClubID = r.clubID

	return nil
}

// GetUnresolvedByEvent returns the outstanding grant for this account's
// user and the given event, or nil
func (r *PendingGrantRepository) GetUnresolvedByEvent(ctx context.Context, eventID string) (*entities.PendingGrant, error) {
	query := `
		SELECT ` + pendingGrantColumns + `
		FROM pending_grants
		WHERE user_id = $1 AND event_id = $2 AND NOT resolved
	`

	grant, err := scanPendingGrant(r.q.QueryRow(ctx, query, r.userID, eventID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to get unresolved grant for user %s event %s", r.userID, eventID), err)
	}

	return grant, nil
}

// Resolve flips the resolved flag if and only if it is still unset. The
// conditional update is the exactly-once gate for concurrent confirmation
// passes: the loser sees zero rows affected and skips the grant.
func (r *PendingGrantRepository) Resolve(ctx context.Context, grantID uuid.UUID, resolution entities.GrantResolution) (bool, error) {
	query := `
		UPDATE pending_grants
		SET resolved = TRUE, resolution = $1, resolved_at = NOW()
		WHERE id = $2 AND NOT resolved
	`

	result, err := r.q.Exec(ctx, query, resolution, grantID)
	if err != nil {
		return false, storageError(fmt.Sprintf("failed to resolve grant %s", grantID), err)
	}

	return result.RowsAffected() > 0, nil
}

// ListUnresolvedByUser returns all outstanding grants for a user across
// clubs, oldest first so long-waiting grants resolve first
func (r *PendingGrantRepository) ListUnresolvedByUser(ctx context.Context, userID string) ([]*entities.PendingGrant, error) {
	query := `
		SELECT ` + pendingGrantColumns + `
		FROM pending_grants
		WHERE user_id = $1 AND NOT resolved
		ORDER BY granted_at ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to list unresolved grants for user %s", userID), err)
	}
	defer rows.Close()

	var grants []*entities.PendingGrant
	for rows.Next() {
		grant, err := scanPendingGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending grant: %w", err)
		}
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate pending grants", err)
	}

	return grants, nil
}

func scanPendingGrant(row pgx.Row) (*entities.PendingGrant, error) {
	var grant entities.PendingGrant
	err := row.Scan(
		&grant.ID,
		&grant.UserID,
		&grant.ClubID,
		&grant.EventID,
		&grant.Amount,
		&grant.TransactionID,
		&grant.Resolved,
		&grant.Resolution,
		&grant.GrantedAt,
		&grant.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}
