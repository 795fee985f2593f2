package repository

import (
	"context"
	"fmt"

	"rallyledger/database"
	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// CatalogRepository implements the read-only CatalogRepository interface.
// Catalog rows are owned by the club management system; the ledger never
// writes them.
type CatalogRepository struct {
	q Queryable
}

// NewCatalogRepository creates a catalog repository
func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{q: db.Pool}
}

// NewCatalogRepositoryWithTx creates a catalog repository bound to a
// transaction
func NewCatalogRepositoryWithTx(tx Queryable) interfaces.CatalogRepository {
	return &CatalogRepository{q: tx}
}

const catalogItemColumns = `id, club_id, name, description, credits_required, item_type, active, created_at, updated_at`

// GetItem returns a catalog item scoped to a club, or nil if unknown
func (r *CatalogRepository) GetItem(ctx context.Context, clubID, itemID string) (*entities.CatalogItem, error) {
	query := `
		SELECT ` + catalogItemColumns + `
		FROM catalog_items
		WHERE id = $1 AND club_id = $2
	`

	var item entities.CatalogItem
	err := r.q.QueryRow(ctx, query, itemID, clubID).Scan(
		&item.ID,
		&item.ClubID,
		&item.Name,
		&item.Description,
		&item.CreditsRequired,
		&item.ItemType,
		&item.Active,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to get catalog item %s for club %s", itemID, clubID), err)
	}

	return &item, nil
}

// ListItems returns a club's catalog ordered by required credits
func (r *CatalogRepository) ListItems(ctx context.Context, clubID string, activeOnly bool) ([]*entities.CatalogItem, error) {
	query := `
		SELECT ` + catalogItemColumns + `
		FROM catalog_items
		WHERE club_id = $1 AND (NOT $2 OR active)
		ORDER BY credits_required ASC, name ASC
	`

	rows, err := r.q.Query(ctx, query, clubID, activeOnly)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to list catalog items for club %s", clubID), err)
	}
	defer rows.Close()

	var items []*entities.CatalogItem
	for rows.Next() {
		var item entities.CatalogItem
		err := rows.Scan(
			&item.ID,
			&item.ClubID,
			&item.Name,
			&item.Description,
			&item.CreditsRequired,
			&item.ItemType,
			&item.Active,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate catalog items", err)
	}

	return items, nil
}
