package testutil

import (
	"context"
	"testing"

	"rallyledger/application"
	"rallyledger/database"
	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"
	"rallyledger/infrastructure"
	"rallyledger/repository"

	"github.com/stretchr/testify/require"
)

// NewTestUnitOfWorkFactory creates a unit of work factory with a no-op
// event publisher, for tests that exercise the ledger without NATS
func NewTestUnitOfWorkFactory(db *database.DB) application.UnitOfWorkFactory {
	return repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewNoopEventPublisher()
	})
}

// SeedCatalogItem inserts a catalog item directly. The catalog is external
// configuration data in production; tests seed it the same way.
func SeedCatalogItem(t *testing.T, db *database.DB, item *entities.CatalogItem) {
	t.Helper()

	if item.ItemType == "" {
		item.ItemType = "discount"
	}

	_, err := db.Exec(context.Background(), `
		INSERT INTO catalog_items (id, club_id, name, description, credits_required, item_type, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.ClubID, item.Name, item.Description, item.CreditsRequired, item.ItemType, item.Active,
	)
	require.NoError(t, err)
}

// CreateTestCatalogItem returns an active catalog item with defaults
func CreateTestCatalogItem(itemID, clubID string, creditsRequired int64) *entities.CatalogItem {
	return &entities.CatalogItem{
		ID:              itemID,
		ClubID:          clubID,
		Name:            "Test Reward " + itemID,
		Description:     "A reward used by tests",
		CreditsRequired: creditsRequired,
		ItemType:        "discount",
		Active:          true,
	}
}

// GrantConfirmedCredits seeds an account with spendable credits by writing
// a pending grant and its confirmation through the real unit of work path
func GrantConfirmedCredits(t *testing.T, db *database.DB, userID, clubID string, amount int64) {
	t.Helper()

	ctx := context.Background()
	eventID := "seed-event-" + userID + "-" + clubID

	uow := NewTestUnitOfWorkFactory(db).CreateForAccount(userID, clubID)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	_, err := uow.AccountRepository().Lock(ctx)
	require.NoError(t, err)

	pending := &entities.CreditTransaction{
		Type:        entities.TransactionTypePending,
		Amount:      amount,
		EventID:     &eventID,
		Description: "seeded pending credits",
	}
	require.NoError(t, uow.CreditTransactionRepository().Append(ctx, pending))

	confirmed := &entities.CreditTransaction{
		Type:        entities.TransactionTypeConfirmed,
		Amount:      amount,
		EventID:     &eventID,
		Description: "seeded confirmed credits",
	}
	require.NoError(t, uow.CreditTransactionRepository().Append(ctx, confirmed))

	require.NoError(t, uow.AccountRepository().Apply(ctx, amount, 0))
	require.NoError(t, uow.Commit())
}
