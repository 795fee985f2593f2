package interfaces

import (
	"context"

	"rallyledger/domain/entities"

	"github.com/google/uuid"
)

// AccountRepository manages the cached balance projection row for the
// account the repository is scoped to. The row also serves as the
// per-account lock: Lock must be called inside a unit of work before any
// append, and the lock is held until commit or rollback.
type AccountRepository interface {
	// Get returns the cached projection, or nil if the account has no
	// transactions yet
	Get(ctx context.Context) (*entities.AccountBalance, error)

	// Lock upserts the account row and locks it for the remainder of the
	// transaction, serializing all appends for this account
	Lock(ctx context.Context) (*entities.AccountBalance, error)

	// Apply adjusts the cached projection. Must be called in the same
	// transaction as the ledger append it reflects.
	Apply(ctx context.Context, availableDelta, pendingDelta int64) error
}

// CreditTransactionRepository is the append-only transaction log for the
// account the repository is scoped to
type CreditTransactionRepository interface {
	// Append durably writes a new ledger entry
	Append(ctx context.Context, tx *entities.CreditTransaction) error

	// List returns entries newest first. A nil cursor starts from the top;
	// otherwise only entries strictly before the (created-at, id) cursor
	// are returned.
	List(ctx context.Context, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error)

	// SumAvailable derives the available balance from the log. Inside a
	// unit of work holding the account lock this is the authoritative
	// value for a spend decision.
	SumAvailable(ctx context.Context) (int64, error)
}

// PendingGrantRepository tracks outstanding pending grants
type PendingGrantRepository interface {
	// Create records a new unresolved grant
	Create(ctx context.Context, grant *entities.PendingGrant) error

	// GetUnresolvedByEvent returns the outstanding grant for this
	// account's user and the given event, or nil if none exists
	GetUnresolvedByEvent(ctx context.Context, eventID string) (*entities.PendingGrant, error)

	// Resolve marks a grant resolved if and only if it is still
	// unresolved. Returns false when another caller already resolved it.
	Resolve(ctx context.Context, grantID uuid.UUID, resolution entities.GrantResolution) (bool, error)
}

// PendingGrantReader is the cross-club read side used by the confirmation
// engine to load a user's outstanding grants
type PendingGrantReader interface {
	ListUnresolvedByUser(ctx context.Context, userID string) ([]*entities.PendingGrant, error)
}

// RedemptionRepository stores committed redemption records
type RedemptionRepository interface {
	// Create persists a committed redemption
	Create(ctx context.Context, record *entities.RedemptionRecord) error

	// GetByRequestID returns the record for an idempotency key, or nil
	GetByRequestID(ctx context.Context, requestID string) (*entities.RedemptionRecord, error)

	// ListByAccount returns the account's redemptions, newest first
	ListByAccount(ctx context.Context, limit int) ([]*entities.RedemptionRecord, error)
}

// LedgerReader is the query side of the ledger, used outside any unit of
// work. Reads go against committed state only.
type LedgerReader interface {
	// GetBalance returns the cached projection, or nil for accounts with
	// no history
	GetBalance(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error)

	// ListTransactions pages through an account's log newest first
	ListTransactions(ctx context.Context, userID, clubID string, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error)

	// ListRedemptions returns an account's redemptions newest first
	ListRedemptions(ctx context.Context, userID, clubID string, limit int) ([]*entities.RedemptionRecord, error)
}

// CatalogRepository is the read-only view of the club reward catalog
type CatalogRepository interface {
	// GetItem returns a catalog item scoped to a club, or nil if unknown
	GetItem(ctx context.Context, clubID, itemID string) (*entities.CatalogItem, error)

	// ListItems returns a club's catalog, optionally only active items
	ListItems(ctx context.Context, clubID string, activeOnly bool) ([]*entities.CatalogItem, error)
}
