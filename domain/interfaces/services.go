package interfaces

import (
	"context"

	"rallyledger/domain/entities"
	"rallyledger/domain/events"

	"github.com/google/uuid"
)

// CheckInStatus is the attendance collaborator's answer for a
// (user, event) pair
type CheckInStatus int

const (
	// CheckInUnknown means the event has not concluded or no record exists
	CheckInUnknown CheckInStatus = iota
	CheckInConfirmed
	CheckInAbsent
)

// AttendanceChecker is the external attendance collaborator. How
// "checked in" is determined is entirely outside the ledger.
type AttendanceChecker interface {
	IsCheckedIn(ctx context.Context, userID, eventID string) (CheckInStatus, error)
	HasEventConcluded(ctx context.Context, eventID string) (bool, error)
}

// EventPublisher defines the interface for publishing ledger events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events during a unit of work and
// releases them only after a successful commit
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}

// GrantService creates pending grants when an external collaborator
// issues a ticket
type GrantService interface {
	// GrantPendingCredits appends a pending transaction and tracks the
	// grant. Repeated calls for the same (user, event) while a grant is
	// outstanding return the existing transaction ID.
	GrantPendingCredits(ctx context.Context, userID, clubID, eventID string, amount int64, description string) (uuid.UUID, error)
}

// ConfirmationResult summarizes one confirmation pass for a user
type ConfirmationResult struct {
	ConfirmedCount int
	ForfeitedCount int
}

// ConfirmationService resolves a user's outstanding pending grants against
// the attendance collaborator. Safe to invoke repeatedly and concurrently;
// each grant resolves exactly once.
type ConfirmationService interface {
	ConfirmPending(ctx context.Context, userID string) (*ConfirmationResult, error)
}

// RedemptionService converts available credits into committed rewards
type RedemptionService interface {
	// Redeem spends credits against a catalog item exactly once per
	// request ID. A retry with a known request ID returns the prior
	// committed record.
	Redeem(ctx context.Context, userID, clubID, catalogItemID, requestID string) (*entities.RedemptionRecord, error)

	// ListRedemptions returns the account's redemption history
	ListRedemptions(ctx context.Context, userID, clubID string, limit int) ([]*entities.RedemptionRecord, error)
}

// AdjustmentService applies external correction policies to available
// balance by appending offsetting transactions
type AdjustmentService interface {
	// ReclaimCredits appends a forfeited or expired transaction. Fails
	// with ErrInsufficientBalance rather than driving available negative.
	ReclaimCredits(ctx context.Context, userID, clubID string, amount int64, reason entities.TransactionType, description string) (uuid.UUID, error)
}

// BalanceService is the query side of the ledger
type BalanceService interface {
	// GetBalance returns the cached projection for an account, zero-valued
	// for accounts with no history
	GetBalance(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error)

	// ListTransactions pages through the account's ledger newest first,
	// restartable via the keyset cursor
	ListTransactions(ctx context.Context, userID, clubID string, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error)
}

// CatalogService exposes the club reward catalog to callers
type CatalogService interface {
	GetItem(ctx context.Context, clubID, itemID string) (*entities.CatalogItem, error)
	ListItems(ctx context.Context, clubID string, activeOnly bool) ([]*entities.CatalogItem, error)
}
