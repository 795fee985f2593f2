package entities

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStatus represents the outcome of a redemption request
type RedemptionStatus string

const (
	RedemptionStatusCommitted RedemptionStatus = "committed"
	RedemptionStatusRejected  RedemptionStatus = "rejected"
)

// RedemptionRecord is the durable result of a redemption request. Only
// committed redemptions are persisted; the associated redeemed transaction
// references the record through its request ID, which makes client retries
// idempotent.
type RedemptionRecord struct {
	ID            uuid.UUID        `db:"id"`
	RequestID     string           `db:"request_id"`
	UserID        string           `db:"user_id"`
	ClubID        string           `db:"club_id"`
	CatalogItemID string           `db:"catalog_item_id"`
	CreditsSpent  int64            `db:"credits_spent"`
	Status        RedemptionStatus `db:"status"`
	CreatedAt     time.Time        `db:"created_at"`
}

// IsCommitted returns true if the redemption was committed to the ledger
func (r *RedemptionRecord) IsCommitted() bool {
	return r.Status == RedemptionStatusCommitted
}
