package entities

import (
	"time"

	"github.com/google/uuid"
)

// GrantResolution records how a pending grant left the pending projection
type GrantResolution string

const (
	GrantResolutionConfirmed GrantResolution = "confirmed"
	GrantResolutionForfeited GrantResolution = "forfeited"
)

// PendingGrant tracks a pending credit grant awaiting a check-in
// confirmation or expiry. A grant is resolved exactly once; the resolved
// flag is flipped under the same transaction as the ledger append.
type PendingGrant struct {
	ID            uuid.UUID        `db:"id"`
	UserID        string           `db:"user_id"`
	ClubID        string           `db:"club_id"`
	EventID       string           `db:"event_id"`
	Amount        int64            `db:"amount"`
	TransactionID uuid.UUID        `db:"transaction_id"`
	Resolved      bool             `db:"resolved"`
	Resolution    *GrantResolution `db:"resolution"`
	GrantedAt     time.Time        `db:"granted_at"`
	ResolvedAt    *time.Time       `db:"resolved_at"`
}

// Age returns how long the grant has been outstanding
func (g *PendingGrant) Age(now time.Time) time.Duration {
	return now.Sub(g.GrantedAt)
}

// IsExpired reports whether the grant has outlived the given TTL.
// A zero TTL disables expiry.
func (g *PendingGrant) IsExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && g.Age(now) > ttl
}
