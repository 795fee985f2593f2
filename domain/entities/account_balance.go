package entities

import "time"

// AccountBalance holds the projected balances for a (user, club) account.
// The stored row is a cache of the transaction log fold and is never the
// authoritative input to a spend decision.
type AccountBalance struct {
	UserID    string    `db:"user_id"`
	ClubID    string    `db:"club_id"`
	Available int64     `db:"available"`
	Pending   int64     `db:"pending"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CanAfford checks whether the available balance covers an amount
func (b *AccountBalance) CanAfford(amount int64) bool {
	return b.Available >= amount
}

// HasPendingCredits checks whether any credits await confirmation
func (b *AccountBalance) HasPendingCredits() bool {
	return b.Pending > 0
}
