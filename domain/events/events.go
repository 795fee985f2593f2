package events

import "time"

// EventType represents different types of ledger events
type EventType string

const (
	EventTypeCreditsGranted      EventType = "credits_granted"
	EventTypeCreditsConfirmed    EventType = "credits_confirmed"
	EventTypeCreditsForfeited    EventType = "credits_forfeited"
	EventTypeCreditsReclaimed    EventType = "credits_reclaimed"
	EventTypeRedemptionCommitted EventType = "redemption_committed"
)

// Event is the base interface for all ledger events
type Event interface {
	Type() EventType
}

// CreditsGrantedEvent is published when pending credits are granted for an
// event registration
type CreditsGrantedEvent struct {
	UserID        string `json:"user_id"`
	ClubID        string `json:"club_id"`
	EventID       string `json:"event_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}

func (e CreditsGrantedEvent) Type() EventType {
	return EventTypeCreditsGranted
}

// CreditsConfirmedEvent is published when a pending grant resolves to
// spendable credits
type CreditsConfirmedEvent struct {
	UserID  string `json:"user_id"`
	ClubID  string `json:"club_id"`
	EventID string `json:"event_id"`
	Amount  int64  `json:"amount"`
}

func (e CreditsConfirmedEvent) Type() EventType {
	return EventTypeCreditsConfirmed
}

// CreditsForfeitedEvent is published when a pending grant is forfeited
type CreditsForfeitedEvent struct {
	UserID  string `json:"user_id"`
	ClubID  string `json:"club_id"`
	EventID string `json:"event_id"`
	Amount  int64  `json:"amount"`
}

func (e CreditsForfeitedEvent) Type() EventType {
	return EventTypeCreditsForfeited
}

// CreditsReclaimedEvent is published when available credits are reclaimed
// by an external policy (forfeiture or expiry)
type CreditsReclaimedEvent struct {
	UserID string `json:"user_id"`
	ClubID string `json:"club_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (e CreditsReclaimedEvent) Type() EventType {
	return EventTypeCreditsReclaimed
}

// RedemptionCommittedEvent carries a committed redemption to the
// fulfillment collaborator. Delivery is fire-and-forget from the ledger's
// perspective; the fulfillment side owns its retry policy.
type RedemptionCommittedEvent struct {
	RedemptionID  string    `json:"redemption_id"`
	RequestID     string    `json:"request_id"`
	UserID        string    `json:"user_id"`
	ClubID        string    `json:"club_id"`
	CatalogItemID string    `json:"catalog_item_id"`
	CreditsSpent  int64     `json:"credits_spent"`
	CommittedAt   time.Time `json:"committed_at"`
}

func (e RedemptionCommittedEvent) Type() EventType {
	return EventTypeRedemptionCommitted
}
