package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CreditTransaction is a single immutable entry in the credit ledger.
// Entries are append-only; corrections are made by appending offsetting
// entries, never by mutating or deleting existing ones.
type CreditTransaction struct {
	ID                  uuid.UUID       `db:"id"`
	UserID              string          `db:"user_id"`
	ClubID              string          `db:"club_id"`
	Type                TransactionType `db:"type"`
	Amount              int64           `db:"amount"`
	EventID             *string         `db:"event_id"`
	RedemptionRequestID *string         `db:"redemption_request_id"`
	Description         string          `db:"description"`
	CreatedAt           time.Time       `db:"created_at"`
}

// Validate checks the sign convention for the transaction type: credit
// types carry positive amounts, debit types negative ones.
func (t *CreditTransaction) Validate() error {
	if t.UserID == "" || t.ClubID == "" {
		return errors.New("transaction must be scoped to a user and club")
	}
	if !t.Type.IsValid() {
		return errors.New("unknown transaction type")
	}
	if t.Amount == 0 {
		return errors.New("transaction amount cannot be zero")
	}
	if t.Type.IsCreditType() && t.Amount < 0 {
		return errors.New("credit transaction amount must be positive")
	}
	if t.Type.IsDebitType() && t.Amount > 0 {
		return errors.New("debit transaction amount must be negative")
	}
	return nil
}

// ProjectBalance folds a sequence of transactions into an account balance.
// Order does not matter for the totals; every balance in the system must be
// re-derivable through this fold. A confirmed entry both credits available
// and releases the matching pending amount, so no offsetting
// forfeited_pending entry is appended on confirmation.
func ProjectBalance(userID, clubID string, txs []*CreditTransaction) *AccountBalance {
	balance := &AccountBalance{UserID: userID, ClubID: clubID}
	for _, t := range txs {
		if t.UserID != userID || t.ClubID != clubID {
			continue
		}
		switch t.Type {
		case TransactionTypePending:
			balance.Pending += t.Amount
		case TransactionTypeConfirmed:
			balance.Available += t.Amount
			balance.Pending -= t.Amount
		case TransactionTypeForfeitedPending:
			balance.Pending += t.Amount
		case TransactionTypeRedeemed, TransactionTypeForfeited, TransactionTypeExpired:
			balance.Available += t.Amount
		}
	}
	return balance
}
