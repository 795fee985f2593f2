package entities

// TransactionType represents the type of a credit ledger entry
type TransactionType string

// All transaction types supported by the ledger
const (
	// TransactionTypePending records credits promised for an event
	// registration. Excluded from the available projection.
	TransactionTypePending TransactionType = "pending"

	// TransactionTypeConfirmed records credits that became spendable after
	// the holder was verified as checked in at the event.
	TransactionTypeConfirmed TransactionType = "confirmed"

	// TransactionTypeForfeitedPending records a pending grant that was
	// forfeited before confirmation. Audit entry; never touches available.
	TransactionTypeForfeitedPending TransactionType = "forfeited_pending"

	// TransactionTypeRedeemed records available credits spent against a
	// catalog item.
	TransactionTypeRedeemed TransactionType = "redeemed"

	// Correction types applied against available balance
	TransactionTypeForfeited TransactionType = "forfeited"
	TransactionTypeExpired   TransactionType = "expired"
)

// IsCreditType returns true for types that carry a positive amount
func (tt TransactionType) IsCreditType() bool {
	return tt == TransactionTypePending || tt == TransactionTypeConfirmed
}

// IsDebitType returns true for types that carry a negative amount
func (tt TransactionType) IsDebitType() bool {
	return tt == TransactionTypeForfeitedPending ||
		tt == TransactionTypeRedeemed ||
		tt == TransactionTypeForfeited ||
		tt == TransactionTypeExpired
}

// AffectsAvailable returns true if the type contributes to the available
// balance projection. Pending grants and their forfeitures never do.
func (tt TransactionType) AffectsAvailable() bool {
	return tt == TransactionTypeConfirmed ||
		tt == TransactionTypeRedeemed ||
		tt == TransactionTypeForfeited ||
		tt == TransactionTypeExpired
}

// IsValid returns true if the type is one the ledger knows about
func (tt TransactionType) IsValid() bool {
	return tt.IsCreditType() || tt.IsDebitType()
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
