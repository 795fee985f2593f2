package entities

import "errors"

// Ledger error taxonomy. Storage failures are transient and retryable;
// everything else is terminal for the request that raised it.
var (
	// ErrStorageUnavailable wraps backing-store failures. Callers should
	// retry with backoff; idempotency keys make retries safe.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInsufficientBalance means the available balance does not cover the
	// requested spend. Not retryable without new facts.
	ErrInsufficientBalance = errors.New("insufficient available balance")

	// ErrItemInactive means the catalog item exists but cannot be redeemed
	ErrItemInactive = errors.New("catalog item is not active")

	// ErrNotFound means a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount means a caller supplied a non-positive amount
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidArgument means a caller supplied a malformed or missing
	// argument. Terminal for the request; fix the input and resend.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateRequest means an idempotency key already has a committed
	// record. Callers resolve it by reading the existing record back.
	ErrDuplicateRequest = errors.New("duplicate request")
)
