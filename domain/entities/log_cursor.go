package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LogCursor is a keyset position in an account's transaction log: the
// created-at and id of the last entry already seen. Paging on the pair
// rather than the timestamp alone keeps entries that share a stamp from
// being skipped across a page boundary.
type LogCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// CursorFor returns the cursor that resumes strictly after tx.
func CursorFor(tx *CreditTransaction) *LogCursor {
	return &LogCursor{CreatedAt: tx.CreatedAt, ID: tx.ID}
}

// String encodes the cursor in the wire form accepted by ParseLogCursor.
func (c LogCursor) String() string {
	return c.CreatedAt.Format(time.RFC3339Nano) + "~" + c.ID.String()
}

// ParseLogCursor decodes a cursor previously produced by String.
func ParseLogCursor(s string) (*LogCursor, error) {
	stamp, id, ok := strings.Cut(s, "~")
	if !ok {
		return nil, fmt.Errorf("cursor %q is not in <created_at>~<id> form", s)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp %q: %w", stamp, err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id %q: %w", id, err)
	}

	return &LogCursor{CreatedAt: createdAt, ID: parsedID}, nil
}
