package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingGrant_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		grantedAt time.Time
		ttl       time.Duration
		want      bool
	}{
		{
			name:      "zero ttl disables expiry",
			grantedAt: now.Add(-1000 * time.Hour),
			ttl:       0,
			want:      false,
		},
		{
			name:      "fresh grant within ttl",
			grantedAt: now.Add(-1 * time.Hour),
			ttl:       72 * time.Hour,
			want:      false,
		},
		{
			name:      "grant exactly at ttl boundary",
			grantedAt: now.Add(-72 * time.Hour),
			ttl:       72 * time.Hour,
			want:      false,
		},
		{
			name:      "grant past ttl",
			grantedAt: now.Add(-73 * time.Hour),
			ttl:       72 * time.Hour,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			grant := &PendingGrant{GrantedAt: tt.grantedAt}
			assert.Equal(t, tt.want, grant.IsExpired(now, tt.ttl))
		})
	}
}

func TestTransactionType_Classification(t *testing.T) {
	t.Parallel()

	assert.True(t, TransactionTypePending.IsCreditType())
	assert.True(t, TransactionTypeConfirmed.IsCreditType())
	assert.False(t, TransactionTypeRedeemed.IsCreditType())

	assert.True(t, TransactionTypeRedeemed.IsDebitType())
	assert.True(t, TransactionTypeForfeitedPending.IsDebitType())
	assert.False(t, TransactionTypePending.IsDebitType())

	assert.False(t, TransactionTypePending.AffectsAvailable())
	assert.False(t, TransactionTypeForfeitedPending.AffectsAvailable())
	assert.True(t, TransactionTypeConfirmed.AffectsAvailable())
	assert.True(t, TransactionTypeExpired.AffectsAvailable())

	assert.False(t, TransactionType("refunded").IsValid())
}
