package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGrantService struct {
	grant func(ctx context.Context, userID, clubID, eventID string, amount int64, description string) (uuid.UUID, error)
}

func (s *stubGrantService) GrantPendingCredits(ctx context.Context, userID, clubID, eventID string, amount int64, description string) (uuid.UUID, error) {
	return s.grant(ctx, userID, clubID, eventID, amount, description)
}

type stubConfirmationService struct {
	confirm func(ctx context.Context, userID string) (*interfaces.ConfirmationResult, error)
}

func (s *stubConfirmationService) ConfirmPending(ctx context.Context, userID string) (*interfaces.ConfirmationResult, error) {
	return s.confirm(ctx, userID)
}

type stubRedemptionService struct {
	redeem func(ctx context.Context, userID, clubID, catalogItemID, requestID string) (*entities.RedemptionRecord, error)
	list   func(ctx context.Context, userID, clubID string, limit int) ([]*entities.RedemptionRecord, error)
}

func (s *stubRedemptionService) Redeem(ctx context.Context, userID, clubID, catalogItemID, requestID string) (*entities.RedemptionRecord, error) {
	return s.redeem(ctx, userID, clubID, catalogItemID, requestID)
}

func (s *stubRedemptionService) ListRedemptions(ctx context.Context, userID, clubID string, limit int) ([]*entities.RedemptionRecord, error) {
	return s.list(ctx, userID, clubID, limit)
}

type stubBalanceService struct {
	balance func(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error)
	list    func(ctx context.Context, userID, clubID string, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error)
}

func (s *stubBalanceService) GetBalance(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error) {
	return s.balance(ctx, userID, clubID)
}

func (s *stubBalanceService) ListTransactions(ctx context.Context, userID, clubID string, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error) {
	return s.list(ctx, userID, clubID, before, limit)
}

type stubCatalogService struct {
	get  func(ctx context.Context, clubID, itemID string) (*entities.CatalogItem, error)
	list func(ctx context.Context, clubID string, activeOnly bool) ([]*entities.CatalogItem, error)
}

func (s *stubCatalogService) GetItem(ctx context.Context, clubID, itemID string) (*entities.CatalogItem, error) {
	return s.get(ctx, clubID, itemID)
}

func (s *stubCatalogService) ListItems(ctx context.Context, clubID string, activeOnly bool) ([]*entities.CatalogItem, error) {
	return s.list(ctx, clubID, activeOnly)
}

type stubAdjustmentService struct {
	reclaim func(ctx context.Context, userID, clubID string, amount int64, reason entities.TransactionType, description string) (uuid.UUID, error)
}

func (s *stubAdjustmentService) ReclaimCredits(ctx context.Context, userID, clubID string, amount int64, reason entities.TransactionType, description string) (uuid.UUID, error) {
	return s.reclaim(ctx, userID, clubID, amount, reason, description)
}

func newTestServer() *Server {
	return NewServer(
		&stubGrantService{grant: func(context.Context, string, string, string, int64, string) (uuid.UUID, error) {
			return uuid.New(), nil
		}},
		&stubConfirmationService{confirm: func(context.Context, string) (*interfaces.ConfirmationResult, error) {
			return &interfaces.ConfirmationResult{}, nil
		}},
		&stubRedemptionService{
			redeem: func(context.Context, string, string, string, string) (*entities.RedemptionRecord, error) {
				return &entities.RedemptionRecord{}, nil
			},
			list: func(context.Context, string, string, int) ([]*entities.RedemptionRecord, error) {
				return nil, nil
			},
		},
		&stubBalanceService{
			balance: func(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error) {
				return &entities.AccountBalance{UserID: userID, ClubID: clubID}, nil
			},
			list: func(context.Context, string, string, *entities.LogCursor, int) ([]*entities.CreditTransaction, error) {
				return nil, nil
			},
		},
		&stubCatalogService{
			get: func(context.Context, string, string) (*entities.CatalogItem, error) { return nil, nil },
			list: func(context.Context, string, bool) ([]*entities.CatalogItem, error) {
				return nil, nil
			},
		},
		&stubAdjustmentService{reclaim: func(context.Context, string, string, int64, entities.TransactionType, string) (uuid.UUID, error) {
			return uuid.New(), nil
		}},
	)
}

func TestServer_Grant(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	txID := uuid.New()
	server.grants = &stubGrantService{grant: func(_ context.Context, userID, clubID, eventID string, amount int64, _ string) (uuid.UUID, error) {
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, "club-1", clubID)
		assert.Equal(t, "event-1", eventID)
		assert.Equal(t, int64(100), amount)
		return txID, nil
	}}

	body := `{"user_id":"user-1","club_id":"club-1","event_id":"event-1","amount":100}`
	req := httptest.NewRequest(http.MethodPost, "/v1/grants", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, txID.String(), resp["transaction_id"])
}

func TestServer_GetBalance(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	server.balances = &stubBalanceService{
		balance: func(_ context.Context, userID, clubID string) (*entities.AccountBalance, error) {
			return &entities.AccountBalance{UserID: userID, ClubID: clubID, Available: 300, Pending: 100}, nil
		},
		list: func(context.Context, string, string, *entities.LogCursor, int) ([]*entities.CreditTransaction, error) {
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/users/user-1/clubs/club-1/balance", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(300), resp.Available)
	assert.Equal(t, int64(100), resp.Pending)
}

func TestServer_ListTransactions_Cursor(t *testing.T) {
	t.Parallel()

	oldestID := uuid.New()
	oldest := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	passed := entities.LogCursor{
		CreatedAt: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		ID:        uuid.New(),
	}

	server := newTestServer()
	server.balances = &stubBalanceService{
		balance: func(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error) {
			return &entities.AccountBalance{}, nil
		},
		list: func(_ context.Context, _, _ string, before *entities.LogCursor, _ int) ([]*entities.CreditTransaction, error) {
			require.NotNil(t, before)
			assert.True(t, before.CreatedAt.Equal(passed.CreatedAt))
			assert.Equal(t, passed.ID, before.ID)
			return []*entities.CreditTransaction{
				{ID: oldestID, Type: entities.TransactionTypeConfirmed, Amount: 100, CreatedAt: oldest},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/users/user-1/clubs/club-1/transactions?before="+url.QueryEscape(passed.String()), nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp transactionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	require.NotNil(t, resp.NextCursor)
	assert.Equal(t, entities.LogCursor{CreatedAt: oldest, ID: oldestID}.String(), *resp.NextCursor)
}

func TestServer_ListTransactions_BadCursor(t *testing.T) {
	t.Parallel()

	tests := []string{
		"yesterday",
		"2025-05-01T10:00:00Z", // timestamp alone is not a cursor
		"2025-05-01T10:00:00Z~not-a-uuid",
	}

	for _, cursor := range tests {
		server := newTestServer()
		req := httptest.NewRequest(http.MethodGet, "/v1/users/user-1/clubs/club-1/transactions?before="+url.QueryEscape(cursor), nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "cursor %q", cursor)
	}
}

func TestServer_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantRetry  bool
	}{
		{
			name:       "insufficient balance conflicts",
			err:        fmt.Errorf("need 250, have 100: %w", entities.ErrInsufficientBalance),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "inactive item conflicts",
			err:        fmt.Errorf("item retired: %w", entities.ErrItemInactive),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown item not found",
			err:        fmt.Errorf("no such item: %w", entities.ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid argument is a bad request",
			err:        fmt.Errorf("request ID is required: %w", entities.ErrInvalidArgument),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "storage failure is retryable",
			err:        fmt.Errorf("append failed: %w", entities.ErrStorageUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantRetry:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer()
			server.redeemer = &stubRedemptionService{
				redeem: func(context.Context, string, string, string, string) (*entities.RedemptionRecord, error) {
					return nil, tt.err
				},
				list: func(context.Context, string, string, int) ([]*entities.RedemptionRecord, error) {
					return nil, nil
				},
			}

			body := `{"user_id":"user-1","club_id":"club-1","catalog_item_id":"item-1","request_id":"req-1"}`
			req := httptest.NewRequest(http.MethodPost, "/v1/redemptions", strings.NewReader(body))
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantRetry {
				assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
