package testhelpers

import (
	"context"

	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Get(ctx context.Context) (*entities.AccountBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccountBalance), args.Error(1)
}

func (m *MockAccountRepository) Lock(ctx context.Context) (*entities.AccountBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccountBalance), args.Error(1)
}

func (m *MockAccountRepository) Apply(ctx context.Context, availableDelta, pendingDelta int64) error {
	args := m.Called(ctx, availableDelta, pendingDelta)
	return args.Error(0)
}

// MockCreditTransactionRepository is a mock implementation of
// CreditTransactionRepository
type MockCreditTransactionRepository struct {
	mock.Mock
}

func (m *MockCreditTransactionRepository) Append(ctx context.Context, tx *entities.CreditTransaction) error {
	args := m.Called(ctx, tx)
	if args.Error(0) == nil && tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockCreditTransactionRepository) List(ctx context.Context, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CreditTransaction), args.Error(1)
}

func (m *MockCreditTransactionRepository) SumAvailable(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPendingGrantRepository is a mock implementation of
// PendingGrantRepository
type MockPendingGrantRepository struct {
	mock.Mock
}

func (m *MockPendingGrantRepository) Create(ctx context.Context, grant *entities.PendingGrant) error {
	args := m.Called(ctx, grant)
	if args.Error(0) == nil && grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockPendingGrantRepository) GetUnresolvedByEvent(ctx context.Context, eventID string) (*entities.PendingGrant, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingGrant), args.Error(1)
}

func (m *MockPendingGrantRepository) Resolve(ctx context.Context, grantID uuid.UUID, resolution entities.GrantResolution) (bool, error) {
	args := m.Called(ctx, grantID, resolution)
	return args.Bool(0), args.Error(1)
}

// MockPendingGrantReader is a mock implementation of PendingGrantReader
type MockPendingGrantReader struct {
	mock.Mock
}

func (m *MockPendingGrantReader) ListUnresolvedByUser(ctx context.Context, userID string) ([]*entities.PendingGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PendingGrant), args.Error(1)
}

// MockRedemptionRepository is a mock implementation of RedemptionRepository
type MockRedemptionRepository struct {
	mock.Mock
}

func (m *MockRedemptionRepository) Create(ctx context.Context, record *entities.RedemptionRecord) error {
	args := m.Called(ctx, record)
	if args.Error(0) == nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRedemptionRepository) GetByRequestID(ctx context.Context, requestID string) (*entities.RedemptionRecord, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RedemptionRecord), args.Error(1)
}

func (m *MockRedemptionRepository) ListByAccount(ctx context.Context, limit int) ([]*entities.RedemptionRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RedemptionRecord), args.Error(1)
}

// MockCatalogRepository is a mock implementation of CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetItem(ctx context.Context, clubID, itemID string) (*entities.CatalogItem, error) {
	args := m.Called(ctx, clubID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) ListItems(ctx context.Context, clubID string, activeOnly bool) ([]*entities.CatalogItem, error) {
	args := m.Called(ctx, clubID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CatalogItem), args.Error(1)
}

// MockLedgerReader is a mock implementation of LedgerReader
type MockLedgerReader struct {
	mock.Mock
}

func (m *MockLedgerReader) GetBalance(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error) {
	args := m.Called(ctx, userID, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccountBalance), args.Error(1)
}

func (m *MockLedgerReader) ListTransactions(ctx context.Context, userID, clubID string, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error) {
	args := m.Called(ctx, userID, clubID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CreditTransaction), args.Error(1)
}

func (m *MockLedgerReader) ListRedemptions(ctx context.Context, userID, clubID string, limit int) ([]*entities.RedemptionRecord, error) {
	args := m.Called(ctx, userID, clubID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RedemptionRecord), args.Error(1)
}

// MockAttendanceChecker is a mock implementation of AttendanceChecker
type MockAttendanceChecker struct {
	mock.Mock
}

func (m *MockAttendanceChecker) IsCheckedIn(ctx context.Context, userID, eventID string) (interfaces.CheckInStatus, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Get(0).(interfaces.CheckInStatus), args.Error(1)
}

func (m *MockAttendanceChecker) HasEventConcluded(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}
