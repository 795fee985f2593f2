package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rallyledger/domain/entities"
	"rallyledger/domain/events"
	"rallyledger/domain/interfaces"
	"rallyledger/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestGrant(userID, clubID, eventID string, amount int64) *entities.PendingGrant {
	return &entities.PendingGrant{
		ID:            uuid.New(),
		UserID:        userID,
		ClubID:        clubID,
		EventID:       eventID,
		Amount:        amount,
		TransactionID: uuid.New(),
		GrantedAt:     time.Now().Add(-time.Hour),
	}
}

func TestConfirmationService_ConfirmPending_CheckedIn(t *testing.T) {
	ctx := context.Background()

	grant := newTestGrant("user-1", "club-1", "event-1", 100)

	grantReader := new(testhelpers.MockPendingGrantReader)
	attendance := new(testhelpers.MockAttendanceChecker)
	uow := testhelpers.NewFakeUnitOfWork()
	factory := testhelpers.NewSingleUnitOfWorkFactory(uow)

	grantReader.On("ListUnresolvedByUser", ctx, "user-1").Return([]*entities.PendingGrant{grant}, nil)
	attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInConfirmed, nil)

	uow.Grants.On("Resolve", ctx, grant.ID, entities.GrantResolutionConfirmed).Return(true, nil)
	uow.Accounts.On("Lock", ctx).Return(&entities.AccountBalance{}, nil)
	uow.Transactions.On("Append", ctx, mock.MatchedBy(func(tx *entities.CreditTransaction) bool {
		return tx.Type == entities.TransactionTypeConfirmed &&
			tx.Amount == 100 &&
			tx.EventID != nil && *tx.EventID == "event-1"
	})).Return(nil)
	uow.Accounts.On("Apply", ctx, int64(100), int64(-100)).Return(nil)

	service := NewConfirmationService(grantReader, attendance, factory, 0)
	result, err := service.ConfirmPending(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.ConfirmedCount)
	assert.Equal(t, 0, result.ForfeitedCount)
	assert.True(t, uow.Committed)

	require.Len(t, uow.Publisher.Flushed, 1)
	confirmed, ok := uow.Publisher.Flushed[0].(events.CreditsConfirmedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(100), confirmed.Amount)

	uow.Grants.AssertExpectations(t)
	uow.Accounts.AssertExpectations(t)
	uow.Transactions.AssertExpectations(t)
}

func TestConfirmationService_ConfirmPending_AbsentAfterConclusion(t *testing.T) {
	ctx := context.Background()

	grant := newTestGrant("user-1", "club-1", "event-1", 100)

	grantReader := new(testhelpers.MockPendingGrantReader)
	attendance := new(testhelpers.MockAttendanceChecker)
	uow := testhelpers.NewFakeUnitOfWork()
	factory := testhelpers.NewSingleUnitOfWorkFactory(uow)

	grantReader.On("ListUnresolvedByUser", ctx, "user-1").Return([]*entities.PendingGrant{grant}, nil)
	attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInAbsent, nil)
	attendance.On("HasEventConcluded", ctx, "event-1").Return(true, nil)

	uow.Grants.On("Resolve", ctx, grant.ID, entities.GrantResolutionForfeited).Return(true, nil)
	uow.Accounts.On("Lock", ctx).Return(&entities.AccountBalance{}, nil)
	uow.Transactions.On("Append", ctx, mock.MatchedBy(func(tx *entities.CreditTransaction) bool {
		return tx.Type == entities.TransactionTypeForfeitedPending && tx.Amount == -100
	})).Return(nil)
	uow.Accounts.On("Apply", ctx, int64(0), int64(-100)).Return(nil)

	service := NewConfirmationService(grantReader, attendance, factory, 0)
	result, err := service.ConfirmPending(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConfirmedCount)
	assert.Equal(t, 1, result.ForfeitedCount)
	assert.True(t, uow.Committed)

	require.Len(t, uow.Publisher.Flushed, 1)
	_, ok := uow.Publisher.Flushed[0].(events.CreditsForfeitedEvent)
	assert.True(t, ok)
}

func TestConfirmationService_ConfirmPending_StaysUnresolved(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(attendance *testhelpers.MockAttendanceChecker)
	}{
		{
			name: "no check-in record and event still running",
			setup: func(attendance *testhelpers.MockAttendanceChecker) {
				attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInUnknown, nil)
			},
		},
		{
			name: "absent but event has not concluded",
			setup: func(attendance *testhelpers.MockAttendanceChecker) {
				attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInAbsent, nil)
				attendance.On("HasEventConcluded", ctx, "event-1").Return(false, nil)
			},
		},
		{
			name: "attendance lookup fails",
			setup: func(attendance *testhelpers.MockAttendanceChecker) {
				attendance.On("IsCheckedIn", ctx, "user-1", "event-1").
					Return(interfaces.CheckInUnknown, errors.New("attendance service down"))
			},
		},
		{
			name: "conclusion lookup fails",
			setup: func(attendance *testhelpers.MockAttendanceChecker) {
				attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInAbsent, nil)
				attendance.On("HasEventConcluded", ctx, "event-1").Return(false, errors.New("attendance service down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant := newTestGrant("user-1", "club-1", "event-1", 100)

			grantReader := new(testhelpers.MockPendingGrantReader)
			attendance := new(testhelpers.MockAttendanceChecker)
			factory := &testhelpers.FakeUnitOfWorkFactory{
				Create: func(userID, clubID string) *testhelpers.FakeUnitOfWork {
					return testhelpers.NewFakeUnitOfWork()
				},
			}

			grantReader.On("ListUnresolvedByUser", ctx, "user-1").Return([]*entities.PendingGrant{grant}, nil)
			tt.setup(attendance)

			service := NewConfirmationService(grantReader, attendance, factory, 0)
			result, err := service.ConfirmPending(ctx, "user-1")

			require.NoError(t, err)
			assert.Equal(t, 0, result.ConfirmedCount)
			assert.Equal(t, 0, result.ForfeitedCount)
			// No resolution was attempted
			assert.Empty(t, factory.Created)
		})
	}
}

func TestConfirmationService_ConfirmPending_ExpiredGrantForfeits(t *testing.T) {
	ctx := context.Background()

	grant := newTestGrant("user-1", "club-1", "event-1", 100)
	grant.GrantedAt = time.Now().Add(-100 * time.Hour)

	grantReader := new(testhelpers.MockPendingGrantReader)
	attendance := new(testhelpers.MockAttendanceChecker)
	uow := testhelpers.NewFakeUnitOfWork()
	factory := testhelpers.NewSingleUnitOfWorkFactory(uow)

	grantReader.On("ListUnresolvedByUser", ctx, "user-1").Return([]*entities.PendingGrant{grant}, nil)
	attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInUnknown, nil)

	uow.Grants.On("Resolve", ctx, grant.ID, entities.GrantResolutionForfeited).Return(true, nil)
	uow.Accounts.On("Lock", ctx).Return(&entities.AccountBalance{}, nil)
	uow.Transactions.On("Append", ctx, mock.AnythingOfType("*entities.CreditTransaction")).Return(nil)
	uow.Accounts.On("Apply", ctx, int64(0), int64(-100)).Return(nil)

	service := NewConfirmationService(grantReader, attendance, factory, 72*time.Hour)
	result, err := service.ConfirmPending(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.ForfeitedCount)
	assert.True(t, uow.Committed)
}

func TestConfirmationService_ConfirmPending_LostResolutionRace(t *testing.T) {
	ctx := context.Background()

	grant := newTestGrant("user-1", "club-1", "event-1", 100)

	grantReader := new(testhelpers.MockPendingGrantReader)
	attendance := new(testhelpers.MockAttendanceChecker)
	uow := testhelpers.NewFakeUnitOfWork()
	factory := testhelpers.NewSingleUnitOfWorkFactory(uow)

	grantReader.On("ListUnresolvedByUser", ctx, "user-1").Return([]*entities.PendingGrant{grant}, nil)
	attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInConfirmed, nil)

	// Another confirmation pass already flipped the resolved flag
	uow.Grants.On("Resolve", ctx, grant.ID, entities.GrantResolutionConfirmed).Return(false, nil)

	service := NewConfirmationService(grantReader, attendance, factory, 0)
	result, err := service.ConfirmPending(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConfirmedCount)
	assert.Equal(t, 0, result.ForfeitedCount)
	assert.False(t, uow.Committed)
	uow.Accounts.AssertNotCalled(t, "Lock", mock.Anything)
	uow.Transactions.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestConfirmationService_ConfirmPending_GrantFailureDoesNotBlockBatch(t *testing.T) {
	ctx := context.Background()

	failing := newTestGrant("user-1", "club-1", "event-1", 100)
	healthy := newTestGrant("user-1", "club-2", "event-2", 200)

	grantReader := new(testhelpers.MockPendingGrantReader)
	attendance := new(testhelpers.MockAttendanceChecker)

	failingUow := testhelpers.NewFakeUnitOfWork()
	healthyUow := testhelpers.NewFakeUnitOfWork()
	factory := &testhelpers.FakeUnitOfWorkFactory{
		Create: func(userID, clubID string) *testhelpers.FakeUnitOfWork {
			if clubID == "club-1" {
				return failingUow
			}
			return healthyUow
		},
	}

	grantReader.On("ListUnresolvedByUser", ctx, "user-1").
		Return([]*entities.PendingGrant{failing, healthy}, nil)
	attendance.On("IsCheckedIn", ctx, "user-1", "event-1").Return(interfaces.CheckInConfirmed, nil)
	attendance.On("IsCheckedIn", ctx, "user-1", "event-2").Return(interfaces.CheckInConfirmed, nil)

	failingUow.Grants.On("Resolve", ctx, failing.ID, entities.GrantResolutionConfirmed).Return(true, nil)
	failingUow.Accounts.On("Lock", ctx).Return(&entities.AccountBalance{}, nil)
	failingUow.Transactions.On("Append", ctx, mock.AnythingOfType("*entities.CreditTransaction")).
		Return(errors.New("connection reset"))

	healthyUow.Grants.On("Resolve", ctx, healthy.ID, entities.GrantResolutionConfirmed).Return(true, nil)
	healthyUow.Accounts.On("Lock", ctx).Return(&entities.AccountBalance{}, nil)
	healthyUow.Transactions.On("Append", ctx, mock.AnythingOfType("*entities.CreditTransaction")).Return(nil)
	healthyUow.Accounts.On("Apply", ctx, int64(200), int64(-200)).Return(nil)

	service := NewConfirmationService(grantReader, attendance, factory, 0)
	result, err := service.ConfirmPending(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.ConfirmedCount)
	assert.True(t, failingUow.RolledBack)
	assert.False(t, failingUow.Committed)
	assert.True(t, healthyUow.Committed)
}

func TestConfirmationService_ConfirmPending_NoGrants(t *testing.T) {
	ctx := context.Background()

	grantReader := new(testhelpers.MockPendingGrantReader)
	attendance := new(testhelpers.MockAttendanceChecker)
	factory := &testhelpers.FakeUnitOfWorkFactory{}

	grantReader.On("ListUnresolvedByUser", ctx, "user-1").Return([]*entities.PendingGrant{}, nil)

	service := NewConfirmationService(grantReader, attendance, factory, 0)
	result, err := service.ConfirmPending(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 0, result.ConfirmedCount)
	assert.Equal(t, 0, result.ForfeitedCount)
}
