package repository_test

import (
	"context"
	"testing"

	"rallyledger/domain/entities"
	. "rallyledger/repository"
	"rallyledger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetUnknownAccount(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	balance, err := NewAccountRepository(testDB.DB, "nobody", "nowhere").Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, balance)
}

func TestAccountRepository_LockCreatesRow(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uow := testutil.NewTestUnitOfWorkFactory(testDB.DB).CreateForAccount("user-1", "club-1")
	require.NoError(t, uow.Begin(ctx))

	balance, err := uow.AccountRepository().Lock(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", balance.UserID)
	assert.Equal(t, "club-1", balance.ClubID)
	assert.Equal(t, int64(0), balance.Available)
	assert.Equal(t, int64(0), balance.Pending)
	require.NoError(t, uow.Commit())

	// The row persists after commit
	persisted, err := NewAccountRepository(testDB.DB, "user-1", "club-1").Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted)
}

func TestAccountRepository_Apply(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uow := testutil.NewTestUnitOfWorkFactory(testDB.DB).CreateForAccount("user-1", "club-1")
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.AccountRepository().Lock(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.AccountRepository().Apply(ctx, 0, 300))
	require.NoError(t, uow.AccountRepository().Apply(ctx, 300, -300))
	require.NoError(t, uow.Commit())

	balance, err := NewAccountRepository(testDB.DB, "user-1", "club-1").Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, int64(300), balance.Available)
	assert.Equal(t, int64(0), balance.Pending)
}

func TestAccountRepository_ApplyWithoutLockFails(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uow := testutil.NewTestUnitOfWorkFactory(testDB.DB).CreateForAccount("user-1", "club-1")
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	// No Lock, so no projection row exists to update
	err := uow.AccountRepository().Apply(ctx, 100, 0)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestAccountRepository_CheckConstraintBlocksNegativeProjection(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	uow := testutil.NewTestUnitOfWorkFactory(testDB.DB).CreateForAccount("user-1", "club-1")
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	_, err := uow.AccountRepository().Lock(ctx)
	require.NoError(t, err)

	// The table CHECK is the backstop behind the service-level floor
	err = uow.AccountRepository().Apply(ctx, -1, 0)
	assert.Error(t, err)
}
