package repository

import (
	"context"
	"fmt"

	"rallyledger/application"
	"rallyledger/database"
	"rallyledger/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface over a pgx
// transaction, with all repositories scoped to one (user, club) account
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	userID                 string
	clubID                 string
	transactionalPublisher interfaces.TransactionalEventPublisher
	accountRepo            interfaces.AccountRepository
	transactionRepo        interfaces.CreditTransactionRepository
	pendingGrantRepo       interfaces.PendingGrantRepository
	redemptionRepo         interfaces.RedemptionRepository
	catalogRepo            interfaces.CatalogRepository
}

type unitOfWorkFactory struct {
	db           *database.DB
	newPublisher func() interfaces.TransactionalEventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. newPublisher is
// invoked once per unit of work so buffered events never leak across
// transactions.
func NewUnitOfWorkFactory(db *database.DB, newPublisher func() interfaces.TransactionalEventPublisher) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db, newPublisher: newPublisher}
}

// CreateForAccount creates a new UnitOfWork scoped to a (user, club) account
func (f *unitOfWorkFactory) CreateForAccount(userID, clubID string) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		userID:                 userID,
		clubID:                 clubID,
		transactionalPublisher: f.newPublisher(),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return storageError("failed to begin transaction", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create account-scoped repositories with the transaction
	u.accountRepo = NewAccountRepositoryScoped(tx, u.userID, u.clubID)
	u.transactionRepo = NewCreditTransactionRepositoryScoped(tx, u.userID, u.clubID)
	u.pendingGrantRepo = NewPendingGrantRepositoryScoped(tx, u.userID, u.clubID)
	u.redemptionRepo = NewRedemptionRepositoryScoped(tx, u.userID, u.clubID)
	u.catalogRepo = NewCatalogRepositoryWithTx(tx) // Catalog reads don't need account scoping

	return nil
}

// Commit commits the transaction and flushes buffered events afterwards.
// Event delivery is best-effort once the ledger has committed.
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return storageError("failed to commit transaction", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		_ = u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards buffered events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() interfaces.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// CreditTransactionRepository returns the transaction log repository for
// this unit of work
func (u *unitOfWork) CreditTransactionRepository() interfaces.CreditTransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

// PendingGrantRepository returns the pending grant repository for this
// unit of work
func (u *unitOfWork) PendingGrantRepository() interfaces.PendingGrantRepository {
	if u.pendingGrantRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pendingGrantRepo
}

// RedemptionRepository returns the redemption repository for this unit of
// work
func (u *unitOfWork) RedemptionRepository() interfaces.RedemptionRepository {
	if u.redemptionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.redemptionRepo
}

// CatalogRepository returns the catalog repository for this unit of work
func (u *unitOfWork) CatalogRepository() interfaces.CatalogRepository {
	if u.catalogRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.catalogRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("transactional publisher not configured")
	}
	return u.transactionalPublisher
}
