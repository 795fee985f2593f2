package application

import (
	"context"

	"rallyledger/domain/interfaces"
)

// UnitOfWork defines the transactional boundary for ledger mutations. A
// unit of work is scoped to a single (user, club) account; operations on
// different accounts never share a transaction or a lock.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes buffered events
	Commit() error

	// Rollback rolls back the transaction and discards buffered events
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	CreditTransactionRepository() interfaces.CreditTransactionRepository
	PendingGrantRepository() interfaces.PendingGrantRepository
	RedemptionRepository() interfaces.RedemptionRepository
	CatalogRepository() interfaces.CatalogRepository

	// EventBus returns the transactional event publisher
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory creates UnitOfWork instances scoped to an account
type UnitOfWorkFactory interface {
	CreateForAccount(userID, clubID string) UnitOfWork
}
