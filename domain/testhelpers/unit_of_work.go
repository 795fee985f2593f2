package testhelpers

import (
	"context"

	"rallyledger/application"
	"rallyledger/domain/events"
	"rallyledger/domain/interfaces"
)

// CapturingEventPublisher records every event handed to it so tests can
// assert on what a service published and when it was flushed.
type CapturingEventPublisher struct {
	Published []events.Event
	Flushed   []events.Event
	Discarded bool
}

func (p *CapturingEventPublisher) Publish(event events.Event) error {
	p.Published = append(p.Published, event)
	return nil
}

func (p *CapturingEventPublisher) Flush(ctx context.Context) error {
	p.Flushed = append(p.Flushed, p.Published...)
	p.Published = nil
	return nil
}

func (p *CapturingEventPublisher) Discard() {
	p.Discarded = true
	p.Published = nil
}

// FakeUnitOfWork wires the repository mocks behind the UnitOfWork
// interface and tracks transaction lifecycle calls.
type FakeUnitOfWork struct {
	Accounts     *MockAccountRepository
	Transactions *MockCreditTransactionRepository
	Grants       *MockPendingGrantRepository
	Redemptions  *MockRedemptionRepository
	Catalog      *MockCatalogRepository
	Publisher    *CapturingEventPublisher

	BeginErr  error
	CommitErr error

	Begun      bool
	Committed  bool
	RolledBack bool
}

// NewFakeUnitOfWork returns a FakeUnitOfWork with fresh mocks for every
// repository.
func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		Accounts:     &MockAccountRepository{},
		Transactions: &MockCreditTransactionRepository{},
		Grants:       &MockPendingGrantRepository{},
		Redemptions:  &MockRedemptionRepository{},
		Catalog:      &MockCatalogRepository{},
		Publisher:    &CapturingEventPublisher{},
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) error {
	if u.BeginErr != nil {
		return u.BeginErr
	}
	u.Begun = true
	return nil
}

func (u *FakeUnitOfWork) Commit() error {
	if u.CommitErr != nil {
		return u.CommitErr
	}
	u.Committed = true
	u.Publisher.Flush(context.Background())
	return nil
}

func (u *FakeUnitOfWork) Rollback() error {
	if u.Committed {
		return nil
	}
	u.RolledBack = true
	u.Publisher.Discard()
	return nil
}

func (u *FakeUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return u.Accounts
}

func (u *FakeUnitOfWork) CreditTransactionRepository() interfaces.CreditTransactionRepository {
	return u.Transactions
}

func (u *FakeUnitOfWork) PendingGrantRepository() interfaces.PendingGrantRepository {
	return u.Grants
}

func (u *FakeUnitOfWork) RedemptionRepository() interfaces.RedemptionRepository {
	return u.Redemptions
}

func (u *FakeUnitOfWork) CatalogRepository() interfaces.CatalogRepository {
	return u.Catalog
}

func (u *FakeUnitOfWork) EventBus() interfaces.EventPublisher {
	return u.Publisher
}

// FakeUnitOfWorkFactory hands out units of work for the accounts a
// service touches. Create is called once per CreateForAccount call.
type FakeUnitOfWorkFactory struct {
	Create func(userID, clubID string) *FakeUnitOfWork

	// Created records every unit of work handed out, in order.
	Created []*FakeUnitOfWork
}

// NewSingleUnitOfWorkFactory returns a factory that always hands out
// the given unit of work, for tests that touch one account.
func NewSingleUnitOfWorkFactory(uow *FakeUnitOfWork) *FakeUnitOfWorkFactory {
	return &FakeUnitOfWorkFactory{
		Create: func(userID, clubID string) *FakeUnitOfWork { return uow },
	}
}

func (f *FakeUnitOfWorkFactory) CreateForAccount(userID, clubID string) application.UnitOfWork {
	uow := f.Create(userID, clubID)
	f.Created = append(f.Created, uow)
	return uow
}
