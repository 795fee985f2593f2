package services

import (
	"context"
	"fmt"
	"time"

	"rallyledger/application"
	"rallyledger/domain/entities"
	"rallyledger/domain/events"
	"rallyledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type confirmationService struct {
	grantReader interfaces.PendingGrantReader
	attendance  interfaces.AttendanceChecker
	uowFactory  application.UnitOfWorkFactory
	grantTTL    time.Duration
	now         func() time.Time
}

// NewConfirmationService creates a new confirmation service. grantTTL is
// the external expiry policy: unresolved grants older than the TTL are
// forfeited even without an attendance verdict; zero disables it.
func NewConfirmationService(
	grantReader interfaces.PendingGrantReader,
	attendance interfaces.AttendanceChecker,
	uowFactory application.UnitOfWorkFactory,
	grantTTL time.Duration,
) interfaces.ConfirmationService {
	return &confirmationService{
		grantReader: grantReader,
		attendance:  attendance,
		uowFactory:  uowFactory,
		grantTTL:    grantTTL,
		now:         time.Now,
	}
}

// ConfirmPending resolves all of a user's outstanding grants that have an
// attendance verdict. Grants without a verdict stay unresolved for the
// next pass; per-grant failures are logged and skipped so one bad grant
// never blocks the batch.
func (s *confirmationService) ConfirmPending(ctx context.Context, userID string) (*interfaces.ConfirmationResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user is required: %w", entities.ErrInvalidArgument)
	}

	grants, err := s.grantReader.ListUnresolvedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unresolved grants: %w", err)
	}

	result := &interfaces.ConfirmationResult{}
	for _, grant := range grants {
		confirm, resolvable := s.decide(ctx, userID, grant)
		if !resolvable {
			continue
		}

		resolved, err := s.resolveGrant(ctx, grant, confirm)
		if err != nil {
			// Leave this grant for the next invocation; the resolved
			// flag guarantees at most one effect whenever it succeeds
			log.WithError(err).WithFields(log.Fields{
				"userID":  userID,
				"eventID": grant.EventID,
			}).Warn("Failed to resolve grant, will retry")
			continue
		}
		if !resolved {
			// Another device's confirmation pass won the race
			continue
		}

		if confirm {
			result.ConfirmedCount++
		} else {
			result.ForfeitedCount++
		}
	}

	return result, nil
}

// decide queries the attendance collaborator and returns whether the grant
// should be confirmed, and whether it is resolvable at all right now. All
// external I/O happens here, before any lock is taken.
func (s *confirmationService) decide(ctx context.Context, userID string, grant *entities.PendingGrant) (confirm bool, resolvable bool) {
	status, err := s.attendance.IsCheckedIn(ctx, userID, grant.EventID)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userID":  userID,
			"eventID": grant.EventID,
		}).Warn("Attendance lookup failed, leaving grant unresolved")
		return false, false
	}

	switch status {
	case interfaces.CheckInConfirmed:
		return true, true

	case interfaces.CheckInAbsent:
		concluded, err := s.attendance.HasEventConcluded(ctx, grant.EventID)
		if err != nil {
			log.WithError(err).WithField("eventID", grant.EventID).
				Warn("Event conclusion lookup failed, leaving grant unresolved")
			return false, false
		}
		if concluded || grant.IsExpired(s.now(), s.grantTTL) {
			return false, true
		}
		return false, false

	default: // no record yet, or event still running
		if grant.IsExpired(s.now(), s.grantTTL) {
			return false, true
		}
		return false, false
	}
}

// resolveGrant converts a grant into a confirmed or forfeited_pending
// transaction. The conditional resolve and the append commit together;
// returns false without error when another caller resolved the grant
// first.
func (s *confirmationService) resolveGrant(ctx context.Context, grant *entities.PendingGrant, confirm bool) (bool, error) {
	uow := s.uowFactory.CreateForAccount(grant.UserID, grant.ClubID)
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin resolution: %w", err)
	}
	defer uow.Rollback()

	resolution := entities.GrantResolutionForfeited
	if confirm {
		resolution = entities.GrantResolutionConfirmed
	}

	won, err := uow.PendingGrantRepository().Resolve(ctx, grant.ID, resolution)
	if err != nil {
		return false, fmt.Errorf("failed to resolve grant: %w", err)
	}
	if !won {
		return false, nil
	}

	if _, err := uow.AccountRepository().Lock(ctx); err != nil {
		return false, fmt.Errorf("failed to lock account: %w", err)
	}

	var tx *entities.CreditTransaction
	if confirm {
		tx = &entities.CreditTransaction{
			Type:        entities.TransactionTypeConfirmed,
			Amount:      grant.Amount,
			EventID:     &grant.EventID,
			Description: fmt.Sprintf("Credits confirmed for event %s", grant.EventID),
		}
	} else {
		tx = &entities.CreditTransaction{
			Type:        entities.TransactionTypeForfeitedPending,
			Amount:      -grant.Amount,
			EventID:     &grant.EventID,
			Description: fmt.Sprintf("Pending credits forfeited for event %s", grant.EventID),
		}
	}
	if err := uow.CreditTransactionRepository().Append(ctx, tx); err != nil {
		return false, fmt.Errorf("failed to append resolution transaction: %w", err)
	}

	if confirm {
		err = uow.AccountRepository().Apply(ctx, grant.Amount, -grant.Amount)
	} else {
		err = uow.AccountRepository().Apply(ctx, 0, -grant.Amount)
	}
	if err != nil {
		return false, fmt.Errorf("failed to update projection: %w", err)
	}

	if confirm {
		err = uow.EventBus().Publish(events.CreditsConfirmedEvent{
			UserID:  grant.UserID,
			ClubID:  grant.ClubID,
			EventID: grant.EventID,
			Amount:  grant.Amount,
		})
	} else {
		err = uow.EventBus().Publish(events.CreditsForfeitedEvent{
			UserID:  grant.UserID,
			ClubID:  grant.ClubID,
			EventID: grant.EventID,
			Amount:  grant.Amount,
		})
	}
	if err != nil {
		log.WithError(err).Warn("Failed to buffer resolution event")
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit resolution: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":     grant.UserID,
		"clubID":     grant.ClubID,
		"eventID":    grant.EventID,
		"amount":     grant.Amount,
		"resolution": resolution,
	}).Info("Resolved pending grant")

	return true, nil
}
