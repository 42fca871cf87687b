package waitlist

import (
	"fmt"
	"sync/atomic"

	"github.com/lingoletics/core/internal/pkg/mail"
	"github.com/lingoletics/core/internal/pkg/token"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// broadcastWorkers bounds the announcement fan-out. One slow mailbox must
// not stall the rest of the batch.
const broadcastWorkers = 4

// Mailer is the outbound email surface the lifecycle depends on. Sends are
// best-effort with no retries.
type Mailer interface {
	SendOptIn(to string, data mail.OptInData) error
	SendWelcome(to string, data mail.WelcomeData) error
	SendBroadcast(to, subject string, data mail.BroadcastData) error
}

// ConfirmOutcome describes the result of redeeming a confirmation token.
type ConfirmOutcome int

const (
	OutcomeConfirmed ConfirmOutcome = iota
	OutcomeAlreadyConfirmed
)

// Service drives the subscription lifecycle: unconfirmed -> confirmed ->
// notified. State lives entirely in the store; concurrent requests are
// reconciled by the unique email index and the conditional confirm update,
// never by in-process locking.
type Service struct {
	store  *Store
	mailer Mailer
	webURL string
	log    *zap.Logger
}

func NewService(store *Store, mailer Mailer, webURL string, log *zap.Logger) *Service {
	return &Service{store: store, mailer: mailer, webURL: webURL, log: log}
}

func (s *Service) confirmURL(tok string) string {
	return fmt.Sprintf("%s/confirm?token=%s", s.webURL, tok)
}

// Subscribe registers an email on the waitlist and sends the opt-in email.
// It reports whether a new record was created (false means an existing
// unconfirmed signup got a fresh confirmation link).
func (s *Service) Subscribe(email, name, school string) (created bool, err error) {
	existing, err := s.store.FindByEmail(email)
	if err != nil {
		return false, err
	}

	if existing != nil {
		if existing.Confirmed {
			return false, ErrAlreadySubscribed
		}
		// Re-subscribe before confirming: issue a fresh token, which
		// invalidates the previously mailed link.
		newToken := token.New()
		if err := s.store.ReplaceToken(email, newToken); err != nil {
			return false, err
		}
		if err := s.mailer.SendOptIn(email, mail.OptInData{
			Name:       existing.Name,
			ConfirmURL: s.confirmURL(newToken),
		}); err != nil {
			s.log.Warn("opt-in resend failed", zap.String("email", email), zap.Error(err))
			return false, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
		}
		return false, nil
	}

	sub, err := s.store.Create(email, name, school, token.New())
	if err != nil {
		return false, err
	}

	if err := s.mailer.SendOptIn(email, mail.OptInData{
		Name:       name,
		ConfirmURL: s.confirmURL(*sub.ConfirmationToken),
	}); err != nil {
		s.log.Warn("opt-in send failed, rolling back signup",
			zap.String("email", email), zap.Error(err))
		if delErr := s.store.Delete(sub.ID); delErr != nil {
			s.log.Error("rollback delete failed",
				zap.String("id", sub.ID), zap.Error(delErr))
		}
		return false, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	return true, nil
}

// Confirm redeems a confirmation token. Redeemed tokens are cleared, so a
// replay of the same token reports ErrInvalidToken; only the narrow race of
// two in-flight confirms yields OutcomeAlreadyConfirmed.
func (s *Service) Confirm(tok string) (ConfirmOutcome, error) {
	if tok == "" {
		return 0, ErrMissingToken
	}

	sub, err := s.store.FindByToken(tok)
	if err != nil {
		return 0, err
	}
	if sub == nil {
		return 0, ErrInvalidToken
	}
	if sub.Confirmed {
		return OutcomeAlreadyConfirmed, nil
	}

	won, err := s.store.ConfirmByToken(tok)
	if err != nil {
		return 0, err
	}
	if !won {
		// Another request redeemed the token between our read and the
		// conditional update.
		return OutcomeAlreadyConfirmed, nil
	}

	// Confirmation is the durable fact; the welcome email is best-effort.
	if err := s.mailer.SendWelcome(sub.Email, mail.WelcomeData{Name: sub.Name}); err != nil {
		s.log.Warn("welcome email failed", zap.String("email", sub.Email), zap.Error(err))
	}

	return OutcomeConfirmed, nil
}

// Broadcast sends an announcement to every confirmed, not-yet-notified
// subscriber. The fan-out is bounded but not transactional: a failed send
// leaves the row eligible for the next run, and marking happens only after
// a successful send, so a crash in between re-offers the subscriber
// (at-least-once, accepted).
func (s *Service) Broadcast(subject, message string) (sent, failed int, err error) {
	subs, err := s.store.FindPendingNotify()
	if err != nil {
		return 0, 0, err
	}
	if len(subs) == 0 {
		return 0, 0, nil
	}

	var sentN, failedN atomic.Int64
	var g errgroup.Group
	g.SetLimit(broadcastWorkers)

	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			if err := s.mailer.SendBroadcast(sub.Email, subject, mail.BroadcastData{
				Name:    sub.Name,
				Message: message,
			}); err != nil {
				s.log.Warn("broadcast send failed",
					zap.String("email", sub.Email), zap.Error(err))
				failedN.Add(1)
				return nil
			}
			if err := s.store.MarkNotified(sub.ID); err != nil {
				// Email went out but the flag did not stick; the row
				// stays eligible and may be emailed again next run.
				s.log.Error("mark notified failed",
					zap.String("id", sub.ID), zap.Error(err))
			}
			sentN.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(sentN.Load()), int(failedN.Load()), nil
}
