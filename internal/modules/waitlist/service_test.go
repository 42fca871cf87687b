package waitlist

import (
	"errors"
	"sync"
	"testing"

	"github.com/lingoletics/core/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	mu sync.Mutex

	optIn     []mail.OptInData
	welcome   []string
	broadcast []string

	failOptIn       bool
	failWelcome     bool
	failBroadcastTo map[string]bool
}

func (f *fakeMailer) SendOptIn(to string, data mail.OptInData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOptIn {
		return errors.New("smtp down")
	}
	f.optIn = append(f.optIn, data)
	return nil
}

func (f *fakeMailer) SendWelcome(to string, data mail.WelcomeData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWelcome {
		return errors.New("smtp down")
	}
	f.welcome = append(f.welcome, to)
	return nil
}

func (f *fakeMailer) SendBroadcast(to, subject string, data mail.BroadcastData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBroadcastTo[to] {
		return errors.New("mailbox unavailable")
	}
	f.broadcast = append(f.broadcast, to)
	return nil
}

func newTestService(t *testing.T) (*Service, *Store, *fakeMailer) {
	t.Helper()
	store := newTestStore(t)
	mailer := &fakeMailer{failBroadcastTo: map[string]bool{}}
	svc := NewService(store, mailer, "http://localhost:3000", zap.NewNop())
	return svc, store, mailer
}

func currentToken(t *testing.T, store *Store, email string) string {
	t.Helper()
	sub, err := store.FindByEmail(email)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.NotNil(t, sub.ConfirmationToken)
	return *sub.ConfirmationToken
}

func TestSubscribeCreatesUnconfirmedAndSendsOptIn(t *testing.T) {
	svc, store, mailer := newTestService(t)

	created, err := svc.Subscribe("a@x.com", "Ann", "School")
	require.NoError(t, err)
	assert.True(t, created)

	sub, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.False(t, sub.Confirmed)
	assert.False(t, sub.Notified)
	require.NotNil(t, sub.ConfirmationToken)

	require.Len(t, mailer.optIn, 1)
	assert.Contains(t, mailer.optIn[0].ConfirmURL, "/confirm?token="+*sub.ConfirmationToken)
}

func TestSubscribeConfirmedEmailRejected(t *testing.T) {
	svc, store, mailer := newTestService(t)

	_, err := svc.Subscribe("a@x.com", "Ann", "")
	require.NoError(t, err)
	_, err = svc.Confirm(currentToken(t, store, "a@x.com"))
	require.NoError(t, err)

	sends := len(mailer.optIn)
	_, err = svc.Subscribe("a@x.com", "Ann", "")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
	assert.Len(t, mailer.optIn, sends, "no email for a rejected subscribe")
}

func TestResubscribeInvalidatesPriorToken(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, err := svc.Subscribe("b@x.com", "Ben", "")
	require.NoError(t, err)
	t1 := currentToken(t, store, "b@x.com")

	created, err := svc.Subscribe("b@x.com", "Ben", "")
	require.NoError(t, err)
	assert.False(t, created)
	t2 := currentToken(t, store, "b@x.com")
	require.NotEqual(t, t1, t2)

	_, err = svc.Confirm(t1)
	assert.ErrorIs(t, err, ErrInvalidToken)

	outcome, err := svc.Confirm(t2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome)
}

func TestSubscribeOptInFailureRollsBack(t *testing.T) {
	svc, store, mailer := newTestService(t)
	mailer.failOptIn = true

	_, err := svc.Subscribe("a@x.com", "Ann", "")
	assert.ErrorIs(t, err, ErrEmailDelivery)

	sub, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.Nil(t, sub, "failed signup must not leave an orphaned record")

	// and the visitor can simply retry
	mailer.failOptIn = false
	created, err := svc.Subscribe("a@x.com", "Ann", "")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestResendFailureKeepsRecord(t *testing.T) {
	svc, store, mailer := newTestService(t)

	_, err := svc.Subscribe("a@x.com", "Ann", "")
	require.NoError(t, err)

	mailer.failOptIn = true
	_, err = svc.Subscribe("a@x.com", "Ann", "")
	assert.ErrorIs(t, err, ErrEmailDelivery)

	sub, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, sub, "pre-existing record survives a resend failure")
}

func TestConfirmMissingAndInvalidToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Confirm("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.Confirm("deadbeef")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmSendsWelcomeAndClearsToken(t *testing.T) {
	svc, store, mailer := newTestService(t)

	_, err := svc.Subscribe("a@x.com", "Ann", "")
	require.NoError(t, err)
	tok := currentToken(t, store, "a@x.com")

	outcome, err := svc.Confirm(tok)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome)
	assert.Equal(t, []string{"a@x.com"}, mailer.welcome)

	sub, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.True(t, sub.Confirmed)
	assert.NotNil(t, sub.ConfirmedAt)
	assert.Nil(t, sub.ConfirmationToken)

	// replaying the cleared token is an invalid-token case, not a second transition
	_, err = svc.Confirm(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfirmWelcomeFailureIsSwallowed(t *testing.T) {
	svc, store, mailer := newTestService(t)
	mailer.failWelcome = true

	_, err := svc.Subscribe("a@x.com", "Ann", "")
	require.NoError(t, err)

	outcome, err := svc.Confirm(currentToken(t, store, "a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome)

	sub, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.True(t, sub.Confirmed, "confirmation is the durable fact")
}

func TestBroadcastLifecycle(t *testing.T) {
	svc, store, mailer := newTestService(t)

	_, err := svc.Subscribe("a@x.com", "Ann", "School")
	require.NoError(t, err)
	_, err = svc.Confirm(currentToken(t, store, "a@x.com"))
	require.NoError(t, err)

	sent, failed, err := svc.Broadcast("Live!", "Hi")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []string{"a@x.com"}, mailer.broadcast)

	sub, err := store.FindByEmail("a@x.com")
	require.NoError(t, err)
	assert.True(t, sub.Notified)

	// nothing eligible on the second run
	sent, failed, err = svc.Broadcast("Live!", "Hi")
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, failed)
}

func TestBroadcastEmptySet(t *testing.T) {
	svc, _, _ := newTestService(t)

	sent, failed, err := svc.Broadcast("Live!", "Hi")
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
}

func TestBroadcastSkipsUnconfirmed(t *testing.T) {
	svc, _, mailer := newTestService(t)

	_, err := svc.Subscribe("u@x.com", "U", "")
	require.NoError(t, err)

	sent, failed, err := svc.Broadcast("Live!", "Hi")
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	assert.Empty(t, mailer.broadcast)
}

func TestBroadcastPartialFailureLeavesFailedEligible(t *testing.T) {
	svc, store, mailer := newTestService(t)

	for _, email := range []string{"ok@x.com", "bad@x.com"} {
		_, err := svc.Subscribe(email, "Sub", "")
		require.NoError(t, err)
		_, err = svc.Confirm(currentToken(t, store, email))
		require.NoError(t, err)
	}
	mailer.failBroadcastTo["bad@x.com"] = true

	sent, failed, err := svc.Broadcast("Live!", "Hi")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)

	pending, err := store.FindPendingNotify()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bad@x.com", pending[0].Email)

	// the retry targets exactly the failed subset
	mailer.failBroadcastTo["bad@x.com"] = false
	sent, failed, err = svc.Broadcast("Live!", "Hi")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, failed)

	pending, err = store.FindPendingNotify()
	require.NoError(t, err)
	assert.Empty(t, pending)
}
