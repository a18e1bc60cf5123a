package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	apperrors "github.com/mailguardhq/onboarding-server/internal/errors"
	"github.com/mailguardhq/onboarding-server/onboarding"
)

type fakeNotifier struct {
	events []Event
	failAt int // 1-based index of the emission that fails; 0 = never
}

func (f *fakeNotifier) Notify(ctx context.Context, event Event) error {
	if f.failAt > 0 && len(f.events)+1 == f.failAt {
		return errors.New("downstream unavailable")
	}
	f.events = append(f.events, event)
	return nil
}

type dispatcherFixture struct {
	repo     *onboarding.InMemoryRepo
	notifier *fakeNotifier
	d        *Dispatcher
	session  onboarding.Session
	sleeps   []time.Duration
}

func setupDispatcher(t *testing.T, addresses []string, failAt int) *dispatcherFixture {
	t.Helper()

	repo := onboarding.NewInMemoryRepo(24*time.Hour, time.Hour)
	t.Cleanup(repo.Close)

	session, err := repo.Create(onboarding.Profile{
		CompanyName:      "Acme Ltd",
		ContactEmail:     "owner@acme.test",
		BusinessType:     "retail",
		Timezone:         "UTC",
		ComplianceAccept: true,
	}, addresses)
	require.NoError(t, err)

	f := &dispatcherFixture{
		repo:     repo,
		notifier: &fakeNotifier{failAt: failAt},
		session:  session,
	}
	f.d = NewDispatcher(f.notifier, repo, 30*time.Millisecond)
	f.d.sleep = func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	}
	return f
}

func (f *dispatcherFixture) authorize(t *testing.T, provider, email string) {
	t.Helper()

	session, ok := f.repo.PopAndRecord(f.session.MailboxID, &onboarding.Connection{
		Provider:    provider,
		AuthedEmail: email,
		Tokens:      &oauth2.Token{AccessToken: "token-" + email},
	})
	require.True(t, ok)
	f.session = session
}

func testConfig() onboarding.Config {
	return onboarding.Config{
		SignalsSelected:  []string{"refund_request", "vip_customer"},
		AlertChannels:    []string{"whatsapp", "slack"},
		WhatsAppNumbers:  []string{"+15550001111"},
		WhatsAppConsent:  true,
		SlackWebhookURLs: []string{"https://hooks.slack.test/T1"},
		Routing: onboarding.Routing{
			High:   []string{"whatsapp"},
			Medium: []string{"slack", "digest"},
			Low:    "digest",
		},
		Digest: onboarding.Digest{Enabled: true, Recipients: "owner@acme.test", Time: "15:00"},
	}
}

func TestFinalizePacesEventsBetweenEmissions(t *testing.T) {
	f := setupDispatcher(t, []string{"a@gmail.com", "b@outlook.com", "c@example.org"}, 0)
	f.authorize(t, "google", "a@gmail.com")
	f.authorize(t, "microsoft", "b@outlook.com")
	f.authorize(t, "google", "c-authed@gmail.com")

	err := f.d.Finalize(context.Background(), f.session.MailboxID, testConfig())
	require.NoError(t, err)

	// Three connections, three events, exactly two inter-event pauses.
	require.Len(t, f.notifier.events, 3)
	require.Equal(t, []time.Duration{30 * time.Millisecond, 30 * time.Millisecond}, f.sleeps)

	// Events fire in connection-establishment order.
	require.Equal(t, "onboarding_and_google_connected", f.notifier.events[0].Event)
	require.Equal(t, "onboarding_and_microsoft_connected", f.notifier.events[1].Event)
	require.Equal(t, "onboarding_and_google_connected", f.notifier.events[2].Event)
	require.Equal(t, "a@gmail.com", f.notifier.events[0].AuthedEmail)
	require.Equal(t, "b@outlook.com", f.notifier.events[1].AuthedEmail)
	require.Equal(t, "c-authed@gmail.com", f.notifier.events[2].AuthedEmail)

	// Each event carries its own connection's token material.
	require.Equal(t, "token-b@outlook.com", f.notifier.events[1].Tokens.AccessToken)
	require.Equal(t, f.notifier.events[1].AuthedEmail, f.notifier.events[1].MonitoredAddress)

	// Shared config fields are flattened for the hook.
	require.Equal(t, "refund_request, vip_customer", f.notifier.events[0].SignalsSelected)
	require.Equal(t, "whatsapp, slack", f.notifier.events[0].AlertChannels)
	require.Equal(t, "slack, digest", f.notifier.events[0].Routing.Medium)
	require.Equal(t, "digest", f.notifier.events[0].Routing.Low)

	// Finalize is terminal on success.
	_, ok := f.repo.Get(f.session.MailboxID)
	require.False(t, ok)
}

func TestFinalizeWithoutConnectionsEmitsFallback(t *testing.T) {
	f := setupDispatcher(t, []string{"a@gmail.com"}, 0)

	err := f.d.Finalize(context.Background(), f.session.MailboxID, testConfig())
	require.NoError(t, err)

	require.Len(t, f.notifier.events, 1)
	require.Empty(t, f.sleeps)

	event := f.notifier.events[0]
	require.Equal(t, "onboarding_config_update", event.Event)
	require.Empty(t, event.Provider)
	require.Nil(t, event.Tokens)
	require.Empty(t, event.AuthedEmail)

	_, ok := f.repo.Get(f.session.MailboxID)
	require.False(t, ok)
}

func TestFinalizeFailureRetainsSession(t *testing.T) {
	f := setupDispatcher(t, []string{"a@gmail.com", "b@outlook.com"}, 2)
	f.authorize(t, "google", "a@gmail.com")
	f.authorize(t, "microsoft", "b@outlook.com")

	err := f.d.Finalize(context.Background(), f.session.MailboxID, testConfig())
	require.Error(t, err)

	// First event went out, second failed; session survives for a retry.
	require.Len(t, f.notifier.events, 1)
	retained, ok := f.repo.Get(f.session.MailboxID)
	require.True(t, ok)

	// The merge itself already happened and is an idempotent overwrite.
	require.NotNil(t, retained.Config)

	// A retry after downstream recovery delivers everything and cleans up.
	f.notifier.failAt = 0
	f.notifier.events = nil
	require.NoError(t, f.d.Finalize(context.Background(), f.session.MailboxID, testConfig()))
	require.Len(t, f.notifier.events, 2)
	_, ok = f.repo.Get(f.session.MailboxID)
	require.False(t, ok)
}

func TestFinalizeOnMissingSession(t *testing.T) {
	f := setupDispatcher(t, []string{"a@gmail.com"}, 0)
	f.repo.Delete(f.session.MailboxID)

	err := f.d.Finalize(context.Background(), f.session.MailboxID, testConfig())
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Empty(t, f.notifier.events)
}

func TestFinalizeHonorsContextDuringPause(t *testing.T) {
	f := setupDispatcher(t, []string{"a@gmail.com", "b@outlook.com"}, 0)
	f.authorize(t, "google", "a@gmail.com")
	f.authorize(t, "microsoft", "b@outlook.com")

	f.d.sleep = sleepFor // real pacing
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.d.Finalize(ctx, f.session.MailboxID, testConfig())
	require.ErrorIs(t, err, context.Canceled)

	// Only the first event was emitted; the session is retained.
	require.Len(t, f.notifier.events, 1)
	_, ok := f.repo.Get(f.session.MailboxID)
	require.True(t, ok)
}
