package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/mailguardhq/onboarding-server/internal/errors"
	"github.com/mailguardhq/onboarding-server/onboarding"
)

// DefaultPause is the delay between successive completion events.
const DefaultPause = 3 * time.Second

// Dispatcher flushes a finalized session downstream: one event per
// established connection, in establishment order, with a pause strictly
// between successive emissions (N connections, N-1 pauses). It owns the
// terminal deletion of the session once every emission succeeded.
//
// A single in-flight Finalize per session is recommended but not enforced;
// a TTL eviction racing the pacing pause is tolerated, since deleting an
// absent session is a no-op.
type Dispatcher struct {
	notifier Notifier
	sessions onboarding.Repo
	pause    time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(notifier Notifier, sessions onboarding.Repo, pause time.Duration) *Dispatcher {
	if pause <= 0 {
		pause = DefaultPause
	}
	return &Dispatcher{
		notifier: notifier,
		sessions: sessions,
		pause:    pause,
		sleep:    sleepFor,
	}
}

// Finalize merges the supplied config into the session, emits the
// completion events, and deletes the session. An emission failure is
// returned to the caller with the session left in place, so finalize can be
// retried without redoing any authorization; the dispatcher itself never
// retries. Events are built from the post-merge snapshot, so a sweep racing
// the pacing pauses cannot change what gets emitted.
func (d *Dispatcher) Finalize(ctx context.Context, mailboxID string, cfg onboarding.Config) error {
	session, ok := d.sessions.MergeConfig(mailboxID, cfg)
	if !ok {
		return apperrors.ErrSessionExpired
	}

	if len(session.Connections) == 0 {
		// Degenerate but reachable: finalize without a single completed
		// authorization still tells downstream about the configuration.
		event := d.baseEvent(session)
		event.Event = "onboarding_config_update"
		event.ConnectedEmails = strings.Join(session.LinkedAddresses, ", ")

		if err := d.notifier.Notify(ctx, event); err != nil {
			return fmt.Errorf("config update event: %w", err)
		}

		d.sessions.Delete(session.MailboxID)
		return nil
	}

	for i, conn := range session.Connections {
		if i > 0 {
			if err := d.sleep(ctx, d.pause); err != nil {
				return err
			}
		}

		event := d.baseEvent(session)
		event.Event = fmt.Sprintf("onboarding_and_%s_connected", conn.Provider)
		event.Provider = conn.Provider
		event.MonitoredAddress = conn.AuthedEmail
		event.AuthedEmail = conn.AuthedEmail
		event.Tokens = conn.Tokens

		if err := d.notifier.Notify(ctx, event); err != nil {
			return fmt.Errorf("connection event for %s: %w", conn.AuthedEmail, err)
		}

		log.Info().
			Str("org_id", session.OrgID).
			Str("provider", conn.Provider).
			Str("authed_email", conn.AuthedEmail).
			Msg("Dispatched connection event")
	}

	d.sessions.Delete(session.MailboxID)
	return nil
}

func (d *Dispatcher) baseEvent(session onboarding.Session) Event {
	cfg := session.Config
	return Event{
		OrgID:        session.OrgID,
		MailboxID:    session.MailboxID,
		CompanyName:  session.Profile.CompanyName,
		ContactEmail: session.Profile.ContactEmail,
		BusinessType: session.Profile.BusinessType,
		Timezone:     session.Profile.Timezone,

		SignalsSelected:  strings.Join(cfg.SignalsSelected, ", "),
		AlertChannels:    strings.Join(cfg.AlertChannels, ", "),
		WhatsAppNumbers:  strings.Join(cfg.WhatsAppNumbers, ", "),
		WhatsAppConsent:  cfg.WhatsAppConsent,
		SlackWebhookURLs: strings.Join(cfg.SlackWebhookURLs, ", "),
		Routing: RoutingSummary{
			High:   strings.Join(cfg.Routing.High, ", "),
			Medium: strings.Join(cfg.Routing.Medium, ", "),
			Low:    cfg.Routing.Low,
		},
		Digest: cfg.Digest,
	}
}

func sleepFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
