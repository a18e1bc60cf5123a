package onboarding

import (
	"time"

	"golang.org/x/oauth2"
)

// Profile holds the company details captured when onboarding starts.
// Immutable after session creation.
type Profile struct {
	CompanyName      string
	ContactEmail     string
	BusinessType     string
	Timezone         string
	ComplianceAccept bool
}

// Connection is the result of one completed provider authorization. The
// authed email is the provider's answer and may differ from the address the
// user originally typed.
type Connection struct {
	Provider    string
	AuthedEmail string
	Tokens      *oauth2.Token
}

// Routing maps risk tiers to alert channels.
type Routing struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Low    string   `json:"low"`
}

// Digest configures the daily summary email.
type Digest struct {
	Enabled    bool   `json:"enabled"`
	Recipients string `json:"recipients"`
	Time       string `json:"time"`
}

// Config holds the alerting, routing and digest settings merged into the
// session at finalize. The merge is an idempotent overwrite.
type Config struct {
	SignalsSelected  []string `json:"default_signals_selected"`
	AlertChannels    []string `json:"alert_channels"`
	WhatsAppNumbers  []string `json:"whatsapp_numbers"`
	WhatsAppConsent  bool     `json:"whatsapp_consent"`
	SlackWebhookURLs []string `json:"slack_webhook_urls"`
	Routing          Routing  `json:"routing"`
	Digest           Digest   `json:"digest"`
}

// Session tracks one organisation's in-progress mailbox onboarding. The repo
// owns the canonical record: sessions cross its boundary by value, so a
// handler always works on an isolated snapshot and every mutation goes
// through a repo method executed under the repo's lock.
type Session struct {
	OrgID     string
	MailboxID string
	Profile   Profile

	// MonitoredAddresses is the cleaned address list as submitted.
	MonitoredAddresses []string
	// PendingAddresses is the FIFO queue of addresses still awaiting
	// authorization. It only ever shrinks, one pop per successful callback.
	PendingAddresses []string
	// LinkedAddresses are the provider-reported addresses that were
	// actually authorized.
	LinkedAddresses []string
	// Connections are the completed authorizations, append-only, in the
	// order they were established.
	Connections []Connection

	// Config is nil until finalize merges the user's alerting settings.
	Config *Config

	CreatedAt time.Time
}

// AllLinked reports whether every pending address has been authorized.
func (s Session) AllLinked() bool {
	return len(s.PendingAddresses) == 0
}

// NextPending returns the address at the front of the queue.
func (s Session) NextPending() (string, bool) {
	if len(s.PendingAddresses) == 0 {
		return "", false
	}
	return s.PendingAddresses[0], true
}

// popPending removes the front of the queue. The pop is count-based: the
// repo pops once per successful callback regardless of which mailbox the
// provider actually authenticated. Caller holds the repo lock.
func (s *Session) popPending() {
	if len(s.PendingAddresses) > 0 {
		s.PendingAddresses = s.PendingAddresses[1:]
	}
}

// addConnection records a completed authorization and marks the
// provider-reported address as linked. Caller holds the repo lock.
func (s *Session) addConnection(conn Connection) {
	s.Connections = append(s.Connections, conn)
	s.LinkedAddresses = append(s.LinkedAddresses, conn.AuthedEmail)
}

// snapshot copies the session so the caller can keep reading it after the
// repo lock is released. Slice contents are copied; token pointers are
// shared because tokens are never mutated after the callback stores them.
func (s *Session) snapshot() Session {
	out := *s
	out.MonitoredAddresses = append([]string(nil), s.MonitoredAddresses...)
	out.PendingAddresses = append([]string(nil), s.PendingAddresses...)
	out.LinkedAddresses = append([]string(nil), s.LinkedAddresses...)
	out.Connections = append([]Connection(nil), s.Connections...)
	if s.Config != nil {
		cfg := *s.Config
		out.Config = &cfg
	}
	return out
}
