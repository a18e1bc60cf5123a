package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/mailguardhq/onboarding-server/internal/errors"
	"github.com/mailguardhq/onboarding-server/onboarding"
)

// Notifier delivers one completion event to the downstream automation hook.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Event is the payload posted downstream. List-valued settings are joined
// into comma-separated strings and the routing table is flattened, matching
// what the automation hook expects. Per-connection fields (provider, authed
// email, tokens) are empty on the fallback configuration-update event.
type Event struct {
	Event        string `json:"event"`
	Provider     string `json:"provider,omitempty"`
	OrgID        string `json:"org_id"`
	MailboxID    string `json:"mailbox_id"`
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
	BusinessType string `json:"business_type"`
	Timezone     string `json:"timezone"`

	MonitoredAddress string `json:"monitored_address,omitempty"`
	ConnectedEmails  string `json:"connected_emails,omitempty"`

	SignalsSelected  string            `json:"default_signals_selected"`
	AlertChannels    string            `json:"alert_channels"`
	WhatsAppNumbers  string            `json:"whatsapp_numbers"`
	WhatsAppConsent  bool              `json:"whatsapp_consent"`
	SlackWebhookURLs string            `json:"slack_webhook_urls"`
	Routing          RoutingSummary    `json:"routing"`
	Digest           onboarding.Digest `json:"digest"`

	AuthedEmail string        `json:"authed_email,omitempty"`
	Tokens      *oauth2.Token `json:"tokens,omitempty"`
}

// RoutingSummary is the flattened routing table.
type RoutingSummary struct {
	High   string `json:"high"`
	Medium string `json:"medium"`
	Low    string `json:"low"`
}

// WebhookClient posts events to a single automation-hook URL with a bounded
// timeout.
type WebhookClient struct {
	url    string
	client *http.Client
}

var _ Notifier = (*WebhookClient)(nil)

func NewWebhookClient(url string, timeout time.Duration) *WebhookClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebhookClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *WebhookClient) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Wrapf(apperrors.ErrNotifyFailed, "post webhook event: unexpected status %d", resp.StatusCode)
	}
	return nil
}
