package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/mailguardhq/onboarding-server/internal/errors"
	"github.com/mailguardhq/onboarding-server/onboarding"
)

// HealthHandler reports liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type onboardingStartRequest struct {
	CompanyName        string   `json:"company_name"`
	ContactEmail       string   `json:"contact_email"`
	BusinessType       string   `json:"business_type"`
	Timezone           string   `json:"timezone"`
	MonitoredAddresses []string `json:"monitored_addresses"`
	ComplianceAccept   bool     `json:"compliance_accept"`
}

// OnboardingStartHandler creates a session from the wizard's first-step
// submission. Validation failures return the specific missing-field list so
// the UI can point at the offending inputs.
func (s *Server) OnboardingStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body onboardingStartRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		profile := onboarding.Profile{
			CompanyName:      strings.TrimSpace(body.CompanyName),
			ContactEmail:     strings.TrimSpace(body.ContactEmail),
			BusinessType:     strings.TrimSpace(body.BusinessType),
			Timezone:         strings.TrimSpace(body.Timezone),
			ComplianceAccept: body.ComplianceAccept,
		}
		if profile.Timezone == "" {
			profile.Timezone = "UTC"
		}

		addresses := make([]string, 0, len(body.MonitoredAddresses))
		for _, addr := range body.MonitoredAddresses {
			if trimmed := strings.TrimSpace(addr); trimmed != "" {
				addresses = append(addresses, trimmed)
			}
		}

		var missing []string
		if profile.CompanyName == "" {
			missing = append(missing, "company_name")
		}
		if profile.ContactEmail == "" {
			missing = append(missing, "contact_email")
		}
		if profile.BusinessType == "" {
			missing = append(missing, "business_type")
		}
		if !profile.ComplianceAccept {
			missing = append(missing, "compliance_accept")
		}
		if len(addresses) == 0 {
			missing = append(missing, "monitored_addresses")
		}
		if len(missing) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "Missing required fields",
				"missing": missing,
			})
			return
		}

		session, err := s.sessions.Create(profile, addresses)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		log.Info().
			Str("org_id", session.OrgID).
			Str("mailbox_id", session.MailboxID).
			Int("addresses", len(session.PendingAddresses)).
			Msg("Onboarding session created")

		writeJSON(w, http.StatusOK, map[string]string{
			"org_id":     session.OrgID,
			"mailbox_id": session.MailboxID,
		})
	}
}

type onboardingFinalizeRequest struct {
	MailboxID string            `json:"mailbox_id"`
	Config    onboarding.Config `json:"config"`
}

// OnboardingFinalizeHandler merges the wizard's alerting configuration and
// flushes the completion events. A downstream delivery failure keeps the
// session so the wizard can retry without redoing OAuth.
func (s *Server) OnboardingFinalizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body onboardingFinalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if body.MailboxID == "" {
			writeJSONError(w, http.StatusBadRequest, "Missing mailbox_id")
			return
		}

		if err := s.dispatcher.Finalize(r.Context(), body.MailboxID, body.Config); err != nil {
			if apperrors.Is(err, apperrors.ErrSessionExpired) {
				writeJSONError(w, http.StatusBadRequest, "Session expired")
				return
			}
			log.Err(err).Str("mailbox_id", body.MailboxID).Msg("Finalize dispatch failed")
			writeJSONError(w, http.StatusInternalServerError, "Failed to deliver onboarding notifications")
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// MailboxStatusHandler is the read-only snapshot the wizard polls while the
// user works through the connect steps. It never exposes token material.
func (s *Server) MailboxStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mailboxID := r.URL.Query().Get("mailbox_id")
		if mailboxID == "" {
			writeJSONError(w, http.StatusBadRequest, "Missing mailbox_id")
			return
		}

		session, ok := s.sessions.Get(mailboxID)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "Session expired")
			return
		}

		status := "pending_oauth"
		if session.AllLinked() {
			status = "awaiting_config"
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"org_id":              session.OrgID,
			"mailbox_id":          session.MailboxID,
			"company_name":        session.Profile.CompanyName,
			"monitored_addresses": session.MonitoredAddresses,
			"pending_addresses":   session.PendingAddresses,
			"connected_emails":    session.LinkedAddresses,
			"status":              status,
		})
	}
}
