package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mailguardhq/onboarding-server/onboarding"
	"github.com/mailguardhq/onboarding-server/providers"
	"github.com/mailguardhq/onboarding-server/statetoken"
)

// OAuthDispatchHandler decides where the user agent goes next: into a
// provider's consent flow for the front pending address, to the
// provider-choice page when classification is inconclusive, or back to the
// wizard once every address is linked.
func (s *Server) OAuthDispatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.URL.Query().Get("org_id")
		mailboxID := r.URL.Query().Get("mailbox_id")
		if orgID == "" || mailboxID == "" {
			http.Error(w, "Missing org_id or mailbox_id", http.StatusBadRequest)
			return
		}

		session, ok := s.sessions.Get(mailboxID)
		if !ok {
			// Session lost: not fatal, the wizard restarts onboarding.
			http.Redirect(w, r, s.frontendBaseURL+"/onboarding?error=session_expired", http.StatusFound)
			return
		}

		next, pending := session.NextPending()
		if !pending {
			http.Redirect(w, r, s.completionURL(mailboxID), http.StatusFound)
			return
		}

		qp := startQuery(orgID, mailboxID)
		switch providers.Classify(next) {
		case providers.Google:
			http.Redirect(w, r, RouteGoogleStart+"?"+qp, http.StatusFound)
		case providers.Microsoft:
			http.Redirect(w, r, RouteMicrosoftStart+"?"+qp, http.StatusFound)
		default:
			s.renderProviderChoice(w, next, qp)
		}
	}
}

// OAuthStartHandler begins a provider's consent flow for the front pending
// address, binding the session ids into the signed state.
func (s *Server) OAuthStartHandler(provider providers.ID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.URL.Query().Get("org_id")
		mailboxID := r.URL.Query().Get("mailbox_id")
		if orgID == "" || mailboxID == "" {
			http.Error(w, "Missing org_id or mailbox_id", http.StatusBadRequest)
			return
		}

		session, ok := s.sessions.Get(mailboxID)
		if !ok {
			http.Error(w, "Session expired", http.StatusBadRequest)
			return
		}

		connector, ok := s.connectors.Lookup(provider)
		if !ok {
			http.Error(w, "Provider not configured", http.StatusInternalServerError)
			return
		}

		loginHint, _ := session.NextPending()
		state := s.states.Sign(statetoken.Payload{
			OrgID:     orgID,
			MailboxID: mailboxID,
			Provider:  string(provider),
			IssuedAt:  time.Now().UnixMilli(),
		})

		http.Redirect(w, r, connector.AuthCodeURL(state, loginHint), http.StatusFound)
	}
}

// OAuthCallbackHandler is the shared provider callback. Upstream failures
// surface before any session mutation, so the user can retry authorization
// for the same pending address without data loss.
func (s *Server) OAuthCallbackHandler(provider providers.ID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if code == "" || state == "" {
			http.Error(w, "Missing code or state", http.StatusBadRequest)
			return
		}

		// Invalid state is terminal for this redirect: the cause may be
		// tampering, so the response never says more than "invalid".
		payload, ok := s.states.Verify(state)
		if !ok {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			return
		}

		if _, ok := s.sessions.Get(payload.MailboxID); !ok {
			http.Error(w, "Onboarding expired. Submit the form again.", http.StatusBadRequest)
			return
		}

		connector, ok := s.connectors.Lookup(provider)
		if !ok {
			http.Error(w, "Provider not configured", http.StatusInternalServerError)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.outboundTimeout)
		defer cancel()

		token, err := connector.Exchange(ctx, code)
		if err != nil {
			log.Err(err).Str("provider", string(provider)).Msg("Code exchange failed")
			http.Error(w, "Authorization failed. Please try connecting the mailbox again.", http.StatusInternalServerError)
			return
		}

		authedEmail, err := connector.ResolveIdentity(ctx, token)
		if err != nil {
			log.Err(err).Str("provider", string(provider)).Msg("Identity resolution failed")
			http.Error(w, "Could not resolve the authorized mailbox. Please try again.", http.StatusInternalServerError)
			return
		}

		// The provider's answer is authoritative: pop the queue by count
		// even when the authed mailbox differs from the queued address. A
		// successful exchange with no reported identity still pops, but
		// records no connection.
		var conn *onboarding.Connection
		if authedEmail != "" {
			conn = &onboarding.Connection{
				Provider:    string(provider),
				AuthedEmail: authedEmail,
				Tokens:      token,
			}
		}

		session, ok := s.sessions.PopAndRecord(payload.MailboxID, conn)
		if !ok {
			// Evicted between the lookup and the exchange.
			http.Error(w, "Onboarding expired. Submit the form again.", http.StatusBadRequest)
			return
		}

		log.Info().
			Str("org_id", session.OrgID).
			Str("provider", string(provider)).
			Str("authed_email", authedEmail).
			Int("pending", len(session.PendingAddresses)).
			Msg("Mailbox authorized")

		next, pending := session.NextPending()
		if !pending {
			http.Redirect(w, r, s.completionURL(session.MailboxID), http.StatusFound)
			return
		}

		// Skip the choice screen when the next address classifies cleanly.
		qp := startQuery(session.OrgID, session.MailboxID)
		switch providers.Classify(next) {
		case providers.Google:
			http.Redirect(w, r, RouteGoogleStart+"?"+qp, http.StatusFound)
		case providers.Microsoft:
			http.Redirect(w, r, RouteMicrosoftStart+"?"+qp, http.StatusFound)
		default:
			http.Redirect(w, r, RouteOAuthDispatch+"?"+qp, http.StatusFound)
		}
	}
}

// completionURL is the wizard's entry point for the final configuration step.
func (s *Server) completionURL(mailboxID string) string {
	return s.frontendBaseURL + "/onboarding?step=4&mailbox_id=" + url.QueryEscape(mailboxID)
}

func startQuery(orgID, mailboxID string) string {
	return "org_id=" + url.QueryEscape(orgID) + "&mailbox_id=" + url.QueryEscape(mailboxID)
}
