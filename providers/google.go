package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apperrors "github.com/mailguardhq/onboarding-server/internal/errors"
)

const googleIssuer = "https://accounts.google.com"

// GoogleConnector drives the Google authorization-code flow and resolves
// the authenticated mailbox from the verified ID token.
type GoogleConnector struct {
	config *oauth2.Config

	verifierLock sync.Mutex
	verifier     *oidc.IDTokenVerifier
}

var _ Connector = (*GoogleConnector)(nil)

func NewGoogleConnector(clientID, clientSecret, redirectURL string) *GoogleConnector {
	return &GoogleConnector{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/gmail.readonly",
				oidc.ScopeOpenID,
				"email",
			},
		},
	}
}

func (g *GoogleConnector) ID() ID {
	return Google
}

func (g *GoogleConnector) AuthCodeURL(state, loginHint string) string {
	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOffline, oauth2.ApprovalForce}
	if loginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", loginHint))
	}
	return g.config.AuthCodeURL(state, opts...)
}

func (g *GoogleConnector) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", err)
	}
	return token, nil
}

// ResolveIdentity verifies the ID token returned alongside the access token
// and extracts its email claim.
func (g *GoogleConnector) ResolveIdentity(ctx context.Context, token *oauth2.Token) (string, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", apperrors.Wrapf(apperrors.ErrNoIdentity, "google token response carries no id_token")
	}

	verifier, err := g.idTokenVerifier(ctx)
	if err != nil {
		return "", err
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("google id_token verification: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("google id_token claims: %w", err)
	}
	return claims.Email, nil
}

// idTokenVerifier discovers the Google OIDC issuer on first use and caches
// the verifier, so constructing the connector needs no network access and a
// transient discovery failure does not poison later callbacks.
func (g *GoogleConnector) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	g.verifierLock.Lock()
	defer g.verifierLock.Unlock()

	if g.verifier != nil {
		return g.verifier, nil
	}

	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google oidc discovery: %w", err)
	}
	g.verifier = provider.Verifier(&oidc.Config{ClientID: g.config.ClientID})
	return g.verifier, nil
}
