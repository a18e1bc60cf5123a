package providers

import (
	"context"

	"golang.org/x/oauth2"
)

// Connector is the per-provider strategy for the authorization-code flow:
// consent URL construction, code exchange, and resolution of the
// authenticated identity. The shared callback handling stays
// provider-agnostic by working through this interface.
type Connector interface {
	ID() ID

	// AuthCodeURL builds the provider consent URL carrying the signed state
	// and hinting the address being authorized.
	AuthCodeURL(state, loginHint string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// ResolveIdentity returns the email address the provider actually
	// authenticated, which is authoritative over whatever the user typed.
	ResolveIdentity(ctx context.Context, token *oauth2.Token) (string, error)
}

// Registry holds the configured connectors keyed by provider ID.
type Registry struct {
	connectors map[ID]Connector
}

func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{connectors: make(map[ID]Connector, len(connectors))}
	for _, c := range connectors {
		r.connectors[c.ID()] = c
	}
	return r
}

func (r *Registry) Lookup(id ID) (Connector, bool) {
	c, ok := r.connectors[id]
	return c, ok
}
