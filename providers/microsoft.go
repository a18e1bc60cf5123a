package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const graphProfileURL = "https://graph.microsoft.com/v1.0/me"

// MicrosoftConnector drives the Microsoft authorization-code flow against
// the multi-tenant ("common") endpoint and resolves the authenticated
// mailbox via the Graph profile.
type MicrosoftConnector struct {
	config *oauth2.Config

	// profileURL is overridable in tests.
	profileURL string
}

var _ Connector = (*MicrosoftConnector)(nil)

func NewMicrosoftConnector(clientID, clientSecret, redirectURL string) *MicrosoftConnector {
	return &MicrosoftConnector{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     microsoft.AzureADEndpoint("common"),
			Scopes: []string{
				"offline_access",
				"User.Read",
				"Mail.Read",
				"openid",
				"profile",
			},
		},
		profileURL: graphProfileURL,
	}
}

func (m *MicrosoftConnector) ID() ID {
	return Microsoft
}

func (m *MicrosoftConnector) AuthCodeURL(state, loginHint string) string {
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_mode", "query")}
	if loginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", loginHint))
	}
	return m.config.AuthCodeURL(state, opts...)
}

func (m *MicrosoftConnector) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("microsoft code exchange: %w", err)
	}
	return token, nil
}

// ResolveIdentity fetches the Graph profile of the token's owner. Graph
// reports the mailbox in "mail" for licensed accounts; some personal
// accounts only carry "userPrincipalName".
func (m *MicrosoftConnector) ResolveIdentity(ctx context.Context, token *oauth2.Token) (string, error) {
	client := m.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.profileURL, nil)
	if err != nil {
		return "", fmt.Errorf("graph profile request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("graph profile fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("graph profile fetch: unexpected status %d", resp.StatusCode)
	}

	var profile struct {
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("graph profile decode: %w", err)
	}

	if profile.Mail != "" {
		return profile.Mail, nil
	}
	return profile.UserPrincipalName, nil
}
