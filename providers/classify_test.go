package providers_test

import (
	"net/url"
	"testing"

	"github.com/mailguardhq/onboarding-server/providers"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		email string
		want  providers.ID
	}{
		{"a@gmail.com", providers.Google},
		{"a@googlemail.com", providers.Google},
		{"A@Gmail.COM", providers.Google},
		{"  a@gmail.com  ", providers.Google},
		{"a@outlook.com", providers.Microsoft},
		{"a@hotmail.com", providers.Microsoft},
		{"a@live.com", providers.Microsoft},
		{"a@office365.com", providers.Microsoft},
		{"A@OUTLOOK.COM", providers.Microsoft},
		{"a@example.org", providers.Unknown},
		{"a@corporate-mail.io", providers.Unknown},
		{"", providers.Unknown},
	}

	for _, tc := range cases {
		require.Equalf(t, tc.want, providers.Classify(tc.email), "classify(%q)", tc.email)
	}
}

func TestGoogleAuthCodeURL(t *testing.T) {
	connector := providers.NewGoogleConnector("client-id", "client-secret", "http://localhost:4000/api/oauth/google/callback")

	raw := connector.AuthCodeURL("signed-state", "user@gmail.com")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	q := parsed.Query()
	require.Equal(t, "signed-state", q.Get("state"))
	require.Equal(t, "user@gmail.com", q.Get("login_hint"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.Equal(t, "client-id", q.Get("client_id"))
	require.Contains(t, q.Get("scope"), "gmail.readonly")
	require.Contains(t, q.Get("scope"), "openid")
}

func TestMicrosoftAuthCodeURL(t *testing.T) {
	connector := providers.NewMicrosoftConnector("client-id", "client-secret", "http://localhost:4000/api/oauth/microsoft/callback")

	raw := connector.AuthCodeURL("signed-state", "user@outlook.com")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Contains(t, parsed.Host, "login.microsoftonline.com")

	q := parsed.Query()
	require.Equal(t, "signed-state", q.Get("state"))
	require.Equal(t, "user@outlook.com", q.Get("login_hint"))
	require.Equal(t, "query", q.Get("response_mode"))
	require.Contains(t, q.Get("scope"), "Mail.Read")
	require.Contains(t, q.Get("scope"), "offline_access")
}

func TestAuthCodeURLOmitsEmptyLoginHint(t *testing.T) {
	connector := providers.NewGoogleConnector("client-id", "client-secret", "http://localhost/cb")

	parsed, err := url.Parse(connector.AuthCodeURL("st", ""))
	require.NoError(t, err)
	require.False(t, parsed.Query().Has("login_hint"))
}

func TestRegistryLookup(t *testing.T) {
	google := providers.NewGoogleConnector("g", "s", "http://localhost/g")
	microsoft := providers.NewMicrosoftConnector("m", "s", "http://localhost/m")

	registry := providers.NewRegistry(google, microsoft)

	c, ok := registry.Lookup(providers.Google)
	require.True(t, ok)
	require.Equal(t, providers.Google, c.ID())

	c, ok = registry.Lookup(providers.Microsoft)
	require.True(t, ok)
	require.Equal(t, providers.Microsoft, c.ID())

	_, ok = registry.Lookup(providers.Unknown)
	require.False(t, ok)
}
