package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestResolveIdentityPrefersMail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mail":"person@contoso.com","userPrincipalName":"person_outlook.com#EXT#@contoso.onmicrosoft.com"}`))
	}))
	defer srv.Close()

	connector := NewMicrosoftConnector("cid", "secret", "http://localhost/cb")
	connector.profileURL = srv.URL

	email, err := connector.ResolveIdentity(context.Background(), &oauth2.Token{AccessToken: "test-access-token"})
	require.NoError(t, err)
	require.Equal(t, "person@contoso.com", email)
}

func TestResolveIdentityFallsBackToUPN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"mail":"","userPrincipalName":"person@outlook.com"}`))
	}))
	defer srv.Close()

	connector := NewMicrosoftConnector("cid", "secret", "http://localhost/cb")
	connector.profileURL = srv.URL

	email, err := connector.ResolveIdentity(context.Background(), &oauth2.Token{AccessToken: "at"})
	require.NoError(t, err)
	require.Equal(t, "person@outlook.com", email)
}

func TestResolveIdentitySurfacesGraphErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	connector := NewMicrosoftConnector("cid", "secret", "http://localhost/cb")
	connector.profileURL = srv.URL

	_, err := connector.ResolveIdentity(context.Background(), &oauth2.Token{AccessToken: "at"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
}
