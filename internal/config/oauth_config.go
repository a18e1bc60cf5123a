package config

type OAuthProviderConfig interface {
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetGoogleRedirectURI() string
	GetMicrosoftClientID() string
	GetMicrosoftClientSecret() string
	GetMicrosoftRedirectURI() string
}

type OAuthProviders struct{}

var _ OAuthProviderConfig = OAuthProviders{}

func (OAuthProviders) GetGoogleClientID() string {
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (OAuthProviders) GetGoogleClientSecret() string {
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

func (o OAuthProviders) GetGoogleRedirectURI() string {
	return GetEnv("GOOGLE_REDIRECT_URI", EnvVars{}.GetBaseURL()+"/api/oauth/google/callback")
}

func (OAuthProviders) GetMicrosoftClientID() string {
	return GetEnv("MICROSOFT_CLIENT_ID", "")
}

func (OAuthProviders) GetMicrosoftClientSecret() string {
	return GetEnv("MICROSOFT_CLIENT_SECRET", "")
}

func (o OAuthProviders) GetMicrosoftRedirectURI() string {
	return GetEnv("MICROSOFT_REDIRECT_URI", EnvVars{}.GetBaseURL()+"/api/oauth/microsoft/callback")
}
