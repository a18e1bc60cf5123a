package config

type Config interface {
	EnvConfig
	OAuthProviderConfig
	SessionConfig
}

type mainConfig struct {
	EnvVars
	OAuthProviders
	Sessions
}

func New() Config {
	return mainConfig{}
}
