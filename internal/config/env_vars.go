package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar         = "PORT"
	appNameVar         = "APP_NAME"
	baseURLVar         = "BASE_URL"
	frontendBaseURLVar = "FRONTEND_BASE_URL"
	webhookURLVar      = "ONBOARDING_WEBHOOK_URL"
	stateSecretVar     = "STATE_HMAC_SECRET"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetFrontendBaseURL() string
	GetWebhookURL() string
	GetStateSecret() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "4000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Mailbox Onboarding")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseURL returns the public base URL of this service, used for default
// OAuth redirect URIs.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:4000")
}

// GetFrontendBaseURL returns the base URL of the onboarding wizard UI that
// the OAuth flow redirects back into.
func (EnvVars) GetFrontendBaseURL() string {
	return GetEnv(frontendBaseURLVar, "http://localhost:3000")
}

// GetWebhookURL returns the downstream automation hook that receives
// completion events.
func (EnvVars) GetWebhookURL() string {
	return GetEnv(webhookURLVar, "")
}

// GetStateSecret returns the HMAC secret for signing OAuth state tokens.
func (EnvVars) GetStateSecret() string {
	return GetEnv(stateSecretVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
