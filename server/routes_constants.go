package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteHealth = "/health"

	// Onboarding API
	RouteOnboardingStart    = "/api/onboarding/start"
	RouteOnboardingFinalize = "/api/onboarding/finalize"
	RouteMailboxStatus      = "/api/mailbox"

	// OAuth flow
	RouteOAuthDispatch     = "/api/oauth/dispatch"
	RouteGoogleStart       = "/api/oauth/google/start"
	RouteGoogleCallback    = "/api/oauth/google/callback"
	RouteMicrosoftStart    = "/api/oauth/microsoft/start"
	RouteMicrosoftCallback = "/api/oauth/microsoft/callback"
)
