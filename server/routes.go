package server

import "github.com/mailguardhq/onboarding-server/providers"

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// Onboarding API
	s.RegisterRouteFunc("POST "+RouteOnboardingStart, ChainMiddleware(s.OnboardingStartHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteOnboardingFinalize, ChainMiddleware(s.OnboardingFinalizeHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteMailboxStatus, ChainMiddleware(s.MailboxStatusHandler(), s.APIMiddleware()...))

	// OAuth flow (browser navigation, not XHR)
	s.RegisterRouteFunc("GET "+RouteOAuthDispatch, ChainMiddleware(s.OAuthDispatchHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteGoogleStart, ChainMiddleware(s.OAuthStartHandler(providers.Google), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteGoogleCallback, ChainMiddleware(s.OAuthCallbackHandler(providers.Google), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteMicrosoftStart, ChainMiddleware(s.OAuthStartHandler(providers.Microsoft), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteMicrosoftCallback, ChainMiddleware(s.OAuthCallbackHandler(providers.Microsoft), s.APIMiddleware()...))
}
