package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mailguardhq/onboarding-server/internal/config"
	"github.com/mailguardhq/onboarding-server/notify"
	"github.com/mailguardhq/onboarding-server/onboarding"
	"github.com/mailguardhq/onboarding-server/providers"
	"github.com/mailguardhq/onboarding-server/statetoken"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "production")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	sessions   onboarding.Repo
	states     *statetoken.Codec
	connectors *providers.Registry
	dispatcher *notify.Dispatcher

	frontendBaseURL string
	outboundTimeout time.Duration
}

func New(config config.Config, sessions onboarding.Repo, states *statetoken.Codec, connectors *providers.Registry, dispatcher *notify.Dispatcher) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		config:     config,
		sessions:   sessions,
		states:     states,
		connectors: connectors,
		dispatcher: dispatcher,
	}
	s.env = config.GetEnv()
	s.frontendBaseURL = strings.TrimRight(config.GetFrontendBaseURL(), "/")
	s.outboundTimeout = config.GetOutboundTimeout()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
