package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/mailguardhq/onboarding-server/internal/config"
	"github.com/mailguardhq/onboarding-server/notify"
	"github.com/mailguardhq/onboarding-server/onboarding"
	"github.com/mailguardhq/onboarding-server/providers"
	"github.com/mailguardhq/onboarding-server/server"
	"github.com/mailguardhq/onboarding-server/statetoken"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())
	if c.GetEnv() == "DEV" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	secret := c.GetStateSecret()
	if secret == "" {
		return errors.New("STATE_HMAC_SECRET is required")
	}
	if c.GetWebhookURL() == "" {
		return errors.New("ONBOARDING_WEBHOOK_URL is required")
	}

	sessions := onboarding.NewInMemoryRepo(c.GetSessionTTL(), c.GetSweepInterval())
	defer sessions.Close()

	states := statetoken.NewCodec(secret)
	connectors := providers.NewRegistry(
		providers.NewGoogleConnector(c.GetGoogleClientID(), c.GetGoogleClientSecret(), c.GetGoogleRedirectURI()),
		providers.NewMicrosoftConnector(c.GetMicrosoftClientID(), c.GetMicrosoftClientSecret(), c.GetMicrosoftRedirectURI()),
	)
	notifier := notify.NewWebhookClient(c.GetWebhookURL(), c.GetOutboundTimeout())
	dispatcher := notify.NewDispatcher(notifier, sessions, c.GetNotifyPause())

	srv := &http.Server{Addr: c.GetPort(), Handler: server.New(c, sessions, states, connectors, dispatcher)}
	go listenAndServe(srv)
	waitForStopSignal()
	returnError = shutdown(srv)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
