package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	_ "github.com/tanpawarit/motel-concierge/pkg/logger/autoload"
)

func main() {
	app := fx.New(
		ConfigModule,
		StoreModule,
		AgentModule,
		ServerModule,
		fx.WithLogger(newFxLogger),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to start motel concierge")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to stop motel concierge cleanly")
		os.Exit(1)
	}
	log.Info().Msg("motel concierge stopped")
}
