package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/tanpawarit/motel-concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/motel-concierge/agent/agents/specialist"
	llmx "github.com/tanpawarit/motel-concierge/agent/llm"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
	toolx "github.com/tanpawarit/motel-concierge/agent/tool"
	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/motel/availability"
	"github.com/tanpawarit/motel-concierge/motel/memstore"
	"github.com/tanpawarit/motel-concierge/motel/pgstore"
	"github.com/tanpawarit/motel-concierge/motel/reporting"
	"github.com/tanpawarit/motel-concierge/motel/reservation"
	"github.com/tanpawarit/motel-concierge/motel/ticketing"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
	configx "github.com/tanpawarit/motel-concierge/pkg/config"
	metricsx "github.com/tanpawarit/motel-concierge/pkg/metrics"
	openrouterx "github.com/tanpawarit/motel-concierge/pkg/openrouter"
	"github.com/tanpawarit/motel-concierge/server"
)

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"
)

type StoreConfig struct {
	Driver string `split_words:"true" default:"memory"`
	// Seed loads the development catalog on startup. Existing rows are kept.
	Seed bool `split_words:"true" default:"true"`
}

func (c *StoreConfig) Validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver != driverMemory && c.Driver != driverPostgres {
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
	return nil
}

// motelStore is what every motel service needs from storage. Both the
// in-memory and the Postgres store satisfy it.
type motelStore interface {
	availability.Store
	reservation.Store
	ticketing.Store
	reporting.Store
}

var (
	_ motelStore = (*memstore.Store)(nil)
	_ motelStore = (*pgstore.Store)(nil)
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		func() (*server.Config, error) { return configx.New[server.Config]("HTTP") },
		func() (*llmx.Config, error) { return configx.New[llmx.Config]("LLM") },
		func() (*orchestrator.Config, error) { return configx.New[orchestrator.Config]("AGENT") },
		func() (*StoreConfig, error) { return configx.New[StoreConfig]("STORE") },
		func() (*statex.Config, error) { return configx.New[statex.Config]("SESSION") },
		func() (*metricsx.Config, error) { return configx.New[metricsx.Config]("METRICS") },
	),
)

var StoreModule = fx.Module("store",
	fx.Provide(
		newClock,
		newMotelStore,
		newSessionStore,
		newMetrics,
	),
)

var AgentModule = fx.Module("agent",
	fx.Provide(
		newMemory,
		newDispatcher,
		newSpecialist,
		newOrchestrator,
	),
	fx.Invoke(probeModel),
)

var ServerModule = fx.Module("server",
	fx.Provide(newServer),
	fx.Invoke(startServer),
)

func newClock(cfg *orchestrator.Config) clock.Clock {
	return clock.NewRealClock(cfg.Location())
}

func newMetrics(cfg *metricsx.Config) *metricsx.Metrics {
	if !cfg.Enabled {
		return nil
	}
	return metricsx.New(cfg.Namespace)
}

type motelStoreResult struct {
	fx.Out

	Store  motelStore
	Health server.HealthCheck `name:"store_health"`
}

func newMotelStore(lc fx.Lifecycle, cfg *StoreConfig) (motelStoreResult, error) {
	switch cfg.Driver {
	case driverPostgres:
		dbCfg, err := configx.New[pgstore.Config]("DATABASE")
		if err != nil {
			return motelStoreResult{}, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), dbCfg.DialTimeout+time.Second)
		defer cancel()

		store, err := pgstore.Open(ctx, *dbCfg)
		if err != nil {
			return motelStoreResult{}, err
		}
		if cfg.Seed {
			if err := store.SeedCatalog(ctx, motel.DevCatalog()); err != nil {
				log.Warn().Err(err).Msg("catalog not seeded, will need manual setup")
			}
		}
		lc.Append(fx.StopHook(store.Close))
		return motelStoreResult{Store: store, Health: store.Ping}, nil
	default:
		store := memstore.New()
		if cfg.Seed {
			store.Seed(motel.DevCatalog())
		}
		log.Info().Msg("using in-memory motel store, data is lost on restart")
		return motelStoreResult{Store: store, Health: func(context.Context) error { return nil }}, nil
	}
}

type sessionStoreResult struct {
	fx.Out

	Store  statex.Store
	Health server.HealthCheck `name:"session_health"`
}

func newSessionStore(lc fx.Lifecycle, cfg *statex.Config, clk clock.Clock) (sessionStoreResult, error) {
	store, closeFn, err := statex.Open(context.Background(), *cfg, clk)
	if err != nil {
		return sessionStoreResult{}, err
	}
	lc.Append(fx.StopHook(closeFn))

	health := func(context.Context) error { return nil }
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		health = p.Ping
	}
	log.Info().Str("backend", cfg.Backend).Msg("session store ready")
	return sessionStoreResult{Store: store, Health: health}, nil
}

func newMemory(store statex.Store, clk clock.Clock) *statex.Memory {
	return statex.NewMemory(store, clk)
}

func newDispatcher(store motelStore, memory *statex.Memory, clk clock.Clock, metrics *metricsx.Metrics) *toolx.Dispatcher {
	return toolx.NewDispatcher(toolx.Deps{
		Availability: availability.New(store, clk),
		Reservations: reservation.New(store, clk,
			reservation.WithGuestMemory(memory),
			reservation.WithMetrics(metrics),
		),
		Tickets: ticketing.New(store, clk),
		Reports: reporting.New(store),
		Memory:  memory,
		Clock:   clk,
		Metrics: metrics,
	})
}

func newSpecialist(cfg *llmx.Config, agentCfg *orchestrator.Config, tools *toolx.Dispatcher) (*specialist.Concierge, error) {
	return specialist.NewFromConfig(context.Background(), *cfg, tools, specialist.Options{
		MaxToolRounds: agentCfg.MaxToolRounds,
	})
}

func newOrchestrator(
	store statex.Store,
	concierge *specialist.Concierge,
	cfg *orchestrator.Config,
	clk clock.Clock,
	metrics *metricsx.Metrics,
) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(store, concierge, *cfg,
		orchestrator.WithClock(clk),
		orchestrator.WithMetrics(metrics),
	)
}

// probeModel warns at startup when the model provider rejects the key or
// the model name. It never blocks startup.
func probeModel(lc fx.Lifecycle, cfg *llmx.Config) {
	if !cfg.ProbeOnStart {
		return
	}
	lc.Append(fx.StartHook(func(ctx context.Context) {
		client := openrouterx.NewClient(cfg.OpenRouter())
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := openrouterx.Probe(probeCtx, client, cfg.Model); err != nil {
			log.Warn().Err(err).Str("model", cfg.Model).Msg("model probe failed")
			return
		}
		log.Info().Str("model", cfg.Model).Msg("model probe ok")
	}))
}

type serverParams struct {
	fx.In

	Config        *server.Config
	MetricsConfig *metricsx.Config
	Agent         *orchestrator.Orchestrator
	Metrics       *metricsx.Metrics
	StoreHealth   server.HealthCheck `name:"store_health"`
	SessionHealth server.HealthCheck `name:"session_health"`
}

func newServer(p serverParams) *server.Server {
	return server.New(*p.Config, server.Deps{
		Agent:       p.Agent,
		Metrics:     p.Metrics,
		MetricsPath: p.MetricsConfig.Path,
		Checks: map[string]server.HealthCheck{
			"store":    p.StoreHealth,
			"sessions": p.SessionHealth,
		},
	})
}

func startServer(lc fx.Lifecycle, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			srv.Start(log.Logger.WithContext(context.Background()))
			return nil
		},
		OnStop: srv.Stop,
	})
}

type fxLogger struct {
	logger zerolog.Logger
}

func newFxLogger() fxevent.Logger {
	return fxLogger{logger: log.Logger.With().Str("component", "fx").Logger()}
}

func (l fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.Provided:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Str("constructor", e.ConstructorName).Msg("provide failed")
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Str("function", e.FunctionName).Msg("invoke failed")
		}
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("start hook failed")
		}
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("stop hook failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Msg("start failed")
			return
		}
		l.logger.Info().Msg("started")
	}
}
