package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"

	"github.com/tanpawarit/motel-concierge/agent/agents/specialist"
	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	nodex "github.com/tanpawarit/motel-concierge/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
	metricsx "github.com/tanpawarit/motel-concierge/pkg/metrics"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

type Config struct {
	MaxToolRounds int    `split_words:"true" default:"4"`
	HistoryLimit  int    `split_words:"true" default:"20"`
	TimeZone      string `split_words:"true" default:"Local"`
}

// Location resolves TimeZone, falling back to the server's zone.
func (c Config) Location() *time.Location {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

type Orchestrator struct {
	store        statex.Store
	specialist   contractx.Specialist
	clock        clock.Clock
	metrics      *metricsx.Metrics
	historyLimit int

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
}

type Option func(*Orchestrator)

func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func WithMetrics(m *metricsx.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func New(store statex.Store, specialist contractx.Specialist, cfg Config, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if specialist == nil {
		return nil, errors.New("specialist is required")
	}

	o := &Orchestrator{
		store:        store,
		specialist:   specialist,
		clock:        clock.NewRealClock(cfg.Location()),
		historyLimit: cfg.HistoryLimit,
	}
	for _, opt := range opts {
		opt(o)
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Ask implements contractx.Agent.
func (o *Orchestrator) Ask(ctx context.Context, req contractx.ChatRequest) (contractx.ChatResponse, error) {
	start := time.Now()
	reply, err := o.HandleMessage(ctx, req.SessionID, req.Message)
	result := turnResult(req.Message, err)
	o.metrics.ObserveChatTurn(result, time.Since(start))

	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("session_id", req.SessionID).
			Str("result", result).
			Msg("chat turn failed")
		return contractx.ChatResponse{}, err
	}
	return contractx.ChatResponse{Text: reply}, nil
}

func turnResult(message string, err error) string {
	switch {
	case err == nil && nodex.IsGreeting(message):
		return "welcome"
	case err == nil:
		return "ok"
	case IsInvalidRequest(err):
		return "invalid"
	case specialist.IsModelError(err):
		return "model_error"
	default:
		return "error"
	}
}

// IsInvalidRequest reports errors caused by the caller's input.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidMessage) || errors.Is(err, ErrInvalidSession)
}
