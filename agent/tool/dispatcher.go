package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	statex "github.com/tanpawarit/motel-concierge/agent/state"
	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/motel/reservation"
	"github.com/tanpawarit/motel-concierge/motel/ticketing"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
	"github.com/tanpawarit/motel-concierge/pkg/dates"
	metricsx "github.com/tanpawarit/motel-concierge/pkg/metrics"
)

type Availability interface {
	FindAvailable(ctx context.Context, in, out time.Time) ([]motel.AvailableRoom, error)
}

type Reservations interface {
	Book(ctx context.Context, req reservation.BookRequest) (motel.Booking, error)
}

type Tickets interface {
	Raise(ctx context.Context, roomNumber, description string) (motel.Ticket, error)
	ListOpen(ctx context.Context) ([]motel.Ticket, error)
	Close(ctx context.Context, id int64) (ticketing.CloseResult, error)
}

type Reports interface {
	RevenueOn(ctx context.Context, day time.Time) (motel.Revenue, error)
	OccupancyOn(ctx context.Context, day time.Time) (motel.Occupancy, error)
	TopBookingSource(ctx context.Context) (motel.SourceRevenue, error)
	ListRoomTypes(ctx context.Context) ([]motel.RoomType, error)
	ListBookingSources(ctx context.Context) ([]string, error)
	RoomDetails(ctx context.Context, number string) (motel.Room, error)
	ListGuests(ctx context.Context) ([]string, error)
}

type Deps struct {
	Availability Availability
	Reservations Reservations
	Tickets      Tickets
	Reports      Reports
	Memory       *statex.Memory
	Clock        clock.Clock
	Metrics      *metricsx.Metrics
}

// Dispatcher runs catalog operations on behalf of the model. Every call ends in
// a sentence for the guest; nothing is returned as an error.
type Dispatcher struct {
	deps     Deps
	handlers map[string]handler
}

// call carries one tool invocation through its handler.
type call struct {
	sessionID string
	args      Args
	today     time.Time

	// Parsed values kept for error sentences.
	room     string
	in, out  time.Time
	day      time.Time
	ticketID int64

	// slots are written to session memory when the call succeeds.
	slots statex.Slots
}

type handler func(ctx context.Context, c *call) (string, error)

var _ contractx.ToolGateway = (*Dispatcher)(nil)

func NewDispatcher(deps Deps) *Dispatcher {
	if deps.Clock == nil {
		deps.Clock = clock.NewRealClock(time.Local)
	}
	d := &Dispatcher{deps: deps}
	d.handlers = map[string]handler{
		ToolCheckAvailability:  d.checkAvailability,
		ToolBookRoom:           d.bookRoom,
		ToolRaiseGuestRequest:  d.raiseRequest,
		ToolViewGuestRequests:  d.viewRequests,
		ToolCloseGuestRequest:  d.closeRequest,
		ToolRoomDetails:        d.roomDetails,
		ToolAllGuests:          d.allGuests,
		ToolRevenueByDate:      d.revenueByDate,
		ToolOccupancyRate:      d.occupancyRate,
		ToolTopBookingSource:   d.topBookingSource,
		ToolListRoomTypes:      d.listRoomTypes,
		ToolListBookingSources: d.listBookingSources,
	}
	return d
}

func (d *Dispatcher) Execute(ctx context.Context, sessionID string, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	if d == nil {
		return nil, errors.New("nil tool dispatcher")
	}
	out := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		res := d.Dispatch(ctx, sessionID, req.Tool, req.Args)
		res.CallID = req.CallID
		out = append(out, res)
	}
	return out, nil
}

// Dispatch runs one tool by name.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, tool string, args map[string]any) contractx.ToolResult {
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().Str("tool", tool).Str("session_id", sessionID).Logger()

	h, ok := d.handlers[tool]
	if !ok {
		d.deps.Metrics.ObserveTool(tool, string(contractx.OutcomeRejected), time.Since(start))
		logger.Warn().Msg("unknown tool requested")
		return contractx.ToolResult{
			Tool:    tool,
			Text:    fmt.Sprintf("tool=%s is unavailable", tool),
			Outcome: contractx.OutcomeRejected,
		}
	}

	c := &call{sessionID: sessionID, args: Args(args), today: d.deps.Clock.Now()}
	if c.args == nil {
		c.args = Args{}
	}
	text, err := h(ctx, c)

	outcome := contractx.OutcomeOK
	if err != nil {
		outcome = classify(err)
		text = describe(tool, c, err)
		ev := logger.Info()
		if outcome == contractx.OutcomeError {
			ev = logger.Error()
		}
		ev.Err(err).Str("outcome", string(outcome)).Msg("tool call failed")
	} else {
		c.slots.LastAction = tool
		d.remember(ctx, c)
		logger.Debug().Dur("took", time.Since(start)).Msg("tool call ok")
	}

	d.deps.Metrics.ObserveTool(tool, string(outcome), time.Since(start))
	return contractx.ToolResult{Tool: tool, Text: text, Outcome: outcome}
}

func (d *Dispatcher) remember(ctx context.Context, c *call) {
	if d.deps.Memory == nil || strings.TrimSpace(c.sessionID) == "" {
		return
	}
	if err := d.deps.Memory.RememberSlots(ctx, c.sessionID, c.slots); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("session_id", c.sessionID).Msg("remember tool slots")
	}
}

// parseDate reads a required date argument.
func (c *call) parseDate(field string) (time.Time, error) {
	raw := c.args.String(field)
	if raw == "" {
		return time.Time{}, motel.Missing(field)
	}
	day, err := dates.Parse(raw, c.today)
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}

func (c *call) stay() (time.Time, time.Time, error) {
	if err := motel.Require(
		"check_in_date", c.args.String("check_in_date"),
		"check_out_date", c.args.String("check_out_date"),
	); err != nil {
		return time.Time{}, time.Time{}, err
	}
	in, err := c.parseDate("check_in_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := c.parseDate("check_out_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	c.in, c.out = in, out
	return in, out, nil
}
