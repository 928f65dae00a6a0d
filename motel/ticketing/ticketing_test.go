package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanpawarit/motel-concierge/motel"
	"github.com/tanpawarit/motel-concierge/motel/memstore"
	"github.com/tanpawarit/motel-concierge/pkg/clock"
)

func newService() (*Service, *memstore.Store, *clock.MockClock) {
	store := memstore.New()
	clk := clock.NewMockClock(time.Date(2025, time.August, 18, 9, 0, 0, 0, time.UTC))
	return New(store, clk), store, clk
}

func TestTicketLifecycle(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService()
	ctx := context.Background()

	ticket, err := svc.Raise(ctx, "101", "Extra towels")
	require.NoError(t, err)
	assert.Positive(t, ticket.ID)
	assert.Equal(t, motel.TicketOpen, ticket.Status)
	assert.Equal(t, "housekeeping", ticket.Department)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, ticket.ID, open[0].ID)

	res, err := svc.Close(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyClosed)

	open, err = svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	res, err = svc.Close(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyClosed)
}

func TestRaiseDefaultsDescription(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService()
	ticket, err := svc.Raise(context.Background(), "102", "  ")
	require.NoError(t, err)
	assert.Equal(t, "Guest request", ticket.Description)
}

func TestRaiseRequiresRoom(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService()
	_, err := svc.Raise(context.Background(), "", "towels")
	var missing *motel.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "room_number", missing.Field)
}

func TestListOpenNewestFirst(t *testing.T) {
	t.Parallel()

	svc, _, clk := newService()
	ctx := context.Background()

	first, err := svc.Raise(ctx, "101", "towels")
	require.NoError(t, err)
	clk.Add(time.Hour)
	second, err := svc.Raise(ctx, "102", "pillows")
	require.NoError(t, err)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, second.ID, open[0].ID)
	assert.Equal(t, first.ID, open[1].ID)
}

func TestCloseUnknownTicketDoesNotMutate(t *testing.T) {
	t.Parallel()

	svc, store, _ := newService()
	ctx := context.Background()

	ticket, err := svc.Raise(ctx, "101", "towels")
	require.NoError(t, err)

	_, err = svc.Close(ctx, ticket.ID+100)
	assert.ErrorIs(t, err, motel.ErrTicketNotFound)

	got, ok := store.Ticket(ticket.ID)
	require.True(t, ok)
	assert.Equal(t, motel.TicketOpen, got.Status)
}

type lostIDStore struct {
	*memstore.Store
}

func (lostIDStore) InsertTicket(context.Context, *motel.Ticket) error { return nil }

func TestRaiseWithoutIDIsUnknown(t *testing.T) {
	t.Parallel()

	svc := New(lostIDStore{memstore.New()}, clock.NewMockClock(time.Now()))
	_, err := svc.Raise(context.Background(), "101", "towels")
	assert.ErrorIs(t, err, motel.ErrUnknown)
}
