package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/medibot/internal/booking"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, time.Hour), mr
}

func TestLoadUnknownSessionIsIdle(t *testing.T) {
	store, _ := newTestStore(t)

	state, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.False(t, state.BookingActive())
	assert.Equal(t, booking.Draft{}, state.Draft)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	in := State{
		Phase: PhaseBooking,
		Stage: booking.StageDate,
		Draft: booking.Draft{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210"},
	}
	require.NoError(t, store.Save(ctx, "sess-1", in))

	out, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.True(t, out.BookingActive())
}

func TestSaveSetsTTL(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, store.Save(context.Background(), "sess-1", State{Phase: PhaseIdle}))
	ttl := mr.TTL("session:sess-1")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestClearRemovesState(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess-1", State{Phase: PhaseConfirming}))
	require.NoError(t, store.Clear(ctx, "sess-1"))

	state, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, state.Phase)
}

func TestResetBooking(t *testing.T) {
	state := State{
		Phase: PhaseConfirming,
		Stage: booking.StageConfirm,
		Draft: booking.Draft{Name: "A", Email: "a@b.co", Phone: "9876543210", Date: "2099-01-01", Time: "10:30 AM"},
	}
	state.ResetBooking()

	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Equal(t, booking.StageName, state.Stage)
	assert.Equal(t, booking.Draft{}, state.Draft)
	assert.False(t, state.BookingActive())
}
