package jackpot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

func drawEvent(number int, jackpot int64, at time.Time) *providers.DrawConductedEvent {
	return &providers.DrawConductedEvent{
		Number:     number,
		Jackpot:    jackpot,
		PrizePools: [4]int64{jackpot, 9792, 58752, 4800},
		Timestamp:  at,
	}
}

func TestServiceFlushesDrawUpdates(t *testing.T) {
	s := NewService(ServiceConfig{BroadcastInterval: 10 * time.Millisecond, Logger: zerolog.Nop()})
	defer s.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, stop := s.Listen(ctx)
	defer stop()

	at := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, s.PublishDrawConducted(ctx, drawEvent(2, 200_053_856, at)))

	got := map[string]Update{}
	timeout := time.After(2 * time.Second)
	for len(got) < 5 {
		select {
		case u := <-ch:
			got[u.PoolID] = u
		case <-timeout:
			t.Fatalf("only %d updates received", len(got))
		}
	}

	assert.Equal(t, int64(200_053_856), got[PoolJackpot].Minor)
	assert.Equal(t, "2000538.56", got[PoolJackpot].Amount.StringFixed(2))
	assert.Equal(t, int64(4800), got[PoolTier4].Minor)
	assert.Equal(t, 2, got[PoolTier2].Draw)
}

func TestServiceIgnoresStaleDraws(t *testing.T) {
	s := NewService(ServiceConfig{Logger: zerolog.Nop()})
	defer s.Stop()
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, s.PublishDrawConducted(ctx, drawEvent(5, 300, at)))
	require.NoError(t, s.PublishDrawConducted(ctx, drawEvent(4, 999, at.Add(time.Hour))))

	current := s.Current(ctx)
	require.Len(t, current, 5)
	assert.Equal(t, PoolJackpot, current[0].PoolID)
	assert.Equal(t, int64(300), current[0].Minor)
	assert.Equal(t, 5, current[0].Draw)
	assert.Equal(t, PoolTier4, current[4].PoolID)
}

func TestServiceUsesProvider(t *testing.T) {
	calls := 0
	provider := SnapshotFunc(func(context.Context) ([]Update, error) {
		calls++
		if calls > 2 {
			return nil, errors.New("unavailable")
		}
		return []Update{NewUpdate(PoolJackpot, 200_000_000, 0, time.Unix(100, 0))}, nil
	})
	s := NewService(ServiceConfig{Logger: zerolog.Nop(), Provider: provider})
	defer s.Stop()

	require.NoError(t, s.Initialize(context.Background()))
	current := s.Current(context.Background())
	require.Len(t, current, 1)
	assert.Equal(t, int64(200_000_000), current[0].Minor)

	// Provider failures keep the last known values.
	current = s.Current(context.Background())
	require.Len(t, current, 1)
	assert.Equal(t, 3, calls)
}

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster(4)
	ctx := context.Background()
	a, cancelA := b.Listen(ctx)
	c, cancelC := b.Listen(ctx)
	assert.Equal(t, 2, b.Listeners())

	b.Send(NewUpdate(PoolJackpot, 1, 1, time.Now()))
	assert.Equal(t, int64(1), (<-a).Minor)
	assert.Equal(t, int64(1), (<-c).Minor)

	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Eventually(t, func() bool { return b.Listeners() == 1 }, time.Second, 5*time.Millisecond)
	cancelC()
}
