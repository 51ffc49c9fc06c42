package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
)

type failingConductor struct{ calls int }

func (f *failingConductor) ConductDraw(context.Context, ...int) (*lotto.Draw, error) {
	f.calls++
	return nil, errors.New("boom")
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New("every tuesday", lotto.NewLedger(lotto.Config{}), zerolog.Nop())
	assert.Error(t, err)
}

func TestNextFollowsSpec(t *testing.T) {
	s, err := New("0 20 * * 3,6", lotto.NewLedger(lotto.Config{}), zerolog.Nop())
	require.NoError(t, err)

	// 2024-05-01 is a Wednesday.
	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2024, 5, 1, 20, 0, 0, 0, time.Local), s.Next(from))
	assert.Equal(t, time.Date(2024, 5, 4, 20, 0, 0, 0, time.Local), s.Next(from.Add(9*time.Hour)))
}

func TestRunConductsDraw(t *testing.T) {
	ledger := lotto.NewLedger(lotto.Config{Source: lotto.NewSource(7)})
	s, err := New("@every 1h", ledger, zerolog.Nop())
	require.NoError(t, err)

	s.run()
	s.run()
	assert.Equal(t, 2, ledger.DrawCount())

	f := &failingConductor{}
	s.ledger = f
	s.run()
	assert.Equal(t, 1, f.calls)
}

func TestStartStop(t *testing.T) {
	s, err := New("@every 1h", lotto.NewLedger(lotto.Config{}), zerolog.Nop())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
