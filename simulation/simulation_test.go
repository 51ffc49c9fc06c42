package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Offices: 3, Players: 40, Draws: 12, InitialBalance: 50_000, Seed: 7}
}

func TestRunConservesMoney(t *testing.T) {
	cfg := testConfig()
	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, report.Draws, cfg.Draws)

	for i, d := range report.Draws {
		assert.Equal(t, i+1, d.Number)
		assert.Len(t, d.WinningNumbers, 6)
		assert.Positive(t, d.TicketsSold)
	}
	assert.Equal(t, cfg.Draws, report.Summary.Draws)
	assert.Positive(t, report.TaxCollected)
	assert.NotEmpty(t, report.TopPlayer)
	assert.GreaterOrEqual(t, report.TopBalance, int64(0))

	// Every minor unit is held by a player, the ledger or the treasury.
	opening := int64(cfg.Players) * cfg.InitialBalance
	closing := report.PlayerTotal + report.Summary.Funds + report.TaxCollected - report.SubsidiesGiven
	assert.Equal(t, opening, closing)
}

func TestRunIsDeterministic(t *testing.T) {
	a, err := Run(context.Background(), testConfig())
	require.NoError(t, err)
	b, err := Run(context.Background(), testConfig())
	require.NoError(t, err)

	for i := range a.Draws {
		assert.Equal(t, a.Draws[i].WinningNumbers, b.Draws[i].WinningNumbers)
		assert.Equal(t, a.Draws[i].TotalBets, b.Draws[i].TotalBets)
	}
	assert.Equal(t, a.Summary, b.Summary)
	assert.Equal(t, a.TopPlayer, b.TopPlayer)
}

func TestRunRejectsEmptySeason(t *testing.T) {
	cfg := testConfig()
	cfg.Draws = 0
	_, err := Run(context.Background(), cfg)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, testConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
