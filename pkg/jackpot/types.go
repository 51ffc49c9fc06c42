package jackpot

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Pool identifiers published on the feed.
const (
	PoolJackpot = "jackpot"
	PoolTier1   = "tier1"
	PoolTier2   = "tier2"
	PoolTier3   = "tier3"
	PoolTier4   = "tier4"
)

// TierPools lists the per-draw prize pools in tier order.
var TierPools = []string{PoolTier1, PoolTier2, PoolTier3, PoolTier4}

// Update is the value of one pool after a draw.
type Update struct {
	PoolID string `json:"pool_id"`
	// Amount is in major units; Minor is the exact value.
	Amount    decimal.Decimal `json:"amount"`
	Minor     int64           `json:"minor"`
	Draw      int             `json:"draw"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewUpdate builds an update from a minor-unit amount.
func NewUpdate(poolID string, minor int64, draw int, at time.Time) Update {
	return Update{
		PoolID:    poolID,
		Amount:    decimal.New(minor, -2),
		Minor:     minor,
		Draw:      draw,
		Timestamp: at,
	}
}

// newer reports whether u should replace prev.
func (u Update) newer(prev Update) bool {
	if u.Draw != prev.Draw {
		return u.Draw > prev.Draw
	}
	return u.Timestamp.After(prev.Timestamp)
}

// SnapshotProvider reports the authoritative pool values, e.g. the ledger
// itself or the draw report store.
type SnapshotProvider interface {
	Pools(ctx context.Context) ([]Update, error)
}

// SnapshotFunc adapts a function to SnapshotProvider.
type SnapshotFunc func(ctx context.Context) ([]Update, error)

func (f SnapshotFunc) Pools(ctx context.Context) ([]Update, error) { return f(ctx) }

// ServiceConfig configures the jackpot service.
type ServiceConfig struct {
	// BroadcastInterval controls how often buffered updates are flushed to listeners.
	BroadcastInterval time.Duration

	// RefreshInterval controls how often values are re-read from Provider.
	RefreshInterval time.Duration

	// Logger is optional; if zero value, a no-op logger is used.
	Logger zerolog.Logger

	// Provider is optional; without it the feed only reflects draw events.
	Provider SnapshotProvider
}
