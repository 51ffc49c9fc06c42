package server

import (
	"context"

	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

// WalletStore resolves the wallet of an authenticated player.
type WalletStore interface {
	Account(ctx context.Context, userID string) (*lotto.Account, error)
	Save(ctx context.Context, userID string) error
}

// ReportReader serves draws this process did not conduct itself, e.g. on a
// read replica fed from Kafka.
type ReportReader interface {
	GetDraw(ctx context.Context, number int) (*providers.DrawConductedEvent, error)
	LatestDraw(ctx context.Context) (*providers.DrawConductedEvent, error)
}

var _ ReportReader = (providers.ReportStore)(nil)
