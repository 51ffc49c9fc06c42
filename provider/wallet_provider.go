package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	coreredis "github.com/Digital-Creators-Team/lotto-ledger/db/redis"
	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
)

// WalletProvider hands out player wallets. Wallets live in memory; with a
// Redis client their balances survive restarts.
type WalletProvider struct {
	redis   *coreredis.Client
	initial int64
	logger  zerolog.Logger

	mu       sync.Mutex
	accounts map[string]*lotto.Account
}

// NewWalletProvider creates a provider that opens unknown wallets with
// initialBalance. redisClient may be nil.
func NewWalletProvider(redisClient *coreredis.Client, initialBalance int64, logger zerolog.Logger) *WalletProvider {
	return &WalletProvider{
		redis:    redisClient,
		initial:  initialBalance,
		logger:   logger.With().Str("component", "wallet_provider").Logger(),
		accounts: make(map[string]*lotto.Account),
	}
}

func walletKey(userID string) string {
	return fmt.Sprintf("lotto:wallet:%s", userID)
}

// Account returns the wallet of userID, opening it on first use.
func (p *WalletProvider) Account(ctx context.Context, userID string) (*lotto.Account, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.ErrAccountNotFound, "missing user id")
	}

	p.mu.Lock()
	acc, ok := p.accounts[userID]
	p.mu.Unlock()
	if ok {
		return acc, nil
	}

	balance, err := p.loadBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if acc, ok := p.accounts[userID]; ok {
		return acc, nil
	}
	acc = lotto.NewAccount(userID, balance)
	p.accounts[userID] = acc
	return acc, nil
}

// Save persists the current balance of userID.
func (p *WalletProvider) Save(ctx context.Context, userID string) error {
	if p.redis == nil {
		return nil
	}
	p.mu.Lock()
	acc, ok := p.accounts[userID]
	p.mu.Unlock()
	if !ok {
		return apperrors.Newf(apperrors.ErrAccountNotFound, "no wallet for %s", userID)
	}
	if err := p.redis.Set(ctx, walletKey(userID), acc.Balance(), 0); err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

func (p *WalletProvider) loadBalance(ctx context.Context, userID string) (int64, error) {
	if p.redis == nil {
		return p.initial, nil
	}
	raw, err := p.redis.Get(ctx, walletKey(userID))
	if errors.Is(err, coreredis.ErrKeyNotFound) {
		p.logger.Debug().Str("user_id", userID).Int64("balance", p.initial).Msg("Opening new wallet")
		return p.initial, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load wallet: %w", err)
	}
	balance, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt wallet balance %q: %w", raw, err)
	}
	return balance, nil
}
