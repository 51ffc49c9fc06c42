package jackpot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

const (
	// DefaultBroadcastInterval is the default interval for broadcasting buffered updates
	DefaultBroadcastInterval = 2 * time.Second

	// DefaultRefreshInterval is the default interval for re-reading the provider
	DefaultRefreshInterval = 60 * time.Second
)

var poolOrder = map[string]int{PoolJackpot: 0, PoolTier1: 1, PoolTier2: 2, PoolTier3: 3, PoolTier4: 4}

var _ providers.EventPublisher = (*Service)(nil)

// Service keeps the latest jackpot and prize pool values, buffers changes
// and flushes them to listeners on a ticker. It is transport-agnostic:
// the HTTP layer subscribes through Listen. It consumes draw events as an
// EventPublisher, either directly from the ledger or from Kafka.
type Service struct {
	providers.NopPublisher

	mu       sync.RWMutex
	current  map[string]Update
	buffer   map[string]Update
	broad    *Broadcaster
	logger   zerolog.Logger
	provider SnapshotProvider

	interval        time.Duration
	refreshInterval time.Duration
	stopChan        chan struct{}
	stopOnce        sync.Once

	refreshMu  sync.Mutex
	refreshing bool
}

// NewService creates a new jackpot service and starts its loops.
func NewService(cfg ServiceConfig) *Service {
	interval := cfg.BroadcastInterval
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	s := &Service{
		current:         make(map[string]Update),
		buffer:          make(map[string]Update),
		broad:           NewBroadcaster(128),
		logger:          cfg.Logger.With().Str("component", "jackpot").Logger(),
		provider:        cfg.Provider,
		interval:        interval,
		refreshInterval: refresh,
		stopChan:        make(chan struct{}),
	}
	go s.loop()
	return s
}

// Initialize seeds the buffer from the provider.
func (s *Service) Initialize(ctx context.Context) error {
	if s.provider == nil {
		s.logger.Debug().Msg("No snapshot provider, skipping initialization")
		return nil
	}
	updates, err := s.provider.Pools(ctx)
	if err != nil {
		return err
	}
	for _, u := range updates {
		s.HandleUpdate(u)
	}
	s.logger.Info().Int("pools", len(updates)).Msg("Initialized pools from provider")
	return nil
}

// PublishDrawConducted turns a draw into pool updates.
func (s *Service) PublishDrawConducted(_ context.Context, ev *providers.DrawConductedEvent) error {
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	s.HandleUpdate(NewUpdate(PoolJackpot, ev.Jackpot, ev.Number, at))
	for i, id := range TierPools {
		s.HandleUpdate(NewUpdate(id, ev.PrizePools[i], ev.Number, at))
	}
	return nil
}

// HandleUpdate buffers an update unless a newer value is already known.
func (s *Service) HandleUpdate(update Update) {
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.current[update.PoolID]; ok && !update.newer(prev) {
		s.logger.Debug().
			Str("pool_id", update.PoolID).
			Int("draw", update.Draw).
			Int("known_draw", prev.Draw).
			Msg("Ignoring stale update")
		return
	}
	s.current[update.PoolID] = update
	s.buffer[update.PoolID] = update
}

// Current returns the latest value of every known pool, jackpot first.
func (s *Service) Current(ctx context.Context) []Update {
	if s.provider != nil {
		s.refresh(ctx)
	}
	s.mu.RLock()
	updates := lo.Values(s.current)
	s.mu.RUnlock()
	sortUpdates(updates)
	return updates
}

// Listen returns a channel to receive flushed updates plus a cancel function.
func (s *Service) Listen(ctx context.Context) (<-chan Update, context.CancelFunc) {
	return s.broad.Listen(ctx)
}

// Stop stops the service loops.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *Service) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	refresh := time.NewTicker(s.refreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.flush()
		case <-refresh.C:
			if s.provider != nil {
				s.refresh(context.Background())
			}
		}
	}
}

// flush broadcasts buffered updates and clears buffer.
func (s *Service) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	updates := lo.Values(s.buffer)
	s.buffer = make(map[string]Update)
	s.mu.Unlock()

	sortUpdates(updates)
	for _, u := range updates {
		s.broad.Send(u)
	}
	s.logger.Debug().Int("count", len(updates)).Msg("Flushed jackpot updates")
}

// refresh re-reads the provider; concurrent calls collapse into one.
func (s *Service) refresh(ctx context.Context) {
	s.refreshMu.Lock()
	if s.refreshing {
		s.refreshMu.Unlock()
		return
	}
	s.refreshing = true
	s.refreshMu.Unlock()

	defer func() {
		s.refreshMu.Lock()
		s.refreshing = false
		s.refreshMu.Unlock()
	}()

	updates, err := s.provider.Pools(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Failed to refresh pools from provider")
		return
	}
	for _, u := range updates {
		s.HandleUpdate(u)
	}
}

func sortUpdates(updates []Update) {
	sort.Slice(updates, func(i, j int) bool {
		return poolOrder[updates[i].PoolID] < poolOrder[updates[j].PoolID]
	})
}
