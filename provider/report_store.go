package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	coreredis "github.com/Digital-Creators-Team/lotto-ledger/db/redis"
	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/jackpot"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

const (
	latestDrawKey = "lotto:draw:latest"
	summaryKey    = "lotto:summary"
)

var (
	_ providers.ReportStore    = (*ReportStore)(nil)
	_ providers.EventPublisher = (*ReportStore)(nil)
	_ jackpot.SnapshotProvider = (*ReportStore)(nil)
)

// ReportSummary is the aggregate kept in the summary hash.
type ReportSummary struct {
	Draws     int       `json:"draws"`
	Jackpot   int64     `json:"jackpot"`
	Funds     int64     `json:"funds"`
	TotalBets int64     `json:"total_bets"`
	UpdatedAt time.Time `json:"updated_at"`
}

// summaryFields mirrors the hash; values arrive as strings.
type summaryFields struct {
	Draws     int   `mapstructure:"draws"`
	Jackpot   int64 `mapstructure:"jackpot"`
	Funds     int64 `mapstructure:"funds"`
	TotalBets int64 `mapstructure:"total_bets"`
	UpdatedAt int64 `mapstructure:"updated_at"`
}

// ReportStore is the draw read model in Redis. It is fed with draw events
// and serves the reporting API and the jackpot feed.
type ReportStore struct {
	providers.NopPublisher

	redis  *coreredis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewReportStore creates a store; ttl bounds how long draw reports are kept.
func NewReportStore(redisClient *coreredis.Client, ttl time.Duration, logger zerolog.Logger) *ReportStore {
	return &ReportStore{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With().Str("component", "report_store").Logger(),
	}
}

func drawKey(number int) string {
	return fmt.Sprintf("lotto:draw:%d", number)
}

func countedKey(number int) string {
	return fmt.Sprintf("lotto:draw:%d:counted", number)
}

// SaveDraw stores the report and advances the latest pointer and summary.
// Replays of older draws are stored but never move the pointer back, and a
// draw's bets are added to the total once however often it is delivered.
func (s *ReportStore) SaveDraw(ctx context.Context, ev *providers.DrawConductedEvent) error {
	if err := s.redis.SetJSON(ctx, drawKey(ev.Number), ev, s.ttl); err != nil {
		return err
	}
	first, err := s.redis.SetNX(ctx, countedKey(ev.Number), 1, s.ttl)
	if err != nil {
		return err
	}
	if first {
		if err := s.redis.HIncrBy(ctx, summaryKey, "total_bets", int64(ev.TotalBets)); err != nil {
			return err
		}
	}

	advanced, err := s.redis.AdvanceMax(ctx, latestDrawKey, int64(ev.Number), summaryKey,
		"draws", ev.Number,
		"jackpot", ev.Jackpot,
		"funds", ev.Funds,
		"updated_at", ev.Timestamp.Unix(),
	)
	if err != nil {
		return err
	}
	if !advanced {
		s.logger.Debug().Int("draw", ev.Number).Msg("Stored out-of-order draw")
	}
	return nil
}

// PublishDrawConducted stores every draw it receives.
func (s *ReportStore) PublishDrawConducted(ctx context.Context, ev *providers.DrawConductedEvent) error {
	return s.SaveDraw(ctx, ev)
}

// GetDraw loads a stored report.
func (s *ReportStore) GetDraw(ctx context.Context, number int) (*providers.DrawConductedEvent, error) {
	var ev providers.DrawConductedEvent
	if err := s.redis.GetJSON(ctx, drawKey(number), &ev); err != nil {
		if errors.Is(err, coreredis.ErrKeyNotFound) {
			return nil, apperrors.Newf(apperrors.ErrDrawNotFound, "no report for draw %d", number)
		}
		return nil, err
	}
	return &ev, nil
}

// LatestDraw loads the most recent report.
func (s *ReportStore) LatestDraw(ctx context.Context) (*providers.DrawConductedEvent, error) {
	number, err := s.latestNumber(ctx)
	if err != nil {
		if errors.Is(err, coreredis.ErrKeyNotFound) {
			return nil, apperrors.New(apperrors.ErrDrawNotFound, "no draw has been reported")
		}
		return nil, err
	}
	return s.GetDraw(ctx, number)
}

// Summary decodes the summary hash.
func (s *ReportStore) Summary(ctx context.Context) (*ReportSummary, error) {
	fields, err := s.redis.HGetAll(ctx, summaryKey)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperrors.New(apperrors.ErrDrawNotFound, "no draw has been reported")
	}
	var raw summaryFields
	if err := mapstructure.WeakDecode(fields, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &ReportSummary{
		Draws:     raw.Draws,
		Jackpot:   raw.Jackpot,
		Funds:     raw.Funds,
		TotalBets: raw.TotalBets,
		UpdatedAt: time.Unix(raw.UpdatedAt, 0).UTC(),
	}, nil
}

// Pools serves the jackpot feed from the latest report.
func (s *ReportStore) Pools(ctx context.Context) ([]jackpot.Update, error) {
	ev, err := s.LatestDraw(ctx)
	if err != nil {
		return nil, err
	}
	updates := []jackpot.Update{jackpot.NewUpdate(jackpot.PoolJackpot, ev.Jackpot, ev.Number, ev.Timestamp)}
	for i, id := range jackpot.TierPools {
		updates = append(updates, jackpot.NewUpdate(id, ev.PrizePools[i], ev.Number, ev.Timestamp))
	}
	return updates, nil
}

func (s *ReportStore) latestNumber(ctx context.Context) (int, error) {
	raw, err := s.redis.Get(ctx, latestDrawKey)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt latest draw pointer %q: %w", raw, err)
	}
	return n, nil
}
