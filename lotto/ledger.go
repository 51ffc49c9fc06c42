package lotto

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
	"github.com/Digital-Creators-Team/lotto-ledger/logging"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/treasury"
)

// Config wires a ledger to its collaborators. Every field is optional.
type Config struct {
	// TaxAuthority receives taxes and grants subsidies; defaults to an in-process budget.
	TaxAuthority providers.TaxAuthority

	// Source drives winning numbers and identifier nonces; defaults to a clock-seeded source.
	Source Source

	// Logger is optional; the zero value discards everything.
	Logger zerolog.Logger

	// Publisher receives events after each committed change.
	Publisher providers.EventPublisher

	// Clock stamps draws and events; defaults to time.Now.
	Clock func() time.Time

	// InitialFunds is the opening balance.
	InitialFunds int64
}

// Summary is a point-in-time view of the ledger for reporting.
type Summary struct {
	Funds            int64 `json:"funds"`
	Jackpot          int64 `json:"jackpot"`
	Draws            int   `json:"draws"`
	LastTicketNumber int   `json:"last_ticket_number"`
	Offices          int   `json:"offices"`
}

// Ledger is the central authority: it owns funds, the jackpot, the global
// ticket counter and the draw history, and sequences draws against
// issuance across all registered offices.
type Ledger struct {
	// seq is held shared by issuance and exclusively by a draw.
	seq sync.RWMutex

	mu      sync.Mutex
	funds   int64
	jackpot int64
	counter int
	history []*Draw

	officesMu sync.RWMutex
	offices   map[int]*Office

	tax       providers.TaxAuthority
	src       Source
	engine    *Engine
	publisher providers.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewLedger creates a ledger with the jackpot seeded at JackpotFloor.
func NewLedger(cfg Config) *Ledger {
	l := &Ledger{
		funds:     cfg.InitialFunds,
		jackpot:   JackpotFloor,
		offices:   make(map[int]*Office),
		tax:       cfg.TaxAuthority,
		src:       cfg.Source,
		publisher: cfg.Publisher,
		logger:    logging.WithComponent(cfg.Logger, "ledger"),
		now:       cfg.Clock,
	}
	if l.tax == nil {
		l.tax = treasury.NewBudget()
	}
	if l.src == nil {
		l.src = NewSource(0)
	}
	if l.publisher == nil {
		l.publisher = providers.NopPublisher{}
	}
	if l.now == nil {
		l.now = time.Now
	}
	l.engine = NewEngine(l.src)
	return l
}

// RegisterOffice opens a sales office under the given number.
func (l *Ledger) RegisterOffice(number int) (*Office, error) {
	if number < 1 {
		return nil, apperrors.InvalidArgument("office number must be >= 1, got %d", number)
	}
	l.officesMu.Lock()
	defer l.officesMu.Unlock()
	if _, ok := l.offices[number]; ok {
		return nil, apperrors.InvalidArgument("office %d is already registered", number)
	}
	o := newOffice(number, l)
	l.offices[number] = o
	l.logger.Info().Int("office", number).Msg("Office registered")
	return o, nil
}

// Office returns a registered office.
func (l *Ledger) Office(number int) (*Office, error) {
	l.officesMu.RLock()
	defer l.officesMu.RUnlock()
	o, ok := l.offices[number]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrOfficeNotFound, "office %d is not registered", number)
	}
	return o, nil
}

// Offices returns all offices ordered by number.
func (l *Ledger) Offices() []*Office {
	l.officesMu.RLock()
	defer l.officesMu.RUnlock()
	offices := lo.Values(l.offices)
	sort.Slice(offices, func(i, j int) bool { return offices[i].number < offices[j].number })
	return offices
}

// ConductDraw runs the next draw. Without fixed numbers the winning
// numbers are random; fixed numbers must be six distinct values in range.
// No ticket can be issued while the draw is in progress.
func (l *Ledger) ConductDraw(ctx context.Context, fixed ...int) (*Draw, error) {
	winning := fixed
	if len(fixed) > 0 {
		if err := l.engine.ValidateNumbers(fixed); err != nil {
			return nil, err
		}
	} else {
		winning = l.engine.Generate()
	}

	draw, alloc, funds := l.conduct(winning)
	counts := draw.WinnerCounts()

	logger := logging.WithDraw(l.logger, draw.Number())
	logger.Info().
		Ints("winning_numbers", draw.WinningNumbers()).
		Int("total_bets", draw.TotalBets()).
		Ints("winners", counts[:]).
		Int64("pot", alloc.Pot).
		Str("jackpot", FormatAmount(alloc.Jackpot)).
		Msg("Draw conducted")

	var perWinner [Tiers]int64
	for _, t := range AllTiers {
		perWinner[t.index()] = draw.PrizePerWinner(t)
	}
	ev := &providers.DrawConductedEvent{
		Number:         draw.Number(),
		WinningNumbers: draw.WinningNumbers(),
		TotalBets:      draw.TotalBets(),
		WinnerCounts:   counts,
		PrizePools:     draw.Pools(),
		PrizePerWinner: perWinner,
		Jackpot:        alloc.Jackpot,
		Funds:          funds,
		Timestamp:      draw.ConductedAt(),
	}
	if err := l.publisher.PublishDrawConducted(ctx, ev); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish draw event")
	}
	return draw, nil
}

func (l *Ledger) conduct(winning []int) (*Draw, Allocation, int64) {
	l.seq.Lock()
	defer l.seq.Unlock()

	l.mu.Lock()
	number := len(l.history) + 1
	l.mu.Unlock()

	offices := l.Offices()
	snapshots := make([]Snapshot, 0, len(offices))
	for _, o := range offices {
		snapshots = append(snapshots, o.Snapshot(number))
	}

	draw := newDraw(number, winning)
	c := l.engine.Classify(number, draw.winning, snapshots)
	draw.winners = c.Winners
	draw.totalBets = c.TotalBets

	l.mu.Lock()
	defer l.mu.Unlock()
	alloc := AllocatePrizes(c.TotalBets, c.Counts(), l.jackpot, number == 1)
	draw.pools = alloc.Pools
	draw.at = l.now()
	l.jackpot = alloc.Jackpot
	l.history = append(l.history, draw)
	return draw, alloc, l.funds
}

// CollectIncome adds ticket revenue to funds.
func (l *Ledger) CollectIncome(amount int64) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funds += amount
}

// WithholdTax takes amount out of funds and remits it to the tax authority.
func (l *Ledger) WithholdTax(amount int64) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funds -= amount
	l.tax.CollectTax(amount)
}

// Payout credits recipient with amount. A shortfall in funds is first
// covered by a subsidy of exactly the missing amount.
func (l *Ledger) Payout(amount int64, recipient Recipient) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.funds < amount {
		shortfall := amount - l.funds
		l.tax.GiveSubsidy(shortfall)
		l.funds += shortfall
		l.logger.Warn().Int64("shortfall", shortfall).Msg("Funds short, subsidy granted")
	}
	l.funds -= amount
	recipient.Credit(amount)
}

// NextTicketNumber returns the next global ticket number, starting at 1.
func (l *Ledger) NextTicketNumber() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counter++
	return l.counter
}

// SetFunds overwrites the balance.
func (l *Ledger) SetFunds(amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funds = amount
}

// DrawCount is the number of draws conducted so far.
func (l *Ledger) DrawCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}

// Draw returns a conducted draw by number.
func (l *Ledger) Draw(number int) (*Draw, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if number < 1 || number > len(l.history) {
		return nil, apperrors.Newf(apperrors.ErrDrawNotFound, "draw %d has not been conducted", number)
	}
	return l.history[number-1], nil
}

// Draws returns the history, oldest first.
func (l *Ledger) Draws() []*Draw {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Draw(nil), l.history...)
}

func (l *Ledger) Funds() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.funds
}

func (l *Ledger) Jackpot() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.jackpot
}

func (l *Ledger) LastTicketNumber() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counter
}

// Summary reports the aggregate state.
func (l *Ledger) Summary() Summary {
	l.officesMu.RLock()
	offices := len(l.offices)
	l.officesMu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	return Summary{
		Funds:            l.funds,
		Jackpot:          l.jackpot,
		Draws:            len(l.history),
		LastTicketNumber: l.counter,
		Offices:          offices,
	}
}
