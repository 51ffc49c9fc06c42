package simulation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/treasury"
)

// Config sizes a simulated season.
type Config struct {
	Offices        int
	Players        int
	Draws          int
	InitialBalance int64
	InitialFunds   int64
	Seed           int64
	Logger         zerolog.Logger
	Publisher      providers.EventPublisher
}

// DrawReport is one line of the season table.
type DrawReport struct {
	Number         int      `json:"number"`
	WinningNumbers []int    `json:"winning_numbers"`
	TotalBets      int      `json:"total_bets"`
	WinnerCounts   [4]int   `json:"winner_counts"`
	PrizePerWinner [4]int64 `json:"prize_per_winner"`
	Jackpot        int64    `json:"jackpot"`
	Funds          int64    `json:"funds"`
	TicketsSold    int      `json:"tickets_sold"`
	Paid           int64    `json:"paid"`
}

// Report summarises a season.
type Report struct {
	Draws          []DrawReport  `json:"draws"`
	Summary        lotto.Summary `json:"summary"`
	TaxCollected   int64         `json:"tax_collected"`
	SubsidiesGiven int64         `json:"subsidies_given"`
	TopPlayer      string        `json:"top_player"`
	TopBalance     int64         `json:"top_balance"`
	PlayerTotal    int64         `json:"player_total"`
}

type strategy func(p *player, src lotto.Source, offices int) (office, bets, draws int)

// minimalist buys one quick pick for the next draw at its own office.
func minimalist(p *player, _ lotto.Source, _ int) (int, int, int) {
	return p.favourite, 1, 1
}

// gambler picks everything at random.
func gambler(_ *player, src lotto.Source, offices int) (int, int, int) {
	return src.Intn(offices) + 1, src.Intn(lotto.MaxBets) + 1, src.Intn(lotto.MaxDraws) + 1
}

type player struct {
	account   *lotto.Account
	favourite int
	buy       strategy
	tickets   []*lotto.Ticket
}

// Run plays cfg.Draws draws: every player buys, a draw is conducted, then
// finished tickets are redeemed at their office.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.Offices <= 0 || cfg.Players <= 0 || cfg.Draws <= 0 {
		return nil, fmt.Errorf("offices, players and draws must be positive")
	}

	budget := treasury.NewBudget()
	ledger := lotto.NewLedger(lotto.Config{
		TaxAuthority: budget,
		Source:       lotto.NewSource(cfg.Seed),
		Logger:       cfg.Logger,
		Publisher:    cfg.Publisher,
		InitialFunds: cfg.InitialFunds,
	})
	for i := 1; i <= cfg.Offices; i++ {
		if _, err := ledger.RegisterOffice(i); err != nil {
			return nil, err
		}
	}

	src := lotto.NewSource(cfg.Seed + 1)
	players := make([]*player, cfg.Players)
	for i := range players {
		p := &player{
			account:   lotto.NewAccount(fmt.Sprintf("player-%03d", i+1), cfg.InitialBalance),
			favourite: src.Intn(cfg.Offices) + 1,
			buy:       minimalist,
		}
		if i%2 == 1 {
			p.buy = gambler
		}
		players[i] = p
	}

	report := &Report{}
	for d := 0; d < cfg.Draws; d++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sold := 0
		for _, p := range players {
			number, bets, draws := p.buy(p, src, cfg.Offices)
			office, err := ledger.Office(number)
			if err != nil {
				return nil, err
			}
			t, err := office.IssueRandom(ctx, bets, draws, p.account)
			if err != nil {
				return nil, err
			}
			if t != nil {
				p.tickets = append(p.tickets, t)
				sold++
			}
		}

		draw, err := ledger.ConductDraw(ctx)
		if err != nil {
			return nil, err
		}

		paid, err := redeemFinished(ctx, ledger, players)
		if err != nil {
			return nil, err
		}

		row := DrawReport{
			Number:         draw.Number(),
			WinningNumbers: draw.WinningNumbers(),
			TotalBets:      draw.TotalBets(),
			WinnerCounts:   draw.WinnerCounts(),
			Jackpot:        ledger.Jackpot(),
			Funds:          ledger.Funds(),
			TicketsSold:    sold,
			Paid:           paid,
		}
		for i, t := range lotto.AllTiers {
			row.PrizePerWinner[i] = draw.PrizePerWinner(t)
		}
		report.Draws = append(report.Draws, row)
	}

	top := lo.MaxBy(players, func(a, b *player) bool { return a.account.Balance() > b.account.Balance() })
	report.TopPlayer = top.account.ID()
	report.TopBalance = top.account.Balance()
	report.PlayerTotal = lo.SumBy(players, func(p *player) int64 { return p.account.Balance() })
	report.Summary = ledger.Summary()
	report.TaxCollected = budget.TaxCollected()
	report.SubsidiesGiven = budget.SubsidiesGiven()
	return report, nil
}

func redeemFinished(ctx context.Context, ledger *lotto.Ledger, players []*player) (int64, error) {
	conducted := ledger.DrawCount()
	var paid int64
	for _, p := range players {
		finished, pending := lo.FilterReject(p.tickets, func(t *lotto.Ticket, _ int) bool {
			return t.LastDraw <= conducted
		})
		for _, t := range finished {
			office, err := ledger.Office(t.Office)
			if err != nil {
				return 0, err
			}
			r, err := office.Redeem(ctx, *t, p.account)
			if err != nil {
				return 0, err
			}
			paid += r.Paid
		}
		p.tickets = pending
	}
	return paid, nil
}
