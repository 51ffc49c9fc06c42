package providers

import (
	"context"
	"time"
)

// TaxAuthority receives tax remittances and grants subsidies.
// Calls are fire-and-forget; implementations must not block the caller.
type TaxAuthority interface {
	CollectTax(amount int64)
	GiveSubsidy(amount int64)
}

// EventPublisher receives ledger events after the state change is committed.
type EventPublisher interface {
	PublishTicketIssued(ctx context.Context, ev *TicketIssuedEvent) error
	PublishTicketRedeemed(ctx context.Context, ev *TicketRedeemedEvent) error
	PublishDrawConducted(ctx context.Context, ev *DrawConductedEvent) error
}

// ReportStore keeps a read model of conducted draws for the reporting layer.
type ReportStore interface {
	SaveDraw(ctx context.Context, ev *DrawConductedEvent) error
	GetDraw(ctx context.Context, number int) (*DrawConductedEvent, error)
	LatestDraw(ctx context.Context) (*DrawConductedEvent, error)
}

// TicketIssuedEvent is emitted when an office hands out a ticket.
type TicketIssuedEvent struct {
	TicketNumber int       `json:"ticket_number"`
	Office       int       `json:"office"`
	Identifier   string    `json:"identifier"`
	Bets         int       `json:"bets"`
	FirstDraw    int       `json:"first_draw"`
	LastDraw     int       `json:"last_draw"`
	Price        int64     `json:"price"`
	Tax          int64     `json:"tax"`
	Timestamp    time.Time `json:"timestamp"`
}

// TicketRedeemedEvent is emitted for every accepted redemption call.
type TicketRedeemedEvent struct {
	TicketNumber   int       `json:"ticket_number"`
	Office         int       `json:"office"`
	Gross          int64     `json:"gross"`
	Tax            int64     `json:"tax"`
	Paid           int64     `json:"paid"`
	SettledThrough int       `json:"settled_through"`
	Timestamp      time.Time `json:"timestamp"`
}

// DrawConductedEvent is the public summary of one draw.
type DrawConductedEvent struct {
	Number         int       `json:"number"`
	WinningNumbers []int     `json:"winning_numbers"`
	TotalBets      int       `json:"total_bets"`
	WinnerCounts   [4]int    `json:"winner_counts"`
	PrizePools     [4]int64  `json:"prize_pools"`
	PrizePerWinner [4]int64  `json:"prize_per_winner"`
	Jackpot        int64     `json:"jackpot"`
	Funds          int64     `json:"funds"`
	Timestamp      time.Time `json:"timestamp"`
}

// NopPublisher ignores every event. Embed it to implement a subset.
type NopPublisher struct{}

func (NopPublisher) PublishTicketIssued(context.Context, *TicketIssuedEvent) error     { return nil }
func (NopPublisher) PublishTicketRedeemed(context.Context, *TicketRedeemedEvent) error { return nil }
func (NopPublisher) PublishDrawConducted(context.Context, *DrawConductedEvent) error   { return nil }

// MultiPublisher fans an event out to every publisher and returns the first error.
type MultiPublisher []EventPublisher

func (m MultiPublisher) PublishTicketIssued(ctx context.Context, ev *TicketIssuedEvent) error {
	var first error
	for _, p := range m {
		if err := p.PublishTicketIssued(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiPublisher) PublishTicketRedeemed(ctx context.Context, ev *TicketRedeemedEvent) error {
	var first error
	for _, p := range m {
		if err := p.PublishTicketRedeemed(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiPublisher) PublishDrawConducted(ctx context.Context, ev *DrawConductedEvent) error {
	var first error
	for _, p := range m {
		if err := p.PublishDrawConducted(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
