package lotto

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
	"github.com/Digital-Creators-Team/lotto-ledger/logging"
	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

type ticketRecord struct {
	ticket         Ticket
	active         bool
	settledThrough int
}

// Redemption reports one accepted redemption call.
type Redemption struct {
	TicketNumber int   `json:"ticket_number"`
	Gross        int64 `json:"gross"`
	Tax          int64 `json:"tax"`
	Paid         int64 `json:"paid"`
	MaxSingle    int64 `json:"max_single"`
	// SettledThrough is the last draw paid out for this ticket so far.
	SettledThrough int `json:"settled_through"`
}

// OfficeStats counts the tickets an office holds.
type OfficeStats struct {
	Office   int `json:"office"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// Office sells and redeems tickets. Its ticket table is keyed by ticket
// number and guarded by the office lock.
type Office struct {
	number int
	ledger *Ledger
	logger zerolog.Logger

	mu      sync.RWMutex
	tickets map[int]*ticketRecord
}

func newOffice(number int, l *Ledger) *Office {
	return &Office{
		number:  number,
		ledger:  l,
		logger:  logging.WithOffice(l.logger, number),
		tickets: make(map[int]*ticketRecord),
	}
}

// Number is the office number.
func (o *Office) Number() int {
	return o.number
}

// Issue sells a ticket for form. It returns a nil ticket and no error when
// the form has no valid bets or the buyer cannot afford it; neither case
// touches the ledger.
func (o *Office) Issue(ctx context.Context, form Form, buyer Buyer) (*Ticket, error) {
	if form.ValidBetCount() == 0 {
		return nil, nil
	}
	if form.Draws() > MaxDraws {
		return nil, apperrors.InvalidArgument("a ticket plays at most %d draws, got %d", MaxDraws, form.Draws())
	}

	ticket, ok := o.issue(form, buyer)
	if !ok {
		o.logger.Debug().Int64("price", form.Price()).Msg("Buyer cannot afford ticket")
		return nil, nil
	}

	o.logger.Debug().
		Int("ticket", ticket.Number).
		Str("id", ticket.ID.String()).
		Int("first_draw", ticket.FirstDraw).
		Int("last_draw", ticket.LastDraw).
		Int64("price", ticket.Price()).
		Msg("Ticket issued")

	ev := &providers.TicketIssuedEvent{
		TicketNumber: ticket.Number,
		Office:       o.number,
		Identifier:   ticket.ID.String(),
		Bets:         ticket.Form.ValidBetCount(),
		FirstDraw:    ticket.FirstDraw,
		LastDraw:     ticket.LastDraw,
		Price:        ticket.Price(),
		Tax:          ticket.IssuanceTax(),
		Timestamp:    o.ledger.now(),
	}
	if err := o.ledger.publisher.PublishTicketIssued(ctx, ev); err != nil {
		o.logger.Warn().Err(err).Int("ticket", ticket.Number).Msg("Failed to publish ticket event")
	}
	return ticket, nil
}

// issue runs with the draw sequence held shared so the window it computes
// cannot be overtaken by a draw.
func (o *Office) issue(form Form, buyer Buyer) (*Ticket, bool) {
	l := o.ledger
	l.seq.RLock()
	defer l.seq.RUnlock()

	price := form.Price()
	if !buyer.Debit(price) {
		return nil, false
	}

	number := l.NextTicketNumber()
	first := l.DrawCount() + 1
	// Both numbers are positive and the nonce is in range, so this cannot fail.
	id, _ := NewIdentifier(number, o.number, l.src.Intn(nonceLimit))
	ticket := Ticket{
		Number:    number,
		Office:    o.number,
		ID:        id,
		Form:      form,
		FirstDraw: first,
		LastDraw:  first + form.Draws() - 1,
	}

	o.mu.Lock()
	o.tickets[number] = &ticketRecord{ticket: ticket, active: true, settledThrough: first - 1}
	o.mu.Unlock()

	l.CollectIncome(price)
	l.WithholdTax(ticket.IssuanceTax())
	return &ticket, true
}

// IssueRandom sells a quick-pick ticket with the given number of bets.
func (o *Office) IssueRandom(ctx context.Context, bets, draws int, buyer Buyer) (*Ticket, error) {
	form, err := NewRandomForm(bets, draws, o.ledger.src)
	if err != nil {
		return nil, err
	}
	return o.Issue(ctx, form, buyer)
}

// Redeem settles a ticket presented by owner.
func (o *Office) Redeem(ctx context.Context, ticket Ticket, owner Recipient) (Redemption, error) {
	return o.RedeemByID(ctx, ticket.ID, owner)
}

// RedeemByID settles the ticket carrying id. Only draws that are already
// conducted and not yet settled are paid, so repeat calls are safe. An id
// that does not match a ticket sold here fails with ErrForgedTicket and
// changes nothing.
func (o *Office) RedeemByID(ctx context.Context, id Identifier, owner Recipient) (Redemption, error) {
	r, err := o.redeem(id, owner)
	if err != nil {
		o.logger.Warn().Str("id", id.String()).Msg("Forged ticket presented")
		return Redemption{}, err
	}

	o.logger.Debug().
		Int("ticket", r.TicketNumber).
		Int64("gross", r.Gross).
		Int64("tax", r.Tax).
		Int64("paid", r.Paid).
		Int("settled_through", r.SettledThrough).
		Msg("Ticket redeemed")

	ev := &providers.TicketRedeemedEvent{
		TicketNumber:   r.TicketNumber,
		Office:         o.number,
		Gross:          r.Gross,
		Tax:            r.Tax,
		Paid:           r.Paid,
		SettledThrough: r.SettledThrough,
		Timestamp:      o.ledger.now(),
	}
	if err := o.ledger.publisher.PublishTicketRedeemed(ctx, ev); err != nil {
		o.logger.Warn().Err(err).Int("ticket", r.TicketNumber).Msg("Failed to publish redemption event")
	}
	return r, nil
}

func (o *Office) redeem(id Identifier, owner Recipient) (Redemption, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	rec, ok := o.tickets[id.TicketNumber]
	if !ok || rec.ticket.ID != id {
		return Redemption{}, apperrors.Newf(apperrors.ErrForgedTicket,
			"ticket %s was not issued by office %d", id, o.number)
	}
	rec.active = false

	l := o.ledger
	through := min(rec.ticket.LastDraw, l.DrawCount())
	r := Redemption{TicketNumber: rec.ticket.Number, SettledThrough: rec.settledThrough}
	for n := rec.settledThrough + 1; n <= through; n++ {
		draw, err := l.Draw(n)
		if err != nil {
			return Redemption{}, err
		}
		for _, t := range AllTiers {
			amount := draw.TicketPrize(t, rec.ticket.Number)
			r.Gross += amount
			r.MaxSingle = max(r.MaxSingle, amount)
		}
	}
	if through > rec.settledThrough {
		rec.settledThrough = through
		r.SettledThrough = through
	}

	if r.MaxSingle >= RedemptionTaxThreshold {
		r.Tax = percent(r.Gross, RedemptionTaxPercent)
		l.WithholdTax(r.Tax)
	}
	r.Paid = r.Gross - r.Tax
	l.Payout(r.Paid, owner)
	return r, nil
}

// Snapshot copies the active tickets that play draw.
func (o *Office) Snapshot(draw int) Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	snap := Snapshot{Office: o.number}
	for _, rec := range o.tickets {
		if rec.active && rec.ticket.Plays(draw) {
			snap.Tickets = append(snap.Tickets, rec.ticket)
		}
	}
	return snap
}

// Stats counts active and inactive tickets.
func (o *Office) Stats() OfficeStats {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s := OfficeStats{Office: o.number}
	for _, rec := range o.tickets {
		if rec.active {
			s.Active++
		} else {
			s.Inactive++
		}
	}
	return s
}

// Ticket looks up a ticket sold here.
func (o *Office) Ticket(number int) (Ticket, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	rec, ok := o.tickets[number]
	if !ok {
		return Ticket{}, false
	}
	return rec.ticket, true
}
