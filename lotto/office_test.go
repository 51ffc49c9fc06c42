package lotto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
)

// injectDraw appends a draw with hand-made tier lists and pools.
func injectDraw(l *Ledger, winners [Tiers][]int, pools [Tiers]int64) *Draw {
	l.mu.Lock()
	defer l.mu.Unlock()
	d := newDraw(len(l.history)+1, []int{1, 2, 3, 4, 5, 6})
	d.winners = winners
	d.pools = pools
	l.history = append(l.history, d)
	return d
}

func issueOne(t *testing.T, office *Office, buyer Buyer, draws int, rows ...[]int) *Ticket {
	t.Helper()
	form, err := NewForm(rows, draws)
	require.NoError(t, err)
	ticket, err := office.Issue(context.Background(), form, buyer)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	return ticket
}

func TestIssueChargesPriceAndTax(t *testing.T) {
	tests := []struct {
		name  string
		bets  int
		draws int
	}{
		{"single bet single draw", 1, 1},
		{"three bets five draws", 3, 5},
		{"full form", MaxBets, MaxDraws},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, budget := newTestLedger(t)
			office, err := l.RegisterOffice(1)
			require.NoError(t, err)
			acct := NewAccount("p1", 100_000)

			ticket, err := office.IssueRandom(context.Background(), tt.bets, tt.draws, acct)
			require.NoError(t, err)
			require.NotNil(t, ticket)

			price := BetPrice * int64(tt.bets*tt.draws)
			assert.Equal(t, price, ticket.Price())
			assert.Equal(t, price/5, budget.TaxCollected())
			assert.Equal(t, price-price/5, l.Funds())
			assert.Equal(t, 100_000-price, acct.Balance())
			assert.Equal(t, 1, ticket.FirstDraw)
			assert.Equal(t, tt.draws, ticket.LastDraw)
			assert.Equal(t, Checksum(ticket.Number, 1, ticket.ID.Nonce), ticket.ID.Checksum)
		})
	}
}

func TestIssueWindowStartsAfterLastDraw(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := l.ConductDraw(ctx)
		require.NoError(t, err)
	}
	ticket := issueOne(t, office, NewAccount("p1", 10_000), 4, []int{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 3, ticket.FirstDraw)
	assert.Equal(t, 6, ticket.LastDraw)
	assert.Equal(t, []int{3, 4, 5, 6}, ticket.Draws())
}

func TestIssueCannotAfford(t *testing.T) {
	l, budget := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)
	acct := NewAccount("p1", 299)

	form, err := NewForm([][]int{{1, 2, 3, 4, 5, 6}}, 1)
	require.NoError(t, err)
	ticket, err := office.Issue(context.Background(), form, acct)
	require.NoError(t, err)
	assert.Nil(t, ticket)

	assert.Zero(t, l.Funds())
	assert.Zero(t, l.LastTicketNumber())
	assert.Zero(t, budget.TaxCollected())
	assert.Equal(t, int64(299), acct.Balance())
	assert.Equal(t, OfficeStats{Office: 1}, office.Stats())
}

func TestIssueRejects(t *testing.T) {
	l, _ := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)
	acct := NewAccount("p1", 100_000)

	tooLong, err := NewForm([][]int{{1, 2, 3, 4, 5, 6}}, MaxDraws+1)
	require.NoError(t, err)
	ticket, err := office.Issue(context.Background(), tooLong, acct)
	assert.Nil(t, ticket)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))

	empty, err := NewForm([][]int{{1, 1, 1, 1, 1, 1}}, 1)
	require.NoError(t, err)
	ticket, err = office.Issue(context.Background(), empty, acct)
	require.NoError(t, err)
	assert.Nil(t, ticket)

	assert.Equal(t, int64(100_000), acct.Balance())
	assert.Zero(t, l.LastTicketNumber())
}

func TestRedeemFirstDrawJackpot(t *testing.T) {
	ctx := context.Background()
	l, budget := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)
	acct := NewAccount("p1", 10_000)

	ticket := issueOne(t, office, acct, 1, []int{1, 2, 3, 4, 5, 6})
	draw, err := l.ConductDraw(ctx, 1, 2, 3, 4, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, draw.WinnerCount(Tier1))
	assert.Equal(t, JackpotFloor, draw.PrizePerWinner(Tier1))

	r, err := office.Redeem(ctx, *ticket, acct)
	require.NoError(t, err)
	assert.Equal(t, JackpotFloor, r.Gross)
	assert.Equal(t, JackpotFloor/10, r.Tax)
	assert.Equal(t, JackpotFloor-JackpotFloor/10, r.Paid)
	assert.Equal(t, 1, r.SettledThrough)

	assert.Equal(t, 10_000-BetPrice+r.Paid, acct.Balance())
	assert.Equal(t, int64(60)+r.Tax, budget.TaxCollected())
	// 300 in, 60 + tax + paid out; the rest came from the treasury.
	assert.Equal(t, r.Tax+r.Paid+60-300, budget.SubsidiesGiven())
	assert.Zero(t, l.Funds())
}

func TestRedeemTaxThreshold(t *testing.T) {
	tests := []struct {
		name    string
		pools   [Tiers]int64
		winners func(n int) [Tiers][]int
		gross   int64
		tax     int64
	}{
		{
			name:    "exactly the threshold is taxed",
			pools:   [Tiers]int64{0, RedemptionTaxThreshold, 0, 0},
			winners: func(n int) [Tiers][]int { return [Tiers][]int{nil, {n}, nil, nil} },
			gross:   228_000,
			tax:     22_800,
		},
		{
			name:    "one unit below is not",
			pools:   [Tiers]int64{0, RedemptionTaxThreshold - 1, 0, 0},
			winners: func(n int) [Tiers][]int { return [Tiers][]int{nil, {n}, nil, nil} },
			gross:   227_999,
			tax:     0,
		},
		{
			name:    "tax applies to the total",
			pools:   [Tiers]int64{0, RedemptionTaxThreshold, 0, Tier4Prize},
			winners: func(n int) [Tiers][]int { return [Tiers][]int{nil, {n}, nil, {n}} },
			gross:   230_400,
			tax:     23_040,
		},
		{
			name:    "many small prizes stay untaxed",
			pools:   [Tiers]int64{0, 0, 200_000, 0},
			winners: func(n int) [Tiers][]int { return [Tiers][]int{nil, nil, {n, n}, nil} },
			gross:   200_000,
			tax:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, budget := newTestLedger(t)
			office, err := l.RegisterOffice(1)
			require.NoError(t, err)
			acct := NewAccount("p1", 1000)
			ticket := issueOne(t, office, acct, 1, []int{1, 2, 3, 4, 5, 6})
			injectDraw(l, tt.winners(ticket.Number), tt.pools)

			r, err := office.RedeemByID(context.Background(), ticket.ID, acct)
			require.NoError(t, err)
			assert.Equal(t, tt.gross, r.Gross)
			assert.Equal(t, tt.tax, r.Tax)
			assert.Equal(t, tt.gross-tt.tax, r.Paid)
			assert.Equal(t, 1000-BetPrice+r.Paid, acct.Balance())
			assert.Equal(t, ticket.IssuanceTax()+tt.tax, budget.TaxCollected())
		})
	}
}

func TestRedeemForgedTicket(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)
	other, err := l.RegisterOffice(2)
	require.NoError(t, err)
	acct := NewAccount("p1", 1000)

	ticket := issueOne(t, office, acct, 1, []int{1, 2, 3, 4, 5, 6})
	_, err = l.ConductDraw(ctx, 1, 2, 3, 4, 5, 6)
	require.NoError(t, err)
	balance := acct.Balance()
	funds := l.Funds()

	badNonce := ticket.ID
	badNonce.Nonce = (badNonce.Nonce + 1) % nonceLimit
	badChecksum := ticket.ID
	badChecksum.Checksum = (badChecksum.Checksum + 1) % 100
	unknown, err := NewIdentifier(ticket.Number+100, 1, 5)
	require.NoError(t, err)

	for _, id := range []Identifier{badNonce, badChecksum, unknown} {
		_, err := office.RedeemByID(ctx, id, acct)
		assert.True(t, apperrors.Is(err, apperrors.ErrForgedTicket), "%s", id)
	}
	_, err = other.Redeem(ctx, *ticket, acct)
	assert.True(t, apperrors.Is(err, apperrors.ErrForgedTicket))

	assert.Equal(t, balance, acct.Balance())
	assert.Equal(t, funds, l.Funds())
	assert.Equal(t, OfficeStats{Office: 1, Active: 1}, office.Stats())
}

func TestRedeemTwicePaysOnce(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)
	acct := NewAccount("p1", 1000)

	ticket := issueOne(t, office, acct, 2, []int{1, 2, 3, 40, 41, 42})
	_, err = l.ConductDraw(ctx, 1, 2, 3, 4, 5, 6)
	require.NoError(t, err)

	first, err := office.Redeem(ctx, *ticket, acct)
	require.NoError(t, err)
	assert.Equal(t, Tier4Prize, first.Gross)
	assert.Equal(t, 1, first.SettledThrough)
	assert.Equal(t, OfficeStats{Office: 1, Inactive: 1}, office.Stats())

	// An inactive ticket no longer takes part in later draws.
	draw, err := l.ConductDraw(ctx, 1, 2, 3, 4, 5, 6)
	require.NoError(t, err)
	assert.Zero(t, draw.TotalBets())

	second, err := office.Redeem(ctx, *ticket, acct)
	require.NoError(t, err)
	assert.Zero(t, second.Gross)
	assert.Equal(t, 2, second.SettledThrough)
	assert.Equal(t, 1000-2*BetPrice+Tier4Prize, acct.Balance())
}

func TestRedeemAfterFullWindow(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)
	acct := NewAccount("p1", 10_000)

	// Two bets with four hits in each of three draws.
	ticket := issueOne(t, office, acct, 3, []int{1, 2, 3, 4, 40, 41}, []int{3, 4, 5, 6, 47, 48})
	var want int64
	for i := 0; i < 3; i++ {
		draw, err := l.ConductDraw(ctx, 1, 2, 3, 4, 5, 6)
		require.NoError(t, err)
		assert.Equal(t, 2, draw.Frequency(Tier3, ticket.Number))
		want += draw.TicketPrize(Tier3, ticket.Number)
	}
	_, err = l.ConductDraw(ctx, 1, 2, 3, 4, 5, 6)
	require.NoError(t, err)

	r, err := office.Redeem(ctx, *ticket, acct)
	require.NoError(t, err)
	assert.Equal(t, want, r.Gross)
	assert.Equal(t, 3, r.SettledThrough)
}

func TestSnapshotSkipsInactive(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	office, err := l.RegisterOffice(1)
	require.NoError(t, err)
	acct := NewAccount("p1", 10_000)

	kept := issueOne(t, office, acct, 2, []int{1, 2, 3, 4, 5, 6})
	gone := issueOne(t, office, acct, 2, []int{7, 8, 9, 10, 11, 12})
	_, err = office.Redeem(ctx, *gone, acct)
	require.NoError(t, err)

	snap := office.Snapshot(1)
	require.Len(t, snap.Tickets, 1)
	assert.Equal(t, kept.Number, snap.Tickets[0].Number)
	assert.Empty(t, office.Snapshot(3).Tickets)

	found, ok := office.Ticket(gone.Number)
	assert.True(t, ok)
	assert.Equal(t, gone.ID, found.ID)
}
