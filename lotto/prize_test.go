package lotto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocatePrizes(t *testing.T) {
	tests := []struct {
		name        string
		bets        int
		winners     [Tiers]int
		jackpot     int64
		first       bool
		wantPools   [Tiers]int64
		wantJackpot int64
	}{
		{
			// pot 240, payout 122, tier1 53, tier2 9, rest 60
			name:        "first draw pays the seeded jackpot",
			bets:        1,
			winners:     [Tiers]int{1, 0, 0, 0},
			jackpot:     JackpotFloor,
			first:       true,
			wantPools:   [Tiers]int64{JackpotFloor, 9, 60, 0},
			wantJackpot: JackpotFloor,
		},
		{
			// pot 240000, payout 122400, tier1 53856, tier2 9792
			name:        "no winner carries the allocation",
			bets:        1000,
			jackpot:     JackpotFloor,
			wantPools:   [Tiers]int64{JackpotFloor + 53856, 9792, 58752, 0},
			wantJackpot: JackpotFloor + 53856,
		},
		{
			name:        "winner takes allocation plus carry and resets",
			bets:        1000,
			winners:     [Tiers]int{1, 0, 0, 0},
			jackpot:     JackpotFloor + 53856,
			wantPools:   [Tiers]int64{JackpotFloor + 2*53856, 9792, 58752, 0},
			wantJackpot: JackpotFloor,
		},
		{
			name:        "winner pool never below the floor",
			bets:        1000,
			winners:     [Tiers]int{2, 0, 0, 0},
			jackpot:     0,
			wantPools:   [Tiers]int64{JackpotFloor, 9792, 58752, 0},
			wantJackpot: JackpotFloor,
		},
		{
			// pot 2400, payout 1224, tier1 538, tier2 97, rest 1224-538-97-4800 < 5*3600
			name:        "third tier floor and fixed fourth tier",
			bets:        10,
			winners:     [Tiers]int{0, 0, 5, 2},
			jackpot:     JackpotFloor,
			wantPools:   [Tiers]int64{JackpotFloor + 538, 97, 5 * Tier3Floor, 2 * Tier4Prize},
			wantJackpot: JackpotFloor + 538,
		},
		{
			name:        "empty draw",
			bets:        0,
			jackpot:     JackpotFloor,
			wantPools:   [Tiers]int64{JackpotFloor, 0, 0, 0},
			wantJackpot: JackpotFloor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AllocatePrizes(tt.bets, tt.winners, tt.jackpot, tt.first)
			assert.Equal(t, tt.wantPools, a.Pools)
			assert.Equal(t, tt.wantJackpot, a.Jackpot)
			assert.Equal(t, PotPerBet*int64(tt.bets), a.Pot)
		})
	}
}

func TestJackpotGrowsWithoutWinner(t *testing.T) {
	jackpot := JackpotFloor
	for i := 0; i < 5; i++ {
		a := AllocatePrizes(500, [Tiers]int{}, jackpot, false)
		assert.Greater(t, a.Pools[0], jackpot)
		assert.Equal(t, a.Jackpot, a.Pools[0])
		jackpot = a.Jackpot
	}
}

func TestPrizePerWinnerFloorDivision(t *testing.T) {
	d := newDraw(1, []int{1, 2, 3, 4, 5, 6})
	d.pools[Tier3.index()] = 1000
	d.winners[Tier3.index()] = []int{4, 9, 12}

	assert.Equal(t, int64(333), d.PrizePerWinner(Tier3))
	var paid int64
	for _, n := range d.Winners(Tier3) {
		paid += d.TicketPrize(Tier3, n)
	}
	assert.Equal(t, int64(999), paid)
}

func TestTicketPrizeFrequency(t *testing.T) {
	d := newDraw(1, []int{1, 2, 3, 4, 5, 6})
	d.pools[Tier3.index()] = 3 * Tier3Floor
	d.winners[Tier3.index()] = []int{7, 7, 8}

	assert.Equal(t, 2, d.Frequency(Tier3, 7))
	assert.Equal(t, 2*Tier3Floor, d.TicketPrize(Tier3, 7))
	assert.Equal(t, Tier3Floor, d.TicketPrize(Tier3, 8))
	assert.Zero(t, d.TicketPrize(Tier3, 9))
}

func TestMoneyHelpers(t *testing.T) {
	assert.Equal(t, "2000000.00", FormatAmount(JackpotFloor))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, int64(22800), percent(228000, RedemptionTaxPercent))
	assert.Equal(t, int64(22799), percent(227999, RedemptionTaxPercent))
	assert.Equal(t, int64(1234), FromMajor(ToMajor(1234)))
}
