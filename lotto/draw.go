package lotto

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Tier is a prize class; Tier1 is six hits, Tier4 three.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
	Tier4
)

// AllTiers lists tiers from the highest prize down.
var AllTiers = []Tier{Tier1, Tier2, Tier3, Tier4}

// TierForHits maps a hit count to its tier; ok is false below three hits.
func TierForHits(hits int) (Tier, bool) {
	if hits < 3 || hits > NumbersPerBet {
		return 0, false
	}
	return Tier(NumbersPerBet - hits + 1), true
}

func (t Tier) index() int { return int(t) - 1 }

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "first"
	case Tier2:
		return "second"
	case Tier3:
		return "third"
	case Tier4:
		return "fourth"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Draw is a completed lottery event. It is never modified after the ledger
// appends it to the history.
type Draw struct {
	number    int
	winning   []int
	winners   [Tiers][]int
	pools     [Tiers]int64
	totalBets int
	at        time.Time
}

// Number is the draw sequence number, starting at 1.
func (d *Draw) Number() int { return d.number }

// WinningNumbers returns the six drawn numbers in ascending order.
func (d *Draw) WinningNumbers() []int {
	return append([]int(nil), d.winning...)
}

// TotalBets is the number of bets that took part.
func (d *Draw) TotalBets() int { return d.totalBets }

// ConductedAt is when the draw was committed.
func (d *Draw) ConductedAt() time.Time { return d.at }

// Winners lists ticket numbers per winning bet; a ticket appears once per
// bet that hit the tier.
func (d *Draw) Winners(t Tier) []int {
	return append([]int(nil), d.winners[t.index()]...)
}

// WinnerCount is the number of winning bets in the tier.
func (d *Draw) WinnerCount(t Tier) int {
	return len(d.winners[t.index()])
}

// WinnerCounts returns WinnerCount for every tier.
func (d *Draw) WinnerCounts() [Tiers]int {
	var counts [Tiers]int
	for i := range d.winners {
		counts[i] = len(d.winners[i])
	}
	return counts
}

// Pool is the prize pool of the tier.
func (d *Draw) Pool(t Tier) int64 {
	return d.pools[t.index()]
}

// Pools returns all tier pools.
func (d *Draw) Pools() [Tiers]int64 {
	return d.pools
}

// PrizePerWinner is the pool split evenly across winning bets with floor
// division; the remainder stays with the ledger. With no winners the whole
// pool is reported.
func (d *Draw) PrizePerWinner(t Tier) int64 {
	n := int64(d.WinnerCount(t))
	if n == 0 {
		return d.Pool(t)
	}
	return d.Pool(t) / n
}

// Frequency counts the bets of ticket that hit the tier.
func (d *Draw) Frequency(t Tier, ticket int) int {
	return lo.Count(d.winners[t.index()], ticket)
}

// TicketPrize is PrizePerWinner multiplied by the ticket's Frequency.
func (d *Draw) TicketPrize(t Tier, ticket int) int64 {
	freq := d.Frequency(t, ticket)
	if freq == 0 {
		return 0
	}
	return d.PrizePerWinner(t) * int64(freq)
}

func (d *Draw) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Draw number %d\nWinning numbers:", d.number)
	for _, n := range d.winning {
		fmt.Fprintf(&sb, "%3d", n)
	}
	sb.WriteString("\n")
	for _, t := range AllTiers {
		fmt.Fprintf(&sb, "%-7s winners: %5d  pool: %14s  each: %12s\n",
			t, d.WinnerCount(t), FormatAmount(d.Pool(t)), FormatAmount(d.PrizePerWinner(t)))
	}
	return sb.String()
}

func newDraw(number int, winning []int) *Draw {
	sorted := append([]int(nil), winning...)
	sort.Ints(sorted)
	return &Draw{number: number, winning: sorted}
}
