package lotto

import (
	"sort"

	"github.com/samber/lo"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
)

// Snapshot is a consistent copy of the active tickets an office holds for
// one draw.
type Snapshot struct {
	Office  int
	Tickets []Ticket
}

// Classification is what a scan of all offices yields for a draw.
type Classification struct {
	Winners   [Tiers][]int
	TotalBets int
}

// Counts returns the winner count per tier.
func (c Classification) Counts() [Tiers]int {
	var counts [Tiers]int
	for i, w := range c.Winners {
		counts[i] = len(w)
	}
	return counts
}

// Engine picks winning numbers and sorts bets into tiers.
type Engine struct {
	src Source
}

// NewEngine returns an engine drawing from src.
func NewEngine(src Source) *Engine {
	return &Engine{src: src}
}

// Generate draws six distinct numbers from 1..49, ascending.
func (e *Engine) Generate() []int {
	numbers := pickNumbers(e.src)
	sort.Ints(numbers)
	return numbers
}

// ValidateNumbers checks a fixed draw.
func (e *Engine) ValidateNumbers(numbers []int) error {
	if !validNumbers(numbers) {
		return apperrors.InvalidArgument("draw needs %d distinct numbers within %d..%d, got %v",
			NumbersPerBet, MinNumber, MaxNumber, numbers)
	}
	return nil
}

// Classify scans every ticket playing drawNumber. Each bet with three or
// more hits appends its ticket number to the matching tier, so a ticket
// appears once per winning bet. Offices and tickets are visited in
// ascending order to keep the lists deterministic.
func (e *Engine) Classify(drawNumber int, winning []int, snapshots []Snapshot) Classification {
	drawn := lo.SliceToMap(winning, func(n int) (int, struct{}) { return n, struct{}{} })

	ordered := append([]Snapshot(nil), snapshots...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Office < ordered[j].Office })

	var c Classification
	for _, snap := range ordered {
		tickets := append([]Ticket(nil), snap.Tickets...)
		sort.Slice(tickets, func(i, j int) bool { return tickets[i].Number < tickets[j].Number })
		for _, t := range tickets {
			if !t.Plays(drawNumber) {
				continue
			}
			for _, bet := range t.Form.Bets() {
				c.TotalBets++
				tier, ok := TierForHits(bet.Hits(drawn))
				if !ok {
					continue
				}
				c.Winners[tier.index()] = append(c.Winners[tier.index()], t.Number)
			}
		}
	}
	return c
}
