package lotto

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
)

// Bet is one six-number selection. It is a value type and never changes.
type Bet struct {
	numbers [NumbersPerBet]int
}

// NewBet fails when numbers does not hold exactly six values. Range and
// uniqueness are checked by Form, which drops bets that fail them.
func NewBet(numbers []int) (Bet, error) {
	if len(numbers) != NumbersPerBet {
		return Bet{}, apperrors.InvalidArgument("bet must have %d numbers, got %d", NumbersPerBet, len(numbers))
	}
	var b Bet
	copy(b.numbers[:], numbers)
	return b, nil
}

// Numbers returns a copy of the selection.
func (b Bet) Numbers() []int {
	return append([]int(nil), b.numbers[:]...)
}

// Valid reports six distinct numbers within MinNumber..MaxNumber.
func (b Bet) Valid() bool {
	return validNumbers(b.numbers[:])
}

// Hits counts how many of the bet's numbers were drawn.
func (b Bet) Hits(winning map[int]struct{}) int {
	return lo.CountBy(b.numbers[:], func(n int) bool {
		_, ok := winning[n]
		return ok
	})
}

func (b Bet) String() string {
	sorted := b.Numbers()
	sort.Ints(sorted)
	parts := lo.Map(sorted, func(n int, _ int) string { return fmt.Sprintf("%2d", n) })
	return strings.Join(parts, " ")
}

func validNumbers(numbers []int) bool {
	if len(numbers) != NumbersPerBet {
		return false
	}
	inRange := lo.EveryBy(numbers, func(n int) bool { return n >= MinNumber && n <= MaxNumber })
	return inRange && len(lo.Uniq(numbers)) == NumbersPerBet
}

// Form is a filled wager blank: the bets that passed validation and the
// number of consecutive draws to play.
type Form struct {
	bets     []Bet
	draws    int
	rejected int
}

// NewForm builds a form from raw rows. Rows that are not six distinct
// numbers in range are dropped, not rejected. A draw count of 0 means one
// draw; negative counts fail. Counts above MaxDraws are kept and refused at
// issuance.
func NewForm(rows [][]int, draws int) (Form, error) {
	if draws < 0 {
		return Form{}, apperrors.InvalidArgument("number of draws must not be negative, got %d", draws)
	}
	if len(rows) > MaxBets {
		return Form{}, apperrors.InvalidArgument("form holds at most %d bets, got %d", MaxBets, len(rows))
	}
	if draws == 0 {
		draws = 1
	}

	f := Form{draws: draws}
	for _, row := range rows {
		if !validNumbers(row) {
			f.rejected++
			continue
		}
		bet, _ := NewBet(row)
		f.bets = append(f.bets, bet)
	}
	return f, nil
}

// NewFormFromChoices mirrors a paper blank with several "number of draws"
// boxes: the largest ticked box wins, capped at MaxDraws, one if none.
func NewFormFromChoices(rows [][]int, drawChoices []int) (Form, error) {
	draws := 1
	if len(drawChoices) > 0 {
		draws = lo.Min([]int{lo.Max(drawChoices), MaxDraws})
	}
	if draws < 1 {
		draws = 1
	}
	return NewForm(rows, draws)
}

// NewRandomForm fills bets quick-pick style.
func NewRandomForm(bets, draws int, src Source) (Form, error) {
	if bets < 1 || bets > MaxBets {
		return Form{}, apperrors.InvalidArgument("number of bets must be within 1..%d, got %d", MaxBets, bets)
	}
	rows := make([][]int, bets)
	for i := range rows {
		rows[i] = pickNumbers(src)
	}
	return NewForm(rows, draws)
}

// Bets returns the valid bets.
func (f Form) Bets() []Bet {
	return append([]Bet(nil), f.bets...)
}

// ValidBetCount is the number of bets that will be played.
func (f Form) ValidBetCount() int {
	return len(f.bets)
}

// Draws is the number of consecutive draws requested.
func (f Form) Draws() int {
	return f.draws
}

// Rejected is the number of rows dropped during validation.
func (f Form) Rejected() int {
	return f.rejected
}

// Price is BetPrice × valid bets × draws.
func (f Form) Price() int64 {
	return BetPrice * int64(len(f.bets)) * int64(f.draws)
}
