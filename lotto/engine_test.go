package lotto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
)

func testTicket(t *testing.T, number, office, first, last int, rows ...[]int) Ticket {
	t.Helper()
	form, err := NewForm(rows, last-first+1)
	require.NoError(t, err)
	id, err := NewIdentifier(number, office, 0)
	require.NoError(t, err)
	return Ticket{Number: number, Office: office, ID: id, Form: form, FirstDraw: first, LastDraw: last}
}

func TestEngineGenerate(t *testing.T) {
	e := NewEngine(NewSource(99))
	for i := 0; i < 100; i++ {
		numbers := e.Generate()
		require.NoError(t, e.ValidateNumbers(numbers))
		assert.IsIncreasing(t, numbers)
	}

	a := NewEngine(NewSource(5)).Generate()
	b := NewEngine(NewSource(5)).Generate()
	assert.Equal(t, a, b)
}

func TestEngineValidateNumbers(t *testing.T) {
	e := NewEngine(NewSource(1))
	for _, numbers := range [][]int{
		{1, 2, 3, 4, 5},
		{1, 2, 3, 4, 5, 5},
		{0, 2, 3, 4, 5, 6},
		{1, 2, 3, 4, 5, 50},
	} {
		err := e.ValidateNumbers(numbers)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument), "%v", numbers)
	}
}

func TestEngineClassify(t *testing.T) {
	winning := []int{1, 2, 3, 4, 5, 6}
	snapshots := []Snapshot{
		{Office: 2, Tickets: []Ticket{
			testTicket(t, 5, 2, 1, 1, []int{1, 2, 3, 4, 5, 6}),
			testTicket(t, 3, 2, 1, 2, []int{1, 2, 3, 40, 41, 42}),
		}},
		{Office: 1, Tickets: []Ticket{
			// two bets with four hits each land twice in the same tier
			testTicket(t, 4, 1, 1, 3, []int{1, 2, 3, 4, 40, 41}, []int{3, 4, 5, 6, 47, 48}),
			testTicket(t, 1, 1, 1, 1, []int{1, 2, 3, 4, 5, 49}, []int{20, 21, 22, 23, 24, 25}),
			// outside the window
			testTicket(t, 2, 1, 2, 3, []int{1, 2, 3, 4, 5, 6}),
		}},
	}

	c := NewEngine(NewSource(1)).Classify(1, winning, snapshots)

	assert.Equal(t, []int{5}, c.Winners[Tier1.index()])
	assert.Equal(t, []int{1}, c.Winners[Tier2.index()])
	assert.Equal(t, []int{4, 4}, c.Winners[Tier3.index()])
	assert.Equal(t, []int{3}, c.Winners[Tier4.index()])
	assert.Equal(t, [Tiers]int{1, 1, 2, 1}, c.Counts())
	assert.Equal(t, 6, c.TotalBets)
}

func TestTierForHits(t *testing.T) {
	for hits, want := range map[int]Tier{6: Tier1, 5: Tier2, 4: Tier3, 3: Tier4} {
		tier, ok := TierForHits(hits)
		assert.True(t, ok)
		assert.Equal(t, want, tier)
	}
	for _, hits := range []int{0, 1, 2, 7} {
		_, ok := TierForHits(hits)
		assert.False(t, ok)
	}
}
