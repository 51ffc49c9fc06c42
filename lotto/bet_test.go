package lotto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Digital-Creators-Team/lotto-ledger/errors"
)

func TestNewBet(t *testing.T) {
	_, err := NewBet([]int{1, 2, 3, 4, 5})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))

	bet, err := NewBet([]int{6, 5, 4, 3, 2, 1})
	require.NoError(t, err)
	assert.True(t, bet.Valid())
	assert.Equal(t, " 1  2  3  4  5  6", bet.String())

	dup, err := NewBet([]int{1, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.False(t, dup.Valid())

	out, err := NewBet([]int{0, 1, 2, 3, 4, 50})
	require.NoError(t, err)
	assert.False(t, out.Valid())
}

func TestBetHits(t *testing.T) {
	bet, err := NewBet([]int{1, 2, 3, 40, 41, 42})
	require.NoError(t, err)

	drawn := map[int]struct{}{1: {}, 2: {}, 3: {}, 4: {}, 5: {}, 6: {}}
	assert.Equal(t, 3, bet.Hits(drawn))
}

func TestNewForm(t *testing.T) {
	tests := []struct {
		name      string
		rows      [][]int
		draws     int
		wantErr   bool
		wantBets  int
		wantDraws int
		wantRej   int
	}{
		{
			name:      "valid rows",
			rows:      [][]int{{1, 2, 3, 4, 5, 6}, {7, 8, 9, 10, 11, 12}},
			draws:     3,
			wantBets:  2,
			wantDraws: 3,
		},
		{
			name:      "zero draws means one",
			rows:      [][]int{{1, 2, 3, 4, 5, 6}},
			draws:     0,
			wantBets:  1,
			wantDraws: 1,
		},
		{
			name:    "negative draws",
			rows:    [][]int{{1, 2, 3, 4, 5, 6}},
			draws:   -1,
			wantErr: true,
		},
		{
			name: "too many rows",
			rows: [][]int{
				{1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6},
				{1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6},
				{1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6},
			},
			draws:   1,
			wantErr: true,
		},
		{
			name:      "invalid rows are dropped",
			rows:      [][]int{{1, 1, 2, 3, 4, 5}, {1, 2, 3, 4, 5, 50}, {1, 2, 3}, {10, 20, 30, 40, 45, 49}},
			draws:     2,
			wantBets:  1,
			wantDraws: 2,
			wantRej:   3,
		},
		{
			name:      "draws above the limit are kept",
			rows:      [][]int{{1, 2, 3, 4, 5, 6}},
			draws:     11,
			wantBets:  1,
			wantDraws: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := NewForm(tt.rows, tt.draws)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBets, form.ValidBetCount())
			assert.Equal(t, tt.wantDraws, form.Draws())
			assert.Equal(t, tt.wantRej, form.Rejected())
			assert.Equal(t, BetPrice*int64(tt.wantBets*tt.wantDraws), form.Price())
		})
	}
}

func TestNewFormFromChoices(t *testing.T) {
	rows := [][]int{{1, 2, 3, 4, 5, 6}}

	form, err := NewFormFromChoices(rows, []int{2, 5, 3})
	require.NoError(t, err)
	assert.Equal(t, 5, form.Draws())

	form, err = NewFormFromChoices(rows, []int{20})
	require.NoError(t, err)
	assert.Equal(t, MaxDraws, form.Draws())

	form, err = NewFormFromChoices(rows, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, form.Draws())
}

func TestNewRandomForm(t *testing.T) {
	src := NewSource(7)

	form, err := NewRandomForm(MaxBets, 4, src)
	require.NoError(t, err)
	assert.Equal(t, MaxBets, form.ValidBetCount())
	assert.Zero(t, form.Rejected())
	for _, b := range form.Bets() {
		assert.True(t, b.Valid(), "bet %s", b)
	}

	_, err = NewRandomForm(0, 1, src)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
	_, err = NewRandomForm(MaxBets+1, 1, src)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidArgument))
}
