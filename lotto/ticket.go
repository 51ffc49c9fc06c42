package lotto

import (
	"fmt"
	"strings"
)

// Ticket is an issued wager. The issuing office keeps the authoritative
// copy; holders get a value copy.
type Ticket struct {
	Number    int        `json:"number"`
	Office    int        `json:"office"`
	ID        Identifier `json:"id"`
	Form      Form       `json:"-"`
	FirstDraw int        `json:"first_draw"`
	LastDraw  int        `json:"last_draw"`
}

// Draws lists the draw numbers the ticket plays.
func (t Ticket) Draws() []int {
	draws := make([]int, 0, t.LastDraw-t.FirstDraw+1)
	for d := t.FirstDraw; d <= t.LastDraw; d++ {
		draws = append(draws, d)
	}
	return draws
}

// Plays reports whether draw is inside the ticket window.
func (t Ticket) Plays(draw int) bool {
	return draw >= t.FirstDraw && draw <= t.LastDraw
}

// Price is what the buyer paid.
func (t Ticket) Price() int64 {
	return t.Form.Price()
}

// IssuanceTax is withheld at sale time regardless of the outcome.
func (t Ticket) IssuanceTax() int64 {
	return t.Price() / IssuanceTaxDivisor
}

func (t Ticket) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TICKET %s\n", t.ID)
	for i, b := range t.Form.Bets() {
		fmt.Fprintf(&sb, "%d: %s\n", i+1, b)
	}
	fmt.Fprintf(&sb, "DRAWS: %d..%d\n", t.FirstDraw, t.LastDraw)
	fmt.Fprintf(&sb, "PRICE: %s\n", FormatAmount(t.Price()))
	return sb.String()
}
