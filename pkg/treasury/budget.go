// Package treasury is an in-process tax authority: it accumulates remitted
// taxes and the subsidies granted to cover payout shortfalls.
package treasury

import (
	"sync"

	"github.com/Digital-Creators-Team/lotto-ledger/pkg/providers"
)

var _ providers.TaxAuthority = (*Budget)(nil)

// Budget is safe for concurrent use.
type Budget struct {
	mu        sync.Mutex
	taxes     int64
	subsidies int64
}

// NewBudget creates an empty budget.
func NewBudget() *Budget {
	return &Budget{}
}

// CollectTax records a tax remittance.
func (b *Budget) CollectTax(amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.taxes += amount
}

// GiveSubsidy records a subsidy paid out to the ledger.
func (b *Budget) GiveSubsidy(amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subsidies += amount
}

// TaxCollected returns the total tax received.
func (b *Budget) TaxCollected() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.taxes
}

// SubsidiesGiven returns the total subsidies granted.
func (b *Budget) SubsidiesGiven() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subsidies
}

// Balance is taxes minus subsidies.
func (b *Budget) Balance() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.taxes - b.subsidies
}
