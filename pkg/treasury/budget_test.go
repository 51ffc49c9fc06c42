package treasury

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetAccumulatesConcurrently(t *testing.T) {
	b := NewBudget()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.CollectTax(60)
			b.GiveSubsidy(10)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3000), b.TaxCollected())
	assert.Equal(t, int64(500), b.SubsidiesGiven())
	assert.Equal(t, int64(2500), b.Balance())
}
