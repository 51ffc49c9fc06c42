package lotto

import (
	"math/rand"
	"sync"
	"time"
)

// Source is a uniform random source. Intn returns a value in [0, n).
type Source interface {
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a concurrency-safe source seeded with seed.
// A zero seed picks one from the clock.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// pickNumbers draws NumbersPerBet distinct numbers from MinNumber..MaxNumber
// with a partial Fisher-Yates shuffle.
func pickNumbers(src Source) []int {
	pool := make([]int, MaxNumber-MinNumber+1)
	for i := range pool {
		pool[i] = MinNumber + i
	}
	for i := 0; i < NumbersPerBet; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return append([]int(nil), pool[:NumbersPerBet]...)
}
