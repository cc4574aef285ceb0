package syncx

import "sync"

// Barrier is a cyclic rendezvous point for a fixed number of goroutines,
// analogous to C++'s std::barrier: once n parties have each called Arrive,
// all of them are released and the barrier immediately becomes usable again
// for the next phase. The standard library has no equivalent primitive, so
// this is built directly from sync.Mutex and sync.Cond guarded by a
// generation counter, the idiomatic Go substitute.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	waiting    int
	generation uint64
}

// NewBarrier returns a Barrier for exactly n parties. n must be >= 1.
func NewBarrier(n int) *Barrier {
	if n < 1 {
		panic("syncx: barrier size must be >= 1")
	}
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Arrive blocks until all n parties have called Arrive for the current
// generation, then returns for every caller at once.
func (b *Barrier) Arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}
