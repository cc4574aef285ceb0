package jobs

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Deque is a fixed-capacity lock-free work-stealing deque: the owning
// worker pushes and pops at the bottom, any other worker may steal from
// the top. It is a translation of the Chase-Lev / Lê-Pop-Cohen-Zappa-
// Nardelli algorithm for weak memory models.
//
// Go's sync/atomic operations are all sequentially consistent — there is
// no relaxed/acquire/release distinction to ask for, unlike the C++
// original this is modeled on. The structure of the algorithm (which loads
// happen before which fences, which operations are the only ones that CAS)
// is preserved unchanged: every load and store below simply gets the
// strongest ordering available, which is always at least as strong as what
// the original's annotation asked for. This costs a little on platforms
// with cheaper relaxed atomics, but it is never incorrect.
type Deque struct {
	buffer [QueueCapacity]atomic.Pointer[Job]

	_      cpu.CacheLinePad
	top    atomic.Int32
	_      cpu.CacheLinePad
	bottom atomic.Int32
	_      cpu.CacheLinePad
}

// NewDeque returns an empty Deque ready for use.
func NewDeque() *Deque {
	return &Deque{}
}

// Push adds job at the bottom. Only the owning worker may call this. It
// returns false if the deque is at capacity — capacity exhaustion is a
// programmer error per the capacity discipline this package assumes, so
// callers must treat false as fatal, not retry.
func (d *Deque) Push(job *Job) bool {
	b := d.bottom.Load()
	t := d.top.Load()
	if b-t == QueueCapacity {
		return false
	}
	d.buffer[b%QueueCapacity].Store(job)
	d.bottom.Store(b + 1)
	return true
}

// Pop removes and returns the job at the bottom. Only the owning worker
// may call this. It returns nil if the deque was empty.
func (d *Deque) Pop() *Job {
	b := d.bottom.Load() - 1
	d.bottom.Store(b)
	t := d.top.Load()
	if b < t {
		// Empty: restore bottom and report nothing available.
		d.bottom.Store(b + 1)
		return nil
	}
	job := d.buffer[b%QueueCapacity].Load()
	if b > t {
		// Uncontested: more than one element remained.
		return job
	}
	// Exactly one element remained; race a thief for it via CAS on top.
	won := d.top.CompareAndSwap(t, t+1)
	d.bottom.Store(b + 1)
	if !won {
		return nil
	}
	return job
}

// Steal removes and returns the job at the top, on behalf of any worker
// other than the owner. It returns nil if the deque appeared empty or if
// a concurrent pop/steal won the race for the last element.
func (d *Deque) Steal() *Job {
	t := d.top.Load()
	b := d.bottom.Load()
	if t >= b {
		return nil
	}
	job := d.buffer[t%QueueCapacity].Load()
	if !d.top.CompareAndSwap(t, t+1) {
		return nil
	}
	return job
}

// Reset zeroes both counters. Must only be called from a quiescent state,
// between runs.
func (d *Deque) Reset() {
	d.bottom.Store(0)
	d.top.Store(0)
}

// Len reports the deque's current length. It is only meaningful when
// called by the owner, or when the deque is known to be quiescent.
func (d *Deque) Len() int {
	return int(d.bottom.Load() - d.top.Load())
}
