package jobs

import (
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hlehtosalo/job-scheduler/internal/syncx"
)

type schedulerState int32

const (
	stateWait schedulerState = iota
	stateWork
	stateQuit
)

// worker holds everything owned by exactly one scheduler worker: its job
// allocator, its deque, a seeded PRNG for victim selection, and its
// statistics. Workers are never shared between goroutines other than the
// one driving them.
type worker struct {
	index        uint32
	jobAllocator *jobAllocator
	queue        *Deque
	rng          *rand.Rand
	victimLow    uint32
	victimRange  uint32
	stats        *workerStats
}

func newWorker(index, workerAmount uint32, chunks *chunkAllocator) *worker {
	victimRange := workerAmount - 1
	if victimRange < 1 {
		victimRange = 1
	}
	return &worker{
		index:        index,
		jobAllocator: newJobAllocator(chunks),
		queue:        NewDeque(),
		rng:          rand.New(rand.NewPCG(0xbabe+uint64(index), uint64(index))),
		victimLow:    1 + index,
		victimRange:  victimRange,
		stats:        newWorkerStats(index),
	}
}

// pickVictim chooses the next steal target. Candidates are drawn uniformly
// from index+1 to index+workerAmount-1 and wrapped back into range by a
// final modulo, so every other worker is equally likely and a worker only
// picks itself when it is the only worker.
func (w *worker) pickVictim(workerAmount uint32) uint32 {
	candidate := w.victimLow + uint32(w.rng.IntN(int(w.victimRange)))
	return candidate % workerAmount
}

// Scheduler owns a fixed pool of workers and drives a Graph to completion
// across them. One goroutine per worker above index 0 is spawned at
// construction and parked until Run is called; the caller's own goroutine
// plays the role of worker 0.
type Scheduler struct {
	workerAmount uint32
	workers      []*worker
	chunks       *chunkAllocator
	graph        *Graph

	entryBarrier *syncx.Barrier
	exitBarrier  *syncx.Barrier

	state atomic.Int32

	stateMu   sync.Mutex
	stateCond *syncx.Cond

	stealerAmount atomic.Uint32
	activeAmount  atomic.Uint32

	stealerMu   sync.Mutex
	stealerCond *syncx.Cond

	wg sync.WaitGroup
}

// NewScheduler constructs a scheduler with the given worker and chunk
// counts, both clamped to sane minimums (at least one worker, and at least
// as many chunks as workers), and spawns workerAmount-1 background
// goroutines. The caller's own goroutine becomes worker 0 the first time
// Run is called.
func NewScheduler(workerAmount, chunkAmount int) *Scheduler {
	if workerAmount < 1 {
		workerAmount = 1
	}
	if chunkAmount < workerAmount {
		chunkAmount = workerAmount
	}

	s := &Scheduler{
		workerAmount: uint32(workerAmount),
		chunks:       newChunkAllocator(chunkAmount),
		entryBarrier: syncx.NewBarrier(workerAmount),
		exitBarrier:  syncx.NewBarrier(workerAmount),
	}
	s.stateCond = syncx.NewCond(&s.stateMu)
	s.stealerCond = syncx.NewCond(&s.stealerMu)
	s.state.Store(int32(stateWait))

	s.workers = make([]*worker, workerAmount)
	for i := range s.workers {
		s.workers[i] = newWorker(uint32(i), uint32(workerAmount), s.chunks)
	}

	s.wg.Add(workerAmount - 1)
	for i := 1; i < workerAmount; i++ {
		go s.threadLoop(uint32(i))
	}
	return s
}

// WorkerAmount returns the number of workers the scheduler was built with.
func (s *Scheduler) WorkerAmount() int {
	return int(s.workerAmount)
}

// SetJobGraph installs graph as the one Run executes. Only valid to call
// when no run is in flight — typically right after construction, or after
// a previous Run call has returned.
func (s *Scheduler) SetJobGraph(graph *Graph) {
	s.graph = graph
}

// Run blocks until every job in the installed graph has completed. The
// calling goroutine participates as worker 0. Run panics if no graph has
// been installed.
func (s *Scheduler) Run() {
	if s.graph == nil {
		panic("jobs: scheduler has no job graph installed")
	}

	s.state.Store(int32(stateWork))
	s.stateMu.Lock()
	s.stateCond.Broadcast()
	s.stateMu.Unlock()

	s.stealerAmount.Store(0)
	s.activeAmount.Store(s.workerAmount)

	s.runWorker(0)

	s.chunks.reset()
}

// Close stops every background worker goroutine and waits for them to
// exit. It must only be called when no Run call is in flight. The
// Scheduler is not usable afterward.
func (s *Scheduler) Close() {
	s.state.Store(int32(stateQuit))
	s.stateMu.Lock()
	s.stateCond.Broadcast()
	s.stateMu.Unlock()
	s.wg.Wait()
}

// Statistics returns a snapshot of every worker's statistics.
func (s *Scheduler) Statistics() Statistics {
	snaps := make([]WorkerSnapshot, len(s.workers))
	for i, w := range s.workers {
		snaps[i] = w.stats.snapshot()
	}
	return Statistics{Workers: snaps}
}

// ResetStatistics zeroes every worker's statistics.
func (s *Scheduler) ResetStatistics() {
	for _, w := range s.workers {
		w.stats.reset()
	}
}

func (s *Scheduler) threadLoop(index uint32) {
	defer s.wg.Done()
	for {
		s.stateMu.Lock()
		for schedulerState(s.state.Load()) == stateWait {
			s.stateCond.Wait()
		}
		current := schedulerState(s.state.Load())
		s.stateMu.Unlock()

		if current == stateQuit {
			return
		}
		s.runWorker(index)
	}
}

func (s *Scheduler) runWorker(index uint32) {
	s.entryBarrier.Arrive()

	w := s.workers[index]
	runStart := time.Now()

	for i := index; ; i += s.workerAmount {
		job := s.graph.GetRootJob(int(i))
		if job == nil {
			break
		}
		job.run(w.jobAllocator, w.queue, &w.stats.info)
		w.stats.addOwnJob()
	}
	w.stats.addWorkTiming(time.Since(runStart))

	s.workLoop(w)

	if index == 0 {
		// Safe without the state lock: every other worker is either past
		// its own threadLoop wait-check for this run (and will not
		// re-check state until it loops back around, which only happens
		// after both barriers below), or is this very call.
		s.state.Store(int32(stateWait))
	}
	w.stats.addTotalTiming(time.Since(runStart))

	s.exitBarrier.Arrive()

	w.queue.Reset()
	w.jobAllocator.reset()
}

func (s *Scheduler) workLoop(w *worker) {
	for {
		workStart := time.Now()
		for {
			job := w.queue.Pop()
			if job == nil {
				break
			}
			job.run(w.jobAllocator, w.queue, &w.stats.info)
			w.stats.addOwnJob()
		}
		w.stats.addWorkTiming(time.Since(workStart))

		s.stealerAmount.Add(1)
		for {
			target := w.pickVictim(s.workerAmount)
			stolen := s.workers[target].queue.Steal()
			if stolen != nil {
				s.publishSuccessfulSteal()
				stealStart := time.Now()
				stolen.run(w.jobAllocator, w.queue, &w.stats.info)
				w.stats.addStolenJob()
				w.stats.addWorkTiming(time.Since(stealStart))
				break
			}
			w.stats.addFailedStealAttempt()

			if s.stealerAmount.Load() >= s.workerAmount {
				if s.tryTerminate(w) {
					return
				}
			}
			runtime.Gosched()
		}
	}
}

// publishSuccessfulSteal decrements stealerAmount to announce that this
// worker is leaving the stealing phase with new work in hand, waking any
// worker parked in tryTerminate so it can re-check whether the run is
// really over.
func (s *Scheduler) publishSuccessfulSteal() {
	s.stealerMu.Lock()
	old := s.stealerAmount.Add(^uint32(0)) + 1 // Add(-1); recover pre-decrement value
	if old == s.workerAmount {
		s.stealerCond.Broadcast()
	}
	s.stealerMu.Unlock()
}

// tryTerminate runs the termination-detection handshake described by the
// scheduler's design: a worker that has failed to steal from anyone
// checks whether every worker is simultaneously in the stealing phase, and
// if so, votes to end the run. It returns true once the run is confirmed
// over. All reads and writes of stealerAmount that matter for Cond
// wakeups are made under stealerMu here and in publishSuccessfulSteal,
// even though the atomic itself needs no lock for thread-safety — without
// that bracketing a worker could observe the pre-wakeup value, decide to
// wait, and miss a Broadcast that happened in the gap between its check
// and its call to Wait.
func (s *Scheduler) tryTerminate(w *worker) bool {
	s.stealerMu.Lock()
	defer s.stealerMu.Unlock()

	old := s.activeAmount.Add(^uint32(0)) + 1
	if old == 1 {
		// Last worker standing: publish the termination sentinel.
		s.stealerAmount.Store(s.workerAmount + 1)
		s.stealerCond.Broadcast()
	}

	for s.stealerAmount.Load() == s.workerAmount {
		s.stealerCond.Wait()
	}

	if s.stealerAmount.Load() > s.workerAmount {
		return true
	}

	// stealerAmount dropped below workerAmount: a peer stole successfully
	// and may produce more work. Rejoin.
	w.stats.addFalseWait()
	s.activeAmount.Add(1)
	return false
}
