package jobs

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// chunk is a fixed-size slab of Job records, the unit of allocation handed
// from the shared chunkAllocator to a single worker's jobAllocator.
type chunk struct {
	jobs [ChunkSize]Job
}

// chunkAllocator is a lock-free linear allocator of chunks, shared by every
// worker's jobAllocator. It never grows during a run: all chunks are
// allocated up front and handed out by a single atomic fetch-add over an
// index into that fixed slice.
type chunkAllocator struct {
	chunks []*chunk

	_ cpu.CacheLinePad
	// nextIndex is the only field mutated after construction, so it gets
	// its own cacheline to avoid false sharing with chunks, which is
	// read-only after construction anyway but keeps the pad symmetrical
	// with the rest of this package's hot atomics.
	nextIndex atomic.Uint32
	_         cpu.CacheLinePad
}

// newChunkAllocator preallocates count chunks. count is clamped to at
// least one.
func newChunkAllocator(count int) *chunkAllocator {
	if count < 1 {
		count = 1
	}
	chunks := make([]*chunk, count)
	for i := range chunks {
		chunks[i] = &chunk{}
	}
	return &chunkAllocator{chunks: chunks}
}

// allocate hands out the next unused chunk, or nil once every chunk from
// this run has been claimed.
func (a *chunkAllocator) allocate() *chunk {
	index := a.nextIndex.Add(1) - 1
	if int(index) >= len(a.chunks) {
		return nil
	}
	return a.chunks[index]
}

// reset makes every chunk available again. Must only be called from a
// quiescent state, between runs.
func (a *chunkAllocator) reset() {
	a.nextIndex.Store(0)
}

// jobAllocator is a single-threaded linear allocator of Job records. It is
// owned by exactly one worker and must never be shared. When its current
// chunk is exhausted it requests a fresh one from the shared
// chunkAllocator.
type jobAllocator struct {
	chunkAllocator *chunkAllocator
	current        *chunk
	nextIndex      int
}

func newJobAllocator(chunkAllocator *chunkAllocator) *jobAllocator {
	return &jobAllocator{chunkAllocator: chunkAllocator}
}

// allocate returns a pointer to a fresh, zero-valued Job slot, or nil if
// the shared chunk allocator has been exhausted.
func (a *jobAllocator) allocate() *Job {
	if a.current == nil {
		a.current = a.chunkAllocator.allocate()
		if a.current == nil {
			return nil
		}
		a.nextIndex = 0
	}
	job := &a.current.jobs[a.nextIndex]
	a.nextIndex++
	if a.nextIndex == ChunkSize {
		a.current = nil
	}
	return job
}

// reset drops the allocator's reference to its current chunk. The backing
// storage becomes reusable once the shared chunkAllocator is itself reset.
func (a *jobAllocator) reset() {
	a.current = nil
	a.nextIndex = 0
}
