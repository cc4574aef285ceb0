package jobs

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testParams struct {
	Value int32
}

func noopFunc(unsafe.Pointer, *Spawner, *WorkerInfo) {}

func newTestContext(chunkCount int) (*jobAllocator, *Deque, *WorkerInfo) {
	chunks := newChunkAllocator(chunkCount)
	return newJobAllocator(chunks), NewDeque(), &WorkerInfo{}
}

func TestNewNodeIsARootNode(t *testing.T) {
	g := NewGraph()
	n := NewNode(g, noopFunc, testParams{Value: 7})

	assert.Equal(t, 1, g.NodeCount())
	assert.Same(t, n.RootJob(), g.GetRootJob(0))
	assert.Nil(t, g.GetRootJob(1))
	assert.Equal(t, uint32(0), n.initialPredecessorAmount)
}

func TestNodeCompletionFiresSuccessor(t *testing.T) {
	g := NewGraph()
	a := NewNode(g, noopFunc, testParams{})
	b := NewNodeWithPredecessors(g, noopFunc, testParams{}, []*Node{a})

	assert.Equal(t, uint32(1), b.initialPredecessorAmount)

	alloc, queue, info := newTestContext(1)
	a.RootJob().run(alloc, queue, info)

	pushed := queue.Pop()
	require.NotNil(t, pushed)
	assert.Same(t, b.RootJob(), pushed)
}

func TestNodeResetsCountersAfterFiring(t *testing.T) {
	g := NewGraph()
	a := NewNode(g, noopFunc, testParams{})
	_ = NewNodeWithPredecessors(g, noopFunc, testParams{}, []*Node{a})

	alloc, queue, info := newTestContext(1)
	a.RootJob().run(alloc, queue, info)

	assert.Equal(t, uint32(1), a.unfinishedAmount.Load())
	assert.Equal(t, a.initialPredecessorAmount, a.predecessorAmount.Load())
}

func TestRedundantPredecessorIsDropped(t *testing.T) {
	g := NewGraph()
	a := NewNode(g, noopFunc, testParams{})
	b := NewNodeWithPredecessors(g, noopFunc, testParams{}, []*Node{a})
	// c depends on both a and b, but a is a transitive predecessor of b via
	// the successor edge b already holds, so only b should count.
	c := NewNodeWithPredecessors(g, noopFunc, testParams{}, []*Node{a, b})

	assert.Equal(t, uint32(1), c.initialPredecessorAmount)

	alloc, queue, info := newTestContext(2)
	// Completing a alone must not make c runnable: it only fires b.
	a.RootJob().run(alloc, queue, info)
	pushed := queue.Pop()
	require.NotNil(t, pushed)
	assert.Same(t, b.RootJob(), pushed)
	assert.Nil(t, queue.Pop())

	// Completing b fires c.
	b.RootJob().run(alloc, queue, info)
	pushed = queue.Pop()
	require.NotNil(t, pushed)
	assert.Same(t, c.RootJob(), pushed)
}

func TestSubJobDelaysNodeCompletion(t *testing.T) {
	g := NewGraph()
	a := NewNode(g, noopFunc, testParams{})
	b := NewNodeWithPredecessors(g, noopFunc, testParams{}, []*Node{a})

	alloc, queue, info := newTestContext(1)

	// Simulate a's root job spawning one sub-job before finishing.
	spawner := newSpawner(alloc, queue, a)
	Spawn(spawner, noopFunc, testParams{Value: 1}, true)
	subJob := queue.Pop()
	require.NotNil(t, subJob)
	assert.Same(t, a, subJob.node)

	a.RootJob().run(alloc, queue, info)
	// b must not be runnable yet: a's sub-job has not finished.
	assert.Nil(t, queue.Pop())

	subJob.run(alloc, queue, info)
	pushed := queue.Pop()
	require.NotNil(t, pushed)
	assert.Same(t, b.RootJob(), pushed)
}

func TestNewNodeWithPredecessorsRejectsPredecessorFromAnotherGraph(t *testing.T) {
	g1 := NewGraph()
	g2 := NewGraph()
	a := NewNode(g1, noopFunc, testParams{})

	assert.Panics(t, func() {
		NewNodeWithPredecessors(g2, noopFunc, testParams{}, []*Node{a})
	})
}

func TestCheckTrivialRejectsNonTrivialParams(t *testing.T) {
	assert.Panics(t, func() {
		checkTrivial[string]()
	})
	assert.Panics(t, func() {
		checkTrivial[[]int]()
	})
	assert.NotPanics(t, func() {
		checkTrivial[testParams]()
	})
}
