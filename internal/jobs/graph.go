package jobs

import "sync/atomic"

// Node is a vertex of a Graph: it owns one root job and accounts for every
// sub-job spawned under it via the two-counter completion protocol
// described on jobCompleted. Nodes are exclusively owned by the Graph that
// created them; callers only ever see *Node values handed back by the
// construction functions below.
type Node struct {
	rootJob Job

	initialPredecessorAmount uint32 // fixed once construction finishes
	predecessorAmount        atomic.Uint32
	unfinishedAmount         atomic.Uint32

	successors []*Node
	owner      *Graph
}

// jobAdded records that a sub-job has been spawned into this node. Called
// by Spawner when asked to spawn a sub-job.
func (n *Node) jobAdded() {
	n.unfinishedAmount.Add(1)
}

// jobCompleted runs the completion protocol: decrement unfinishedAmount;
// if this was the last outstanding job for the node (root job or
// sub-job), fire every successor and reset both counters so the node is
// ready for the next run. queue is the finishing worker's own deque —
// newly runnable successors are pushed there, to be drained or stolen like
// any other job.
func (n *Node) jobCompleted(queue *Deque) {
	old := n.unfinishedAmount.Add(^uint32(0)) + 1 // Add(-1); recover pre-decrement value
	if old == 0 {
		panic("jobs: node unfinished amount underflowed")
	}
	if old > 1 {
		return
	}
	for _, successor := range n.successors {
		oldPred := successor.predecessorAmount.Add(^uint32(0)) + 1
		if oldPred == 0 {
			panic("jobs: node predecessor amount underflowed")
		}
		if oldPred == 1 {
			if !queue.Push(&successor.rootJob) {
				panic("jobs: deque overflow while firing a successor; capacity must exceed the depth of live ready work")
			}
		}
	}
	n.unfinishedAmount.Store(1)
	n.predecessorAmount.Store(n.initialPredecessorAmount)
}

// addSuccessor records that successor depends on n, bumping successor's
// predecessor counters. Only called during graph construction, which the
// Graph API keeps single-threaded.
func (n *Node) addSuccessor(successor *Node) {
	n.successors = append(n.successors, successor)
	successor.initialPredecessorAmount++
	successor.predecessorAmount.Store(successor.initialPredecessorAmount)
}

// isAncestorOf reports whether descendant is reachable from n via
// successor edges. Used at construction time to drop redundant
// predecessors per the redundant-edge rule described on
// NewNodeWithPredecessors.
func (n *Node) isAncestorOf(descendant *Node) bool {
	for _, s := range n.successors {
		if s == descendant {
			return true
		}
	}
	for _, s := range n.successors {
		if s.isAncestorOf(descendant) {
			return true
		}
	}
	return false
}

// RootJob returns the node's root job.
func (n *Node) RootJob() *Job {
	return &n.rootJob
}

// Graph owns a set of nodes and the subset of them with no predecessors
// ("root nodes"). It is acyclic by construction: a node can only ever be
// created with predecessors that already exist in the graph, and there is
// no operation that adds an edge after the fact.
//
// A Graph is not safe to build concurrently — construction is expected to
// happen once, single-threaded, before installing it on a Scheduler — but
// once built its nodes are driven by many worker goroutines at once via
// the lock-free completion protocol on Node.
type Graph struct {
	nodes     []*Node
	rootNodes []*Node
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// NewNode creates a root node — one with no predecessors — whose root job
// runs fn with params. Root nodes are seeded by the scheduler at the start
// of every run.
func NewNode[P any](g *Graph, fn Func, params P) *Node {
	checkTrivial[P]()
	node := newRawNode(g, fn, params)
	g.rootNodes = append(g.rootNodes, node)
	return node
}

// NewNodeWithPredecessors creates a node whose root job runs fn with
// params once every non-redundant predecessor in predecessors has
// completed. Every predecessor must belong to g. Per the redundant-edge
// rule, a predecessor that is itself a transitive predecessor of another
// predecessor in the same list is dropped: the longer dependency chain
// already implies it.
func NewNodeWithPredecessors[P any](g *Graph, fn Func, params P, predecessors []*Node) *Node {
	checkTrivial[P]()
	node := newRawNode(g, fn, params)
	for _, predecessor := range predecessors {
		if predecessor.owner != g {
			panic("jobs: predecessor belongs to a different graph")
		}
		redundant := false
		for _, other := range predecessors {
			if other != predecessor && predecessor.isAncestorOf(other) {
				redundant = true
				break
			}
		}
		if !redundant {
			predecessor.addSuccessor(node)
		}
	}
	return node
}

func newRawNode[P any](g *Graph, fn Func, params P) *Node {
	node := &Node{owner: g}
	node.unfinishedAmount.Store(1)
	writeParams(&node.rootJob, params)
	node.rootJob.function = fn
	node.rootJob.node = node
	g.nodes = append(g.nodes, node)
	return node
}

// GetRootJob returns the i-th root node's root job, or nil if i is out of
// range. Workers use this to stride-seed their deques at the start of a
// run.
func (g *Graph) GetRootJob(i int) *Job {
	if i < 0 || i >= len(g.rootNodes) {
		return nil
	}
	return g.rootNodes[i].RootJob()
}

// NodeCount returns the total number of nodes in the graph, used by tests
// and by the app layer for logging and its empty-graph check.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}
