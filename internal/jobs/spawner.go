package jobs

// Spawner is handed to a running job's function so it can safely create
// new jobs: it binds the correct thread-local allocator and deque, and (if
// the currently running job belongs to a graph node) that node, so a
// sub-job spawn correctly delays the node's completion.
type Spawner struct {
	allocator *jobAllocator
	queue     *Deque
	node      *Node
}

func newSpawner(allocator *jobAllocator, queue *Deque, node *Node) *Spawner {
	return &Spawner{allocator: allocator, queue: queue, node: node}
}

// Spawn creates a new job running fn with params on the same worker that
// is calling Spawn, pushing it onto that worker's own deque.
//
// If isSubJob is true and the currently running job belongs to a graph
// node, the new job is charged to that node: the node's unfinished count
// is bumped before the new job is made visible to any thief, and the node
// is not considered complete until this job also finishes. If isSubJob is
// true but there is no owning node (the currently running job was itself
// spawned outside of any node), the new job is created exactly as if
// isSubJob were false — it still participates in the run, it simply is
// not tracked by any node's completion protocol.
func Spawn[P any](s *Spawner, fn Func, params P, isSubJob bool) {
	checkTrivial[P]()
	job := s.allocator.allocate()
	if job == nil {
		panic("jobs: job allocator exhausted; chunk count must exceed the number of jobs live in a single run")
	}
	writeParams(job, params)
	job.function = fn
	if isSubJob && s.node != nil {
		job.node = s.node
		s.node.jobAdded()
	} else {
		job.node = nil
	}
	if !s.queue.Push(job) {
		panic("jobs: deque overflow on spawn; capacity must exceed the depth of live ready work")
	}
}
