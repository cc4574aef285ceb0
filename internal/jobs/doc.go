// Package jobs is a work-stealing job scheduler: a fixed pool of worker
// goroutines drains a caller-supplied DAG of coarse-grained jobs, with
// each worker stealing from others once its own queue runs dry. The
// scheduler, its lock-free deque, its chunked job allocator and the DAG
// completion protocol all live in this one package, since they are tightly
// coupled enough that splitting them across packages would just move
// unexported coupling across an import boundary instead of removing it.
package jobs
