// Package demo builds the worked example the job scheduler was designed
// around: generate a large array of pseudorandom numbers with a
// deliberately expensive hash function, then sum them, once on a single
// goroutine and once as a three-node job graph. It exists so a reader can
// see jobs.Spawn, jobs.NewNode and jobs.NewNodeWithPredecessors used for
// something larger than a unit test.
package demo

import (
	"runtime"
	"time"
	"unsafe"

	"github.com/hlehtosalo/job-scheduler/internal/jobs"
)

// slowHash is a deliberately expensive mixing function: the point of the
// benchmark is to spend real CPU time per element, not to hash well.
func slowHash(x uint32) uint32 {
	for i := 0; i != 32; i++ {
		x += 831461
		x *= 125897
		x ^= x << 16
	}
	return x
}

// generateParams fans out slowHash over results[first:first+amount].
// results is a raw pointer to the backing array rather than a slice so
// the type stays trivially copyable: a Go slice header carries a length
// and capacity that would be meaningless once memcpy'd into a job's
// inline parameter buffer, and borrowing just the data pointer is exactly
// what the original's `uint64_t*` does.
type generateParams struct {
	results *uint64
	first   uint32
	amount  uint32
}

func parallelGenerate(raw unsafe.Pointer, spawner *jobs.Spawner, info *jobs.WorkerInfo) {
	params := jobs.ParamsOf[generateParams](raw)

	if params.amount <= 1024 {
		done := info.BeginUserJob()
		defer done()
		end := params.first + params.amount
		results := unsafe.Slice(params.results, end)
		for i := params.first; i != end; i++ {
			results[i] = uint64(slowHash(i))
		}
		return
	}

	leftAmount := params.amount / 2
	jobs.Spawn(spawner, parallelGenerate, generateParams{
		results: params.results,
		first:   params.first,
		amount:  leftAmount,
	}, true)
	jobs.Spawn(spawner, parallelGenerate, generateParams{
		results: params.results,
		first:   params.first + leftAmount,
		amount:  params.amount - leftAmount,
	}, true)
}

// sumParams fans out the summation of batchAmount batches of batchSize
// numbers each, writing one partial sum per batch into results. Reducing
// batchAmount to 1 stacks: calling it again on the batch results with
// batchSize equal to the original batchAmount collapses the whole array
// to a single total.
type sumParams struct {
	numbers     *uint64
	results     *uint64
	firstBatch  uint32
	batchAmount uint32
	batchSize   uint32
}

func parallelSum(raw unsafe.Pointer, spawner *jobs.Spawner, info *jobs.WorkerInfo) {
	params := jobs.ParamsOf[sumParams](raw)

	if params.batchAmount == 1 {
		done := info.BeginUserJob()
		defer done()
		begin := params.firstBatch * params.batchSize
		end := begin + params.batchSize
		numbers := unsafe.Slice(params.numbers, end)
		var sum uint64
		for _, n := range numbers[begin:end] {
			sum += n
		}
		results := unsafe.Slice(params.results, params.firstBatch+1)
		results[params.firstBatch] = sum
		return
	}

	leftAmount := params.batchAmount / 2
	jobs.Spawn(spawner, parallelSum, sumParams{
		numbers:     params.numbers,
		results:     params.results,
		firstBatch:  params.firstBatch,
		batchAmount: leftAmount,
		batchSize:   params.batchSize,
	}, true)
	jobs.Spawn(spawner, parallelSum, sumParams{
		numbers:     params.numbers,
		results:     params.results,
		firstBatch:  params.firstBatch + leftAmount,
		batchAmount: params.batchAmount - leftAmount,
		batchSize:   params.batchSize,
	}, true)
}

const (
	batchAmount  = 1024
	batchSize    = 1024
	numberAmount = batchAmount * batchSize
)

// Result is the outcome of one Run: both calculations' timings and
// results, so a caller can report the speedup and confirm the scheduler
// agrees with the single-goroutine baseline.
type Result struct {
	NumberAmount         uint32
	SingleThreadDuration time.Duration
	SingleThreadResult   uint64
	SchedulerDuration    time.Duration
	SchedulerResult      uint64
	Correct              bool
	Statistics           jobs.Statistics
}

// Run computes the sum of slowHash(0)..slowHash(numberAmount-1) twice:
// once directly, once by building and running a three-node job graph on
// a scheduler with workerAmount workers and chunkAmount job-record
// chunks. It returns both results so the caller can compare them.
func Run(workerAmount, chunkAmount int) *Result {
	numbers := make([]uint64, numberAmount)
	batchResults := make([]uint64, batchAmount)

	start := time.Now()
	for i := uint32(0); i != numberAmount; i++ {
		numbers[i] = uint64(slowHash(i))
	}
	var singleThreadResult uint64
	for _, n := range numbers {
		singleThreadResult += n
	}
	singleThreadDuration := time.Since(start)

	var schedulerResult uint64
	graph := jobs.NewGraph()
	generateNode := jobs.NewNode(graph, parallelGenerate, generateParams{
		results: &numbers[0],
		first:   0,
		amount:  numberAmount,
	})
	batchSumNode := jobs.NewNodeWithPredecessors(graph, parallelSum, sumParams{
		numbers:     &numbers[0],
		results:     &batchResults[0],
		firstBatch:  0,
		batchAmount: batchAmount,
		batchSize:   batchSize,
	}, []*jobs.Node{generateNode})
	jobs.NewNodeWithPredecessors(graph, parallelSum, sumParams{
		numbers:     &batchResults[0],
		results:     &schedulerResult,
		firstBatch:  0,
		batchAmount: 1,
		batchSize:   batchAmount,
	}, []*jobs.Node{batchSumNode})

	scheduler := jobs.NewScheduler(workerAmount, chunkAmount)
	defer scheduler.Close()
	scheduler.SetJobGraph(graph)

	schedulerStart := time.Now()
	scheduler.Run()
	schedulerDuration := time.Since(schedulerStart)
	// The jobs reach numbers and batchResults only through pointers copied
	// into their inline parameter buffers, which the garbage collector does
	// not scan, so both slices are kept alive until the run has returned.
	runtime.KeepAlive(numbers)
	runtime.KeepAlive(batchResults)

	return &Result{
		NumberAmount:         numberAmount,
		SingleThreadDuration: singleThreadDuration,
		SingleThreadResult:   singleThreadResult,
		SchedulerDuration:    schedulerDuration,
		SchedulerResult:      schedulerResult,
		Correct:              schedulerResult == singleThreadResult,
		Statistics:           scheduler.Statistics(),
	}
}
