package jobs

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hlehtosalo/job-scheduler/internal/ctxlog"
)

// WorkerInfo is passed to every running job's function, carrying the
// worker's index and accepting user-time accounting via BeginUserJob. A
// "user job" is one that does actual application work, as opposed to one
// that merely spawns further jobs — only the job function itself knows
// which kind it is, so crediting user time is opt-in.
type WorkerInfo struct {
	workerIndex     uint32
	userJobAmount   uint32
	userJobDuration time.Duration
}

// WorkerIndex returns the index of the worker this info belongs to.
func (w *WorkerInfo) WorkerIndex() uint32 {
	return w.workerIndex
}

// BeginUserJob starts a scoped timer and returns a function that, when
// called, stops the timer and credits the elapsed time to this worker as
// user-job time. The idiomatic Go stand-in for a construct-to-start,
// destruct-to-stop RAII timer:
//
//	func runUserJob(info *jobs.WorkerInfo) {
//		defer info.BeginUserJob()()
//		... actual work ...
//	}
func (w *WorkerInfo) BeginUserJob() func() {
	start := time.Now()
	return func() {
		w.userJobAmount++
		w.userJobDuration += time.Since(start)
	}
}

// workerStats accumulates the counters for a single worker across a run,
// credited to it by the scheduler's own bookkeeping plus whatever
// BeginUserJob calls the worker's jobs made through WorkerInfo.
type workerStats struct {
	info WorkerInfo

	ownJobAmount      uint32
	stolenJobAmount   uint32
	failedStealAmount uint64
	falseWaitAmount   uint64
	totalDuration     time.Duration
	workDuration      time.Duration
}

func newWorkerStats(index uint32) *workerStats {
	return &workerStats{info: WorkerInfo{workerIndex: index}}
}

func (s *workerStats) addOwnJob()                     { s.ownJobAmount++ }
func (s *workerStats) addStolenJob()                  { s.stolenJobAmount++ }
func (s *workerStats) addFailedStealAttempt()         { s.failedStealAmount++ }
func (s *workerStats) addFalseWait()                  { s.falseWaitAmount++ }
func (s *workerStats) addTotalTiming(d time.Duration) { s.totalDuration += d }
func (s *workerStats) addWorkTiming(d time.Duration)  { s.workDuration += d }

func (s *workerStats) reset() {
	s.ownJobAmount = 0
	s.stolenJobAmount = 0
	s.failedStealAmount = 0
	s.falseWaitAmount = 0
	s.totalDuration = 0
	s.workDuration = 0
	s.info.userJobAmount = 0
	s.info.userJobDuration = 0
}

// WorkerSnapshot is a point-in-time, read-only copy of one worker's
// statistics, safe to hand outside the scheduler.
type WorkerSnapshot struct {
	WorkerIndex     uint32
	OwnJobs         uint32
	StolenJobs      uint32
	UserJobs        uint32
	AdminJobs       uint32
	FailedSteals    uint64
	FalseWaits      uint64
	TotalDuration   time.Duration
	WorkDuration    time.Duration
	UserJobDuration time.Duration
}

func (s *workerStats) snapshot() WorkerSnapshot {
	total := s.ownJobAmount + s.stolenJobAmount
	return WorkerSnapshot{
		WorkerIndex:     s.info.workerIndex,
		OwnJobs:         s.ownJobAmount,
		StolenJobs:      s.stolenJobAmount,
		UserJobs:        s.info.userJobAmount,
		AdminJobs:       total - s.info.userJobAmount,
		FailedSteals:    s.failedStealAmount,
		FalseWaits:      s.falseWaitAmount,
		TotalDuration:   s.totalDuration,
		WorkDuration:    s.workDuration,
		UserJobDuration: s.info.userJobDuration,
	}
}

// Statistics is a snapshot of every worker's statistics, as reported by
// Scheduler.Statistics.
type Statistics struct {
	Workers []WorkerSnapshot
}

// WriteTo renders the statistics as a tab-aligned report, one block per
// worker, in the spirit of the original's WorkerStatistics::write.
func (st Statistics) WriteTo(out io.Writer) (int64, error) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	var written int
	for _, s := range st.Workers {
		n, _ := fmt.Fprintf(w, "worker %d\n", s.WorkerIndex)
		written += n
		n, _ = fmt.Fprintf(w, "\texecuted\t%d jobs\t(%d own, %d stolen)\n", s.OwnJobs+s.StolenJobs, s.OwnJobs, s.StolenJobs)
		written += n
		n, _ = fmt.Fprintf(w, "\t\t%d user jobs\t%d admin jobs\n", s.UserJobs, s.AdminJobs)
		written += n
		n, _ = fmt.Fprintf(w, "\tfailed steals\t%d\n", s.FailedSteals)
		written += n
		n, _ = fmt.Fprintf(w, "\tfalse waits\t%d\n", s.FalseWaits)
		written += n
		n, _ = fmt.Fprintf(w, "\ttotal time\t%s\n", s.TotalDuration)
		written += n
		n, _ = fmt.Fprintf(w, "\twork time\t%s\n", s.WorkDuration)
		written += n
		n, _ = fmt.Fprintf(w, "\tuser job time\t%s\n", s.UserJobDuration)
		written += n
	}
	if err := w.Flush(); err != nil {
		return int64(written), err
	}
	return int64(written), nil
}

// Log emits one structured log line per worker through ctxlog, for
// embedders that want statistics in their normal log stream rather than a
// separate report.
func (st Statistics) Log(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, s := range st.Workers {
		logger.Info("worker statistics",
			"worker", s.WorkerIndex,
			"own_jobs", s.OwnJobs,
			"stolen_jobs", s.StolenJobs,
			"user_jobs", s.UserJobs,
			"admin_jobs", s.AdminJobs,
			"failed_steals", s.FailedSteals,
			"false_waits", s.FalseWaits,
			"total_duration", s.TotalDuration,
			"work_duration", s.WorkDuration,
			"user_job_duration", s.UserJobDuration,
		)
	}
}
