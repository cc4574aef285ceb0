package jobs

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerStatsSnapshotReflectsRecordedActivity(t *testing.T) {
	s := newWorkerStats(3)
	s.addOwnJob()
	s.addOwnJob()
	s.addStolenJob()
	s.addFailedStealAttempt()
	s.addFalseWait()
	done := s.info.BeginUserJob()
	done()

	got := s.snapshot()
	want := WorkerSnapshot{
		WorkerIndex:  3,
		OwnJobs:      2,
		StolenJobs:   1,
		UserJobs:     1,
		AdminJobs:    2,
		FailedSteals: 1,
		FalseWaits:   1,
	}

	// WorkerSnapshot carries real elapsed durations that differ run to
	// run, so zero them out before diffing the rest of the struct.
	got.TotalDuration, got.WorkDuration, got.UserJobDuration = 0, 0, 0

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkerStatsResetZeroesEverything(t *testing.T) {
	s := newWorkerStats(0)
	s.addOwnJob()
	s.addFailedStealAttempt()
	done := s.info.BeginUserJob()
	done()

	s.reset()

	got := s.snapshot()
	assert.Equal(t, uint32(0), got.OwnJobs)
	assert.Equal(t, uint32(0), got.UserJobs)
	assert.Equal(t, uint64(0), got.FailedSteals)
}

func TestStatisticsWriteToProducesAReadableReport(t *testing.T) {
	st := Statistics{Workers: []WorkerSnapshot{
		{WorkerIndex: 0, OwnJobs: 5, StolenJobs: 2},
	}}

	var buf bytes.Buffer
	n, err := st.WriteTo(&buf)
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))
	assert.Contains(t, buf.String(), "worker 0")
	assert.Contains(t, buf.String(), "executed")
}
