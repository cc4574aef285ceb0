package app

import (
	"context"
	"fmt"

	"github.com/hlehtosalo/job-scheduler/internal/ctxlog"
)

// Run runs the loaded job graph to completion once, logs a per-worker
// statistics report, and resets the scheduler's counters so a subsequent
// Run starts from a clean slate. If a trigger server is configured it is
// started first, so /run can serve requests while this initial run is
// still in flight, and Run then blocks until ctx is done — a caller
// wanting to serve /run indefinitely should pass a context tied to
// process shutdown (e.g. signal.NotifyContext).
func (a *App) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("App.Run started.")

	if a.config.TriggerPort > 0 {
		a.startTriggerServer()
		defer a.stopTriggerServer()
	}

	if _, err, _ := a.runGroup.Do("run", func() (any, error) {
		return nil, a.runOnce()
	}); err != nil {
		return err
	}

	if a.config.TriggerPort > 0 {
		logger.Info("Trigger server active; blocking until shutdown.", "port", a.config.TriggerPort)
		<-ctx.Done()
	}

	return nil
}

// runOnce executes a.graph on a.scheduler and reports statistics. It is
// shared by Run's initial pass and the /run trigger endpoint.
func (a *App) runOnce() error {
	logger := ctxlog.FromContext(a.ctx)

	if a.graph.NodeCount() == 0 {
		logger.Warn("Graph has no nodes; nothing to run.")
		return nil
	}

	logger.Info("🚀 Starting job graph run...", "node_count", a.graph.NodeCount())
	a.scheduler.Run()
	logger.Info("🏁 Run finished.")

	stats := a.scheduler.Statistics()
	stats.Log(a.ctx)
	if _, err := stats.WriteTo(a.outW); err != nil {
		return fmt.Errorf("failed to write statistics: %w", err)
	}
	a.scheduler.ResetStatistics()

	return nil
}
