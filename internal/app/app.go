package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/hlehtosalo/job-scheduler/internal/config"
	"github.com/hlehtosalo/job-scheduler/internal/ctxlog"
	"github.com/hlehtosalo/job-scheduler/internal/jobs"
	"github.com/hlehtosalo/job-scheduler/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: a loaded graph, the scheduler built to run it, and (when
// configured) an HTTP server that can trigger runs on demand.
type App struct {
	outW      io.Writer
	ctx       context.Context
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	graph     *jobs.Graph
	scheduler *jobs.Scheduler

	httpServer *http.Server
	runGroup   singleflight.Group
}

// NewApp is the constructor for the main application. It loads the graph
// description from cfg.GraphPath, registers modules (coreModules if none
// are given), builds the job graph, and sizes a scheduler for it. A
// failure anywhere in this chain is a fatal startup error, so NewApp
// panics rather than returning an error — callers recover at the process
// boundary the way a CLI entrypoint does.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	spec, err := config.Load(ctx, cfg.GraphPath)
	if err != nil {
		panic(fmt.Errorf("failed to load graph description: %w", err))
	}
	logger.Debug("Graph description loaded.", "node_count", len(spec.Nodes))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All job types registered.", "job_types", reg.Names())

	graph, err := config.Build(spec, reg, config.EvalContext(cfg.WorkerCount))
	if err != nil {
		panic(fmt.Errorf("failed to build job graph: %w", err))
	}
	logger.Debug("Job graph built.", "node_count", graph.NodeCount())

	scheduler := jobs.NewScheduler(cfg.WorkerCount, cfg.ChunkCount)
	scheduler.SetJobGraph(graph)
	logger.Debug("Scheduler sized.", "worker_amount", scheduler.WorkerAmount())

	return &App{
		outW:      outW,
		ctx:       ctx,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		graph:     graph,
		scheduler: scheduler,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Close releases the scheduler's worker goroutines. Callers that invoke
// Run more than once should not call Close between runs: the scheduler
// itself is reusable, only its final shutdown needs this.
func (a *App) Close() {
	a.scheduler.Close()
}
