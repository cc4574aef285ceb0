package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hlehtosalo/job-scheduler/internal/ctxlog"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// runHandler triggers a.runOnce. Concurrent POSTs are collapsed onto a
// single in-flight run via singleflight: the job graph mutates shared
// state through the scheduler, so letting two runs race would corrupt
// it, and a caller asking for a run that is already happening is better
// served by that run's own result than a second one.
func (a *App) runHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_, err, shared := a.runGroup.Do("run", func() (any, error) {
		return nil, a.runOnce()
	})
	logger.Debug("Run request handled.", "shared", shared)

	if err != nil {
		logger.Error("Triggered run failed.", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "run complete")
}

// startTriggerServer initializes and runs the HTTP trigger server.
func (a *App) startTriggerServer() {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring trigger server.")

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.healthHandler)
	mux.HandleFunc("/run", a.runHandler)

	addr := fmt.Sprintf(":%d", a.config.TriggerPort)
	a.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("🩺 Trigger server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Trigger server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) stopTriggerServer() error {
	logger := ctxlog.FromContext(a.ctx)
	if a.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down trigger server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Trigger server shutdown failed", "error", err)
		return err
	}
	return nil
}
