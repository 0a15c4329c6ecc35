// Package daemon holds background maintenance loops for the running daemon.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/tatamiwm/tatami/internal/wm"
	"github.com/tatamiwm/tatami/internal/x11"
)

// FocusQuery returns the currently focused window.
type FocusQuery func() (x11.WindowID, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-asserts the border around the focused window.
// Focus events catch most movement, but a window resized or moved without a
// focus change leaves the border stale until the next pass corrects it.
type Reconciler struct {
	interval     time.Duration
	mgr          *wm.Manager
	focusedQuery FocusQuery
	logger       *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, mgr *wm.Manager, focused FocusQuery) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &Reconciler{
		interval:     interval,
		mgr:          mgr,
		focusedQuery: focused,
		logger:       cfg.Logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if !r.mgr.Settings().BorderEnabled() {
		return
	}
	b := r.mgr.Border()
	if b == nil || !b.IsEnabled() {
		return
	}

	focused, err := r.focusedQuery()
	if err != nil {
		// Nothing has focus; park the border until focus returns.
		if hideErr := b.Hide(); hideErr != nil {
			r.logger.Debug("reconciler: failed to park border", "error", hideErr)
		}
		return
	}

	if err := b.SetPosition(focused, true); err != nil {
		r.logger.Debug("reconciler: failed to re-assert border", "window", focused, "error", err)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
