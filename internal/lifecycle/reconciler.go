package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/campuscrisis/platform/internal/models"
	"github.com/campuscrisis/platform/internal/repository"
)

// Reconciler periodically re-pushes incident status onto title-matched
// alerts, closing the window left by the non-transactional write pair.
// It is optional and off by default; the engine stays request-synchronous
// without it.
type Reconciler struct {
	incidents repository.IncidentRepository
	projector *Projector
	interval  time.Duration
	wg        sync.WaitGroup
}

func NewReconciler(incidents repository.IncidentRepository, alerts repository.AlertRepository, interval time.Duration) *Reconciler {
	return &Reconciler{
		incidents: incidents,
		projector: NewProjector(alerts),
		interval:  interval,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) {
	defer r.wg.Done()
	slog.Info("starting alert reconciler", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("alert reconciler shutting down")
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Reconcile walks recent incidents and re-applies their status to matching
// alerts. Failures are logged and skipped; the next tick retries.
func (r *Reconciler) Reconcile(ctx context.Context) {
	incidents, err := r.incidents.List(ctx, repository.IncidentFilter{Limit: 500})
	if err != nil {
		slog.Error("reconcile pass failed to list issues", "error", err)
		return
	}

	var synced int64
	for i := range incidents {
		inc := &incidents[i]
		n, err := r.projector.SyncStatus(ctx, inc)
		if err != nil {
			slog.Error("reconcile sync failed", "issue_id", inc.ID, "error", err)
			continue
		}
		synced += n
		if n == 0 && inc.Status != models.StatusResolved {
			slog.Warn("active issue has no projected alert", "issue_id", inc.ID, "title", inc.Title())
		}
	}

	slog.Debug("reconcile pass complete", "issues", len(incidents), "alerts_synced", synced)
}

func (r *Reconciler) Stop() {
	r.wg.Wait()
	slog.Info("alert reconciler stopped")
}
