package backfill

import (
	"context"

	"go.uber.org/zap"

	"github.com/mealscope/enrich-cli/internal/catalog"
	"github.com/mealscope/enrich-cli/internal/config"
	"github.com/mealscope/enrich-cli/internal/model"
	"github.com/mealscope/enrich-cli/internal/provider"
	"github.com/mealscope/enrich-cli/internal/store"
)

// Job ties the work-set resolver to the scheduler for one backfill
// invocation.
type Job struct {
	store    store.Store
	sched    *Scheduler
	pageSize int
}

// NewJob builds a backfill job against the given store and embedder.
func NewJob(st store.Store, embedder provider.Embedder, cfg *config.Config) *Job {
	return &Job{
		store:    st,
		sched:    NewScheduler(embedder, st, cfg.Backfill),
		pageSize: cfg.Catalog.PageSize,
	}
}

// Run resolves the current work set and processes up to maxProcess items
// (non-positive means the configured default). Resolution failure is the only
// hard error; the scheduler itself always returns a report.
func (j *Job) Run(ctx context.Context, maxProcess int) (model.BackfillProgress, error) {
	ws, err := catalog.ResolveWorkSet(ctx, j.store, catalog.FetchOptions{PageSize: j.pageSize})
	if err != nil {
		return model.BackfillProgress{}, err
	}

	if len(ws.Missing) == 0 {
		zap.L().Info("backfill: all items already embedded",
			zap.Int("total", ws.Snapshot.Len()),
		)
		progress := j.sched.Run(ctx, nil, maxProcess)
		return progress, nil
	}

	progress := j.sched.Run(ctx, ws.Missing, maxProcess)

	zap.L().Info("backfill: run complete",
		zap.String("run_id", progress.RunID),
		zap.Int("attempted", progress.Attempted),
		zap.Int("succeeded", progress.Succeeded),
		zap.Int("failed", progress.Failed),
		zap.Int("remaining", progress.Remaining),
	)

	return progress, nil
}
