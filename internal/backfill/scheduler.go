// Package backfill computes missing embedding artifacts for catalog items.
// A run is a single bounded invocation: it processes at most MaxProcess items
// and reports how many remain, so the caller can invoke it again later. The
// durable state between runs is only the presence or absence of each item's
// embedding, which makes re-invocation idempotent by construction.
package backfill

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mealscope/enrich-cli/internal/config"
	"github.com/mealscope/enrich-cli/internal/model"
	"github.com/mealscope/enrich-cli/internal/provider"
	"github.com/mealscope/enrich-cli/internal/resilience"
)

const (
	// DefaultMaxProcess bounds wall-clock time per invocation.
	DefaultMaxProcess = 100
	// MaxProcessCeiling is the hard ceiling on items per invocation.
	MaxProcessCeiling = 500
	// DefaultBatchSize bounds peak concurrent provider calls.
	DefaultBatchSize = 10
	// defaultPace is the minimum spacing between dispatched provider calls.
	defaultPace = 100 * time.Millisecond
)

// Writer persists one embedding artifact keyed by item id. Writes are
// idempotent overwrites.
type Writer interface {
	UpsertEmbedding(ctx context.Context, itemID string, vec []float32) error
}

// Scheduler drives bounded-concurrency embedding backfill.
type Scheduler struct {
	embedder   provider.Embedder
	writer     Writer
	maxProcess int
	batchSize  int
	limiter    *rate.Limiter
	retryCfg   resilience.RetryConfig
}

// NewScheduler builds a scheduler from config, applying defaults for any
// unset knob.
func NewScheduler(embedder provider.Embedder, writer Writer, cfg config.BackfillConfig) *Scheduler {
	maxProcess := clampMaxProcess(cfg.MaxProcess)

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	pace := defaultPace
	if cfg.PaceMillis > 0 {
		pace = time.Duration(cfg.PaceMillis) * time.Millisecond
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("provider", "embed")

	return &Scheduler{
		embedder:   embedder,
		writer:     writer,
		maxProcess: maxProcess,
		batchSize:  batchSize,
		limiter:    rate.NewLimiter(rate.Every(pace), 1),
		retryCfg:   retryCfg,
	}
}

// clampMaxProcess normalizes a per-invocation cap into [1, MaxProcessCeiling];
// non-positive values mean "use the default".
func clampMaxProcess(n int) int {
	if n <= 0 {
		return DefaultMaxProcess
	}
	if n > MaxProcessCeiling {
		return MaxProcessCeiling
	}
	return n
}

// Run processes up to maxProcess items from missing, in catalog order, and
// returns the progress report. A non-positive maxProcess uses the scheduler's
// configured cap. Per-item failures are counted, never fatal: the run always
// completes and Attempted always equals Succeeded + Failed.
//
// Work is partitioned into fixed-size batches processed sequentially; items
// within a batch are dispatched concurrently, bounding peak in-flight provider
// calls to the batch size. Each dispatch waits on a shared pacing limiter, so
// pacing applies per call, not merely between batches.
func (s *Scheduler) Run(ctx context.Context, missing []model.CatalogItem, maxProcess int) model.BackfillProgress {
	if maxProcess <= 0 {
		maxProcess = s.maxProcess
	} else {
		maxProcess = clampMaxProcess(maxProcess)
	}

	progress := model.BackfillProgress{
		RunID:         uuid.NewString(),
		TotalEligible: len(missing),
	}

	capped := missing
	if len(capped) > maxProcess {
		capped = capped[:maxProcess]
	}
	progress.Remaining = len(missing) - len(capped)

	if progress.Remaining > 0 {
		zap.L().Info("backfill: capping run",
			zap.Int("eligible", len(missing)),
			zap.Int("processing", len(capped)),
			zap.Int("remaining", progress.Remaining),
		)
	}

	var mu sync.Mutex
	succeeded, failed := 0, 0

	for start := 0; start < len(capped); start += s.batchSize {
		end := start + s.batchSize
		if end > len(capped) {
			end = len(capped)
		}
		batch := capped[start:end]

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(s.batchSize)

		for _, item := range batch {
			g.Go(func() error {
				ok := s.processItem(gCtx, item)
				mu.Lock()
				if ok {
					succeeded++
				} else {
					failed++
				}
				mu.Unlock()
				return nil
			})
		}

		_ = g.Wait()

		zap.L().Debug("backfill: batch complete",
			zap.Int("processed", end),
			zap.Int("total", len(capped)),
		)
	}

	progress.Attempted = len(capped)
	progress.Succeeded = succeeded
	progress.Failed = failed
	if progress.Remaining > 0 {
		progress.ContinueHint = fmt.Sprintf("%d items still missing embeddings, invoke backfill again to continue", progress.Remaining)
	}

	return progress
}

// processItem embeds and persists one item. Returns false on any failure;
// failures are logged here and never propagate.
func (s *Scheduler) processItem(ctx context.Context, item model.CatalogItem) bool {
	if err := s.limiter.Wait(ctx); err != nil {
		zap.L().Warn("backfill: pacing interrupted",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		return false
	}

	vec, err := resilience.DoVal(ctx, s.retryCfg, func(ctx context.Context) ([]float32, error) {
		return s.embedder.Embed(ctx, item.EmbeddingText())
	})
	if err != nil {
		zap.L().Warn("backfill: embed failed",
			zap.String("item_id", item.ID),
			zap.String("name", item.Name),
			zap.Error(err),
		)
		return false
	}

	if err := s.writer.UpsertEmbedding(ctx, item.ID, vec); err != nil {
		zap.L().Warn("backfill: write failed",
			zap.String("item_id", item.ID),
			zap.Error(err),
		)
		return false
	}

	return true
}
