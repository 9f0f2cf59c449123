package catalog

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mealscope/enrich-cli/internal/model"
)

// WorkSet is the set of catalog items still missing an embedding, computed
// fresh each run as full snapshot minus already-embedded ids. There is no
// persisted job state: the work set itself is the resumability mechanism.
type WorkSet struct {
	Snapshot *Snapshot
	// Missing items in snapshot order.
	Missing []model.CatalogItem
	// Done is the number of items that already have an embedding.
	Done int
}

// Source combines the two paginated queries the resolver needs.
type Source interface {
	ItemSource
	ListEmbeddedIDs(ctx context.Context, offset, limit int) ([]string, error)
}

// ResolveWorkSet computes the items missing an embedding. The already-embedded
// query is paginated with the same discipline as the main fetch and fails
// closed: if it errors or returns partial data, resolving fails rather than
// silently re-processing items, which would corrupt the progress accounting.
func ResolveWorkSet(ctx context.Context, src Source, opts FetchOptions) (*WorkSet, error) {
	snap, err := Load(ctx, src, opts)
	if err != nil {
		return nil, eris.Wrap(err, "workset: load snapshot")
	}
	if snap.Partial {
		zap.L().Warn("workset: proceeding on partial catalog snapshot",
			zap.Int("items", snap.Len()),
		)
	}

	ids, partial, err := FetchAll(ctx, src.ListEmbeddedIDs, FetchOptions{PageSize: opts.PageSize})
	if err != nil {
		return nil, eris.Wrap(err, "workset: list embedded ids")
	}
	if partial {
		return nil, eris.New("workset: embedded id fetch returned partial data, refusing to resolve")
	}

	done := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		done[id] = struct{}{}
	}

	var missing []model.CatalogItem
	for _, it := range snap.Items {
		if _, ok := done[it.ID]; !ok {
			missing = append(missing, it)
		}
	}

	zap.L().Info("workset: resolved",
		zap.Int("total", snap.Len()),
		zap.Int("done", len(done)),
		zap.Int("missing", len(missing)),
	)

	return &WorkSet{Snapshot: snap, Missing: missing, Done: len(done)}, nil
}
