package store

import (
	"context"

	"github.com/mealscope/enrich-cli/internal/model"
)

// Store defines the catalog persistence interface used by enrichment runs.
// Page fetches are offset-based because the backing layer caps rows per
// request; callers drain pages through the catalog paginator.
type Store interface {
	// ListItems returns one page of catalog items joined with their group,
	// ordered by id.
	ListItems(ctx context.Context, offset, limit int) ([]model.CatalogItem, error)

	// ListEmbeddedIDs returns one page of ids of items that already have an
	// embedding, ordered by id.
	ListEmbeddedIDs(ctx context.Context, offset, limit int) ([]string, error)

	// UpsertEmbedding writes the embedding for an item. Overwriting an
	// existing embedding is safe; the write is idempotent.
	UpsertEmbedding(ctx context.Context, itemID string, vec []float32) error

	// Counts for status reporting.
	CountItems(ctx context.Context) (int, error)
	CountEmbedded(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
