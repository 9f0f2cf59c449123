package catalog

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mealscope/enrich-cli/internal/model"
)

// Snapshot is an in-memory, point-in-time, ordered copy of the catalog used
// for one run. It is read-only after capture.
type Snapshot struct {
	// Items in stable order: group sort order, then name under Japanese
	// collation, then id.
	Items []model.CatalogItem

	// Partial is set when a later page fetch failed and the snapshot holds
	// only the rows accumulated before the failure.
	Partial bool

	ids map[string]struct{}
}

// Load captures a snapshot from the store. A first-page fetch failure is a
// hard error; a later-page failure yields a partial snapshot.
func Load(ctx context.Context, st ItemSource, opts FetchOptions) (*Snapshot, error) {
	items, partial, err := FetchAll(ctx, st.ListItems, opts)
	if err != nil {
		return nil, err
	}

	sortItems(items)

	ids := make(map[string]struct{}, len(items))
	for _, it := range items {
		ids[it.ID] = struct{}{}
	}

	zap.L().Debug("catalog: snapshot loaded",
		zap.Int("items", len(items)),
		zap.Bool("partial", partial),
	)

	return &Snapshot{Items: items, Partial: partial, ids: ids}, nil
}

// ItemSource provides paginated access to catalog rows.
type ItemSource interface {
	ListItems(ctx context.Context, offset, limit int) ([]model.CatalogItem, error)
}

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Items)
}

// Contains reports whether id is a member of the snapshot.
func (s *Snapshot) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDSet returns the trusted id set of the snapshot. The returned map is
// shared; callers must not mutate it.
func (s *Snapshot) IDSet() map[string]struct{} {
	return s.ids
}

// sortItems orders items deterministically: group sort order ascending, then
// name under Japanese collation (catalog names are Japanese), then id as the
// final tiebreak. Prompt construction depends on this ordering being stable
// across runs against unchanged data.
func sortItems(items []model.CatalogItem) {
	c := collate.New(language.Japanese)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.GroupOrder != b.GroupOrder {
			return a.GroupOrder < b.GroupOrder
		}
		if cmp := c.CompareString(a.Name, b.Name); cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
}
