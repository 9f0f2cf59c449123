package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealscope/enrich-cli/internal/model"
)

func TestLoadOrdersByGroupThenNameThenID(t *testing.T) {
	items := []model.CatalogItem{
		{ID: "f-3", Name: "かつお", GroupID: "g2", GroupName: "魚介類", GroupOrder: 2},
		{ID: "f-1", Name: "こむぎ", GroupID: "g1", GroupName: "穀類", GroupOrder: 1},
		{ID: "f-4", Name: "あじ", GroupID: "g2", GroupName: "魚介類", GroupOrder: 2},
		{ID: "f-2", Name: "こめ", GroupID: "g1", GroupName: "穀類", GroupOrder: 1},
	}
	src := newFakeSource(items, nil)

	snap, err := Load(context.Background(), src, FetchOptions{PageSize: 100})

	require.NoError(t, err)
	require.Equal(t, 4, snap.Len())

	gotIDs := make([]string, 0, 4)
	for _, it := range snap.Items {
		gotIDs = append(gotIDs, it.ID)
	}
	assert.Equal(t, []string{"f-1", "f-2", "f-4", "f-3"}, gotIDs)
}

func TestLoadBreaksNameTiesByID(t *testing.T) {
	items := []model.CatalogItem{
		{ID: "f-9", Name: "こめ", GroupID: "g1", GroupOrder: 1},
		{ID: "f-2", Name: "こめ", GroupID: "g1", GroupOrder: 1},
	}
	src := newFakeSource(items, nil)

	snap, err := Load(context.Background(), src, FetchOptions{PageSize: 100})

	require.NoError(t, err)
	assert.Equal(t, "f-2", snap.Items[0].ID)
	assert.Equal(t, "f-9", snap.Items[1].ID)
}

func TestSnapshotIDSet(t *testing.T) {
	items := makeItems(3)
	src := newFakeSource(items, nil)

	snap, err := Load(context.Background(), src, FetchOptions{PageSize: 100})

	require.NoError(t, err)
	assert.True(t, snap.Contains("food-0001"))
	assert.False(t, snap.Contains("food-9999"))
	assert.Len(t, snap.IDSet(), 3)
}

func TestLoadRespectsMaxItems(t *testing.T) {
	src := newFakeSource(makeItems(50), nil)

	snap, err := Load(context.Background(), src, FetchOptions{PageSize: 20, MaxItems: 30})

	require.NoError(t, err)
	assert.Equal(t, 30, snap.Len())
}
