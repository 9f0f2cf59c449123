package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slicePager returns a PageFunc backed by n synthetic rows, counting calls.
func slicePager(n int, calls *int) PageFunc[string] {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf("row-%04d", i)
	}
	return func(ctx context.Context, offset, limit int) ([]string, error) {
		*calls++
		if offset >= len(rows) {
			return nil, nil
		}
		end := offset + limit
		if end > len(rows) {
			end = len(rows)
		}
		return rows[offset:end], nil
	}
}

func TestFetchAllDrainsEverything(t *testing.T) {
	const pageSize = 10

	tests := []struct {
		name      string
		total     int
		wantCalls int
	}{
		{"empty", 0, 1},
		{"single row", 1, 1},
		{"one short page", pageSize - 1, 1},
		{"exactly one page", pageSize, 2},
		{"one page plus one", pageSize + 1, 2},
		{"exactly two pages", 2 * pageSize, 3},
		{"three pages plus one", 3*pageSize + 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			items, partial, err := FetchAll(context.Background(), slicePager(tt.total, &calls), FetchOptions{PageSize: pageSize})

			require.NoError(t, err)
			assert.False(t, partial)
			assert.Len(t, items, tt.total)
			assert.Equal(t, tt.wantCalls, calls)

			// No duplicates and no gaps.
			for i, it := range items {
				assert.Equal(t, fmt.Sprintf("row-%04d", i), it)
			}
		})
	}
}

func TestFetchAllMaxItemsCap(t *testing.T) {
	calls := 0
	items, partial, err := FetchAll(context.Background(), slicePager(25, &calls), FetchOptions{PageSize: 10, MaxItems: 15})

	require.NoError(t, err)
	assert.False(t, partial)
	assert.Len(t, items, 15)
	assert.Equal(t, 2, calls)
}

func TestFetchAllFirstPageErrorIsFatal(t *testing.T) {
	boom := errors.New("connection refused")
	fetch := func(ctx context.Context, offset, limit int) ([]string, error) {
		return nil, boom
	}

	items, partial, err := FetchAll(context.Background(), fetch, FetchOptions{PageSize: 10})

	require.Error(t, err)
	assert.ErrorContains(t, err, "fetch first page")
	assert.False(t, partial)
	assert.Nil(t, items)
}

func TestFetchAllLaterPageErrorReturnsPartial(t *testing.T) {
	fetch := func(ctx context.Context, offset, limit int) ([]string, error) {
		if offset > 0 {
			return nil, errors.New("timeout")
		}
		rows := make([]string, limit)
		for i := range rows {
			rows[i] = fmt.Sprintf("row-%04d", offset+i)
		}
		return rows, nil
	}

	items, partial, err := FetchAll(context.Background(), fetch, FetchOptions{PageSize: 10})

	require.NoError(t, err)
	assert.True(t, partial)
	assert.Len(t, items, 10)
}

func TestFetchAllDefaultPageSize(t *testing.T) {
	var seenLimit int
	fetch := func(ctx context.Context, offset, limit int) ([]string, error) {
		seenLimit = limit
		return nil, nil
	}

	_, _, err := FetchAll(context.Background(), fetch, FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, seenLimit)
}
