package catalog

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultPageSize stays under the storage layer's maximum-rows-per-request
// limit.
const DefaultPageSize = 1000

// PageFunc fetches one page of rows starting at offset, returning at most
// limit rows. A short page means end of data.
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// FetchOptions tunes a paginated fetch.
type FetchOptions struct {
	// PageSize per request; defaults to DefaultPageSize.
	PageSize int
	// MaxItems is an optional hard cap on total rows fetched; 0 means
	// unlimited.
	MaxItems int
}

// FetchAll drains a paginated source into memory. Pages are requested
// sequentially; the loop stops when a page comes back shorter than requested
// (end of data, also covering silent truncation by the storage layer) or the
// hard cap is reached.
//
// Error handling: if the first page fails the whole call fails. If a later
// page fails, the rows accumulated so far are returned with partial=true and
// no error; the caller decides whether partial data is usable.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T], opts FetchOptions) (items []T, partial bool, err error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	offset := 0
	for {
		limit := pageSize
		if opts.MaxItems > 0 {
			if remaining := opts.MaxItems - len(items); remaining < limit {
				limit = remaining
			}
		}
		if limit <= 0 {
			break
		}

		rows, err := fetch(ctx, offset, limit)
		if err != nil {
			if len(items) == 0 {
				return nil, false, eris.Wrap(err, "catalog: fetch first page")
			}
			zap.L().Warn("catalog: page fetch failed, returning partial data",
				zap.Int("fetched", len(items)),
				zap.Int("offset", offset),
				zap.Error(err),
			)
			return items, true, nil
		}

		if len(rows) == 0 {
			break
		}

		items = append(items, rows...)
		offset += len(rows)

		if len(rows) < limit {
			break
		}
	}

	return items, false, nil
}
