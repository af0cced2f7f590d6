package connector

import "context"

const (
	// pageSize is the fixed record count requested per page.
	pageSize = 100

	// maxPages bounds pagination against an adversarial or buggy server.
	// With pageSize 100 this caps any single fetch at 1000 records.
	maxPages = 10
)

// pageFetch retrieves one page (1-based) of up to size records.
type pageFetch[T any] func(ctx context.Context, page, size int) ([]T, error)

// fetchAllPages drives bounded pagination over a cursor/page listing
// endpoint.
//
// Pages are requested strictly sequentially starting at 1. Pagination stops
// when a page returns fewer records than pageSize (exhausted) or when the
// page counter would exceed maxPages. Records are concatenated in
// server-returned order; no re-sorting across pages.
//
// Any single page failure aborts the whole pagination and propagates the
// error with no partial results. The caller is expected to treat that as
// tier fallthrough.
func fetchAllPages[T any](ctx context.Context, fetch pageFetch[T]) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		records, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if len(records) < pageSize {
			break
		}
	}
	return all, nil
}
