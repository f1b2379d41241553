// Package fetch implements sequential cursor pagination against upstream
// inventory APIs. Each page request depends on the cursor returned by the
// previous page, so pages are never fetched concurrently or out of order.
package fetch

import (
	"context"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
)

// Page is one page of results and the cursor for the next page.
// An empty Next ends pagination.
type Page[T any] struct {
	Items []T
	Next  string
}

// PageFunc fetches the page addressed by cursor; the first call receives "".
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// All drains every page and returns the accumulated items. The full
// inventory is held in memory; there is no cap on the number of pages.
// Any page error aborts the pull and no partial result is returned.
func All[T any](ctx context.Context, fn PageFunc[T]) ([]T, error) {
	logger := logging.FromContext(ctx)

	var (
		items  []T
		cursor string
		seen   = make(map[string]struct{})
	)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &errors.FetchError{Page: page, Err: err}
		}

		result, err := fn(ctx, cursor)
		if err != nil {
			return nil, &errors.FetchError{Page: page, Err: err}
		}
		items = append(items, result.Items...)

		logger.Trace().
			Int("page", page).
			Int("items", len(result.Items)).
			Bool("more", result.Next != "").
			Msg("Fetched page")

		if result.Next == "" {
			return items, nil
		}
		if _, ok := seen[result.Next]; ok {
			return nil, &errors.FetchError{Page: page, Err: errors.ErrCursorLoop}
		}
		seen[result.Next] = struct{}{}
		cursor = result.Next
	}
}
