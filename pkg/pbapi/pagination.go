package pbapi

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
)

// RecordPageLister fetches a single page of records from a collection.
type RecordPageLister interface {
	ListPage(ctx context.Context, collection string, params *QueryParams) (*PageResult, error)
}

// PageFetcher fetches the page described by params.
type PageFetcher[T any] func(ctx context.Context, params *QueryParams) (*ListResult[T], error)

// PaginationOptions controls a pagination run.
type PaginationOptions struct {
	// MaxPages bounds the number of requests of a single run.
	MaxPages int
	// Logger receives one debug entry per fetched page.
	Logger Logger
}

// DefaultPaginationOptions returns the default pagination options.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		MaxPages: constants.DefaultMaxPages,
	}
}

// FetchRecords lists records of collection starting at params.Page.
//
// With allElements false exactly one page is requested. Otherwise pages are
// requested until the page counter passes the totalPages reported by the
// backend, so the last page is included. Items are returned in the order received. On error nothing is
// returned besides the error.
func FetchRecords(
	ctx context.Context,
	lister RecordPageLister,
	collection string,
	params *QueryParams,
	allElements bool,
	opts *PaginationOptions,
) ([]*Record, error) {
	if collection == "" {
		return nil, NewConfigurationError("collection", ErrCollectionRequired)
	}

	fetch := func(ctx context.Context, query *QueryParams) (*PageResult, error) {
		return lister.ListPage(ctx, collection, query)
	}

	return FetchPages(ctx, fetch, params, allElements, opts)
}

// FetchPages runs the pagination loop over fetch. See FetchRecords.
func FetchPages[T any](
	ctx context.Context,
	fetch PageFetcher[T],
	params *QueryParams,
	allElements bool,
	opts *PaginationOptions,
) ([]T, error) {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = constants.DefaultMaxPages
	}

	query := params.Clone()

	page := query.Page
	if page < 1 {
		page = constants.DefaultPage
	}

	totalPages := page + 1
	items := make([]T, 0)

	for requests := 0; ; {
		if requests >= maxPages {
			return nil, fmt.Errorf("%w: stopped after %d pages", ErrPaginationInconsistency, requests)
		}

		requested := page
		query.Page = requested

		result, err := fetch(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", requested, err)
		}

		requests++

		if result.Page > 0 {
			page = result.Page
		}

		if allElements {
			totalPages = result.TotalPages
		}

		items = append(items, result.Items...)

		if opts.Logger != nil {
			opts.Logger.Debug("Fetched page", map[string]interface{}{
				"page":        requested,
				"reported":    result.Page,
				"total_pages": result.TotalPages,
				"items":       len(result.Items),
			})
		}

		if !allElements {
			break
		}

		page++

		if page > totalPages {
			break
		}

		if page <= requested {
			return nil, fmt.Errorf("%w: backend reported page %d after page %d was requested",
				ErrPaginationInconsistency, result.Page, requested)
		}
	}

	return items, nil
}
