// Package service contains the business rules of the API.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → references, validation, defaults, orchestration
//	Repository (data layer)  → reads/writes the store
//
// Services take plain Go values and return model types and apperror errors.
// They know nothing about HTTP, so the seed command drives the same code
// paths as the API.
//
// WRITE PIPELINE:
// Every create and update runs the same steps in the same order:
//
//  1. reference check: a foreign key must be a well-formed id naming an
//     existing parent (InvalidReference otherwise);
//  2. application-layer validation of the whole normalized record, reporting
//     every failing field (ValidationFailed);
//  3. the store write, where the table's own constraints check again.
//
// The existence check in step 1 and the write in step 3 are separate
// statements. A parent deleted in between leaves a dangling reference, which
// reads already tolerate.
package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/whiskerbook/internal/model"
	"github.com/sakif/whiskerbook/internal/pagination"
	"github.com/sakif/whiskerbook/internal/repository"
)

// listPage runs the count and the page query concurrently over the same
// filter and assembles the response envelope.
//
// The two reads are not a snapshot: a write landing between them can make
// Total disagree with Items by one. That is acceptable for a listing.
func listPage[T any](
	ctx context.Context,
	params pagination.Params,
	count func(ctx context.Context) (int, error),
	list func(ctx context.Context, opts repository.ListOptions) ([]T, error),
) (*model.Page[T], error) {
	var (
		total int
		items []T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := count(gctx)
		if err != nil {
			return fmt.Errorf("counting: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		page, err := list(gctx, repository.ListOptions{
			Limit:  params.Limit,
			Offset: params.Skip,
			Oldest: params.Oldest,
		})
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		items = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}

	return &model.Page[T]{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
		Items: items,
	}, nil
}
