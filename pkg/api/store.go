package api

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/suiteview/pkg/model"
)

// Source is the read side of the service the dashboard consumes.
// Snapshot loaders satisfy it too, so everything above this package
// works the same offline.
type Source interface {
	List(ctx context.Context, t model.EntityType) ([]model.Record, error)
}

// Store wraps a Source with the tolerant semantics the dashboard
// wants: a collection that fails to load is an empty collection, not a
// fatal error. Failures are logged so they stay visible.
type Store struct {
	src Source
}

func NewStore(src Source) *Store { return &Store{src: src} }

// List returns a collection, or an empty slice when the fetch fails.
func (s *Store) List(ctx context.Context, t model.EntityType) []model.Record {
	records, err := s.src.List(ctx, t)
	if err != nil {
		log.Printf("warning: listing %s failed: %v", t.Collection(), err)
		return []model.Record{}
	}
	return records
}

// fetchAll lists every entity collection concurrently and fails fast
// on the first error.
func fetchAll(ctx context.Context, src Source) (model.Collections, error) {
	types := model.AllTypes()
	results := make([][]model.Record, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			records, err := src.List(gctx, t)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	collections := make(model.Collections, len(types))
	for i, t := range types {
		collections[t] = results[i]
	}
	return collections, nil
}

// FetchAll is the errgroup fan-out over a plain Source.
func FetchAll(ctx context.Context, src Source) (model.Collections, error) {
	return fetchAll(ctx, src)
}
