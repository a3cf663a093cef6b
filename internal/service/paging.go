package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/pkg/response"
	"golang.org/x/sync/errgroup"
)

// Page is one page of a list result
type Page[T any] struct {
	Items      []T
	Pagination *response.Pagination
}

// fetchPage runs the list and count queries concurrently under one context
func fetchPage[T any](
	ctx context.Context,
	page, limit int,
	list func(ctx context.Context) ([]T, error),
	count func(ctx context.Context) (int64, error),
) (*Page[T], error) {
	var (
		items []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = list(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Pagination: response.NewPagination(page, limit, total),
	}, nil
}

func offset(page, limit int) int {
	return (page - 1) * limit
}

// validID reports whether id can name a row; anything else cannot exist
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func requireIdentity(identity *domain.Identity) error {
	if identity == nil || identity.ID == "" {
		return domain.ErrUnauthorized
	}
	return nil
}

// pageParams is shared by every list operation
func pageParams(q *dto.ListQuery) (page, limit int, err error) {
	if q == nil {
		q = &dto.ListQuery{}
	}
	return q.PageParams()
}
