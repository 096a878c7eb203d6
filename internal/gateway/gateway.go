// Package gateway translates page operations into calls against the
// storage service, enforcing per-user scoping on every operation.
package gateway

import (
	"context"
	"sort"

	"memopad/internal/backend"
	"memopad/internal/domain"
)

type Gateway struct {
	store backend.StoreAPI
}

func New(store backend.StoreAPI) *Gateway {
	return &Gateway{store: store}
}

// List returns ownerID's pages newest first. An absent owner id is
// rejected before any store call; there is no unscoped fetch.
func (g *Gateway) List(ctx context.Context, ownerID string) ([]*domain.Page, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	pages, err := g.store.Query(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// The service already orders by createdAt descending; re-sorting
	// keeps the contract independent of any one implementation.
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].CreatedAt.After(pages[j].CreatedAt)
	})

	return pages, nil
}

// Create persists a new page owned by ownerID. The service assigns id
// and createdAt; the owner is always the value given here, never
// anything from the page content. Not idempotent: a retry after an
// ambiguous failure may produce a duplicate.
func (g *Gateway) Create(ctx context.Context, ownerID, title, body string) (*domain.Page, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	return g.store.Insert(ctx, ownerID, title, body)
}

// Delete removes pageID only if it belongs to ownerID. Missing and
// foreign-owned pages yield domain.ErrNotFound, which callers may
// safely ignore.
func (g *Gateway) Delete(ctx context.Context, ownerID, pageID string) error {
	if ownerID == "" {
		return domain.ErrNotAuthenticated
	}

	return g.store.Delete(ctx, ownerID, pageID)
}
