package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"memopad/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// PageRepository persists pages. Every read and delete is scoped to an
// owner id; there is no unscoped access path.
type PageRepository interface {
	Create(ctx context.Context, page *domain.Page) error
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Page, error)
	Delete(ctx context.Context, ownerID, pageID string) error
}

type pageRepository struct {
	client *kivik.Client
	dbName string
}

func NewPageRepository(client *kivik.Client, dbName string) PageRepository {
	return &pageRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *pageRepository) Create(ctx context.Context, page *domain.Page) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("page:%s", page.ID)
	if _, err := db.Put(ctx, docID, page); err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	return nil
}

func (r *pageRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Page, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"owner_id": ownerID,
			"title":    map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []*domain.Page
	for rows.Next() {
		var page domain.Page
		if err := rows.ScanDoc(&page); err != nil {
			continue
		}
		pages = append(pages, &page)
	}

	// Newest first. Sorted here rather than in the query so no Mango
	// index on created_at is required.
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].CreatedAt.After(pages[j].CreatedAt)
	})

	return pages, nil
}

// Delete removes a page only when both the id and the owner match.
// A missing or foreign-owned page yields domain.ErrNotFound, so a
// guessed page id can neither delete nor probe another user's data.
func (r *pageRepository) Delete(ctx context.Context, ownerID, pageID string) error {
	if ownerID == "" {
		return fmt.Errorf("owner id is required")
	}

	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("page:%s", pageID)

	var doc map[string]interface{}
	row := db.Get(ctx, docID)
	if err := row.ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to fetch page for delete: %w", err)
	}

	owner, _ := doc["owner_id"].(string)
	if owner != ownerID {
		return domain.ErrNotFound
	}

	rev, _ := doc["_rev"].(string)
	if _, err := db.Delete(ctx, docID, rev); err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}

	return nil
}
