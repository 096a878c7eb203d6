package service

import (
	"context"
	"strings"
	"time"

	"memopad/internal/domain"
	"memopad/internal/repository"

	"github.com/google/uuid"
)

type PageService struct {
	repo repository.PageRepository
}

func NewPageService(repo repository.PageRepository) *PageService {
	return &PageService{repo: repo}
}

func (s *PageService) List(ctx context.Context, ownerID string) ([]*domain.Page, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Create persists a new page with the owner forced to the session's
// user. Title and body must be non-empty once trimmed; the request
// never reaches the repository otherwise.
func (s *PageService) Create(ctx context.Context, ownerID string, req *domain.CreatePageRequest) (*domain.Page, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	if title == "" || body == "" {
		return nil, domain.ErrEmptyField
	}

	page := &domain.Page{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, page); err != nil {
		return nil, err
	}

	return page, nil
}

// Delete removes the page when it exists and belongs to ownerID.
// Missing and foreign-owned pages alike yield domain.ErrNotFound.
func (s *PageService) Delete(ctx context.Context, ownerID, pageID string) error {
	if ownerID == "" {
		return domain.ErrNotAuthenticated
	}
	return s.repo.Delete(ctx, ownerID, pageID)
}
