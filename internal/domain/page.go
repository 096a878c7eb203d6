package domain

import "time"

// Page is a single memo owned by exactly one user. Pages are never
// edited in place: they are created, listed newest-first, and deleted.
type Page struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatePageRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

type PageListResponse struct {
	Pages []*Page `json:"pages"`
}
