package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"memopad/internal/domain"
)

type mockPageRepo struct {
	pages   map[string]*domain.Page
	creates int
}

func newMockPageRepo() *mockPageRepo {
	return &mockPageRepo{
		pages: make(map[string]*domain.Page),
	}
}

func (m *mockPageRepo) Create(ctx context.Context, page *domain.Page) error {
	m.creates++
	m.pages[page.ID] = page
	return nil
}

func (m *mockPageRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Page, error) {
	var pages []*domain.Page
	for _, p := range m.pages {
		if p.OwnerID == ownerID {
			pages = append(pages, p)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].CreatedAt.After(pages[j].CreatedAt)
	})
	return pages, nil
}

func (m *mockPageRepo) Delete(ctx context.Context, ownerID, pageID string) error {
	p, exists := m.pages[pageID]
	if !exists || p.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(m.pages, pageID)
	return nil
}

func TestPageService_Create(t *testing.T) {
	repo := newMockPageRepo()
	service := NewPageService(repo)
	ctx := context.Background()

	before := time.Now()
	page, err := service.Create(ctx, "user1", &domain.CreatePageRequest{Title: "T", Body: "B"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if page.ID == "" {
		t.Error("expected page ID to be generated")
	}
	if page.OwnerID != "user1" {
		t.Errorf("Create() ownerID = %q, want %q", page.OwnerID, "user1")
	}
	if page.Title != "T" || page.Body != "B" {
		t.Errorf("Create() title/body = %q/%q, want T/B", page.Title, page.Body)
	}
	if page.CreatedAt.Before(before) {
		t.Error("CreatedAt must not precede submission time")
	}
}

func TestPageService_Create_EmptyFields(t *testing.T) {
	repo := newMockPageRepo()
	service := NewPageService(repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		title string
		body  string
	}{
		{name: "empty title", title: "", body: "B"},
		{name: "empty body", title: "T", body: ""},
		{name: "whitespace title", title: "   ", body: "B"},
		{name: "whitespace body", title: "T", body: "\n\t "},
		{name: "both whitespace", title: " ", body: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, "user1", &domain.CreatePageRequest{Title: tt.title, Body: tt.body})
			if !errors.Is(err, domain.ErrEmptyField) {
				t.Errorf("Create() error = %v, want ErrEmptyField", err)
			}
		})
	}

	if repo.creates != 0 {
		t.Errorf("repository Create called %d times for invalid input, want 0", repo.creates)
	}
}

func TestPageService_Create_RequiresOwner(t *testing.T) {
	service := NewPageService(newMockPageRepo())

	_, err := service.Create(context.Background(), "", &domain.CreatePageRequest{Title: "T", Body: "B"})
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("Create() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestPageService_List_OwnerIsolation(t *testing.T) {
	repo := newMockPageRepo()
	service := NewPageService(repo)
	ctx := context.Background()

	service.Create(ctx, "userA", &domain.CreatePageRequest{Title: "a1", Body: "b"})
	service.Create(ctx, "userA", &domain.CreatePageRequest{Title: "a2", Body: "b"})
	service.Create(ctx, "userB", &domain.CreatePageRequest{Title: "b1", Body: "b"})

	listA, err := service.List(ctx, "userA")
	if err != nil {
		t.Fatalf("List(userA) error = %v", err)
	}
	if len(listA) != 2 {
		t.Fatalf("List(userA) returned %d pages, want 2", len(listA))
	}
	for _, p := range listA {
		if p.OwnerID != "userA" {
			t.Errorf("List(userA) leaked page owned by %q", p.OwnerID)
		}
	}

	listB, _ := service.List(ctx, "userB")
	if len(listB) != 1 || listB[0].Title != "b1" {
		t.Errorf("List(userB) = %v, want exactly b1", listB)
	}
}

func TestPageService_List_NewestFirst(t *testing.T) {
	repo := newMockPageRepo()
	service := NewPageService(repo)

	base := time.Now()
	for i, title := range []string{"oldest", "middle", "newest"} {
		repo.pages[title] = &domain.Page{
			ID:        title,
			OwnerID:   "user1",
			Title:     title,
			Body:      "b",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	list, err := service.List(context.Background(), "user1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"newest", "middle", "oldest"}
	for i, p := range list {
		if p.Title != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, p.Title, want[i])
		}
	}
}

func TestPageService_List_RequiresOwner(t *testing.T) {
	service := NewPageService(newMockPageRepo())

	_, err := service.List(context.Background(), "")
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("List() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestPageService_Delete(t *testing.T) {
	repo := newMockPageRepo()
	service := NewPageService(repo)
	ctx := context.Background()

	page, err := service.Create(ctx, "userA", &domain.CreatePageRequest{Title: "T", Body: "B"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Another user cannot delete the page, even knowing its id.
	if err := service.Delete(ctx, "userB", page.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(userB) error = %v, want ErrNotFound", err)
	}
	if list, _ := service.List(ctx, "userA"); len(list) != 1 {
		t.Fatal("foreign delete must not remove the page")
	}

	if err := service.Delete(ctx, "userA", page.ID); err != nil {
		t.Fatalf("Delete(userA) error = %v", err)
	}
	if list, _ := service.List(ctx, "userA"); len(list) != 0 {
		t.Error("page still listed after delete")
	}

	// Second delete of the same page is benign.
	if err := service.Delete(ctx, "userA", page.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("repeat Delete() error = %v, want ErrNotFound", err)
	}
}

func TestPageService_Delete_MissingID(t *testing.T) {
	repo := newMockPageRepo()
	service := NewPageService(repo)
	ctx := context.Background()

	service.Create(ctx, "user1", &domain.CreatePageRequest{Title: "keep", Body: "b"})

	if err := service.Delete(ctx, "user1", "no-such-page"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}

	list, _ := service.List(ctx, "user1")
	if len(list) != 1 || list[0].Title != "keep" {
		t.Error("delete of a missing id must not alter the rest of the list")
	}
}
