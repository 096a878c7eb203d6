// Package backend defines the boundary to the auth & storage service
// the client core runs against. The interfaces are deliberately small
// so the session manager, gateway, and view-model stay agnostic of the
// transport; the HTTP client in this package binds them to a memopad
// server.
package backend

import (
	"context"

	"memopad/internal/domain"
)

// SignUpResult reports the outcome of a registration. Established is
// true only when the service also started a session for the new user;
// callers must reflect whichever the service reports rather than
// assume authentication happened.
type SignUpResult struct {
	User        *domain.User
	Established bool
}

type AuthAPI interface {
	// SignIn fails with domain.ErrInvalidCredentials on any rejection.
	SignIn(ctx context.Context, email, password string) (*domain.User, error)

	// SignUp fails with domain.ErrRegistrationFailed when the service
	// refuses the registration (e.g. email already in use).
	SignUp(ctx context.Context, email, password string) (SignUpResult, error)

	SignOut(ctx context.Context) error

	// OnSessionChange registers cb for session changes triggered
	// outside the caller's own flow (remote invalidation, restored
	// session at startup). Registration asynchronously reports the
	// current state once, so a dependent starting in an unknown state
	// can resolve it. cb receives the user when a session exists and
	// nil when it has ended. The returned func cancels the
	// registration.
	OnSessionChange(cb func(user *domain.User)) (cancel func())
}

type StoreAPI interface {
	// Query returns pages owned by ownerID, newest first.
	Query(ctx context.Context, ownerID string) ([]*domain.Page, error)

	// Insert persists a new page with the owner forced to ownerID; the
	// service assigns id and createdAt.
	Insert(ctx context.Context, ownerID, title, body string) (*domain.Page, error)

	// Delete filters by both pageID and ownerID. A missing or
	// foreign-owned page yields domain.ErrNotFound.
	Delete(ctx context.Context, ownerID, pageID string) error
}
