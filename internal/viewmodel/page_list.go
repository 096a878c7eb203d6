// Package viewmodel binds session state to page data and exposes the
// user-triggered actions of the page list surface.
package viewmodel

import (
	"context"
	"errors"
	"strings"
	"sync"

	"memopad/internal/domain"
	"memopad/internal/gateway"
	"memopad/internal/session"
)

// Phase is what the page list surface should render.
type Phase int

const (
	// PhaseResolving covers the initial unknown session state: render
	// a loading indicator, perform no data operation, do not redirect.
	PhaseResolving Phase = iota
	PhaseSignedOut
	PhaseReady
)

type PageList struct {
	session *session.Manager
	gw      *gateway.Gateway

	mu         sync.Mutex
	phase      Phase
	pages      []*domain.Page
	loading    bool
	loadErr    error
	draftTitle string
	draftBody  string

	// onSignedOut signals navigation to the sign-in surface; the
	// view-model never routes by itself.
	onSignedOut func()
	cancelSub   func()
}

func NewPageList(sess *session.Manager, gw *gateway.Gateway) *PageList {
	return &PageList{
		session: sess,
		gw:      gw,
		phase:   PhaseResolving,
	}
}

// OnSignedOut sets the navigation signal invoked whenever the session
// ends. Must be called before Start.
func (p *PageList) OnSignedOut(fn func()) {
	p.mu.Lock()
	p.onSignedOut = fn
	p.mu.Unlock()
}

// Start subscribes to session transitions: an authenticated session
// triggers a load, a signed-out one clears the cache and signals
// navigation, an unknown one leaves the surface loading.
func (p *PageList) Start(ctx context.Context) {
	p.cancelSub = p.session.Subscribe(func(s session.Session) {
		switch s.Status {
		case session.StatusAuthenticated:
			p.mu.Lock()
			p.phase = PhaseReady
			p.mu.Unlock()
			p.load(ctx, s.User.ID)

		case session.StatusSignedOut:
			p.mu.Lock()
			p.phase = PhaseSignedOut
			p.pages = nil
			p.loadErr = nil
			signal := p.onSignedOut
			p.mu.Unlock()
			if signal != nil {
				signal()
			}

		case session.StatusUnknown:
			p.mu.Lock()
			p.phase = PhaseResolving
			p.mu.Unlock()
		}
	})
}

func (p *PageList) Close() {
	if p.cancelSub != nil {
		p.cancelSub()
	}
}

// SetDraft records the in-progress title and body.
func (p *PageList) SetDraft(title, body string) {
	p.mu.Lock()
	p.draftTitle = title
	p.draftBody = body
	p.mu.Unlock()
}

func (p *PageList) Draft() (title, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draftTitle, p.draftBody
}

// Submit validates the draft, creates the page, clears the draft, and
// refreshes the list from the service. Validation failures are
// detected before any store call.
func (p *PageList) Submit(ctx context.Context) error {
	p.mu.Lock()
	title := strings.TrimSpace(p.draftTitle)
	body := strings.TrimSpace(p.draftBody)
	p.mu.Unlock()

	if title == "" || body == "" {
		return domain.ErrEmptyField
	}

	user := p.session.CurrentUser()
	if user == nil {
		return domain.ErrNotAuthenticated
	}

	p.setLoading(true)
	defer p.setLoading(false)

	if _, err := p.gw.Create(ctx, user.ID, title, body); err != nil {
		return err
	}

	p.mu.Lock()
	p.draftTitle = ""
	p.draftBody = ""
	p.mu.Unlock()

	p.refresh(ctx, user.ID)
	return nil
}

// Remove deletes a page and refreshes the list. The caller is expected
// to have confirmed the deletion with the user already. A not-found
// outcome is benign and swallowed.
func (p *PageList) Remove(ctx context.Context, pageID string) error {
	user := p.session.CurrentUser()
	if user == nil {
		return domain.ErrNotAuthenticated
	}

	p.setLoading(true)
	defer p.setLoading(false)

	if err := p.gw.Delete(ctx, user.ID, pageID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	p.refresh(ctx, user.ID)
	return nil
}

// Refresh reloads the list for the current user, e.g. as the retry
// affordance after a transient failure.
func (p *PageList) Refresh(ctx context.Context) {
	user := p.session.CurrentUser()
	if user == nil {
		return
	}
	p.load(ctx, user.ID)
}

func (p *PageList) Pages() []*domain.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	pages := make([]*domain.Page, len(p.pages))
	copy(pages, p.pages)
	return pages
}

func (p *PageList) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

func (p *PageList) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Err returns the last load failure, if any. It is cleared by the next
// successful load and on sign-out.
func (p *PageList) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadErr
}

// load fetches ownerID's pages and applies the result only if that
// user still owns the session, so a late response cannot leak into a
// since-changed context. The loading flag resets on every path.
func (p *PageList) load(ctx context.Context, ownerID string) {
	p.setLoading(true)
	defer p.setLoading(false)

	p.refresh(ctx, ownerID)
}

func (p *PageList) refresh(ctx context.Context, ownerID string) {
	pages, err := p.gw.List(ctx, ownerID)

	current := p.session.CurrentUser()
	if current == nil || current.ID != ownerID {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.loadErr = err
		return
	}
	p.pages = pages
	p.loadErr = nil
}

func (p *PageList) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}
