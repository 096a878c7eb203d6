package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"memopad/internal/domain"
	ws "memopad/internal/websocket"

	"github.com/gorilla/websocket"
)

// Client talks to a memopad server over HTTP and implements both sides
// of the boundary. Owner scoping is ultimately enforced by the server
// from the bearer token; the client additionally refuses to issue
// store calls for an owner other than the authenticated user.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
	user        *domain.User
	subs        map[int]func(*domain.User)
	nextSub     int
	wsConn      *websocket.Conn
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		subs:       make(map[int]func(*domain.User)),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	body := &domain.LoginRequest{Email: email, Password: password}

	var resp domain.LoginResponse
	status, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, domain.ErrInvalidCredentials
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("sign-in failed with status %d", status)
	}

	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.user = resp.User
	c.mu.Unlock()

	c.listenForEvents(resp.AccessToken)

	return resp.User, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (SignUpResult, error) {
	body := &domain.RegisterRequest{Email: email, Password: password}

	var resp domain.RegisterResponse
	status, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, &resp)
	if err != nil {
		return SignUpResult{}, err
	}
	if status == http.StatusBadRequest {
		return SignUpResult{}, domain.ErrRegistrationFailed
	}
	if status != http.StatusCreated {
		return SignUpResult{}, fmt.Errorf("sign-up failed with status %d", status)
	}

	return SignUpResult{
		User:        resp.User,
		Established: resp.Authenticated,
	}, nil
}

// SignOut best-effort notifies the server, then drops the local
// session regardless of the outcome.
func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)

	c.clearSession()

	return err
}

func (c *Client) OnSessionChange(cb func(user *domain.User)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = cb
	current := c.user
	c.mu.Unlock()

	// Report the current state once so a fresh dependent can resolve
	// its unknown state.
	go cb(current)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) Query(ctx context.Context, ownerID string) ([]*domain.Page, error) {
	if err := c.checkOwner(ownerID); err != nil {
		return nil, err
	}

	var resp domain.PageListResponse
	status, err := c.do(ctx, http.MethodGet, "/api/v1/pages", nil, &resp)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list pages failed with status %d", status)
	}

	return resp.Pages, nil
}

func (c *Client) Insert(ctx context.Context, ownerID, title, body string) (*domain.Page, error) {
	if err := c.checkOwner(ownerID); err != nil {
		return nil, err
	}

	req := &domain.CreatePageRequest{Title: title, Body: body}

	var page domain.Page
	status, err := c.do(ctx, http.MethodPost, "/api/v1/pages", req, &page)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("create page failed with status %d", status)
	}

	return &page, nil
}

func (c *Client) Delete(ctx context.Context, ownerID, pageID string) error {
	if err := c.checkOwner(ownerID); err != nil {
		return err
	}

	status, err := c.do(ctx, http.MethodDelete, "/api/v1/pages/"+pageID, nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if status != http.StatusOK {
		return fmt.Errorf("delete page failed with status %d", status)
	}

	return nil
}

func (c *Client) checkOwner(ownerID string) error {
	if ownerID == "" {
		return domain.ErrNotAuthenticated
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil || c.user.ID != ownerID {
		return domain.ErrNotAuthenticated
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// On error statuses the body only carries the envelope's error
	// message; the status code alone drives the caller's mapping, so a
	// malformed body there is not worth failing over. A success body
	// that does not decode, however, must surface as an error: the
	// caller would otherwise mistake it for valid empty data.
	if out != nil && resp.StatusCode < http.StatusBadRequest {
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
		if env.Data != nil {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
			}
		}
	}

	return resp.StatusCode, nil
}

// listenForEvents subscribes to the server's session event stream so a
// sign-out issued elsewhere invalidates this session too.
func (c *Client) listenForEvents(token string) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		// The stream is an enhancement; a failed dial just means no
		// remote invalidation pushes for this session.
		return
	}

	c.mu.Lock()
	if c.wsConn != nil {
		c.wsConn.Close()
	}
	c.wsConn = conn
	c.mu.Unlock()

	go func() {
		for {
			var event ws.SessionEvent
			if err := conn.ReadJSON(&event); err != nil {
				return
			}
			if event.Type == ws.EventSignedOut {
				c.clearSession()
			}
		}
	}()
}

func (c *Client) clearSession() {
	c.mu.Lock()
	wasAuthenticated := c.user != nil
	c.accessToken = ""
	c.user = nil
	if c.wsConn != nil {
		c.wsConn.Close()
		c.wsConn = nil
	}
	subs := make([]func(*domain.User), 0, len(c.subs))
	for _, cb := range c.subs {
		subs = append(subs, cb)
	}
	c.mu.Unlock()

	if wasAuthenticated {
		for _, cb := range subs {
			cb(nil)
		}
	}
}
