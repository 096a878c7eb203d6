package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memopad/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "middleware-test-secret"

func protectedEcho(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var seenUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(testSecret)(inner), &seenUserID
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler, seen := protectedEcho(t)

	token, err := jwt.GenerateToken("user-1", 15*time.Minute, testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", *seen)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired, err := jwt.GenerateToken("user-1", -time.Minute, testSecret)
	require.NoError(t, err)
	wrongSecret, err := jwt.GenerateToken("user-1", 15*time.Minute, "other-secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + wrongSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, seen := protectedEcho(t)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Empty(t, *seen, "handler must not run without a valid token")
		})
	}
}

func TestLoggerMiddleware_AccessLogFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	handler := LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()

	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/v1/pages", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])

	// The logger runs before authentication, so it must not claim to
	// know who the user is.
	_, hasUserID := fields["user_id"]
	assert.False(t, hasUserID)
}

func TestRateLimiter_BurstExceeded(t *testing.T) {
	rl := NewRateLimiter(60, 3)
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token, err := jwt.GenerateToken("user-1", 15*time.Minute, testSecret)
	require.NoError(t, err)

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		AuthMiddleware(testSecret)(handler).ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(), "request %d within burst", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(userID string) int {
		token, err := jwt.GenerateToken(userID, 15*time.Minute, testSecret)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		AuthMiddleware(testSecret)(handler).ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do("user-1"))
	assert.Equal(t, http.StatusTooManyRequests, do("user-1"))
	assert.Equal(t, http.StatusOK, do("user-2"), "one user's burst must not throttle another")
}
