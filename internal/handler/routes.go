package handler

import (
	"net/http"

	"memopad/internal/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type RouterConfig struct {
	JWTSecret          string
	CORSAllowedOrigins string
	CORSAllowedMethods string
	CORSAllowedHeaders string
	RateLimiter        *middleware.RateLimiter
	Logger             *zap.Logger
}

// NewRouter assembles the full HTTP surface. Everything under the
// protected subrouter sees only requests carrying a valid bearer
// token.
func NewRouter(auth *AuthHandler, pages *PageHandler, events *EventsHandler, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(cfg.Logger))
	r.Use(middleware.CORSMiddleware(
		cfg.CORSAllowedOrigins,
		cfg.CORSAllowedMethods,
		cfg.CORSAllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", auth.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", auth.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", auth.Refresh).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	if cfg.RateLimiter != nil {
		protected.Use(cfg.RateLimiter.Middleware())
	}

	protected.HandleFunc("/auth/logout", auth.Logout).Methods("POST", "OPTIONS")

	protected.HandleFunc("/pages", pages.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/pages", pages.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/pages/{id}", pages.Delete).Methods("DELETE", "OPTIONS")

	if events != nil {
		r.HandleFunc("/ws", events.HandleConnection)
	}

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"memopad"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Memopad API","version":"1.0.0","endpoints":{"/api/v1/auth/register":"POST","/api/v1/auth/login":"POST","/api/v1/pages":"GET/POST (protected)","/api/v1/pages/{id}":"DELETE (protected)"}}`))
}
