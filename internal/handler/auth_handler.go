package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"memopad/internal/domain"
	"memopad/internal/middleware"
	"memopad/internal/service"
	"memopad/internal/websocket"
	"memopad/pkg/response"

	"github.com/go-playground/validator/v10"
)

type AuthHandler struct {
	authService *service.AuthService
	events      *websocket.Manager
	validator   *validator.Validate
}

func NewAuthHandler(authService *service.AuthService, events *websocket.Manager) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		events:      events,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrRegistrationFailed) {
			response.BadRequest(w, domain.ErrRegistrationFailed.Error())
			return
		}
		response.InternalError(w, "Failed to register")
		return
	}

	response.Created(w, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	loginResp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Unauthorized(w, domain.ErrInvalidCredentials.Error())
			return
		}
		response.InternalError(w, "Failed to login")
		return
	}

	response.Success(w, loginResp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tokenResp, err := h.authService.RefreshToken(&req)
	if err != nil {
		response.Unauthorized(w, "Invalid refresh token")
		return
	}

	response.Success(w, tokenResp)
}

// Logout notifies every live event connection of the user so other
// tabs and devices drop their session too.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	if h.events != nil && userID != "" {
		h.events.BroadcastToUser(userID, &websocket.SessionEvent{
			Type:   websocket.EventSignedOut,
			UserID: userID,
		})
	}

	response.Success(w, map[string]string{
		"message": "Logged out successfully",
	})
}
