package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"memopad/internal/domain"
	"memopad/internal/middleware"
	"memopad/internal/service"
	"memopad/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type PageHandler struct {
	service  *service.PageService
	validate *validator.Validate
}

func NewPageHandler(service *service.PageService) *PageHandler {
	return &PageHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	pages, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list pages")
		return
	}

	if pages == nil {
		pages = []*domain.Page{}
	}

	response.Success(w, &domain.PageListResponse{Pages: pages})
}

func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	page, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyField) {
			response.BadRequest(w, domain.ErrEmptyField.Error())
			return
		}
		response.InternalError(w, "Failed to create page")
		return
	}

	response.Created(w, page)
}

func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	pageID := mux.Vars(r)["id"]
	if pageID == "" {
		response.BadRequest(w, "Page ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	if err := h.service.Delete(r.Context(), userID, pageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, domain.ErrNotFound.Error())
			return
		}
		response.InternalError(w, "Failed to delete page")
		return
	}

	response.Success(w, map[string]string{"message": "Page deleted successfully"})
}
