package handler

import (
	"context"
	"net/http"

	"go-library-backend/internal/middleware"
	"go-library-backend/internal/model"
	"go-library-backend/pkg/apierror"
)

type loginService interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error)
}

type AuthHandler struct {
	service loginService
}

func NewAuthHandler(service loginService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, session, nil)
}

// Profile returns the identity the middleware resolved for this request.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, apierror.Unauthorized("authentication required"))
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}
