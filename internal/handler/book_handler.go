package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-library-backend/internal/model"
)

type bookService interface {
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int64) (model.Book, error)
	Create(ctx context.Context, actor model.AuditActor, req model.CreateBookRequest) (model.Book, error)
	Update(ctx context.Context, actor model.AuditActor, id int64, req model.UpdateBookRequest) (model.Book, error)
	Remove(ctx context.Context, actor model.AuditActor, id int64) (model.DeleteBookResponse, error)
}

type BookHandler struct {
	service bookService
}

func NewBookHandler(service bookService) *BookHandler {
	return &BookHandler{service: service}
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, books, nil)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, book, nil)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateBookRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.service.Create(r.Context(), actorFromRequest(r), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, book, nil)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.UpdateBookRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	book, err := h.service.Update(r.Context(), actorFromRequest(r), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, book, nil)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.service.Remove(r.Context(), actorFromRequest(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}
