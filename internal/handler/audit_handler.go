package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go-library-backend/internal/model"
	"go-library-backend/pkg/apierror"
)

type auditQuerier interface {
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type AuditHandler struct {
	service auditQuerier
}

func NewAuditHandler(service auditQuerier) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var actorID int64
	if raw := strings.TrimSpace(query.Get("actor_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, apierror.BadRequest("actor_id must be an integer", raw))
			return
		}
		actorID = parsed
	}

	items, meta, err := h.service.Query(r.Context(), model.AuditQuery{
		Action:    strings.TrimSpace(query.Get("action")),
		ActorID:   actorID,
		ActorType: strings.TrimSpace(query.Get("actor_type")),
		Status:    strings.TrimSpace(query.Get("status")),
		Resource:  strings.TrimSpace(query.Get("resource")),
		From:      strings.TrimSpace(query.Get("from")),
		To:        strings.TrimSpace(query.Get("to")),
		Page:      parseIntOrDefault(query.Get("page"), 1),
		Limit:     parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.AuditListData{Items: items}, &meta)
}
