package handler

import (
	"net/http"

	"go-library-backend/internal/middleware"
	"go-library-backend/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.ID = user.ID
	actor.Type = user.Type
	actor.Email = user.Email

	return actor
}
