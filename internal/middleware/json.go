package middleware

import (
	"encoding/json"
	"net/http"

	"go-library-backend/internal/model"
)

// writeError emits the standard failure envelope. Middleware runs ahead of the handler
// package, so it carries its own copy of the writer.
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
