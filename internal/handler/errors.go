package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

// respondError maps a service error to its status code and JSON body.
// Internal details are logged, never returned.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		render.JSON(w, http.StatusBadRequest, render.ErrorBody{
			Message:          "Invalid input",
			ValidationIssues: verr.Issues,
		})
	case errors.Is(err, service.ErrNotFound):
		render.Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		render.Error(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrUnauthorized):
		render.Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrImageURL):
		slog.Error("image url failed", "error", err, "method", r.Method, "path", r.URL.Path)
		render.Error(w, http.StatusInternalServerError, "Could not prepare image storage, please try again")
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		render.Error(w, http.StatusInternalServerError, "Please try again later")
	}
}

func badRequest(w http.ResponseWriter) {
	render.Error(w, http.StatusBadRequest, "Invalid request body")
}
