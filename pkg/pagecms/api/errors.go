package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/pagecms/pagecms/pkg/pagecms"
)

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// renderError maps domain error kinds onto HTTP statuses once, here at the
// boundary: caller mistakes are 400, slug collisions 409, misses 404, and
// everything else is an unexpected server failure.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case pagecms.IsValidationError(err):
		render.Status(r, http.StatusBadRequest)
	case errors.Is(err, pagecms.ErrSlugExists):
		render.Status(r, http.StatusConflict)
	case errors.Is(err, pagecms.ErrPageNotFound),
		errors.Is(err, pagecms.ErrBlockNotFound),
		errors.Is(err, pagecms.ErrObjectNotFound):
		render.Status(r, http.StatusNotFound)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		render.Status(r, http.StatusInternalServerError)
	}

	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}
