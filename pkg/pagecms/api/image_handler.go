package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pagecms/pagecms/pkg/pagecms"
	"github.com/pagecms/pagecms/pkg/pagecms/imaging"
)

// ImageHandler handles image upload and retrieval.
type ImageHandler struct {
	service *imaging.Service
}

// NewImageHandler creates a new image handler
func NewImageHandler(service *imaging.Service) *ImageHandler {
	return &ImageHandler{service: service}
}

// Routes returns the routes for images
func (h *ImageHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Get("/{ref}", h.Retrieve)

	return r
}

// multipartOverheadBytes is slack on top of the upload cap for multipart
// boundaries and part headers.
const multipartOverheadBytes = 10 << 10

// Upload ingests a single multipart file field named "image" and responds
// with the size-label to stored-reference mapping.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Cap the request body before the multipart parser spools it; Ingest
	// enforces the exact limit on the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxUploadBytes()+multipartOverheadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			renderError(w, r, pagecms.NewValidationError("image", "file exceeds upload limit"))
			return
		}
		renderError(w, r, pagecms.NewValidationError("image", "file field is required"))
		return
	}
	defer file.Close()

	declaredType := header.Header.Get("Content-Type")
	variants, err := h.service.Ingest(r.Context(), file, declaredType)
	if err != nil {
		renderError(w, r, err)
		return
	}

	slog.Info("image ingested", "filename", header.Filename, "variants", len(variants))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, variants)
}

// Retrieve streams one stored variant back by reference.
func (h *ImageHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	body, contentType, err := h.service.Retrieve(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, body); err != nil {
		slog.Error("failed to stream image", "ref", chi.URLParam(r, "ref"), "error", err)
	}
}
