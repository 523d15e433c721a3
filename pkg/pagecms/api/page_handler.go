package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pagecms/pagecms/pkg/pagecms"
)

// PageHandler handles HTTP requests for pages and their content blocks.
type PageHandler struct {
	service pagecms.Service
}

// NewPageHandler creates a new page handler
func NewPageHandler(service pagecms.Service) *PageHandler {
	return &PageHandler{service: service}
}

// Routes returns the routes for pages
func (h *PageHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreatePage)
	r.Get("/", h.ListPages)
	r.Get("/{id}", h.GetPage)
	r.Put("/{id}", h.UpdatePage)
	r.Delete("/{id}", h.DeletePage)

	r.Post("/{id}/blocks", h.AddBlock)
	r.Put("/{id}/blocks/{blockID}", h.UpdateBlock)
	r.Delete("/{id}/blocks/{blockID}", h.RemoveBlock)

	return r
}

// ListCollections reports the aggregate collections the store holds. An
// empty store is not an error, just a not-found category.
func (h *PageHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.ListCollections(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	if len(collections) == 0 {
		render.Status(r, http.StatusNotFound)
	}
	render.JSON(w, r, collections)
}

// CreatePage creates a new page
func (h *PageHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req pagecms.CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, pagecms.NewValidationError("body", "malformed JSON"))
		return
	}

	page, err := h.service.CreatePage(r.Context(), req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, page)
}

// ListPages returns all pages; an empty result maps to the not-found
// category with an empty array body.
func (h *PageHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.service.GetPages(r.Context(), pagecms.GetPagesRequest{})
	if err != nil {
		renderError(w, r, err)
		return
	}

	if len(pages) == 0 {
		render.Status(r, http.StatusNotFound)
	}
	render.JSON(w, r, pages)
}

// GetPage returns the page matching the path id
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	pages, err := h.service.GetPages(r.Context(), pagecms.GetPagesRequest{ID: chi.URLParam(r, "id")})
	if err != nil {
		renderError(w, r, err)
		return
	}

	if len(pages) == 0 {
		render.Status(r, http.StatusNotFound)
	}
	render.JSON(w, r, pages)
}

// UpdatePage merges the supplied fields into a page
func (h *PageHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	var req pagecms.UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, pagecms.NewValidationError("body", "malformed JSON"))
		return
	}
	req.ID = chi.URLParam(r, "id")

	page, err := h.service.UpdatePage(r.Context(), req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, page)
}

// DeletePage hard-deletes a page
func (h *PageHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeletePage(r.Context(), chi.URLParam(r, "id")); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// AddBlock appends one content block to a page
func (h *PageHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	var block pagecms.BlockInput
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		renderError(w, r, pagecms.NewValidationError("body", "malformed JSON"))
		return
	}

	page, err := h.service.AddBlock(r.Context(), pagecms.AddBlockRequest{
		PageID: chi.URLParam(r, "id"),
		Block:  block,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, page)
}

// UpdateBlock replaces the matched block in place
func (h *PageHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	var block pagecms.BlockInput
	if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
		renderError(w, r, pagecms.NewValidationError("body", "malformed JSON"))
		return
	}

	page, err := h.service.UpdateBlock(r.Context(), pagecms.UpdateBlockRequest{
		PageID:  chi.URLParam(r, "id"),
		BlockID: chi.URLParam(r, "blockID"),
		Block:   block,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, page)
}

// RemoveBlock removes exactly one block by id
func (h *PageHandler) RemoveBlock(w http.ResponseWriter, r *http.Request) {
	_, err := h.service.RemoveBlock(r.Context(), pagecms.RemoveBlockRequest{
		PageID:  chi.URLParam(r, "id"),
		BlockID: chi.URLParam(r, "blockID"),
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}
