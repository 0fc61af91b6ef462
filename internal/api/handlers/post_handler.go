package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/storefront-be/internal/httpx"
	"github.com/isdelr/storefront-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PostHandler handles HTTP requests related to blog posts.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// GetAll handles the request to list posts, optionally filtered by ?category=.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetPosts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, posts)
}

// GetBySlug handles the request to read a single post.
func (h *PostHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

// Create handles the request to create a new post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}

// Update handles the request to update an existing post.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		httpx.Error(w, err)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

// Delete handles the request to delete a post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import handles the request to replace all posts from the import source.
func (h *PostHandler) Import(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ImportPosts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to import posts")
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"imported": n})
}
