package handlers

import (
	"net/http"

	"github.com/isdelr/storefront-be/internal/auth"
	"github.com/isdelr/storefront-be/internal/httpx"
	"github.com/isdelr/storefront-be/internal/services"
)

// AdminHandler serves the admin dashboard summary.
type AdminHandler struct {
	products services.ProductServiceProvider
	posts    services.PostServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(products services.ProductServiceProvider, posts services.PostServiceProvider) *AdminHandler {
	return &AdminHandler{products: products, posts: posts}
}

type dashboardResponse struct {
	User     auth.Identity `json:"user"`
	Products int64         `json:"products"`
	Posts    int64         `json:"posts"`
}

// Dashboard returns catalogue counts and the caller's identity.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	products, err := h.products.CountProducts(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	posts, err := h.posts.CountPosts(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, dashboardResponse{User: identity, Products: products, Posts: posts})
}
