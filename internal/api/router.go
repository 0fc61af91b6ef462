package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/storefront-be/internal/api/handlers"
	"github.com/isdelr/storefront-be/internal/apperr"
	"github.com/isdelr/storefront-be/internal/auth"
	"github.com/isdelr/storefront-be/internal/httpx"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/services"
	"github.com/isdelr/storefront-be/internal/websocket"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Hub            *websocket.Hub
	Verifier       auth.TokenVerifier
	AuthService    services.AuthServiceProvider
	ProductService services.ProductServiceProvider
	PostService    services.PostServiceProvider
	EventService   services.EventServiceProvider
	Ping           func(ctx context.Context) error
	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.SecureCookies)
	productHandler := handlers.NewProductHandler(deps.ProductService)
	postHandler := handlers.NewPostHandler(deps.PostService)
	eventHandler := handlers.NewEventHandler(deps.EventService)
	adminHandler := handlers.NewAdminHandler(deps.ProductService, deps.PostService)
	healthHandler := handlers.NewHealthHandler(deps.Ping)

	authenticate := auth.Authenticate(deps.Verifier)

	r.Get("/healthz", healthHandler.Serve)

	// Public routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productHandler.GetAll)
		r.Get("/{id}", productHandler.Get)
	})
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.GetAll)
		r.Get("/{slug}", postHandler.GetBySlug)
	})

	// Any authenticated user
	r.With(authenticate).Get("/me", authHandler.Me)

	// Admin only
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(auth.RequireRole(models.RoleAdmin))

		r.Get("/", adminHandler.Dashboard)
		r.Get("/events", eventHandler.GetRecent)
		if deps.Hub != nil {
			r.Get("/ws", handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins).Serve)
		}

		r.Route("/products", func(r chi.Router) {
			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})
		r.Route("/posts", func(r chi.Router) {
			r.Post("/", postHandler.Create)
			r.Post("/import", postHandler.Import)
			r.Put("/{id}", postHandler.Update)
			r.Delete("/{id}", postHandler.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, apperr.NotFound("not found"))
	})

	return r
}
