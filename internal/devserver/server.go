// Package devserver is a self-contained implementation of the marketplace
// REST API the storefront consumes, backed by sqlite. It exists for local
// development and integration testing; the production backend is someone
// else's.
package devserver

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server wires the dev API's storage, auth, and event hub together.
type Server struct {
	store  *Store
	hub    *Hub
	secret []byte
}

// New creates a dev API server and starts its event hub.
func New(store *Store, jwtSecret string) *Server {
	hub := NewHub()
	go hub.Run()
	return &Server{store: store, hub: hub, secret: []byte(jwtSecret)}
}

// Router creates and configures the dev API's Chi router.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for browser-based storefront development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/signup", s.handleSignup)

	r.Route("/products", func(r chi.Router) {
		r.Get("/all", s.handleListAll)
		r.Get("/user/{userId}", s.handleListByUser)

		// Writes require a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/add", s.handleCreate)
			r.Delete("/{id}", s.handleDelete)
		})
	})

	// Live product events
	r.Get("/ws", s.hub.serveWS)

	return r
}
