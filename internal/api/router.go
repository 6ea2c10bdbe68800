package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matheus3301/wppclone/internal/api/middleware"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MaxBody bounds request bodies. Image messages carry data URLs, so this is
// well above the text limit.
const MaxBody = 2 << 20

// NewRouter creates and configures the HTTP router.
func NewRouter(svc *chat.Service, logger *zap.Logger, opts ...Option) *chi.Mux {
	return newRouter(NewHandler(svc, logger, opts...), logger)
}

func newRouter(h *Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(MaxBody))

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)
	r.Get("/events", h.Events)

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/presence", h.Presence)

	r.Get("/users", h.ListUsers)
	r.Get("/users/{phone}", h.GetUser)
	r.Put("/profile", h.UpdateProfile)

	r.Post("/contacts", h.AddContact)
	r.Get("/contacts/{phone}", h.ListContacts)

	r.Post("/messages", h.SendMessage)
	r.Get("/messages/{user}/{contact}", h.GetMessages)
	r.Get("/chats/{phone}", h.ChatList)

	return r
}
