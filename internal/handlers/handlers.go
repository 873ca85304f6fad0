package handlers

import (
	"DressCode/internal/config"
	"DressCode/internal/middleware"
	"DressCode/internal/service"
	"DressCode/internal/storage"
	"context"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Deps — всё, что нужно хендлерам.
type Deps struct {
	Users     *service.UserService
	Closet    *service.ClosetService
	Providers service.Providers
	Store     storage.Store
	// Ping проверяет БД для /health; nil — не проверять
	Ping func(ctx context.Context) error
}

// NewHandler разводящий для хендлеров
func NewHandler(deps Deps, logger *zap.SugaredLogger, config *config.Config) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(deps.Users, logger, config)
	closetHandler := NewClosetHandler(deps.Closet, logger, config)
	aiHandler := NewAIHandler(deps.Providers, logger, config)
	fileHandler := NewFileHandler(deps.Store, deps.Ping, logger, config)

	r.Get("/health", fileHandler.Health)
	r.Get("/files/{name}", fileHandler.Serve)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Get("/api/user/me", userHandler.Me)

	// Closet routes
	r.Route("/api/closet/items", func(r chi.Router) {
		r.Post("/", closetHandler.Create)
		r.Get("/", closetHandler.List)
		r.Patch("/{id}", closetHandler.Update)
		r.Delete("/{id}", closetHandler.Delete)
		r.Post("/{id}/tag", closetHandler.Retag)
	})

	// Model routes
	r.Post("/api/vl/tag", aiHandler.Tag)
	r.Post("/api/vl/recommend", aiHandler.Recommend)
	r.Post("/api/tryon", aiHandler.TryOn)

	return &Handler{Router: r}
}
