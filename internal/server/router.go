package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/riskpilot-ai/riskpilot/internal/api"
	"github.com/riskpilot-ai/riskpilot/internal/api/handlers"
	"github.com/riskpilot-ai/riskpilot/internal/api/middleware"
)

type RouterConfig struct {
	ProjectHandler *handlers.ProjectHandler
	ChatHandler    *handlers.ChatHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 10 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", cfg.ProjectHandler.Create)
		r.Get("/", cfg.ProjectHandler.List)
		r.Get("/{id}", cfg.ProjectHandler.Get)
	})

	r.Route("/chat", func(r chi.Router) {
		r.Post("/init/{id}", cfg.ChatHandler.Init)
		r.Post("/continue/{id}", cfg.ChatHandler.Continue)
	})

	r.Get("/chats/{id}", cfg.ChatHandler.History)

	return r
}
