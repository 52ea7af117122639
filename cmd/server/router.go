package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/pairs/internal/api"
	apiMiddleware "github.com/phrazzld/pairs/internal/api/middleware"
	"github.com/phrazzld/pairs/internal/stream"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	gameHandler := api.NewGameHandler(app.sessionService, app.jwtService, app.logger)
	streamHandler := stream.NewHandler(app.sessionService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api/games", func(r chi.Router) {
		// Creating a game is public; the response carries its token.
		r.Post("/", gameHandler.CreateGame)

		r.Route("/{id}", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/", gameHandler.GetGame)
			r.Delete("/", gameHandler.DeleteGame)
			r.Post("/selections", gameHandler.SelectCard)
			r.Post("/restart", gameHandler.RestartGame)
			r.Get("/events", streamHandler.ServeHTTP)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
