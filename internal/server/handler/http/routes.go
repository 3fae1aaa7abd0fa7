// Package http provides HTTP routing and middleware configuration for the
// Chalkboard API.
package http

import (
	"net/http"

	"github.com/avolkov/chalkboard/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// Chalkboard API. It applies JSON content-type enforcement, request logging,
// and bearer-token authentication, and mounts the credential and note
// endpoints under /api.
//
// Routes:
//
//	POST   /api/register           → authHandler.Register   (public)
//	POST   /api/login              → authHandler.Login      (public)
//	GET    /api/notes              → notesHandler.List
//	DELETE /api/notes              → notesHandler.DeleteAll
//	POST   /api/notes/batch-delete → notesHandler.BatchDelete
//	GET    /api/notes/{id}         → notesHandler.Get
//	PUT    /api/notes/{id}         → notesHandler.Put
//	PATCH  /api/notes/{id}         → notesHandler.Share
//	DELETE /api/notes/{id}         → notesHandler.Delete
//	PUT    /api/settings           → authHandler.SaveSettings
//	DELETE /api/account            → authHandler.DeleteAccount
func NewRouter(
	authHandler *AuthHandler,
	notesHandler *NotesHandler,
	tokenSecret []byte,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected group: requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(tokenSecret))

			r.Get("/notes", notesHandler.List)
			r.Delete("/notes", notesHandler.DeleteAll)
			r.Post("/notes/batch-delete", notesHandler.BatchDelete)
			r.Get("/notes/{id}", notesHandler.Get)
			r.Put("/notes/{id}", notesHandler.Put)
			r.Patch("/notes/{id}", notesHandler.Share)
			r.Delete("/notes/{id}", notesHandler.Delete)

			r.Put("/settings", authHandler.SaveSettings)
			r.Delete("/account", authHandler.DeleteAccount)
		})
	})

	return r
}
