package api

import (
	"fmt"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/vaulty-hq/vaulty/docs"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/vaulty-hq/vaulty/internal/api/handlers"
	"github.com/vaulty-hq/vaulty/internal/api/middleware"
	"github.com/vaulty-hq/vaulty/internal/config"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Projects *handlers.ProjectHandler
	Files    *handlers.FileHandler
	Public   *handlers.PublicHandler
}

// SetupRouter wires the route table. Everything under /api/projects and
// /api/files goes through the credential resolver; the auth namespace and
// the public download route stay outside it.
func SetupRouter(cfg config.Config, logger *logrus.Logger, resolver *middleware.Resolver, h Handlers) http.Handler {
	mux := http.NewServeMux()

	// ---------- PUBLIC ROUTES ----------
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("GET /docs/", httpSwagger.WrapHandler)

	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("GET /api/auth/me", h.Auth.Me)
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("GET /api/auth/google/login", h.Auth.GoogleLogin)
	mux.HandleFunc("GET /api/auth/google/callback", h.Auth.GoogleCallback)

	mux.HandleFunc("GET /api/public/{filename}", h.Public.Download)

	// ---------- PROTECTED ROUTES ----------
	protect := func(handler http.HandlerFunc) http.Handler {
		return resolver.Authenticate(handler)
	}

	mux.Handle("POST /api/projects", protect(h.Projects.Create))
	mux.Handle("GET /api/projects", protect(h.Projects.List))
	mux.Handle("GET /api/projects/{id}", protect(h.Projects.Get))
	mux.Handle("PUT /api/projects/{id}", protect(h.Projects.Update))
	mux.Handle("DELETE /api/projects/{id}", protect(h.Projects.Delete))

	mux.Handle("POST /api/files", protect(h.Files.Upload))
	mux.Handle("GET /api/files/{id}", protect(h.Files.Download))
	mux.Handle("GET /api/files/project/{projectId}", protect(h.Files.List))
	mux.Handle("GET /api/files/search/{projectId}", protect(h.Files.Search))
	mux.Handle("DELETE /api/files/{id}", protect(h.Files.Delete))
	mux.Handle("PUT /api/files/{id}/metadata", protect(h.Files.UpdateMetadata))

	c := cors.New(cfg.CorsConfig)
	handler := c.Handler(mux)
	return middleware.Logger(logger, handler)
}
