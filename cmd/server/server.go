// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/pickup/internal/api"
	"github.com/codr1/pickup/internal/api/auth"
	"github.com/codr1/pickup/internal/api/flash"
	"github.com/codr1/pickup/internal/api/gamesapi"
	"github.com/codr1/pickup/internal/config"
	"github.com/codr1/pickup/internal/db"
)

type serverDeps struct {
	DB       *db.DB
	Sessions *auth.SessionManager
	Flash    *flash.Flasher
	Auth     *auth.Handlers
	Games    *gamesapi.Handlers
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      newHandler(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newHandler(deps serverDeps) http.Handler {
	router := http.NewServeMux()

	// Register routes
	registerRoutes(router, deps)

	// Setup middleware chain
	return api.ChainMiddleware(
		router,
		api.WithAuth(deps.Sessions, deps.DB.Queries),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)
}

func registerRoutes(mux *http.ServeMux, deps serverDeps) {
	requireAuth := api.RequireAuth(deps.Flash)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /{$}", deps.Games.HandleHome)

	// Auth routes
	mux.HandleFunc("GET /signup", deps.Auth.HandleSignupPage)
	mux.HandleFunc("POST /signup", deps.Auth.HandleSignup)
	mux.HandleFunc("GET /login", deps.Auth.HandleLoginPage)
	mux.HandleFunc("POST /login", deps.Auth.HandleLogin)
	mux.Handle("GET /logout", requireAuth(http.HandlerFunc(deps.Auth.HandleLogout)))

	// Game routes
	mux.HandleFunc("GET /games", deps.Games.HandleList)
	mux.Handle("GET /games/create", requireAuth(http.HandlerFunc(deps.Games.HandleCreateForm)))
	mux.Handle("POST /games/create", requireAuth(http.HandlerFunc(deps.Games.HandleCreate)))
	mux.HandleFunc("GET /games/{id}", deps.Games.HandleDetail)
}
