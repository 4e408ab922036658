// Package server provides the public entry point for initializing the
// Caseflow backend server.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/caseflow/caseflow/backend/internal/api"
	"github.com/caseflow/caseflow/backend/internal/api/handlers"
	"github.com/caseflow/caseflow/backend/internal/audit"
	"github.com/caseflow/caseflow/backend/internal/config"
	"github.com/caseflow/caseflow/backend/internal/openrouter"
	"github.com/caseflow/caseflow/backend/internal/orchestrator"
	"github.com/caseflow/caseflow/backend/internal/prompts"
	"github.com/caseflow/caseflow/backend/internal/store"
	"github.com/caseflow/caseflow/backend/internal/telemetry"

	"github.com/rs/zerolog/log"
)

// Server holds the initialized Caseflow backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the data store (in-memory, optionally snapshot-backed).
	Store store.Store

	// Config is the loaded server configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all backend components and returns a ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore := store.NewMemoryStore()
	log.Info().Msg("In-memory store initialized")

	registry := prompts.NewRegistry()
	invoker := openrouter.New(cfg.AI)
	recorder := audit.NewRecorder(dataStore)
	ai := orchestrator.NewService(registry, invoker, recorder, dataStore, cfg.AI.FailurePolicy)

	log.Info().
		Str("model", cfg.AI.Model).
		Str("policy", string(cfg.AI.FailurePolicy)).
		Int("operations", len(registry.Operations())).
		Msg("AI orchestrator initialized")

	h := handlers.New(dataStore, ai)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
