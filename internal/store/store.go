// Package store provides the storage interface and implementations for
// the Caseflow backend. The in-memory store covers local development
// and tests; all service code depends only on the interfaces here.
package store

import (
	"context"

	"github.com/caseflow/caseflow/backend/pkg/models"
)

// Store is the composed storage interface the backend depends on.
type Store interface {
	CaseStore
	ApplicationStore
	SummaryStore
	InteractionStore

	// Ping checks if the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Case Store ──────────────────────────────────────────────

type CaseStore interface {
	ListCases(ctx context.Context) ([]models.Case, error)
	GetCase(ctx context.Context, id string) (*models.Case, error)
	CreateCase(ctx context.Context, c *models.Case) error
	UpdateCase(ctx context.Context, c *models.Case) error
	DeleteCase(ctx context.Context, id string) error
}

// ── Application Store ───────────────────────────────────────

type ApplicationStore interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	GetApplicationByCase(ctx context.Context, caseID string) (*models.Application, error)
	CreateApplication(ctx context.Context, a *models.Application) error
	UpdateApplication(ctx context.Context, a *models.Application) error
}

// ── Summary Store ───────────────────────────────────────────

// SummaryStore keeps the version history of generated case summaries
// (newest last). The orchestrator derives the next version number from
// LatestSummaryVersion and appends through CreateSummary.
type SummaryStore interface {
	CreateSummary(ctx context.Context, s *models.Summary) error
	GetLatestSummary(ctx context.Context, caseID string) (*models.Summary, error)
	LatestSummaryVersion(ctx context.Context, caseID string) (int, error)
	ListSummaries(ctx context.Context, caseID string) ([]models.Summary, error)
}

// ── Interaction Store ───────────────────────────────────────

// InteractionStore is the append-only audit log of model invocation
// attempts. Writes may fail; the auditor swallows those failures.
type InteractionStore interface {
	RecordInteraction(ctx context.Context, rec *models.InteractionRecord) error
	ListInteractions(ctx context.Context, caseID string, limit int) ([]models.InteractionRecord, error)
}

// ── Errors ──────────────────────────────────────────────────

// ErrNotFound is returned when a requested entity does not exist.
type ErrNotFound struct {
	Entity string
	Key    string
}

func (e *ErrNotFound) Error() string {
	return e.Entity + " not found: " + e.Key
}
