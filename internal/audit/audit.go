// Package audit records model invocation attempts for observability.
// Every orchestrator call produces exactly one interaction record,
// whether the call succeeded or degraded to a fallback result.
//
// Recording is strictly a side effect: a failed write is logged and
// swallowed so it can never mask an already-computed result or raise
// to the caller.
package audit

import (
	"context"
	"time"

	"github.com/caseflow/caseflow/backend/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sink is the persistence collaborator interactions are written to.
type Sink interface {
	RecordInteraction(ctx context.Context, rec *models.InteractionRecord) error
}

// Recorder writes interaction records to a sink.
type Recorder struct {
	sink Sink
}

// NewRecorder creates a recorder over the given sink.
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

// Record assigns an id and timestamp and writes the record. Write
// failures are logged at warn level and never propagated.
func (r *Recorder) Record(ctx context.Context, rec *models.InteractionRecord) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := r.sink.RecordInteraction(ctx, rec); err != nil {
		log.Warn().
			Err(err).
			Str("case", rec.CaseID).
			Str("operation", string(rec.Operation)).
			Msg("Failed to record AI interaction")
	}
}
