// Package orchestrator runs the AI operations end to end: build the
// invocation context, render the prompt, call the model, validate the
// reply, degrade to a local fallback when the model fails, and record
// the interaction in the audit log.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caseflow/caseflow/backend/internal/audit"
	"github.com/caseflow/caseflow/backend/internal/config"
	"github.com/caseflow/caseflow/backend/internal/fallback"
	"github.com/caseflow/caseflow/backend/internal/prompts"
	"github.com/caseflow/caseflow/backend/internal/store"
	"github.com/caseflow/caseflow/backend/internal/validator"
	"github.com/caseflow/caseflow/backend/pkg/models"
)

// IsUnknownOperation reports whether err came from an operation with
// no registered prompt template.
func IsUnknownOperation(err error) bool {
	var uop *prompts.UnknownOperationError
	return errors.As(err, &uop)
}

// Invoker sends a rendered prompt to a model and returns its reply.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, params models.InvocationParameters) (*models.ModelResponse, error)
}

// Service coordinates one model invocation per operation call. The only
// error it ever propagates under the default fallback policy is an
// unknown operation; transport and validation failures degrade to
// locally synthesized results instead.
type Service struct {
	registry  *prompts.Registry
	invoker   Invoker
	recorder  *audit.Recorder
	summaries store.SummaryStore
	policy    config.FailurePolicy
}

func NewService(registry *prompts.Registry, invoker Invoker, recorder *audit.Recorder, summaries store.SummaryStore, policy config.FailurePolicy) *Service {
	if policy == "" {
		policy = config.PolicyFallback
	}
	return &Service{
		registry:  registry,
		invoker:   invoker,
		recorder:  recorder,
		summaries: summaries,
		policy:    policy,
	}
}

// ── Operations ───────────────────────────────────────────────

// GenerateSummary produces the next version of the overall case
// summary and persists it to the summary history.
func (s *Service) GenerateSummary(ctx context.Context, c *models.Case) (*models.Summary, error) {
	pctx := BuildCaseContext(c)

	data, resp, err := s.run(ctx, models.OpGenerateSummary, c.ID, pctx)
	if err != nil {
		return nil, err
	}

	var sum *models.Summary
	if data == nil {
		sum = fallback.Summary(pctx)
	} else {
		sum = &models.Summary{
			Content:         str(data, "content"),
			Recommendations: strSlice(data, "recommendations"),
			Confidence:      num(data, "confidence"),
			ModelID:         resp.ModelID,
			GeneratedAt:     time.Now().UTC(),
		}
	}
	sum.CaseID = c.ID
	s.assignVersionAndPersist(ctx, sum)
	return sum, nil
}

// RecommendStep suggests next actions for the given case step.
func (s *Service) RecommendStep(ctx context.Context, c *models.Case, step string) (*models.Recommendation, error) {
	pctx := BuildCaseContext(c)
	pctx["step"] = step

	data, resp, err := s.run(ctx, models.OpRecommendStep, c.ID, pctx)
	if err != nil {
		return nil, err
	}

	var rec *models.Recommendation
	if data == nil {
		rec = fallback.Recommendation(pctx)
	} else {
		rec = &models.Recommendation{
			Recommendations: strSlice(data, "recommendations"),
			Priority:        models.Priority(str(data, "priority")),
			Confidence:      num(data, "confidence"),
			ModelID:         resp.ModelID,
			GeneratedAt:     time.Now().UTC(),
		}
	}
	rec.CaseID = c.ID
	rec.Step = step
	return rec, nil
}

// AnalyzeApplication produces the in-depth application analysis.
func (s *Service) AnalyzeApplication(ctx context.Context, a *models.Application) (*models.AnalysisReport, error) {
	pctx := BuildApplicationContext(a)

	data, resp, err := s.run(ctx, models.OpAnalyzeApplication, a.CaseID, pctx)
	if err != nil {
		return nil, err
	}

	var report *models.AnalysisReport
	if data == nil {
		report = fallback.Analysis(pctx)
	} else {
		report = &models.AnalysisReport{
			Summary:                 str(data, "summary"),
			KeyPoints:               strSlice(data, "keyPoints"),
			PotentialIssues:         strSlice(data, "potentialIssues"),
			RecommendedActions:      strSlice(data, "recommendedActions"),
			PriorityLevel:           models.Priority(str(data, "priorityLevel")),
			EstimatedProcessingTime: str(data, "estimatedProcessingTime"),
			RequiredDocuments:       strSlice(data, "requiredDocuments"),
			ModelID:                 resp.ModelID,
			GeneratedAt:             time.Now().UTC(),
		}
	}
	report.ApplicationID = a.ID
	return report, nil
}

// GenerateFinalSummary writes the closing summary for a case. Final
// summaries are not versioned and not kept in the summary history.
func (s *Service) GenerateFinalSummary(ctx context.Context, c *models.Case) (*models.FinalSummary, error) {
	pctx := BuildCaseContext(c)

	data, resp, err := s.run(ctx, models.OpGenerateFinalSummary, c.ID, pctx)
	if err != nil {
		return nil, err
	}

	var fs *models.FinalSummary
	if data == nil {
		fs = fallback.FinalSummary(pctx)
	} else {
		fs = &models.FinalSummary{
			Content:         str(data, "content"),
			Recommendations: strSlice(data, "recommendations"),
			Confidence:      num(data, "confidence"),
			ModelID:         resp.ModelID,
			GeneratedAt:     time.Now().UTC(),
		}
	}
	fs.CaseID = c.ID
	return fs, nil
}

// ValidateCompleteness checks whether an application is ready to submit.
func (s *Service) ValidateCompleteness(ctx context.Context, a *models.Application) (*models.CompletenessReport, error) {
	pctx := BuildApplicationContext(a)

	data, resp, err := s.run(ctx, models.OpValidateCompleteness, a.CaseID, pctx)
	if err != nil {
		return nil, err
	}

	var report *models.CompletenessReport
	if data == nil {
		report = fallback.Completeness(pctx)
	} else {
		report = &models.CompletenessReport{
			IsComplete:       boolean(data, "isComplete"),
			MissingSteps:     strSlice(data, "missingSteps"),
			MissingDocuments: strSlice(data, "missingDocuments"),
			Recommendations:  strSlice(data, "recommendations"),
			Confidence:       num(data, "confidence"),
			ModelID:          resp.ModelID,
			GeneratedAt:      time.Now().UTC(),
		}
	}
	report.ApplicationID = a.ID
	return report, nil
}

// DetectMissingFields lists the fields an applicant still has to fill in.
func (s *Service) DetectMissingFields(ctx context.Context, a *models.Application) (*models.MissingFieldsReport, error) {
	pctx := BuildApplicationContext(a)

	data, resp, err := s.run(ctx, models.OpDetectMissingFields, a.CaseID, pctx)
	if err != nil {
		return nil, err
	}

	var report *models.MissingFieldsReport
	if data == nil {
		report = fallback.MissingFields(pctx)
	} else {
		report = &models.MissingFieldsReport{
			MissingFields:           fieldSlice(data, "missingFields"),
			CompletenessScore:       num(data, "completenessScore"),
			PriorityActions:         strSlice(data, "priorityActions"),
			EstimatedCompletionTime: str(data, "estimatedCompletionTime"),
			ModelID:                 resp.ModelID,
			GeneratedAt:             time.Now().UTC(),
		}
	}
	report.ApplicationID = a.ID
	return report, nil
}

// ── Pipeline ─────────────────────────────────────────────────

// run executes the shared invocation pipeline for one operation. On
// success it returns the validated response object. A nil map with a
// nil error means the caller should synthesize a fallback result. An
// unknown operation always returns an error; transport and validation
// failures return one only under the error policy. Exactly one audit
// record is written per call past template lookup.
func (s *Service) run(ctx context.Context, op models.Operation, caseID string, pctx map[string]string) (map[string]any, *models.ModelResponse, error) {
	tpl, err := s.registry.Get(op)
	if err != nil {
		return nil, nil, err
	}

	prompt := prompts.Render(tpl, pctx)
	rec := &models.InteractionRecord{
		CaseID:          caseID,
		Operation:       op,
		Prompt:          prompt,
		TemplateID:      string(tpl.ID),
		TemplateVersion: tpl.Version,
	}

	start := time.Now()
	resp, invErr := s.invoker.Invoke(ctx, prompt, tpl.Parameters)
	rec.DurationMs = time.Since(start).Milliseconds()

	if invErr != nil {
		rec.Error = invErr.Error()
		s.recorder.Record(ctx, rec)
		log.Warn().
			Err(invErr).
			Str("operation", string(op)).
			Str("case", caseID).
			Msg("Model invocation failed, degrading")
		return s.degrade(invErr)
	}

	rec.ResponseText = resp.Text
	rec.ModelID = resp.ModelID
	rec.TokensUsed = resp.InputTokens + resp.OutputTokens

	outcome := validator.Validate(tpl.Schema, resp.Text)
	if !outcome.Valid {
		valErr := fmt.Errorf("invalid model response: %s", strings.Join(outcome.Errors, "; "))
		rec.Error = valErr.Error()
		s.recorder.Record(ctx, rec)
		log.Warn().
			Str("operation", string(op)).
			Str("case", caseID).
			Strs("violations", outcome.Errors).
			Msg("Model response failed validation, degrading")
		return s.degrade(valErr)
	}

	rec.Success = true
	s.recorder.Record(ctx, rec)
	return outcome.Data, resp, nil
}

func (s *Service) degrade(cause error) (map[string]any, *models.ModelResponse, error) {
	if s.policy == config.PolicyError {
		return nil, nil, cause
	}
	return nil, nil, nil
}

// assignVersionAndPersist gives the summary the next version number
// for its case and appends it to the history. Persistence failures are
// logged and swallowed: the caller still gets a well-formed summary.
func (s *Service) assignVersionAndPersist(ctx context.Context, sum *models.Summary) {
	latest, err := s.summaries.LatestSummaryVersion(ctx, sum.CaseID)
	if err != nil {
		log.Warn().Err(err).Str("case", sum.CaseID).Msg("Failed to read summary version, starting at 1")
		latest = 0
	}
	sum.Version = latest + 1

	if err := s.summaries.CreateSummary(ctx, sum); err != nil {
		log.Warn().Err(err).Str("case", sum.CaseID).Msg("Failed to persist summary")
	}
}

// ── Response decoding ────────────────────────────────────────

func str(data map[string]any, key string) string {
	v, _ := data[key].(string)
	return v
}

func num(data map[string]any, key string) float64 {
	v, _ := data[key].(float64)
	return v
}

func boolean(data map[string]any, key string) bool {
	v, _ := data[key].(bool)
	return v
}

func strSlice(data map[string]any, key string) []string {
	raw, _ := data[key].([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func fieldSlice(data map[string]any, key string) []models.MissingField {
	raw, _ := data[key].([]any)
	out := make([]models.MissingField, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.MissingField{
			FieldName:       str(obj, "fieldName"),
			FieldType:       str(obj, "fieldType"),
			Importance:      models.Importance(str(obj, "importance")),
			SuggestedAction: str(obj, "suggestedAction"),
		})
	}
	return out
}
