// Package fallback synthesizes local substitute results for the AI
// operations. It is invoked when the model call transport-fails or the
// response fails validation, so callers always receive a usable,
// schema-complete result.
//
// Results are deterministic functions of the invocation context —
// simple heuristics over the flattened case/application fields, never
// random or hard-coded content — so repeated calls with the same input
// yield comparable output. Every result is tagged Fallback=true and
// its text content carries the Notice marker so downstream consumers
// can tell degraded results from real ones. Nothing in this package
// returns an error; it is the last line of defense.
package fallback

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/caseflow/caseflow/backend/pkg/models"
)

// Notice is the visible degraded-mode marker carried in the text
// content of every synthesized result.
const Notice = "[generated locally without AI assistance]"

// caseKeys are the context fields a fully described case provides.
var caseKeys = []string{
	"title", "application_type", "status", "current_step",
	"applicant_name", "applicant_email", "documents", "notes",
}

// applicationKeys are the context fields a fully described application provides.
var applicationKeys = []string{"status", "fields", "steps", "documents"}

// Summary synthesizes an overall case summary. The orchestrator fills
// in CaseID and Version.
func Summary(ctx map[string]string) *models.Summary {
	c := completeness(ctx, caseKeys)

	content := fmt.Sprintf(
		"%s Case %q (%s) for applicant %s is currently %s. %d of %d case details are on file.",
		Notice, get(ctx, "title"), get(ctx, "application_type"),
		get(ctx, "applicant_name"), get(ctx, "status"),
		presentCount(ctx, caseKeys), len(caseKeys),
	)

	recs := []string{"Review the case file manually before acting on this summary."}
	if empty(ctx["documents"]) {
		recs = append(recs, "Collect the supporting documents for the case.")
	}
	if empty(ctx["notes"]) {
		recs = append(recs, "Record case notes so future summaries have material to work with.")
	}

	return &models.Summary{
		Content:         content,
		Recommendations: recs,
		Confidence:      confidence(c),
		Fallback:        true,
		GeneratedAt:     time.Now().UTC(),
	}
}

// Recommendation synthesizes next-step advice for a case step.
func Recommendation(ctx map[string]string) *models.Recommendation {
	c := completeness(ctx, caseKeys)

	step := get(ctx, "step")
	recs := []string{
		fmt.Sprintf("%s Work through the checklist for step %q manually.", Notice, step),
	}
	if empty(ctx["documents"]) {
		recs = append(recs, "Request the missing supporting documents from the applicant.")
	}
	if empty(ctx["notes"]) {
		recs = append(recs, "Document the outcome of this step in the case notes.")
	}

	return &models.Recommendation{
		Step:            step,
		Recommendations: recs,
		Priority:        priorityFor(c),
		Confidence:      confidence(c),
		Fallback:        true,
		GeneratedAt:     time.Now().UTC(),
	}
}

// Analysis synthesizes an application analysis report.
func Analysis(ctx map[string]string) *models.AnalysisReport {
	c := completeness(ctx, applicationKeys)
	missing := splitList(ctx["empty_fields"])
	pending := splitList(ctx["steps_pending"])

	keyPoints := []string{
		fmt.Sprintf("Application status: %s.", get(ctx, "status")),
		fmt.Sprintf("%s form fields provided.", get(ctx, "field_count")),
	}
	var issues []string
	for _, f := range missing {
		issues = append(issues, fmt.Sprintf("Field %q has no value.", f))
	}
	for _, s := range pending {
		issues = append(issues, fmt.Sprintf("Step %q is not completed.", s))
	}

	actions := []string{"Review the application form manually."}
	if len(missing) > 0 {
		actions = append(actions, "Ask the applicant to fill in the empty fields.")
	}
	if empty(ctx["documents"]) {
		actions = append(actions, "Request the supporting documents.")
	}

	var requiredDocs []string
	if empty(ctx["documents"]) {
		requiredDocs = append(requiredDocs, "Supporting documents for the application")
	}

	return &models.AnalysisReport{
		Summary: fmt.Sprintf(
			"%s Application in status %s with %s fields; %d open issues found by local checks.",
			Notice, get(ctx, "status"), get(ctx, "field_count"), len(issues),
		),
		KeyPoints:               keyPoints,
		PotentialIssues:         issues,
		RecommendedActions:      actions,
		PriorityLevel:           analysisPriorityFor(c),
		EstimatedProcessingTime: processingTimeFor(len(issues)),
		RequiredDocuments:       requiredDocs,
		Fallback:                true,
		GeneratedAt:             time.Now().UTC(),
	}
}

// FinalSummary synthesizes a closing summary for a case.
func FinalSummary(ctx map[string]string) *models.FinalSummary {
	c := completeness(ctx, caseKeys)

	content := fmt.Sprintf(
		"%s Case %q (%s) for applicant %s closed in status %s. See the case notes and documents on file for details.",
		Notice, get(ctx, "title"), get(ctx, "application_type"),
		get(ctx, "applicant_name"), get(ctx, "status"),
	)

	var recs []string
	if empty(ctx["notes"]) {
		recs = append(recs, "Add a manual closing note; no case notes were available.")
	}

	return &models.FinalSummary{
		Content:         content,
		Recommendations: recs,
		Confidence:      confidence(c),
		Fallback:        true,
		GeneratedAt:     time.Now().UTC(),
	}
}

// Completeness synthesizes a completeness report from the pending
// steps and empty fields visible in the context.
func Completeness(ctx map[string]string) *models.CompletenessReport {
	pending := splitList(ctx["steps_pending"])
	missing := splitList(ctx["empty_fields"])

	var missingDocs []string
	if empty(ctx["documents"]) {
		missingDocs = append(missingDocs, "Supporting documents")
	}

	complete := len(pending) == 0 && len(missing) == 0 && len(missingDocs) == 0

	recs := []string{Notice + " Verify completeness manually before submission."}
	for _, s := range pending {
		recs = append(recs, fmt.Sprintf("Complete step %q.", s))
	}
	for _, f := range missing {
		recs = append(recs, fmt.Sprintf("Fill in field %q.", f))
	}

	return &models.CompletenessReport{
		IsComplete:       complete,
		MissingSteps:     pending,
		MissingDocuments: missingDocs,
		Recommendations:  recs,
		Confidence:       confidence(completeness(ctx, applicationKeys)),
		Fallback:         true,
		GeneratedAt:      time.Now().UTC(),
	}
}

// MissingFields synthesizes a missing-fields report: every empty form
// field becomes a required entry, and the completeness score is the
// fraction of fields that do have values.
func MissingFields(ctx map[string]string) *models.MissingFieldsReport {
	missing := splitList(ctx["empty_fields"])

	fields := make([]models.MissingField, 0, len(missing))
	actions := make([]string, 0, len(missing)+1)
	actions = append(actions, Notice+" Review the form manually for fields local checks cannot see.")
	for _, name := range missing {
		fields = append(fields, models.MissingField{
			FieldName:       name,
			FieldType:       "text",
			Importance:      models.ImportanceRequired,
			SuggestedAction: fmt.Sprintf("Provide a value for %q.", name),
		})
		actions = append(actions, fmt.Sprintf("Fill in %q.", name))
	}

	total := intFrom(ctx["field_count"])
	score := 1.0
	if total > 0 {
		score = round2(float64(total-len(missing)) / float64(total))
	}

	return &models.MissingFieldsReport{
		MissingFields:           fields,
		CompletenessScore:       score,
		PriorityActions:         actions,
		EstimatedCompletionTime: completionTimeFor(len(missing)),
		Fallback:                true,
		GeneratedAt:             time.Now().UTC(),
	}
}

// ── Heuristics ──────────────────────────────────────────────

// completeness is the fraction of expected context keys carrying a value.
func completeness(ctx map[string]string, keys []string) float64 {
	if len(keys) == 0 {
		return 0
	}
	return float64(presentCount(ctx, keys)) / float64(len(keys))
}

func presentCount(ctx map[string]string, keys []string) int {
	n := 0
	for _, k := range keys {
		if !empty(ctx[k]) {
			n++
		}
	}
	return n
}

// confidence maps completeness into a deliberately low band: fallback
// output is never presented as confidently as a model response.
func confidence(c float64) float64 {
	return round2(0.2 + 0.3*c)
}

// priorityFor derives a priority from the completeness threshold.
func priorityFor(c float64) models.Priority {
	switch {
	case c < 0.5:
		return models.PriorityHigh
	case c < 0.8:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func analysisPriorityFor(c float64) models.Priority {
	if c < 0.25 {
		return models.PriorityUrgent
	}
	return priorityFor(c)
}

func processingTimeFor(issues int) string {
	switch {
	case issues == 0:
		return "3-5 business days"
	case issues <= 3:
		return "5-10 business days"
	default:
		return "10-15 business days"
	}
}

func completionTimeFor(missing int) string {
	switch {
	case missing == 0:
		return "no further input needed"
	case missing <= 3:
		return "about 15 minutes"
	default:
		return "about an hour"
	}
}

// ── Context helpers ─────────────────────────────────────────

func empty(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == "none"
}

func get(ctx map[string]string, key string) string {
	if empty(ctx[key]) {
		return "unknown"
	}
	return ctx[key]
}

func splitList(v string) []string {
	if empty(v) {
		return nil
	}
	parts := strings.Split(v, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intFrom(v string) int {
	n := 0
	fmt.Sscanf(v, "%d", &n)
	return n
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
