package fallback_test

import (
	"strings"
	"testing"

	"github.com/caseflow/caseflow/backend/internal/fallback"
	"github.com/caseflow/caseflow/backend/pkg/models"
)

func fullCaseContext() map[string]string {
	return map[string]string{
		"case_id":          "case-1",
		"title":            "Building permit",
		"application_type": "permit",
		"status":           "open",
		"current_step":     "document review",
		"applicant_name":   "John Doe",
		"applicant_email":  "john@example.com",
		"documents":        "passport, floor plan",
		"notes":            "called applicant",
	}
}

func TestSummary_CarriesNotice(t *testing.T) {
	sum := fallback.Summary(fullCaseContext())

	if !sum.Fallback {
		t.Error("Summary().Fallback = false, want true")
	}
	if !strings.Contains(sum.Content, fallback.Notice) {
		t.Errorf("Summary().Content missing notice marker: %q", sum.Content)
	}
	if len(sum.Recommendations) == 0 {
		t.Error("Summary().Recommendations empty")
	}
	if sum.ModelID != "" {
		t.Errorf("Summary().ModelID = %q, want empty for local synthesis", sum.ModelID)
	}
}

func TestSummary_ConfidenceTracksCompleteness(t *testing.T) {
	full := fallback.Summary(fullCaseContext())
	sparse := fallback.Summary(map[string]string{"title": "Only a title"})

	if full.Confidence <= sparse.Confidence {
		t.Errorf("full context confidence %v should exceed sparse %v", full.Confidence, sparse.Confidence)
	}
	for _, c := range []float64{full.Confidence, sparse.Confidence} {
		if c < 0.2 || c > 0.5 {
			t.Errorf("fallback confidence %v outside the degraded band [0.2, 0.5]", c)
		}
	}
}

func TestRecommendation_PriorityFromCompleteness(t *testing.T) {
	sparse := fallback.Recommendation(map[string]string{"step": "intake"})
	if sparse.Priority != models.PriorityHigh {
		t.Errorf("sparse context Priority = %q, want high", sparse.Priority)
	}

	ctx := fullCaseContext()
	ctx["step"] = "intake"
	full := fallback.Recommendation(ctx)
	if full.Priority != models.PriorityLow {
		t.Errorf("full context Priority = %q, want low", full.Priority)
	}
	if full.Step != "intake" {
		t.Errorf("Step = %q, want intake", full.Step)
	}
}

func TestRecommendation_SuggestsMissingMaterial(t *testing.T) {
	rec := fallback.Recommendation(map[string]string{"step": "review", "documents": "", "notes": ""})

	joined := strings.Join(rec.Recommendations, " ")
	if !strings.Contains(joined, "missing supporting documents") {
		t.Errorf("Recommendations should mention missing documents: %v", rec.Recommendations)
	}
	if !strings.Contains(joined, "case notes") {
		t.Errorf("Recommendations should mention missing notes: %v", rec.Recommendations)
	}
}

func TestAnalysis_IssuesFromEmptyFieldsAndPendingSteps(t *testing.T) {
	report := fallback.Analysis(map[string]string{
		"status":        "draft",
		"fields":        "name=John",
		"field_count":   "3",
		"empty_fields":  "email, phone",
		"steps":         "personal info (done), review (pending)",
		"steps_pending": "review",
		"documents":     "",
	})

	if len(report.PotentialIssues) != 3 {
		t.Errorf("PotentialIssues = %v, want 2 empty fields + 1 pending step", report.PotentialIssues)
	}
	if report.EstimatedProcessingTime != "5-10 business days" {
		t.Errorf("EstimatedProcessingTime = %q", report.EstimatedProcessingTime)
	}
	if len(report.RequiredDocuments) == 0 {
		t.Error("RequiredDocuments should not be empty when no documents on file")
	}
	if !strings.Contains(report.Summary, fallback.Notice) {
		t.Errorf("Summary missing notice marker: %q", report.Summary)
	}
}

func TestFinalSummary_NoticeAndClosingNote(t *testing.T) {
	fs := fallback.FinalSummary(map[string]string{
		"title":            "Building permit",
		"application_type": "permit",
		"applicant_name":   "John Doe",
		"status":           "closed",
	})

	if !strings.Contains(fs.Content, fallback.Notice) {
		t.Errorf("Content missing notice marker: %q", fs.Content)
	}
	if len(fs.Recommendations) == 0 {
		t.Error("with no notes, should recommend adding a closing note")
	}
}

func TestCompleteness_CompleteApplication(t *testing.T) {
	report := fallback.Completeness(map[string]string{
		"status":        "submitted",
		"fields":        "name=John; email=j@x",
		"field_count":   "2",
		"empty_fields":  "",
		"steps":         "intake (done)",
		"steps_pending": "",
		"documents":     "passport",
	})

	if !report.IsComplete {
		t.Error("IsComplete = false for application with nothing missing")
	}
	if len(report.MissingSteps) != 0 || len(report.MissingDocuments) != 0 {
		t.Errorf("MissingSteps = %v, MissingDocuments = %v, want both empty", report.MissingSteps, report.MissingDocuments)
	}
}

func TestCompleteness_IncompleteApplication(t *testing.T) {
	report := fallback.Completeness(map[string]string{
		"status":        "draft",
		"field_count":   "2",
		"empty_fields":  "email",
		"steps_pending": "review, decision",
		"documents":     "",
	})

	if report.IsComplete {
		t.Error("IsComplete = true despite pending steps and empty fields")
	}
	if len(report.MissingSteps) != 2 {
		t.Errorf("MissingSteps = %v, want [review decision]", report.MissingSteps)
	}
	if len(report.MissingDocuments) != 1 {
		t.Errorf("MissingDocuments = %v, want one entry", report.MissingDocuments)
	}
	if !strings.Contains(report.Recommendations[0], fallback.Notice) {
		t.Errorf("first recommendation should carry the notice marker: %v", report.Recommendations)
	}
}

func TestMissingFields_ScoreAndEntries(t *testing.T) {
	report := fallback.MissingFields(map[string]string{
		"field_count":  "4",
		"empty_fields": "email, phone",
	})

	if len(report.MissingFields) != 2 {
		t.Fatalf("MissingFields = %v, want 2 entries", report.MissingFields)
	}
	if report.MissingFields[0].FieldName != "email" {
		t.Errorf("MissingFields[0].FieldName = %q, want email", report.MissingFields[0].FieldName)
	}
	if report.MissingFields[0].Importance != models.ImportanceRequired {
		t.Errorf("Importance = %q, want required", report.MissingFields[0].Importance)
	}
	if report.CompletenessScore != 0.5 {
		t.Errorf("CompletenessScore = %v, want 0.5 (2 of 4 filled)", report.CompletenessScore)
	}
	if report.EstimatedCompletionTime != "about 15 minutes" {
		t.Errorf("EstimatedCompletionTime = %q", report.EstimatedCompletionTime)
	}
}

func TestMissingFields_NothingMissing(t *testing.T) {
	report := fallback.MissingFields(map[string]string{
		"field_count":  "3",
		"empty_fields": "",
	})

	if len(report.MissingFields) != 0 {
		t.Errorf("MissingFields = %v, want none", report.MissingFields)
	}
	if report.CompletenessScore != 1.0 {
		t.Errorf("CompletenessScore = %v, want 1.0", report.CompletenessScore)
	}
	if report.EstimatedCompletionTime != "no further input needed" {
		t.Errorf("EstimatedCompletionTime = %q", report.EstimatedCompletionTime)
	}
}
