// Package models defines the shared domain types for the Caseflow backend:
// case and application records, the AI operation result types, and the
// append-only interaction audit record.
package models

import (
	"time"
)

// ── Operations ───────────────────────────────────────────────

// Operation identifies one of the AI-backed transformations the
// orchestrator can run. Every operation has exactly one registered
// prompt template.
type Operation string

const (
	OpGenerateSummary      Operation = "generate_summary"
	OpRecommendStep        Operation = "recommend_step"
	OpAnalyzeApplication   Operation = "analyze_application"
	OpGenerateFinalSummary Operation = "generate_final_summary"
	OpValidateCompleteness Operation = "validate_completeness"
	OpDetectMissingFields  Operation = "detect_missing_fields"
)

// ── Priorities & Importance ──────────────────────────────────

// Priority grades how urgently a case worker should act.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent" // application analysis only
)

// Importance grades a missing application field.
type Importance string

const (
	ImportanceRequired    Importance = "required"
	ImportanceRecommended Importance = "recommended"
	ImportanceOptional    Importance = "optional"
)

// ── Case & Application Records ───────────────────────────────

type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "open"
	CaseStatusInReview CaseStatus = "in_review"
	CaseStatusOnHold   CaseStatus = "on_hold"
	CaseStatusClosed   CaseStatus = "closed"
)

// Case is the case worker's unit of work. Documents and Notes hold
// display names / free text only; file storage lives elsewhere.
type Case struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	ApplicationType string     `json:"application_type"`
	Status          CaseStatus `json:"status"`
	ApplicantName   string     `json:"applicant_name"`
	ApplicantEmail  string     `json:"applicant_email"`
	CurrentStep     string     `json:"current_step,omitempty"`
	Documents       []string   `json:"documents,omitempty"`
	Notes           []string   `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ApplicationStep is one step of a multi-step application form.
type ApplicationStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "draft"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// Application is a submitted (or in-progress) application form
// attached to a case. Fields is the flattened form content.
type Application struct {
	ID          string            `json:"id"`
	CaseID      string            `json:"case_id"`
	Status      ApplicationStatus `json:"status"`
	Fields      map[string]string `json:"fields,omitempty"`
	Steps       []ApplicationStep `json:"steps,omitempty"`
	Documents   []string          `json:"documents,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// ── Model Invocation ─────────────────────────────────────────

// InvocationParameters are the per-template model call settings.
type InvocationParameters struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// ModelResponse is what the transport returns for one model call.
// Consumed once by the orchestrator; never retained.
type ModelResponse struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
}

// ── Domain Results ───────────────────────────────────────────
//
// All AI operation results carry a generation timestamp and a Fallback
// flag. Fallback results are synthesized locally and never come from a
// remote model; their text content additionally carries a visible
// degraded-mode notice. Results are never mutated after construction.

// Summary is the overall case summary. Regenerating produces a new
// instance with an incremented Version (1, 2, ...).
type Summary struct {
	CaseID          string    `json:"case_id"`
	Content         string    `json:"content"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"confidence"`
	Version         int       `json:"version"`
	ModelID         string    `json:"model_id,omitempty"`
	Fallback        bool      `json:"fallback"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Recommendation suggests next actions for a given case step.
type Recommendation struct {
	CaseID          string    `json:"case_id"`
	Step            string    `json:"step"`
	Recommendations []string  `json:"recommendations"`
	Priority        Priority  `json:"priority"`
	Confidence      float64   `json:"confidence"`
	ModelID         string    `json:"model_id,omitempty"`
	Fallback        bool      `json:"fallback"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// AnalysisReport is the full application analysis.
type AnalysisReport struct {
	ApplicationID           string    `json:"application_id"`
	Summary                 string    `json:"summary"`
	KeyPoints               []string  `json:"key_points"`
	PotentialIssues         []string  `json:"potential_issues"`
	RecommendedActions      []string  `json:"recommended_actions"`
	PriorityLevel           Priority  `json:"priority_level"`
	EstimatedProcessingTime string    `json:"estimated_processing_time"`
	RequiredDocuments       []string  `json:"required_documents"`
	ModelID                 string    `json:"model_id,omitempty"`
	Fallback                bool      `json:"fallback"`
	GeneratedAt             time.Time `json:"generated_at"`
}

// FinalSummary is the closing summary written when a case wraps up.
// Unlike Summary it is not versioned.
type FinalSummary struct {
	CaseID          string    `json:"case_id"`
	Content         string    `json:"content"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"confidence"`
	ModelID         string    `json:"model_id,omitempty"`
	Fallback        bool      `json:"fallback"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// CompletenessReport states whether an application is ready to submit.
type CompletenessReport struct {
	ApplicationID    string    `json:"application_id"`
	IsComplete       bool      `json:"is_complete"`
	MissingSteps     []string  `json:"missing_steps"`
	MissingDocuments []string  `json:"missing_documents"`
	Recommendations  []string  `json:"recommendations"`
	Confidence       float64   `json:"confidence"`
	ModelID          string    `json:"model_id,omitempty"`
	Fallback         bool      `json:"fallback"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// MissingField describes one absent or incomplete application field.
type MissingField struct {
	FieldName       string     `json:"field_name"`
	FieldType       string     `json:"field_type"`
	Importance      Importance `json:"importance"`
	SuggestedAction string     `json:"suggested_action"`
}

// MissingFieldsReport lists fields the applicant still has to fill in.
type MissingFieldsReport struct {
	ApplicationID           string         `json:"application_id"`
	MissingFields           []MissingField `json:"missing_fields"`
	CompletenessScore       float64        `json:"completeness_score"`
	PriorityActions         []string       `json:"priority_actions"`
	EstimatedCompletionTime string         `json:"estimated_completion_time"`
	ModelID                 string         `json:"model_id,omitempty"`
	Fallback                bool           `json:"fallback"`
	GeneratedAt             time.Time      `json:"generated_at"`
}

// ── Interaction Audit ────────────────────────────────────────

// InteractionRecord captures one model invocation attempt, success or
// not. Exactly one record is written per orchestrator call; the log is
// append-only and a failed write never aborts the caller's operation.
type InteractionRecord struct {
	ID              string    `json:"id"`
	CaseID          string    `json:"case_id"`
	Operation       Operation `json:"operation"`
	Prompt          string    `json:"prompt"`
	ResponseText    string    `json:"response_text,omitempty"`
	ModelID         string    `json:"model_id,omitempty"`
	TokensUsed      int       `json:"tokens_used"`
	DurationMs      int64     `json:"duration_ms"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
	TemplateID      string    `json:"template_id"`
	TemplateVersion int       `json:"template_version"`
	Timestamp       time.Time `json:"timestamp"`
}
