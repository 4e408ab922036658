// Package handlers implements the HTTP handlers for the Caseflow
// backend: case and application CRUD plus the AI operation endpoints
// backed by the orchestrator.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caseflow/caseflow/backend/internal/orchestrator"
	"github.com/caseflow/caseflow/backend/internal/store"
	"github.com/caseflow/caseflow/backend/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Store store.Store
	AI    *orchestrator.Service
}

func New(s store.Store, ai *orchestrator.Service) *Handlers {
	return &Handlers{Store: s, AI: ai}
}

// ══════════════════════════════════════════════════════════════
// ── Case Handlers ────────────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) ListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.Store.ListCases(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cases == nil {
		cases = []models.Case{}
	}
	respondJSON(w, http.StatusOK, cases)
}

func (h *Handlers) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req models.Case
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "Case title is required")
		return
	}

	req.ID = uuid.New().String()
	if req.Status == "" {
		req.Status = models.CaseStatusOpen
	}
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = time.Now().UTC()

	if err := h.Store.CreateCase(r.Context(), &req); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("case", req.ID).Str("title", req.Title).Msg("Case created")
	respondJSON(w, http.StatusCreated, req)
}

func (h *Handlers) GetCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	c, err := h.Store.GetCase(r.Context(), caseID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) UpdateCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	c, err := h.Store.GetCase(r.Context(), caseID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	var req models.Case
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title != "" {
		c.Title = req.Title
	}
	if req.ApplicationType != "" {
		c.ApplicationType = req.ApplicationType
	}
	if req.Status != "" {
		c.Status = req.Status
	}
	if req.ApplicantName != "" {
		c.ApplicantName = req.ApplicantName
	}
	if req.ApplicantEmail != "" {
		c.ApplicantEmail = req.ApplicantEmail
	}
	if req.CurrentStep != "" {
		c.CurrentStep = req.CurrentStep
	}
	if len(req.Documents) > 0 {
		c.Documents = req.Documents
	}
	if len(req.Notes) > 0 {
		c.Notes = req.Notes
	}
	c.UpdatedAt = time.Now().UTC()

	if err := h.Store.UpdateCase(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) DeleteCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	if err := h.Store.DeleteCase(r.Context(), caseID); err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	log.Info().Str("case", caseID).Msg("Case deleted")
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "case": caseID})
}

// ══════════════════════════════════════════════════════════════
// ── Application Handlers ─────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req models.Application
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CaseID == "" {
		respondError(w, http.StatusBadRequest, "Application case_id is required")
		return
	}

	// The case must exist before an application can attach to it.
	if _, err := h.Store.GetCase(r.Context(), req.CaseID); err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	req.ID = uuid.New().String()
	if req.Status == "" {
		req.Status = models.ApplicationStatusDraft
	}
	req.SubmittedAt = time.Now().UTC()

	if err := h.Store.CreateApplication(r.Context(), &req); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("application", req.ID).Str("case", req.CaseID).Msg("Application created")
	respondJSON(w, http.StatusCreated, req)
}

func (h *Handlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appID")

	a, err := h.Store.GetApplication(r.Context(), appID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *Handlers) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appID")

	a, err := h.Store.GetApplication(r.Context(), appID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	var req models.Application
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Status != "" {
		a.Status = req.Status
	}
	if req.Fields != nil {
		if a.Fields == nil {
			a.Fields = map[string]string{}
		}
		for k, v := range req.Fields {
			a.Fields[k] = v
		}
	}
	if len(req.Steps) > 0 {
		a.Steps = req.Steps
	}
	if len(req.Documents) > 0 {
		a.Documents = req.Documents
	}

	if err := h.Store.UpdateApplication(r.Context(), a); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// ══════════════════════════════════════════════════════════════
// ── AI Operation Handlers ────────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCase(w, r)
	if !ok {
		return
	}

	sum, err := h.AI.GenerateSummary(r.Context(), c)
	if err != nil {
		respondAIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (h *Handlers) GetLatestSummary(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	sum, err := h.Store.GetLatestSummary(r.Context(), caseID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (h *Handlers) ListSummaries(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	sums, err := h.Store.ListSummaries(r.Context(), caseID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sums == nil {
		sums = []models.Summary{}
	}
	respondJSON(w, http.StatusOK, sums)
}

func (h *Handlers) RecommendStep(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCase(w, r)
	if !ok {
		return
	}

	var req struct {
		Step string `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Step == "" {
		req.Step = c.CurrentStep
	}
	if req.Step == "" {
		respondError(w, http.StatusBadRequest, "No step given and the case has no current step")
		return
	}

	rec, err := h.AI.RecommendStep(r.Context(), c, req.Step)
	if err != nil {
		respondAIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *Handlers) GenerateFinalSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadCase(w, r)
	if !ok {
		return
	}

	fs, err := h.AI.GenerateFinalSummary(r.Context(), c)
	if err != nil {
		respondAIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fs)
}

func (h *Handlers) AnalyzeApplication(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadApplication(w, r)
	if !ok {
		return
	}

	report, err := h.AI.AnalyzeApplication(r.Context(), a)
	if err != nil {
		respondAIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handlers) ValidateCompleteness(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadApplication(w, r)
	if !ok {
		return
	}

	report, err := h.AI.ValidateCompleteness(r.Context(), a)
	if err != nil {
		respondAIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handlers) DetectMissingFields(w http.ResponseWriter, r *http.Request) {
	a, ok := h.loadApplication(w, r)
	if !ok {
		return
	}

	report, err := h.AI.DetectMissingFields(r.Context(), a)
	if err != nil {
		respondAIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ══════════════════════════════════════════════════════════════
// ── Interaction Log Handlers ─────────────────────────────────
// ══════════════════════════════════════════════════════════════

func (h *Handlers) ListInteractions(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	recs, err := h.Store.ListInteractions(r.Context(), caseID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []models.InteractionRecord{}
	}
	respondJSON(w, http.StatusOK, recs)
}

// ── Helpers ──────────────────────────────────────────────────

func (h *Handlers) loadCase(w http.ResponseWriter, r *http.Request) (*models.Case, bool) {
	caseID := chi.URLParam(r, "caseID")

	c, err := h.Store.GetCase(r.Context(), caseID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return c, true
}

func (h *Handlers) loadApplication(w http.ResponseWriter, r *http.Request) (*models.Application, bool) {
	appID := chi.URLParam(r, "appID")

	a, err := h.Store.GetApplication(r.Context(), appID)
	if err != nil {
		if _, ok := err.(*store.ErrNotFound); ok {
			respondError(w, http.StatusNotFound, err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return a, true
}

// respondAIError maps orchestrator failures to HTTP statuses. An
// unknown operation is a server misconfiguration; everything else only
// reaches here under the error failure policy and reads as a bad
// gateway to the model provider.
func respondAIError(w http.ResponseWriter, err error) {
	if orchestrator.IsUnknownOperation(err) {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
