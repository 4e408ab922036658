package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/caseflow/caseflow/backend/internal/store"
	"github.com/caseflow/caseflow/backend/pkg/models"
)

// newTestStore creates a fresh in-memory store with no persistence.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}

// ─── Case CRUD ───────────────────────────────────────────────

func TestCreateAndGetCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := &models.Case{
		ID:              "case-1",
		Title:           "Building permit for Oak Street",
		ApplicationType: "permit",
		Status:          models.CaseStatusOpen,
		ApplicantName:   "John Doe",
	}
	if err := s.CreateCase(ctx, c); err != nil {
		t.Fatalf("CreateCase() error = %v", err)
	}

	got, err := s.GetCase(ctx, "case-1")
	if err != nil {
		t.Fatalf("GetCase() error = %v", err)
	}
	if got.Title != "Building permit for Oak Street" {
		t.Errorf("GetCase().Title = %q, want %q", got.Title, "Building permit for Oak Street")
	}
	if got.Status != models.CaseStatusOpen {
		t.Errorf("GetCase().Status = %q, want %q", got.Status, models.CaseStatusOpen)
	}
}

func TestGetCase_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCase(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetCase() for missing id should return error, got nil")
	}
	if _, ok := err.(*store.ErrNotFound); !ok {
		t.Errorf("GetCase() error type = %T, want *store.ErrNotFound", err)
	}
}

func TestGetCase_ReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateCase(ctx, &models.Case{ID: "copy-1", Title: "original"})

	got, _ := s.GetCase(ctx, "copy-1")
	got.Title = "mutated"

	again, _ := s.GetCase(ctx, "copy-1")
	if again.Title != "original" {
		t.Errorf("store copy mutated through returned pointer: Title = %q", again.Title)
	}
}

func TestListCases_SortedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		s.CreateCase(ctx, &models.Case{
			ID:        id,
			Title:     id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	cases, err := s.ListCases(ctx)
	if err != nil {
		t.Fatalf("ListCases() error = %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("ListCases() returned %d cases, want 3", len(cases))
	}
	if cases[0].ID != "new" || cases[2].ID != "old" {
		t.Errorf("ListCases() order = [%s %s %s], want newest first", cases[0].ID, cases[1].ID, cases[2].ID)
	}
}

func TestUpdateAndDeleteCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateCase(ctx, &models.Case{ID: "upd", Title: "before", Status: models.CaseStatusOpen})

	if err := s.UpdateCase(ctx, &models.Case{ID: "upd", Title: "after", Status: models.CaseStatusInReview}); err != nil {
		t.Fatalf("UpdateCase() error = %v", err)
	}
	got, _ := s.GetCase(ctx, "upd")
	if got.Status != models.CaseStatusInReview {
		t.Errorf("After update, Status = %q, want %q", got.Status, models.CaseStatusInReview)
	}

	if err := s.DeleteCase(ctx, "upd"); err != nil {
		t.Fatalf("DeleteCase() error = %v", err)
	}
	if _, err := s.GetCase(ctx, "upd"); err == nil {
		t.Error("GetCase() after delete should return error, got nil")
	}
}

// ─── Application CRUD ────────────────────────────────────────

func TestApplicationCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &models.Application{
		ID:     "app-1",
		CaseID: "case-1",
		Status: models.ApplicationStatusDraft,
		Fields: map[string]string{"name": "John Doe"},
	}
	if err := s.CreateApplication(ctx, a); err != nil {
		t.Fatalf("CreateApplication() error = %v", err)
	}

	got, err := s.GetApplication(ctx, "app-1")
	if err != nil {
		t.Fatalf("GetApplication() error = %v", err)
	}
	if got.Fields["name"] != "John Doe" {
		t.Errorf("GetApplication().Fields[name] = %q, want %q", got.Fields["name"], "John Doe")
	}

	byCase, err := s.GetApplicationByCase(ctx, "case-1")
	if err != nil {
		t.Fatalf("GetApplicationByCase() error = %v", err)
	}
	if byCase.ID != "app-1" {
		t.Errorf("GetApplicationByCase().ID = %q, want %q", byCase.ID, "app-1")
	}

	got.Status = models.ApplicationStatusSubmitted
	if err := s.UpdateApplication(ctx, got); err != nil {
		t.Fatalf("UpdateApplication() error = %v", err)
	}
	again, _ := s.GetApplication(ctx, "app-1")
	if again.Status != models.ApplicationStatusSubmitted {
		t.Errorf("After update, Status = %q, want %q", again.Status, models.ApplicationStatusSubmitted)
	}
}

// ─── Summary Versioning ──────────────────────────────────────

func TestSummaryVersionSequence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.LatestSummaryVersion(ctx, "case-1")
	if err != nil {
		t.Fatalf("LatestSummaryVersion() error = %v", err)
	}
	if v != 0 {
		t.Errorf("LatestSummaryVersion() with no summaries = %d, want 0", v)
	}

	for i := 1; i <= 3; i++ {
		if err := s.CreateSummary(ctx, &models.Summary{CaseID: "case-1", Version: i, Content: "v"}); err != nil {
			t.Fatalf("CreateSummary(v%d) error = %v", i, err)
		}
	}

	v, _ = s.LatestSummaryVersion(ctx, "case-1")
	if v != 3 {
		t.Errorf("LatestSummaryVersion() = %d, want 3", v)
	}

	latest, err := s.GetLatestSummary(ctx, "case-1")
	if err != nil {
		t.Fatalf("GetLatestSummary() error = %v", err)
	}
	if latest.Version != 3 {
		t.Errorf("GetLatestSummary().Version = %d, want 3", latest.Version)
	}

	all, err := s.ListSummaries(ctx, "case-1")
	if err != nil {
		t.Fatalf("ListSummaries() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListSummaries() returned %d, want 3", len(all))
	}

	// Other cases keep their own sequence.
	v, _ = s.LatestSummaryVersion(ctx, "case-2")
	if v != 0 {
		t.Errorf("LatestSummaryVersion() for other case = %d, want 0", v)
	}
}

// ─── Interaction Log ─────────────────────────────────────────

func TestRecordAndListInteractions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		rec := &models.InteractionRecord{
			ID:        string(rune('a' + i)),
			CaseID:    "case-1",
			Operation: models.OpGenerateSummary,
			Success:   true,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.RecordInteraction(ctx, rec); err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}
	s.RecordInteraction(ctx, &models.InteractionRecord{
		ID: "other", CaseID: "case-2", Operation: models.OpRecommendStep, Timestamp: base,
	})

	recs, err := s.ListInteractions(ctx, "case-1", 10)
	if err != nil {
		t.Fatalf("ListInteractions() error = %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("ListInteractions() returned %d, want 3", len(recs))
	}
	if recs[0].ID != "c" {
		t.Errorf("ListInteractions() first record = %q, want newest %q", recs[0].ID, "c")
	}

	limited, _ := s.ListInteractions(ctx, "case-1", 2)
	if len(limited) != 2 {
		t.Errorf("ListInteractions(limit=2) returned %d, want 2", len(limited))
	}
}

// ─── Close / Snapshot ───────────────────────────────────────

func TestCloseFlush(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("CASEFLOW_DATA_DIR", dir)
	s := store.NewMemoryStore()
	os.Unsetenv("CASEFLOW_DATA_DIR")

	ctx := context.Background()
	s.CreateCase(ctx, &models.Case{ID: "persist-me", Title: "survives restart"})

	// Close should flush to disk
	s.Close()

	// Reopen and verify data survived
	os.Setenv("CASEFLOW_DATA_DIR", dir)
	s2 := store.NewMemoryStore()
	os.Unsetenv("CASEFLOW_DATA_DIR")
	defer s2.Close()

	got, err := s2.GetCase(ctx, "persist-me")
	if err != nil {
		t.Fatalf("After reopen, GetCase() error = %v", err)
	}
	if got.Title != "survives restart" {
		t.Errorf("After reopen, Title = %q, want %q", got.Title, "survives restart")
	}
}
