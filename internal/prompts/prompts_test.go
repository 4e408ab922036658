package prompts_test

import (
	"strings"
	"testing"

	"github.com/caseflow/caseflow/backend/internal/prompts"
	"github.com/caseflow/caseflow/backend/pkg/models"
)

func TestRegistry_HasAllOperations(t *testing.T) {
	r := prompts.NewRegistry()

	ops := []models.Operation{
		models.OpGenerateSummary,
		models.OpRecommendStep,
		models.OpAnalyzeApplication,
		models.OpGenerateFinalSummary,
		models.OpValidateCompleteness,
		models.OpDetectMissingFields,
	}
	for _, op := range ops {
		tpl, err := r.Get(op)
		if err != nil {
			t.Errorf("Get(%s) error = %v", op, err)
			continue
		}
		if tpl.ID != op {
			t.Errorf("Get(%s).ID = %s", op, tpl.ID)
		}
		if tpl.Version < 1 {
			t.Errorf("Get(%s).Version = %d, want >= 1", op, tpl.Version)
		}
		if len(tpl.Schema.Fields) == 0 {
			t.Errorf("Get(%s) has no schema fields", op)
		}
	}

	if got := len(r.Operations()); got != len(ops) {
		t.Errorf("Operations() returned %d, want %d", got, len(ops))
	}
}

func TestRegistry_UnknownOperation(t *testing.T) {
	r := prompts.NewRegistry()

	_, err := r.Get(models.Operation("translate_case"))
	if err == nil {
		t.Fatal("Get() for unregistered operation should return error")
	}
	var uop *prompts.UnknownOperationError
	if !asUnknown(err, &uop) {
		t.Fatalf("error type = %T, want *UnknownOperationError", err)
	}
	if uop.Operation != "translate_case" {
		t.Errorf("UnknownOperationError.Operation = %q", uop.Operation)
	}
}

func asUnknown(err error, target **prompts.UnknownOperationError) bool {
	u, ok := err.(*prompts.UnknownOperationError)
	if ok {
		*target = u
	}
	return ok
}

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	r := prompts.NewRegistry()
	tpl, _ := r.Get(models.OpGenerateSummary)

	ctx := map[string]string{
		"case_id":          "case-1",
		"title":            "Building permit",
		"application_type": "permit",
		"status":           "open",
		"current_step":     "document review",
		"applicant_name":   "John Doe",
		"applicant_email":  "john@example.com",
		"documents":        "passport, floor plan",
		"notes":            "called applicant on Monday",
	}

	prompt := prompts.Render(tpl, ctx)

	for _, want := range []string{"case-1", "Building permit", "John Doe", "passport, floor plan"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Errorf("rendered prompt still contains placeholder syntax:\n%s", prompt)
	}
}

func TestRender_MissingValuesBecomeNone(t *testing.T) {
	r := prompts.NewRegistry()
	tpl, _ := r.Get(models.OpGenerateSummary)

	prompt := prompts.Render(tpl, map[string]string{"title": "Only a title", "documents": "  "})

	if strings.Contains(prompt, "{{") {
		t.Errorf("rendered prompt contains unsubstituted placeholders:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Documents on file: none") {
		t.Errorf("blank context value should render as none:\n%s", prompt)
	}
}

func TestRender_AppendsOutputInstruction(t *testing.T) {
	r := prompts.NewRegistry()

	tpl, _ := r.Get(models.OpRecommendStep)
	prompt := prompts.Render(tpl, map[string]string{"step": "intake"})

	if !strings.Contains(prompt, "Respond with a single JSON object and nothing else") {
		t.Error("rendered prompt missing output instruction")
	}
	if !strings.Contains(prompt, `"priority": "low" | "medium" | "high"`) {
		t.Errorf("output instruction missing enum hint:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"confidence": number between 0 and 1`) {
		t.Errorf("output instruction missing number bounds hint:\n%s", prompt)
	}
}

func TestRender_NestedShapeForObjectArrays(t *testing.T) {
	r := prompts.NewRegistry()

	tpl, _ := r.Get(models.OpDetectMissingFields)
	prompt := prompts.Render(tpl, map[string]string{"application_id": "app-1"})

	if !strings.Contains(prompt, `"fieldName"`) {
		t.Errorf("output instruction missing nested element fields:\n%s", prompt)
	}
	if !strings.Contains(prompt, `"importance": "required" | "recommended" | "optional"`) {
		t.Errorf("output instruction missing nested enum:\n%s", prompt)
	}
}

func TestPlaceholders(t *testing.T) {
	r := prompts.NewRegistry()
	tpl, _ := r.Get(models.OpRecommendStep)

	vars := tpl.Placeholders()
	seen := map[string]bool{}
	for _, v := range vars {
		if seen[v] {
			t.Errorf("Placeholders() returned duplicate %q", v)
		}
		seen[v] = true
	}
	if !seen["step"] || !seen["case_id"] {
		t.Errorf("Placeholders() = %v, want step and case_id present", vars)
	}
}
