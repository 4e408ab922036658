package orchestrator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/caseflow/caseflow/backend/pkg/models"
)

// BuildCaseContext flattens a case record into the string map the
// prompt templates render from. Derived keys are joined lists so a
// template can drop them straight into prose.
func BuildCaseContext(c *models.Case) map[string]string {
	return map[string]string{
		"case_id":          c.ID,
		"title":            c.Title,
		"application_type": c.ApplicationType,
		"status":           string(c.Status),
		"current_step":     c.CurrentStep,
		"applicant_name":   c.ApplicantName,
		"applicant_email":  c.ApplicantEmail,
		"documents":        strings.Join(c.Documents, ", "),
		"notes":            strings.Join(c.Notes, "; "),
	}
}

// BuildApplicationContext flattens an application record. Field maps
// are iterated in sorted key order so the rendered prompt is stable.
func BuildApplicationContext(a *models.Application) map[string]string {
	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []string
	var emptyFields []string
	for _, k := range keys {
		v := a.Fields[k]
		if strings.TrimSpace(v) == "" {
			emptyFields = append(emptyFields, k)
			continue
		}
		fields = append(fields, k+"="+v)
	}

	var steps []string
	var pending []string
	for _, s := range a.Steps {
		state := "pending"
		if s.Completed {
			state = "done"
		} else {
			pending = append(pending, s.Name)
		}
		steps = append(steps, s.Name+" ("+state+")")
	}

	return map[string]string{
		"application_id": a.ID,
		"case_id":        a.CaseID,
		"status":         string(a.Status),
		"fields":         strings.Join(fields, "; "),
		"field_count":    strconv.Itoa(len(a.Fields)),
		"empty_fields":   strings.Join(emptyFields, ", "),
		"steps":          strings.Join(steps, ", "),
		"steps_pending":  strings.Join(pending, ", "),
		"documents":      strings.Join(a.Documents, ", "),
	}
}
