// Package prompts holds the prompt template registry and renderer for
// the AI operations. A template is pure data: prompt text with
// {{placeholder}} variables, default invocation parameters, and the
// response schema the validator checks the model's output against.
//
// Adding a new AI-backed feature means registering one more template
// here; the rest of the pipeline is unchanged.
package prompts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/caseflow/caseflow/backend/internal/validator"
	"github.com/caseflow/caseflow/backend/pkg/models"
)

// placeholderRegex matches {{variable}} placeholders in template text.
var placeholderRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template binds one operation to its prompt text, model parameters
// and response schema. Immutable after registration.
type Template struct {
	ID         models.Operation
	Version    int
	Text       string
	Parameters models.InvocationParameters
	Schema     validator.Schema
}

// Placeholders returns the distinct {{variable}} names in the template
// text, in order of first appearance.
func (t *Template) Placeholders() []string {
	matches := placeholderRegex.FindAllStringSubmatch(t.Text, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}

// UnknownOperationError reports a lookup for an operation that has no
// registered template. This is a configuration error, not a runtime
// degradation, and it is the only failure the orchestrator propagates.
type UnknownOperationError struct {
	Operation models.Operation
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("no prompt template registered for operation %q", e.Operation)
}

// Registry is the immutable operation → template lookup table, built
// once at process start.
type Registry struct {
	templates map[models.Operation]*Template
}

// NewRegistry builds the registry with all six operation templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[models.Operation]*Template)}
	r.register(summaryTemplate)
	r.register(recommendStepTemplate)
	r.register(analyzeApplicationTemplate)
	r.register(finalSummaryTemplate)
	r.register(completenessTemplate)
	r.register(missingFieldsTemplate)
	return r
}

// register panics on duplicate ids: exactly one template per operation
// is a process-start invariant, not a runtime condition.
func (r *Registry) register(t *Template) {
	if _, exists := r.templates[t.ID]; exists {
		panic(fmt.Sprintf("prompts: duplicate template registration for %q", t.ID))
	}
	r.templates[t.ID] = t
}

// Get returns the template for the operation, or an
// *UnknownOperationError if none is registered.
func (r *Registry) Get(op models.Operation) (*Template, error) {
	t, ok := r.templates[op]
	if !ok {
		return nil, &UnknownOperationError{Operation: op}
	}
	return t, nil
}

// Operations returns the registered operation ids.
func (r *Registry) Operations() []models.Operation {
	ops := make([]models.Operation, 0, len(r.templates))
	for op := range r.templates {
		ops = append(ops, op)
	}
	return ops
}

// Render merges the context into the template text and appends the
// output-format instruction derived from the response schema.
//
// Every placeholder is substituted: missing or empty context values
// render as "none" so the prompt never contains raw {{token}} syntax.
func Render(t *Template, ctx map[string]string) string {
	body := placeholderRegex.ReplaceAllStringFunc(t.Text, func(m string) string {
		key := placeholderRegex.FindStringSubmatch(m)[1]
		if v, ok := ctx[key]; ok && strings.TrimSpace(v) != "" {
			return v
		}
		return "none"
	})

	return body + "\n\n" + outputInstruction(t.Schema)
}

// outputInstruction spells out the exact JSON shape the validator will
// parse, so the model and the schema agree on the contract.
func outputInstruction(s validator.Schema) string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else, in exactly this shape:\n")
	b.WriteString(shapeOf(s, ""))
	return b.String()
}

func shapeOf(s validator.Schema, indent string) string {
	var b strings.Builder
	b.WriteString(indent + "{\n")
	for i, f := range s.Fields {
		b.WriteString(fmt.Sprintf("%s  %q: %s", indent, f.Name, fieldHint(f, indent)))
		if i < len(s.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(indent + "}")
	return b.String()
}

func fieldHint(f validator.FieldSpec, indent string) string {
	switch f.Kind {
	case validator.KindString:
		if len(f.Enum) > 0 {
			return `"` + strings.Join(f.Enum, `" | "`) + `"`
		}
		return "string"
	case validator.KindNumber:
		if f.Min != nil && f.Max != nil {
			return fmt.Sprintf("number between %v and %v", *f.Min, *f.Max)
		}
		return "number"
	case validator.KindBool:
		return "true or false"
	case validator.KindStringArray:
		return "[string, ...]"
	case validator.KindObjectArray:
		if f.Object != nil {
			return "[\n" + shapeOf(*f.Object, indent+"  ") + ", ...\n" + indent + "  ]"
		}
		return "[object, ...]"
	default:
		return "value"
	}
}
