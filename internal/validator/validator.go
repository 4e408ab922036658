// Package validator checks raw model output against a declarative
// per-operation schema. One shared engine replaces ad hoc parsing per
// call site: each operation registers a Schema and the orchestrator
// runs every response through Validate.
//
// Responses are expected to be JSON. Text that does not parse as JSON
// is treated as unparseable, not as plain content — downstream domain
// results require structured fields.
package validator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Kind is the expected JSON type of a schema field.
type Kind string

const (
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindBool        Kind = "bool"
	KindStringArray Kind = "string_array"
	KindObjectArray Kind = "object_array"
)

// FieldSpec declares one expected response field and its constraints.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Required bool

	// Min/Max bound numeric fields (inclusive). Nil means unbounded.
	Min *float64
	Max *float64

	// Enum restricts a string field to a fixed value set.
	Enum []string

	// NonEmpty requires array fields to contain at least one element.
	NonEmpty bool

	// Object is the element schema for object_array fields.
	Object *Schema
}

// Schema is the expected shape of one operation's response.
type Schema struct {
	Fields []FieldSpec
}

// Outcome is the result of validating one raw response.
// Data is populated only when Valid is true.
type Outcome struct {
	Valid  bool
	Data   map[string]any
	Errors []string
}

// Bound returns a pointer to v, for Min/Max literals in schema tables.
func Bound(v float64) *float64 { return &v }

// Validate parses raw as JSON and checks it against the schema.
// Every violated constraint is reported, not just the first, so audit
// records and caller diagnostics see the full picture.
func Validate(schema Schema, raw string) Outcome {
	var data map[string]any
	if err := json.Unmarshal([]byte(repairJSON(raw)), &data); err != nil {
		return Outcome{Valid: false, Errors: []string{"unparseable response"}}
	}

	errs := checkFields(schema, data, "")
	if len(errs) > 0 {
		return Outcome{Valid: false, Errors: errs}
	}
	return Outcome{Valid: true, Data: data}
}

// checkFields validates one object against a schema. path prefixes
// error messages for nested object-array elements.
func checkFields(schema Schema, data map[string]any, path string) []string {
	var errs []string

	for _, f := range schema.Fields {
		name := f.Name
		if path != "" {
			name = path + "." + f.Name
		}

		v, ok := data[f.Name]
		if !ok || v == nil {
			if f.Required {
				errs = append(errs, fmt.Sprintf("%s: missing required field", name))
			}
			continue
		}

		switch f.Kind {
		case KindString:
			s, ok := v.(string)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: expected string, got %T", name, v))
				continue
			}
			if f.Required && strings.TrimSpace(s) == "" {
				errs = append(errs, fmt.Sprintf("%s: must not be empty", name))
				continue
			}
			if len(f.Enum) > 0 && !contains(f.Enum, s) {
				errs = append(errs, fmt.Sprintf("%s: %q not in allowed set %v", name, s, f.Enum))
			}

		case KindNumber:
			n, ok := v.(float64)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: expected number, got %T", name, v))
				continue
			}
			if f.Min != nil && n < *f.Min {
				errs = append(errs, fmt.Sprintf("%s: %v below minimum %v", name, n, *f.Min))
			}
			if f.Max != nil && n > *f.Max {
				errs = append(errs, fmt.Sprintf("%s: %v above maximum %v", name, n, *f.Max))
			}

		case KindBool:
			if _, ok := v.(bool); !ok {
				errs = append(errs, fmt.Sprintf("%s: expected boolean, got %T", name, v))
			}

		case KindStringArray:
			arr, ok := v.([]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: expected array, got %T", name, v))
				continue
			}
			if f.NonEmpty && len(arr) == 0 {
				errs = append(errs, fmt.Sprintf("%s: must not be empty", name))
			}
			for i, el := range arr {
				if _, ok := el.(string); !ok {
					errs = append(errs, fmt.Sprintf("%s[%d]: expected string, got %T", name, i, el))
				}
			}

		case KindObjectArray:
			arr, ok := v.([]any)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: expected array, got %T", name, v))
				continue
			}
			if f.NonEmpty && len(arr) == 0 {
				errs = append(errs, fmt.Sprintf("%s: must not be empty", name))
			}
			for i, el := range arr {
				obj, ok := el.(map[string]any)
				if !ok {
					errs = append(errs, fmt.Sprintf("%s[%d]: expected object, got %T", name, i, el))
					continue
				}
				if f.Object != nil {
					errs = append(errs, checkFields(*f.Object, obj, fmt.Sprintf("%s[%d]", name, i))...)
				}
			}

		default:
			errs = append(errs, fmt.Sprintf("%s: unknown field kind %q", name, f.Kind))
		}
	}

	return errs
}

// repairJSON undoes the two malformations models most often wrap around
// otherwise valid JSON. Conservative on purpose: markdown fences and
// trailing commas before a closing bracket, nothing else.
func repairJSON(raw string) string {
	s := stripCodeFence(raw)
	return trailingCommaRegex.ReplaceAllString(s, "$1")
}

// trailingCommaRegex matches a comma followed only by whitespace and a
// closing } or ]. It does not track string context; a literal ",}"
// inside a quoted value would be altered.
var trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)

// stripCodeFence removes markdown fences models often wrap around JSON.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
