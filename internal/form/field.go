package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

type FieldType string

const (
	Text     FieldType = "text"
	Select   FieldType = "select"
	Checkbox FieldType = "checkbox"
	Date     FieldType = "date"
	Number   FieldType = "number"
	List     FieldType = "list"
)

// Field describes one input of a form. Name is the record's JSON field name.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Options  []string  `json:"options,omitempty"`
}

// ErrValidation is wrapped by every ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError lists the fields that failed presence or option checks
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid values for: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate checks required fields for presence and select fields against their options.
// Empty strings, empty lists, false checkboxes and zero numbers count as missing.
// No other validation is performed.
func Validate(v any, fields []Field) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode form state: %w", err)
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode form state: %w", err)
	}

	verr := &ValidationError{}
	for _, f := range fields {
		value, ok := values[f.Name]
		blank := !ok || isBlank(value)
		if blank {
			if f.Required {
				verr.Missing = append(verr.Missing, f.label())
			}
			continue
		}
		if f.Type == Select && len(f.Options) > 0 {
			s, _ := value.(string)
			if !slices.Contains(f.Options, s) {
				verr.Invalid = append(verr.Invalid, f.label())
			}
		}
	}
	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return verr
	}
	return nil
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}
