package validator

import (
	"slices"
	"strings"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors collects field errors in the order they were found.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// ToMap keeps the first message per field.
func (v ValidationErrors) ToMap() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		if _, seen := out[fe.Field]; !seen {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Required records "<field> is required" when value is blank and reports whether it was present.
func (v *ValidationErrors) Required(field, value string) bool {
	if IsEmpty(value) {
		v.Add(field, field+" is required")
		return false
	}
	return true
}

// Has reports whether field already failed.
func (v ValidationErrors) Has(field string) bool {
	return slices.ContainsFunc(v, func(fe ValidationError) bool { return fe.Field == field })
}

// Err returns nil for an empty collection so callers can return it directly.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

func IsInSlice(value string, slice []string) bool {
	return slices.Contains(slice, value)
}

// UniqueTrimmed trims every value and drops repeats, keeping first-seen order.
// ok is false when any value is blank.
func UniqueTrimmed(values []string) (out []string, ok bool) {
	ok = true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			ok = false
			continue
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out, ok
}
