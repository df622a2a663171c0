package validation

import (
	"sort"
	"strings"
)

// ValidationError collects every violated field of a payload, not just the
// first. Handlers surface it as a 400 with per-field detail.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, field := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(e.Fields[field])
	}
	return b.String()
}
