package domain

import (
	"fmt"
	"sort"
	"strings"
)

// BaseField scopes errors that belong to the whole object rather than a
// named field, such as currency incompatibility.
const BaseField = "base"

// FieldErrors collects field-scoped validation and persistence failures
// so callers get one coherent failure report per operation. The zero
// value is ready to use.
type FieldErrors map[string][]string

// Add appends a message under field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// AddErr appends an error's message under field.
func (fe FieldErrors) AddErr(field string, err error) {
	fe.Add(field, err.Error())
}

// Merge folds another collection into this one. Persistence failures of
// nested entities are merged this way so the caller never inspects
// nested objects.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		fe[field] = append(fe[field], messages...)
	}
}

// Empty reports whether no errors were collected.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// On returns the messages collected for field.
func (fe FieldErrors) On(field string) []string {
	return fe[field]
}

// Error implements error with a stable, readable rendering.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(fe[field], "; ")))
	}

	return strings.Join(parts, ", ")
}

// AsFieldErrors extracts a FieldErrors from err, if it carries one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	fe, ok := err.(FieldErrors)
	return fe, ok
}
