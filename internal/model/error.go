package model

import (
	"fmt"
	"strings"
)

// FieldError describes a single part of a request payload that failed validation.
type FieldError struct {
	// Loc is the location of the invalid value, starting with "body" followed by
	// the record index and, if known, the field name.
	Loc []any `json:"loc"`
	// Msg is a human readable description of the failure.
	Msg string `json:"msg"`
	// Type classifies the failure, e.g. "missing" or "json_invalid".
	Type string `json:"type"`
}

func (e FieldError) String() string {
	parts := make([]string, 0, len(e.Loc))
	for _, l := range e.Loc {
		parts = append(parts, fmt.Sprint(l))
	}

	return strings.Join(parts, ".") + ": " + e.Msg
}

// ValidationError is returned when a request payload does not match the
// TestRecord array schema. The whole payload is rejected.
type ValidationError struct {
	Details []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}

	msgs := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		msgs = append(msgs, d.String())
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

type PayloadTooLargeError struct {
	Limit int64
}

func (e PayloadTooLargeError) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}
