package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every typed error below matches exactly one of them via errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// FieldError names the field and the rule it broke, e.g. {email, email_format}.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	if f.Param != "" {
		return f.Field + ": " + f.Rule + "=" + f.Param
	}
	return f.Field + ": " + f.Rule
}

type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Has reports whether field failed, optionally for a specific rule.
func (e *ValidationError) Has(field, rule string) bool {
	for _, f := range e.Fields {
		if f.Field == field && (rule == "" || f.Rule == rule) {
			return true
		}
	}
	return false
}

type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type ConflictError struct {
	Resource string
	Field    string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return e.Resource + " already exists"
	}
	return e.Resource + " " + e.Field + " already taken"
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type AuthorizationError struct {
	Action string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not allowed to " + e.Action + ": " + e.Reason
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrForbidden }

// Social graph outcomes.
var (
	ErrAlreadyFollowing = &ConflictError{Resource: "relationship", Field: "followed_id"}
	ErrNotFollowing     = &NotFoundError{Resource: "relationship"}
	ErrInvalidTarget    = NewValidationError(FieldError{Field: "followed_id", Rule: "not_self"})
)
