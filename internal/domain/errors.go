package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("onboarding: session not found")
	ErrInvalidState    = errors.New("onboarding: operation not allowed in current session state")
	ErrExpired         = errors.New("onboarding: session expired")
	ErrVersionConflict = errors.New("onboarding: session version conflict")
)

// ValidationResult carries the outcome of a pure validation pass. Warnings
// never block; errors invalidate.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func ValidResult() ValidationResult {
	return ValidationResult{IsValid: true}
}

func (r *ValidationResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

func (r *ValidationResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge folds another result in; validity is the conjunction.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	if !other.IsValid {
		r.IsValid = false
	}
}

// ValidationError is returned when a submission is rejected; the draft is
// left untouched. MissingSteps is set only by Complete.
type ValidationError struct {
	Errors       []string `json:"errors,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	MissingSteps []StepID `json:"missing_steps,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.MissingSteps) > 0 {
		parts := make([]string, len(e.MissingSteps))
		for i, s := range e.MissingSteps {
			parts[i] = string(s)
		}
		return "onboarding: incomplete steps: " + strings.Join(parts, ", ")
	}
	return "onboarding: validation failed: " + strings.Join(e.Errors, "; ")
}
