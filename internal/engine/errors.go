package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ResolutionError is a fatal resolution outcome. It is surfaced to the user
// as a transient ShowError and recorded as an analytics decision; it is
// never retried.
type ResolutionError struct {
	// Code identifies the error category.
	Code ResolutionErrorCode

	// Message is a human-readable description.
	Message string

	// ActionID identifies the affected action.
	ActionID string

	// Details contains additional context.
	Details map[string]string
}

// ResolutionErrorCode categorizes resolution errors.
type ResolutionErrorCode string

const (
	// ErrCodeActionNotFound indicates the registry has no config for the id.
	ErrCodeActionNotFound ResolutionErrorCode = "ACTION_NOT_FOUND"

	// ErrCodeModeMismatch indicates the config requires a different mode.
	ErrCodeModeMismatch ResolutionErrorCode = "MODE_MISMATCH"

	// ErrCodeMissingContext indicates required keys stayed missing after
	// placeholder fill.
	ErrCodeMissingContext ResolutionErrorCode = "MISSING_CONTEXT"

	// ErrCodeInvalidCompound indicates a compound action with no steps.
	ErrCodeInvalidCompound ResolutionErrorCode = "INVALID_COMPOUND"
)

// Non-fatal conditions. They only appear in logs.
const (
	logCodeMalformedURL  = "MALFORMED_URL"
	logCodeUIDefinition  = "UI_DEFINITION_LOAD_FAILED"
	logCodeRecordFailed  = "ANALYTICS_RECORD_FAILED"
	logCodePublishFailed = "EFFECT_PUBLISH_FAILED"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.ActionID != "" {
		return fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.ActionID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage is the text shown in the transient error banner.
func (e *ResolutionError) UserMessage() string {
	switch e.Code {
	case ErrCodeActionNotFound:
		return "This action isn't available."
	case ErrCodeModeMismatch:
		return "This action isn't available here."
	case ErrCodeMissingContext:
		return "Some details needed for this action are missing."
	case ErrCodeInvalidCompound:
		return "This multi-step action has no steps."
	default:
		return "Something went wrong."
	}
}

func hasCode(err error, code ResolutionErrorCode) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsNotFound reports whether err is an ACTION_NOT_FOUND error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeActionNotFound)
}

// IsModeMismatch reports whether err is a MODE_MISMATCH error.
func IsModeMismatch(err error) bool {
	return hasCode(err, ErrCodeModeMismatch)
}

// IsMissingContext reports whether err is a MISSING_CONTEXT error.
func IsMissingContext(err error) bool {
	return hasCode(err, ErrCodeMissingContext)
}

// IsInvalidCompound reports whether err is an INVALID_COMPOUND error.
func IsInvalidCompound(err error) bool {
	return hasCode(err, ErrCodeInvalidCompound)
}

// NewNotFoundError creates a ResolutionError for a registry miss.
func NewNotFoundError(actionID string) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeActionNotFound,
		Message:  "no registry entry for action",
		ActionID: actionID,
	}
}

// NewModeMismatchError creates a ResolutionError carrying both modes.
func NewModeMismatchError(actionID, required, current string) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeModeMismatch,
		Message:  fmt.Sprintf("action requires mode %q, current mode is %q", required, current),
		ActionID: actionID,
		Details: map[string]string{
			"required_mode": required,
			"current_mode":  current,
		},
	}
}

// NewMissingContextError creates a ResolutionError listing missing keys.
func NewMissingContextError(actionID string, missing []string) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeMissingContext,
		Message:  "missing required context: " + strings.Join(missing, ", "),
		ActionID: actionID,
		Details: map[string]string{
			"missing_keys": strings.Join(missing, ","),
		},
	}
}

// NewInvalidCompoundError creates a ResolutionError for a compound with no
// steps.
func NewInvalidCompoundError(actionID string) *ResolutionError {
	return &ResolutionError{
		Code:     ErrCodeInvalidCompound,
		Message:  "compound action has no steps",
		ActionID: actionID,
	}
}
