package script

import (
	"fmt"
	"time"
)

// ErrorType categorizes different types of script errors
type ErrorType string

const (
	ErrorTypeManifest    ErrorType = "manifest"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeCompilation ErrorType = "compilation"
	ErrorTypeExecution   ErrorType = "execution"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeResult      ErrorType = "result"
)

// ScriptError represents a script failure with the action it belongs to.
type ScriptError struct {
	Type      ErrorType
	ActionID  string
	Script    string
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *ScriptError) Error() string {
	prefix := fmt.Sprintf("script %s", e.Script)
	if e.ActionID != "" {
		prefix = fmt.Sprintf("action %s (%s)", e.ActionID, e.Script)
	}
	if e.Cause != nil {
		return prefix + ": " + e.Message + ": " + e.Cause.Error()
	}
	return prefix + ": " + e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// NewScriptError creates a new ScriptError with the given parameters
func NewScriptError(errorType ErrorType, actionID, script, message string, cause error) *ScriptError {
	return &ScriptError{
		Type:      errorType,
		ActionID:  actionID,
		Script:    script,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
