// Package errors provides structured error types for finch.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code represents a unique error code.
type Code string

// Error codes for finch.
const (
	// Matter errors
	CodeMatterNotFound Code = "MATTER_NOT_FOUND"
	CodeMatterExists   Code = "MATTER_EXISTS"

	// Task errors
	CodeTaskNotFound Code = "TASK_NOT_FOUND"
	CodeTaskExists   Code = "TASK_EXISTS"

	// Dependency errors
	CodeDependencyTargetNotFound Code = "DEPENDENCY_TARGET_NOT_FOUND"
	CodeSelfDependency           Code = "SELF_DEPENDENCY"
	CodeDependencyCycle          Code = "DEPENDENCY_CYCLE"
	CodeInvalidDependency        Code = "INVALID_DEPENDENCY"

	// Client errors
	CodeClientNotFound Code = "CLIENT_NOT_FOUND"
	CodeClientExists   Code = "CLIENT_EXISTS"

	// Input and config errors
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeConfigInvalid Code = "CONFIG_INVALID"
	CodeConfigMissing Code = "CONFIG_MISSING"

	// Storage errors
	CodeStorageFailed Code = "STORAGE_FAILED"

	CodeUnknown Code = "UNKNOWN"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryConflict
	CategoryInternal
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryNotFound:
		return "not_found"
	case CategoryBadRequest:
		return "bad_request"
	case CategoryConflict:
		return "conflict"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

var codeCategories = map[Code]Category{
	CodeMatterNotFound:           CategoryNotFound,
	CodeMatterExists:             CategoryConflict,
	CodeTaskNotFound:             CategoryNotFound,
	CodeTaskExists:               CategoryConflict,
	CodeDependencyTargetNotFound: CategoryBadRequest,
	CodeSelfDependency:           CategoryBadRequest,
	CodeDependencyCycle:          CategoryBadRequest,
	CodeInvalidDependency:        CategoryBadRequest,
	CodeClientNotFound:           CategoryNotFound,
	CodeClientExists:             CategoryConflict,
	CodeInvalidInput:             CategoryBadRequest,
	CodeConfigInvalid:            CategoryBadRequest,
	CodeConfigMissing:            CategoryBadRequest,
	CodeStorageFailed:            CategoryInternal,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryConflict:
		return 409
	default:
		return 500
	}
}

// FinchError is the structured error type for finch.
// Callers branch on Code; What/Why/Fix are for humans.
type FinchError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Why   string `json:"why,omitempty"`
	Fix   string `json:"fix,omitempty"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *FinchError) Error() string {
	var b strings.Builder
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString(": ")
		b.WriteString(e.Why)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *FinchError) Unwrap() error {
	return e.Cause
}

// UserMessage returns a user-friendly message for CLI output.
func (e *FinchError) UserMessage() string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(e.What)
	if e.Why != "" {
		b.WriteString("\n\nWhy: ")
		b.WriteString(e.Why)
	}
	if e.Fix != "" {
		b.WriteString("\n\nFix: ")
		b.WriteString(e.Fix)
	}
	return b.String()
}

// Category returns the error category for HTTP status mapping.
func (e *FinchError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *FinchError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// MarshalJSON implements json.Marshaler.
func (e *FinchError) MarshalJSON() ([]byte, error) {
	type alias FinchError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// Is reports whether target is a FinchError with the same code.
func (e *FinchError) Is(target error) bool {
	t, ok := target.(*FinchError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *FinchError) WithCause(err error) *FinchError {
	return &FinchError{
		Code:  e.Code,
		What:  e.What,
		Why:   e.Why,
		Fix:   e.Fix,
		Cause: err,
	}
}

// --- Error constructors ---

// ErrMatterNotFound returns an error when a matter doesn't exist.
func ErrMatterNotFound(id string) *FinchError {
	return &FinchError{
		Code: CodeMatterNotFound,
		What: fmt.Sprintf("matter %s not found", id),
		Fix:  "Run 'finch matter list' to see existing matters",
	}
}

// ErrMatterExists returns an error when a matter id is already taken.
func ErrMatterExists(id string) *FinchError {
	return &FinchError{
		Code: CodeMatterExists,
		What: fmt.Sprintf("matter with ID '%s' already exists", id),
		Fix:  "Choose a different matter ID",
	}
}

// ErrTaskNotFound returns an error when a task doesn't exist in a matter.
func ErrTaskNotFound(matterID, taskID string) *FinchError {
	return &FinchError{
		Code: CodeTaskNotFound,
		What: fmt.Sprintf("task %s not found", taskID),
		Why:  fmt.Sprintf("matter %s has no task with this ID", matterID),
		Fix:  fmt.Sprintf("Run 'finch matter show %s' to list its tasks", matterID),
	}
}

// ErrTaskExists returns an error when a task id collides within a matter.
func ErrTaskExists(matterID, taskID string) *FinchError {
	return &FinchError{
		Code: CodeTaskExists,
		What: fmt.Sprintf("task %s already exists", taskID),
		Why:  fmt.Sprintf("task IDs must be unique within matter %s", matterID),
	}
}

// ErrDependencyTargetNotFound returns an error for a dependency on a task that doesn't exist.
func ErrDependencyTargetNotFound(taskID, targetID string) *FinchError {
	return &FinchError{
		Code: CodeDependencyTargetNotFound,
		What: fmt.Sprintf("target task \"%s\" not found", targetID),
		Why:  fmt.Sprintf("a dependency of %s references a task that is not in the matter", taskID),
	}
}

// ErrSelfDependency returns an error when a task would depend on itself.
func ErrSelfDependency(taskID string) *FinchError {
	return &FinchError{
		Code: CodeSelfDependency,
		What: fmt.Sprintf("task %s cannot depend on itself", taskID),
	}
}

// ErrDependencyCycle returns an error when a change would close a dependency cycle.
func ErrDependencyCycle(taskID string, cycle []string) *FinchError {
	return &FinchError{
		Code: CodeDependencyCycle,
		What: fmt.Sprintf("dependency change on %s would create a cycle", taskID),
		Why:  strings.Join(cycle, " -> "),
		Fix:  "Remove one of the dependencies in the cycle",
	}
}

// ErrInvalidDependency returns an error for a malformed dependency descriptor.
func ErrInvalidDependency(taskID, reason string) *FinchError {
	return &FinchError{
		Code: CodeInvalidDependency,
		What: fmt.Sprintf("invalid dependency on task %s", taskID),
		Why:  reason,
	}
}

// ErrClientNotFound returns an error when a client doesn't exist.
func ErrClientNotFound(id string) *FinchError {
	return &FinchError{
		Code: CodeClientNotFound,
		What: fmt.Sprintf("client %s not found", id),
		Fix:  "Run 'finch client list' to see existing clients",
	}
}

// ErrClientExists returns an error when a client with the same derived id exists.
func ErrClientExists(id string) *FinchError {
	return &FinchError{
		Code: CodeClientExists,
		What: "a client with this name already exists",
		Why:  fmt.Sprintf("client id %s is taken", id),
	}
}

// ErrInvalidInput returns an error for a missing or malformed request field.
func ErrInvalidInput(field, reason string) *FinchError {
	return &FinchError{
		Code: CodeInvalidInput,
		What: fmt.Sprintf("invalid %s", field),
		Why:  reason,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(field, reason string) *FinchError {
	return &FinchError{
		Code: CodeConfigInvalid,
		What: fmt.Sprintf("invalid configuration: %s", field),
		Why:  reason,
		Fix:  "Check .finch/config.yaml and FINCH_* environment variables",
	}
}

// ErrConfigMissing returns an error for missing configuration.
func ErrConfigMissing(field string) *FinchError {
	return &FinchError{
		Code: CodeConfigMissing,
		What: fmt.Sprintf("missing required configuration: %s", field),
		Fix:  fmt.Sprintf("Add '%s' to .finch/config.yaml", field),
	}
}

// ErrStorage wraps a persistence failure.
func ErrStorage(op string, cause error) *FinchError {
	return &FinchError{
		Code:  CodeStorageFailed,
		What:  fmt.Sprintf("storage %s failed", op),
		Cause: cause,
	}
}

// AsFinchError attempts to convert an error to a FinchError.
// Returns nil if the error is not a FinchError.
func AsFinchError(err error) *FinchError {
	var fe *FinchError
	if As(err, &fe) {
		return fe
	}
	return nil
}

// CodeOf returns the code of the first FinchError in err's chain, or
// CodeUnknown.
func CodeOf(err error) Code {
	if fe := AsFinchError(err); fe != nil {
		return fe.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// As is a convenience wrapper for errors.As.
func As(err error, target any) bool {
	return asError(err, target)
}

// asError implements errors.As behavior.
func asError(err error, target any) bool {
	if err == nil {
		return false
	}
	if fe, ok := err.(*FinchError); ok {
		if t, ok := target.(**FinchError); ok {
			*t = fe
			return true
		}
	}
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return asError(unwrapper.Unwrap(), target)
	}
	return false
}

// Wrap wraps a generic error into a FinchError with unknown code.
func Wrap(err error, what string) *FinchError {
	return &FinchError{
		Code:  CodeUnknown,
		What:  what,
		Cause: err,
	}
}
