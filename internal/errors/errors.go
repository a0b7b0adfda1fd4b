package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Command protocol errors (CMD-001 to CMD-099)
	ErrCodeInvalidCommand ErrorCode = "CMD-001"
	ErrCodeNotWired       ErrorCode = "CMD-002"

	// Lookup errors (LOOKUP-001 to LOOKUP-099)
	ErrCodeUnknownTask     ErrorCode = "LOOKUP-001"
	ErrCodeUnknownCond     ErrorCode = "LOOKUP-002"
	ErrCodeUnknownInst     ErrorCode = "LOOKUP-003"
	ErrCodeUnknownImpl     ErrorCode = "LOOKUP-004"
	ErrCodeUnknownResource ErrorCode = "LOOKUP-005"

	// Problem file errors (PROBLEM-001 to PROBLEM-099)
	ErrCodeProblemNotFound  ErrorCode = "PROBLEM-001"
	ErrCodeProblemInvalid   ErrorCode = "PROBLEM-002"
	ErrCodeProblemUnmarshal ErrorCode = "PROBLEM-003"

	// Plan errors (PLAN-001 to PLAN-099)
	ErrCodePlanNotFound  ErrorCode = "PLAN-001"
	ErrCodePlanInvalid   ErrorCode = "PLAN-002"
	ErrCodePlanCyclicDep ErrorCode = "PLAN-003"
	ErrCodeNoPlan        ErrorCode = "PLAN-005"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigLoad    ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
	ErrCodeFileUnmarshal   ErrorCode = "IO-005"
	ErrCodeFileMarshal     ErrorCode = "IO-006"

	// Network errors (NET-001 to NET-099)
	ErrCodeRequestFailed ErrorCode = "NET-001"
	ErrCodeBadStatus     ErrorCode = "NET-002"
)

// PlannerError represents an enhanced error with code, suggestions, and documentation
type PlannerError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PlannerError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	// Add documentation link
	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PlannerError) Unwrap() error {
	return e.Cause
}

// Is matches any PlannerError carrying the same code, so sentinel values
// such as ErrInvalidCommand work with errors.Is.
func (e *PlannerError) Is(target error) bool {
	t, ok := target.(*PlannerError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ErrInvalidCommand is the sentinel for command protocol violations.
var ErrInvalidCommand = New(ErrCodeInvalidCommand, "invalid command")

// New creates a new PlannerError
func New(code ErrorCode, message string) *PlannerError {
	return &PlannerError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PlannerError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PlannerError {
	return &PlannerError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PlannerError) WithSuggestion(suggestion string) *PlannerError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *PlannerError) WithSuggestions(suggestions ...string) *PlannerError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PlannerError) WithDocs(url string) *PlannerError {
	e.DocsURL = url
	return e
}

// HasCode reports whether err or anything it wraps is a PlannerError with code.
func HasCode(err error, code ErrorCode) bool {
	var pe *PlannerError
	for err != nil {
		if !stderrors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.Cause
	}
	return false
}

// CodeOf returns the code of the outermost PlannerError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var pe *PlannerError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// Common error constructors for frequently used errors

// NewInvalidCommandError reports a command id that is not on top of the stack
func NewInvalidCommandError(id int, top int) *PlannerError {
	return New(ErrCodeInvalidCommand, fmt.Sprintf("command %d is not the current command (top is %d)", id, top)).
		WithSuggestion("Undo or retry commands in strict LIFO order").
		WithSuggestion("Use the id returned by CurCommandID()")
}

// NewCommandNotFoundError reports a command id that is nowhere on the stack
func NewCommandNotFoundError(id int) *PlannerError {
	return New(ErrCodeInvalidCommand, fmt.Sprintf("command %d is not on the command stack", id)).
		WithSuggestion("The command may already have been undone")
}

// NewNotWiredError reports a planner used before SetObjects
func NewNotWiredError() *PlannerError {
	return New(ErrCodeNotWired, "planner objects have not been set").
		WithSuggestion("Call SetObjects before planning")
}

// NewUnknownImplError creates an unknown implementation error
func NewUnknownImplError(impl string) *PlannerError {
	return New(ErrCodeUnknownImpl, fmt.Sprintf("unknown task implementation: %s", impl)).
		WithSuggestion("Check the implementations section of the problem file")
}

// NewUnknownResourceError creates an unknown resource error
func NewUnknownResourceError(res string) *PlannerError {
	return New(ErrCodeUnknownResource, fmt.Sprintf("unknown resource: %s", res)).
		WithSuggestion("Declare the resource with a capacity in the problem file")
}

// NewProblemNotFoundError creates a problem file not found error
func NewProblemNotFoundError(path string) *PlannerError {
	return New(ErrCodeProblemNotFound, fmt.Sprintf("problem file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Pass the problem file with --problem")
}

// NewProblemInvalidError creates a problem validation error
func NewProblemInvalidError(details string) *PlannerError {
	return New(ErrCodeProblemInvalid, fmt.Sprintf("invalid problem: %s", details)).
		WithSuggestion("Every task, implementation, resource and goal must reference declared ids")
}

// NewPlanCycleError creates a cyclic ordering error
func NewPlanCycleError(path string) *PlannerError {
	return New(ErrCodePlanCyclicDep, fmt.Sprintf("circular ordering detected: %s", path)).
		WithSuggestion("Orderings of a plan must form a DAG")
}

// NewPlanMismatchError reports a saved plan that does not fit a problem
func NewPlanMismatchError(details string) *PlannerError {
	return New(ErrCodePlanInvalid, fmt.Sprintf("plan does not match problem: %s", details)).
		WithSuggestion("Validate a plan against the problem file it was made from")
}

// NewNoPlanError reports that search exhausted every alternative
func NewNoPlanError(goal string) *PlannerError {
	return New(ErrCodeNoPlan, fmt.Sprintf("no plan found for goal: %s", goal)).
		WithSuggestion("Raise planner.max_decisions or planner.max_instances").
		WithSuggestion("Lower planner.threshold or relax the goal deadline")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *PlannerError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *PlannerError {
	return Wrap(ErrCodeFileUnmarshal, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}

// NewBadStatusError reports a non-2xx response from url.
func NewBadStatusError(url string, status int) *PlannerError {
	return New(ErrCodeBadStatus, fmt.Sprintf("%s returned status %d", url, status)).
		WithSuggestion("Check that the endpoint accepts POST requests with a JSON body")
}
