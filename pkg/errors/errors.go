package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Catalog errors (1xxx)
	ErrCodeCatalogUnavailable   ErrorCode = "WBE1001"
	ErrCodeCatalogAccessDenied  ErrorCode = "WBE1002"
	ErrCodeCatalogQueryFailed   ErrorCode = "WBE1003"
	ErrCodeAuthenticationFailed ErrorCode = "WBE1004"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound ErrorCode = "WBE2001"
	ErrCodeConfigInvalid  ErrorCode = "WBE2002"
	ErrCodeConfigMissing  ErrorCode = "WBE2003"

	// Dependency analysis errors (3xxx)
	ErrCodeCyclicDependency   ErrorCode = "WBE3001"
	ErrCodeSequenceIncomplete ErrorCode = "WBE3002"
	ErrCodeGraphEmpty         ErrorCode = "WBE3003"

	// Pipeline errors (4xxx)
	ErrCodeExtractFailed  ErrorCode = "WBE4001"
	ErrCodePackageFailed  ErrorCode = "WBE4002"
	ErrCodePublishFailed  ErrorCode = "WBE4003"
	ErrCodePackageMissing ErrorCode = "WBE4004"
	ErrCodeToolNotFound   ErrorCode = "WBE4005"
	ErrCodeRefreshTimeout ErrorCode = "WBE4006"

	// File system errors (5xxx)
	ErrCodeFileNotFound   ErrorCode = "WBE5001"
	ErrCodeFilePermission ErrorCode = "WBE5002"
	ErrCodeFileOperation  ErrorCode = "WBE5003"

	// Validation errors (6xxx)
	ErrCodeValidationFailed ErrorCode = "WBE6001"
	ErrCodeInvalidInput     ErrorCode = "WBE6002"

	// Security errors (7xxx)
	ErrCodeCredentialNotFound ErrorCode = "WBE7001"
	ErrCodeEncryptionFailed   ErrorCode = "WBE7002"

	// System errors (9xxx)
	ErrCodeInternal           ErrorCode = "WBE9001"
	ErrCodeTimeout            ErrorCode = "WBE9002"
	ErrCodeResourceExhausted  ErrorCode = "WBE9003"
	ErrCodeServiceUnavailable ErrorCode = "WBE9004"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// CatalogError creates a reference-catalog access error
func CatalogError(message string, warehouse string, cause error) *AppError {
	return Wrap(cause, ErrCodeCatalogQueryFailed, message).
		WithContext("warehouse", warehouse).
		WithSuggestions(
			"Verify the account has access to the warehouse",
			"Check that the catalog endpoint is reachable",
			"Re-run the analysis once access is restored",
		).AsRecoverable()
}

// CyclicDependencyError creates a fatal cycle-detection error
func CyclicDependencyError(cycles []string) *AppError {
	return New(ErrCodeCyclicDependency,
		fmt.Sprintf("Dependency graph contains %d cycle(s)", len(cycles))).
		WithContext("cycles", cycles).
		WithSeverity(SeverityCritical).
		WithSuggestions(
			"Break the circular reference before migrating",
			"Review the listed cycle paths to find the offending objects",
		)
}

// PipelineError creates an extraction/packaging/publishing error
func PipelineError(code ErrorCode, message string, warehouse string, cause error) *AppError {
	return Wrap(cause, code, message).
		WithContext("warehouse", warehouse).
		WithSuggestions(
			"Inspect the tool output above for the underlying failure",
			"Re-run with --force to rebuild the package from scratch",
		)
}

// ConfigError creates a configuration-related error
func ConfigError(message string, field string) *AppError {
	return New(ErrCodeConfigInvalid, message).
		WithContext("field", field).
		WithSuggestions(
			fmt.Sprintf("Check the '%s' configuration value", field),
			"Run 'warebridge setup' to reconfigure",
		)
}

// ValidationError creates a validation error
func ValidationError(field string, value interface{}, reason string) *AppError {
	return New(ErrCodeValidationFailed, fmt.Sprintf("Validation failed for %s: %s", field, reason)).
		WithContext("field", field).
		WithContext("value", value).
		WithSeverity(SeverityWarning).
		AsRecoverable()
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
