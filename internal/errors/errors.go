// Package errors provides centralized error definitions and error handling utilities
// for eve-log-alert. It defines sentinel errors, domain-specific error types,
// and classification helpers used to decide whether a failure aborts startup
// or is absorbed by the event loop.
//
// # Error Types
//
// Domain-specific errors represent failures from specific subsystems:
//   - ConfigError: invalid startup inputs (characters, watch names, profiles)
//   - LogFileError: log discovery, open and read failures
//   - TopologyError: failures of the jump graph collaborator
//
// # Usage
//
//	err := errors.NewLogFileError("no game log for character", errors.ErrLogNotFound).
//		WithStream("game").WithCharacter("Some Pilot")
//
//	if errors.Is(err, errors.ErrLogNotFound) { ... }
//
//	var logErr *errors.LogFileError
//	if errors.As(err, &logErr) { ... }
//
// # Error Classification
//
// Fatal errors (SeverityCritical) abort the process before the event loop
// starts. Everything else is logged and the loop keeps running.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors the loop recovers from.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that abort the process.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Configuration sentinel errors
var (
	// ErrNoWatchNames indicates that no watch name survived resolution.
	ErrNoWatchNames = New("no watch names given")
	// ErrNoCharacters indicates that no character was given to monitor.
	ErrNoCharacters = New("no characters given")
	// ErrInvalidWatchSpec indicates a malformed NAME+N watch specification.
	ErrInvalidWatchSpec = New("invalid watch specification")
	// ErrUnknownProfile indicates that a damage window profile name is not defined.
	ErrUnknownProfile = New("unknown damage profile")
)

// Log file sentinel errors
var (
	// ErrLogNotFound indicates that no log file matched the discovery predicate.
	ErrLogNotFound = New("no matching log file found")
	// ErrRotated indicates that a tailed file was rotated away or truncated.
	ErrRotated = New("log file rotated")
	// ErrTailerClosed indicates a read on a closed tailer.
	ErrTailerClosed = New("tailer is closed")
	// ErrUnknownEncoding indicates an unsupported decode mode.
	ErrUnknownEncoding = New("unknown log encoding")
)

// Topology sentinel errors
var (
	// ErrTopologyUnavailable indicates a distance lookup without a topology store.
	ErrTopologyUnavailable = New("topology lookup unavailable")
	// ErrSystemNotFound indicates the store has no system by that name.
	ErrSystemNotFound = New("system not found")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// AlertError is the base interface for all eve-log-alert errors.
type AlertError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if a later loop pass may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to print
	// to the operator as a startup diagnostic.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// ConfigError represents invalid startup configuration. Config errors are
// critical: the process exits before entering the event loop.
//
// Example:
//
//	err := errors.NewConfigError("nothing to watch", errors.ErrNoWatchNames).WithField("watch")
//	fmt.Println(err) // "config error [field=watch]: nothing to watch: no watch names given"
type ConfigError struct {
	baseError
	Field string
	Value any
}

// NewConfigError creates a new ConfigError.
func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds the offending configuration field.
func (e *ConfigError) WithField(field string) *ConfigError {
	e.Field = field
	return e
}

// WithValue adds the offending value.
func (e *ConfigError) WithValue(value any) *ConfigError {
	e.Value = value
	return e
}

// Error returns the formatted error message.
func (e *ConfigError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("config error", parts)
}

// Is checks if this error matches the target.
func (e *ConfigError) Is(target error) bool {
	if _, ok := target.(*ConfigError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// LogFileError represents failures locating, opening or reading a log file.
//
// Example:
//
//	err := errors.NewLogFileError("open failed", cause).WithPath("/x/y.txt").WithStream("intel")
type LogFileError struct {
	baseError
	Path      string
	Stream    string
	Character string
}

// NewLogFileError creates a new LogFileError. Log file errors are
// retryable by default; startup code raises them to critical.
func NewLogFileError(message string, cause error) *LogFileError {
	return &LogFileError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithPath adds the file path to the error context.
func (e *LogFileError) WithPath(path string) *LogFileError {
	e.Path = path
	return e
}

// WithStream adds the stream name ("intel", "game") to the error context.
func (e *LogFileError) WithStream(stream string) *LogFileError {
	e.Stream = stream
	return e
}

// WithCharacter adds the listener character to the error context.
func (e *LogFileError) WithCharacter(name string) *LogFileError {
	e.Character = name
	return e
}

// WithSeverity sets the error severity.
func (e *LogFileError) WithSeverity(s Severity) *LogFileError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *LogFileError) WithRetryable(r bool) *LogFileError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *LogFileError) Error() string {
	var parts []string
	if e.Stream != "" {
		parts = append(parts, fmt.Sprintf("stream=%s", e.Stream))
	}
	if e.Character != "" {
		parts = append(parts, fmt.Sprintf("character=%s", e.Character))
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	return e.format("log file error", parts)
}

// Is checks if this error matches the target.
func (e *LogFileError) Is(target error) bool {
	if _, ok := target.(*LogFileError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TopologyError represents failures of the jump graph store.
type TopologyError struct {
	baseError
	System   string
	Database string
}

// NewTopologyError creates a new TopologyError.
func NewTopologyError(message string, cause error) *TopologyError {
	return &TopologyError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithSystem adds the looked-up system name.
func (e *TopologyError) WithSystem(name string) *TopologyError {
	e.System = name
	return e
}

// WithDatabase adds the store path.
func (e *TopologyError) WithDatabase(path string) *TopologyError {
	e.Database = path
	return e
}

// Error returns the formatted error message.
func (e *TopologyError) Error() string {
	var parts []string
	if e.System != "" {
		parts = append(parts, fmt.Sprintf("system=%s", e.System))
	}
	if e.Database != "" {
		parts = append(parts, fmt.Sprintf("db=%s", e.Database))
	}
	return e.format("topology error", parts)
}

// Is checks if this error matches the target.
func (e *TopologyError) Is(target error) bool {
	if _, ok := target.(*TopologyError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a condition that a later
// loop pass may resolve, such as a chat log that has not been recreated yet.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var alertErr AlertError
	if As(err, &alertErr) {
		return alertErr.IsRetryable()
	}

	return Is(err, ErrRotated) || Is(err, ErrLogNotFound)
}

// IsUserFacing returns true if the error message is safe to display to the operator.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var alertErr AlertError
	if As(err, &alertErr) {
		return alertErr.IsUserFacing()
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement AlertError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var alertErr AlertError
	if As(err, &alertErr) {
		return alertErr.Severity()
	}

	return SeverityError
}

// IsFatal reports whether err must abort the process.
func IsFatal(err error) bool {
	return err != nil && GetSeverity(err) >= SeverityCritical
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
