package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/boutique/internal/record"
	"github.com/roach88/boutique/internal/seed"
	"github.com/roach88/boutique/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected operation (duplicate, not found, invalid input, bad login)
	ExitCommandError = 2 // Command error (database unavailable, bad config, etc.)
)

// Error codes reported in CLIError.Code.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeUnavailable  = "E002" // Database could not be opened
	ErrCodeDuplicate    = "E003" // Unique key or id already exists
	ErrCodeNotFound     = "E004" // Record not found
	ErrCodeTransaction  = "E005" // Sale rolled back
	ErrCodeInvalid      = "E006" // Record failed validation
	ErrCodeCredentials  = "E007" // Wrong username or password
	ErrCodeSeedSchema   = "E008" // Seed file does not match schema
	ErrCodeInvalidInput = "E009" // Unparseable flag or argument
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E002", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// errorCode classifies err for CLIError.Code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrConnectionUnavailable):
		return ErrCodeUnavailable
	case errors.Is(err, store.ErrUniqueViolation):
		return ErrCodeDuplicate
	case errors.Is(err, store.ErrTransactionFailed):
		return ErrCodeTransaction
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, record.ErrInvalid):
		return ErrCodeInvalid
	case errors.Is(err, store.ErrInvalidCredentials):
		return ErrCodeCredentials
	case errors.Is(err, seed.ErrSchema):
		return ErrCodeSeedSchema
	case errors.Is(err, errBadInput):
		return ErrCodeInvalidInput
	default:
		return ErrCodeGeneric
	}
}

// fail reports err through f and returns it as an ExitError carrying code.
func fail(f *OutputFormatter, code int, message string, err error) error {
	exitErr := WrapExitError(code, message, err)
	if err := f.Error(errorCode(err), exitErr.Error(), nil); err != nil {
		return err
	}
	return exitErr
}

// notFound reports a missing record. Reads signal absence without an error,
// so one is made here.
func notFound(f *OutputFormatter, kind, key string) error {
	return fail(f, ExitFailure, "lookup failed", fmt.Errorf("%s %q: %w", kind, key, store.ErrNotFound))
}
