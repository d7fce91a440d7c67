package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNoHosts          = errors.New("no catalog hosts available")
	ErrTrackNotFound    = errors.New("track not found")
	ErrArtistNotFound   = errors.New("artist not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrNetworkError     = errors.New("network error")
	ErrTimeout          = errors.New("request timeout")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrNoAudioDevice    = errors.New("no audio output device")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// StationError wraps an error with a user-friendly suggestion.
type StationError struct {
	Err        error
	Suggestion string
}

func (e *StationError) Error() string {
	return e.Err.Error()
}

func (e *StationError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &StationError{Err: err, Suggestion: suggestion}
}

// New returns an error with the given text.
func New(text string) error { return errors.New(text) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Join wraps the non-nil errors in errs.
func Join(errs ...error) error { return errors.Join(errs...) }

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var stationErr *StationError
	if errors.As(err, &stationErr) && stationErr.Suggestion != "" {
		return stationErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNoHosts) || strings.Contains(errStr, "no catalog hosts") {
		return "The catalog host list is empty. Check catalog.discovery_url or try again later"
	}

	if errors.Is(err, ErrTrackNotFound) || errors.Is(err, ErrArtistNotFound) {
		return "Run 'station search <query>' to find a valid id"
	}

	if errors.Is(err, ErrNoAudioDevice) || strings.Contains(errStr, "audio device") ||
		strings.Contains(errStr, "alsa") {
		return "No sound output is available. Check that an audio device is connected"
	}

	if errors.Is(err, ErrStoreUnavailable) || strings.Contains(errStr, "database is locked") {
		return "Another station process may hold the library. Close it or set store.path"
	}

	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrInvalidConfig) {
		return "Run 'station config show' to inspect the configuration"
	}

	if errors.Is(err, ErrConfigNotFound) {
		return "Run 'station config init' to create a configuration file"
	}

	if strings.Contains(errStr, "status 5") || strings.Contains(errStr, "server error") {
		return "The catalog is having issues. Try again in a moment"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	if suggestion := GetSuggestion(err); suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins the collected errors, or returns nil.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	switch len(p.Errors) {
	case 0:
		return ""
	case 1:
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors occurred:\n", len(p.Errors))
	for i, err := range p.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}
