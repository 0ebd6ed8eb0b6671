package utils

import (
	"errors"
	"fmt"
)

// ErrorWithSuggestion wraps an error with a user-friendly suggestion.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface.
func (e *ErrorWithSuggestion) Error() string {
	return fmt.Sprintf("%s\n\nSuggestion: %s", e.Err.Error(), e.Suggestion)
}

// GetSuggestion returns the suggestion text.
func (e *ErrorWithSuggestion) GetSuggestion() string {
	return e.Suggestion
}

// Unwrap returns the underlying error for error chain support.
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// WrapWithSuggestion wraps an existing error with a suggestion.
func WrapWithSuggestion(err error, suggestion string) error {
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// ErrBackendNotConfigured returns an error when a storage backend is unknown.
func ErrBackendNotConfigured(name string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("unknown storage backend: %s", name),
		Suggestion: "Set storage.backend to 'file' or 'sqlite' in your config file",
	}
}

// ErrTokenNotFound returns an error when the bot token is missing.
func ErrTokenNotFound() error {
	return &ErrorWithSuggestion{
		Err:        errors.New("bot token not found"),
		Suggestion: "Run 'listbot credentials set' or export TELEGRAM_BOT_TOKEN",
	}
}

// ErrConfigInvalid returns an error for an invalid configuration value.
func ErrConfigInvalid(err error) error {
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: "Fix the value in your config file (default: ~/.config/listbot/config.yaml)",
	}
}
