package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorWithSuggestion(t *testing.T) {
	base := errors.New("something broke")
	err := WrapWithSuggestion(base, "try turning it off and on again")

	msg := err.Error()
	if !strings.Contains(msg, "something broke") {
		t.Errorf("expected base message in %q", msg)
	}
	if !strings.Contains(msg, "Suggestion: try turning it off and on again") {
		t.Errorf("expected suggestion in %q", msg)
	}

	if !errors.Is(err, base) {
		t.Error("expected wrapped error to match the base via errors.Is")
	}

	var es *ErrorWithSuggestion
	if !errors.As(err, &es) {
		t.Fatal("expected error to be an ErrorWithSuggestion")
	}
	if es.GetSuggestion() != "try turning it off and on again" {
		t.Errorf("GetSuggestion() = %q", es.GetSuggestion())
	}
}

func TestErrBackendNotConfigured(t *testing.T) {
	err := ErrBackendNotConfigured("redis")
	if !strings.Contains(err.Error(), "unknown storage backend: redis") {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "'file' or 'sqlite'") {
		t.Errorf("expected suggestion naming valid backends, got %q", err.Error())
	}
}

func TestErrTokenNotFound(t *testing.T) {
	err := ErrTokenNotFound()
	if !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Errorf("expected env var in suggestion, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "listbot credentials set") {
		t.Errorf("expected credentials command in suggestion, got %q", err.Error())
	}
}
