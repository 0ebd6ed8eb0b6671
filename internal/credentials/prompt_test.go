package credentials

import (
	"bytes"
	"strings"
	"testing"
)

type mockTerminalReader struct {
	token      string
	readCalled bool
	err        error
}

func (m *mockTerminalReader) ReadPassword() (string, error) {
	m.readCalled = true
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

func TestPromptTokenUsesTerminalReader(t *testing.T) {
	output := &bytes.Buffer{}
	mock := &mockTerminalReader{token: "123456:hidden"}

	token, err := PromptToken(nil, output, mock)
	if err != nil {
		t.Fatalf("PromptToken() error = %v", err)
	}
	if token != "123456:hidden" {
		t.Errorf("token = %q, want %q", token, "123456:hidden")
	}
	if !mock.readCalled {
		t.Error("expected terminal reader to be used for masked input")
	}
	if !strings.Contains(output.String(), "bot token") {
		t.Errorf("expected prompt text, got %q", output.String())
	}
}

func TestPromptTokenFallsBackToReader(t *testing.T) {
	input := bytes.NewBufferString("123456:piped\n")
	output := &bytes.Buffer{}

	token, err := PromptToken(input, output, nil)
	if err != nil {
		t.Fatalf("PromptToken() error = %v", err)
	}
	if token != "123456:piped" {
		t.Errorf("token = %q, want %q", token, "123456:piped")
	}
}

func TestPromptTokenEmptyInput(t *testing.T) {
	input := bytes.NewBufferString("")
	output := &bytes.Buffer{}

	if _, err := PromptToken(input, output, nil); err == nil {
		t.Error("expected error for empty input")
	}
}
