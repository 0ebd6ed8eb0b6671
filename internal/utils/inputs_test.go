package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes short", "y\n", true},
		{"yes long", "yes\n", true},
		{"yes uppercase", "Y\n", true},
		{"no short", "n\n", false},
		{"no long", "no\n", false},
		{"invalid then yes", "maybe\ny\n", true},
		{"invalid then no", "huh\nwhat\nn\n", false},
		{"eof", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := PromptYesNoWithReader("Delete list 'groceries'?", strings.NewReader(tt.input), &out)
			if got != tt.want {
				t.Errorf("PromptYesNoWithReader(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "(y/n)") {
				t.Errorf("expected prompt to be written, got %q", out.String())
			}
		})
	}
}

func TestPromptYesNoRepromptsOnInvalid(t *testing.T) {
	var out bytes.Buffer
	PromptYesNoWithReader("Continue?", strings.NewReader("maybe\ny\n"), &out)

	if strings.Count(out.String(), "(y/n)") != 2 {
		t.Errorf("expected two prompts for invalid input, got %q", out.String())
	}
}

func TestReadStringWithReader(t *testing.T) {
	got, err := ReadStringWithReader(strings.NewReader("  hello world  \n"))
	if err != nil {
		t.Fatalf("ReadStringWithReader() error = %v", err)
	}
	if got != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}

	if _, err := ReadStringWithReader(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}
