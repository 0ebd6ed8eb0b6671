package credentials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalReader reads a secret from a terminal without echoing it
type TerminalReader interface {
	ReadPassword() (string, error)
}

// stdinTerminalReader reads from the process's controlling terminal
type stdinTerminalReader struct{}

func (r *stdinTerminalReader) ReadPassword() (string, error) {
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// NewTerminalReader returns a TerminalReader for stdin if it is a terminal,
// or nil when input is piped (callers fall back to plain line reads).
func NewTerminalReader() TerminalReader {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return &stdinTerminalReader{}
	}
	return nil
}

// PromptToken prompts for the bot token. When termReader is non-nil the
// input is read without echo; otherwise a line is read from reader, which
// covers piped input and tests.
func PromptToken(reader io.Reader, writer io.Writer, termReader TerminalReader) (string, error) {
	_, _ = fmt.Fprint(writer, "Enter Telegram bot token: ")

	if termReader != nil {
		token, err := termReader.ReadPassword()
		_, _ = fmt.Fprintln(writer)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return token, nil
	}

	scanner := bufio.NewScanner(reader)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("no input received")
}
