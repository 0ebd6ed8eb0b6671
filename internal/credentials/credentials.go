// Package credentials manages the Telegram bot token via the OS keyring,
// with an environment variable fallback for headless deployments.
package credentials

import (
	"errors"
	"os"
	"strings"
)

const (
	serviceName = "listbot"
	tokenKey    = "telegram-bot-token"

	// EnvToken is checked when no token is stored in the keyring
	EnvToken = "TELEGRAM_BOT_TOKEN"
)

// ErrNotFound indicates no token is stored in the keyring or environment
var ErrNotFound = errors.New("token not found")

// Source indicates where a token was resolved from
type Source int

const (
	SourceNone Source = iota
	SourceKeyring
	SourceEnv
)

func (s Source) String() string {
	switch s {
	case SourceKeyring:
		return "keyring"
	case SourceEnv:
		return "environment"
	default:
		return "none"
	}
}

// Manager resolves and stores the bot token
type Manager struct {
	keyring Keyring
}

// Option configures a Manager
type Option func(*Manager)

// WithKeyring overrides the keyring implementation, used in tests
func WithKeyring(k Keyring) Option {
	return func(m *Manager) {
		m.keyring = k
	}
}

// NewManager creates a credential manager backed by the system keyring
func NewManager(opts ...Option) *Manager {
	m := &Manager{keyring: NewSystemKeyring()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetToken resolves the bot token, preferring the keyring over the
// TELEGRAM_BOT_TOKEN environment variable.
func (m *Manager) GetToken() (string, Source, error) {
	token, err := m.keyring.Get(serviceName, tokenKey)
	if err == nil && token != "" {
		return token, SourceKeyring, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		// Keyring unavailable (e.g. no D-Bus session); fall through to env
		if envToken := strings.TrimSpace(os.Getenv(EnvToken)); envToken != "" {
			return envToken, SourceEnv, nil
		}
		return "", SourceNone, err
	}

	if envToken := strings.TrimSpace(os.Getenv(EnvToken)); envToken != "" {
		return envToken, SourceEnv, nil
	}

	return "", SourceNone, ErrNotFound
}

// SetToken stores the bot token in the keyring
func (m *Manager) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}
	return m.keyring.Set(serviceName, tokenKey, token)
}

// DeleteToken removes the stored token from the keyring
func (m *Manager) DeleteToken() error {
	return m.keyring.Delete(serviceName, tokenKey)
}

// HasToken reports whether a token is resolvable from any source
func (m *Manager) HasToken() bool {
	_, _, err := m.GetToken()
	return err == nil
}
