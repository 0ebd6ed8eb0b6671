package credentials

import (
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// Keyring abstracts secure credential storage
type Keyring interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// systemKeyring uses the OS keyring (Keychain on macOS, Secret Service on
// Linux, Credential Manager on Windows)
type systemKeyring struct{}

func (s *systemKeyring) Set(service, account, secret string) error {
	return keyring.Set(service, account, secret)
}

func (s *systemKeyring) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err == keyring.ErrNotFound {
		return "", ErrNotFound
	}
	return secret, err
}

func (s *systemKeyring) Delete(service, account string) error {
	err := keyring.Delete(service, account)
	if err == keyring.ErrNotFound {
		return ErrNotFound
	}
	return err
}

// NewSystemKeyring returns a Keyring backed by the OS credential store
func NewSystemKeyring() Keyring {
	return &systemKeyring{}
}

// MockKeyring is an in-memory Keyring for tests
type MockKeyring struct {
	mu      sync.Mutex
	secrets map[string]string
	failSet bool
	failGet bool
}

// NewMockKeyring creates an empty in-memory keyring
func NewMockKeyring() *MockKeyring {
	return &MockKeyring{secrets: make(map[string]string)}
}

func mockKey(service, account string) string {
	return fmt.Sprintf("%s/%s", service, account)
}

func (m *MockKeyring) Set(service, account, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return fmt.Errorf("mock keyring: set failed")
	}
	m.secrets[mockKey(service, account)] = secret
	return nil
}

func (m *MockKeyring) Get(service, account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", fmt.Errorf("mock keyring: get failed")
	}
	secret, ok := m.secrets[mockKey(service, account)]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

func (m *MockKeyring) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := mockKey(service, account)
	if _, ok := m.secrets[key]; !ok {
		return ErrNotFound
	}
	delete(m.secrets, key)
	return nil
}

// SetFailures configures the mock to fail operations, for error-path tests
func (m *MockKeyring) SetFailures(failSet, failGet bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSet = failSet
	m.failGet = failGet
}
