// Package file implements a store.Storage backend that persists the
// collection to a YAML file, with corruption quarantine on load and a
// single-generation backup before each save.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"listbot/internal/utils"
	"listbot/store"
)

// Config holds file backend configuration.
type Config struct {
	Path          string // Path to the data file
	BackupEnabled bool   // Copy the current file to <path>.backup before each save
}

// Storage implements store.Storage for YAML file storage.
type Storage struct {
	cfg    Config
	path   string // Resolved absolute path
	logger *utils.Logger
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets a custom logger instance.
func WithLogger(l *utils.Logger) Option {
	return func(s *Storage) {
		s.logger = l
	}
}

// New creates a new file backend.
func New(cfg Config, opts ...Option) (*Storage, error) {
	path := cfg.Path
	if path == "" {
		path = "lists.yaml"
	}

	// Resolve relative paths
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	s := &Storage{
		cfg:    cfg,
		path:   path,
		logger: utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the resolved data file path.
func (s *Storage) Path() string {
	return s.path
}

// Close closes the backend.
func (s *Storage) Close() error {
	return nil
}

// Load reads the collection from the data file. It always succeeds with some
// collection: a missing file means first run, unparseable content is
// quarantined to a timestamped sidecar, and content of the wrong shape is
// discarded with a warning.
func (s *Storage) Load() (*store.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("data file %s not found, starting fresh", s.path)
			return store.NewCollection(), nil
		}
		s.logger.Error("error loading data: %v", err)
		s.backupCorrupted()
		return store.NewCollection(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.logger.Error("error parsing data file %s: %v", s.path, err)
		s.backupCorrupted()
		return store.NewCollection(), nil
	}

	col, err := store.CollectionFromNode(&doc)
	if err != nil {
		s.logger.Warn("invalid data format in %s: %v", s.path, err)
		return store.NewCollection(), nil
	}
	return col, nil
}

// Save writes the whole collection to the data file, replacing prior
// content. The write goes to a temporary file first and is renamed over the
// target, so a crash mid-write never leaves a partial file behind.
func (s *Storage) Save(c *store.Collection) error {
	if s.cfg.BackupEnabled {
		if _, err := os.Stat(s.path); err == nil {
			if err := copyFile(s.path, s.path+".backup"); err != nil {
				// Best-effort single-generation backup
				s.logger.Warn("failed to back up data file: %v", err)
			}
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode lists: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(s.path)+".tmp-"+uuid.New().String())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	s.logger.Debug("data saved to %s", s.path)
	return nil
}

// backupCorrupted copies the current data file to a timestamped sidecar so
// the bad content survives for inspection. Failures are logged, never
// escalated: load must still succeed with an empty collection.
func (s *Storage) backupCorrupted() {
	if _, err := os.Stat(s.path); err != nil {
		return
	}
	backupName := fmt.Sprintf("%s.backup_%s", s.path, time.Now().UTC().Format("20060102_150405"))
	if err := copyFile(s.path, backupName); err != nil {
		s.logger.Error("failed to back up corrupted file: %v", err)
		return
	}
	s.logger.Info("corrupted file backed up to %s", backupName)
}

// copyFile copies src to dst, replacing dst if it exists.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// Verify interface compliance at compile time
var _ store.Storage = (*Storage)(nil)
