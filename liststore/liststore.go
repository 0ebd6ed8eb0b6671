// Package liststore implements the list-storage-and-mutation engine: it owns
// the in-memory collection of named lists, validates every operation,
// enforces limits, and persists state through a store.Storage after each
// mutation.
package liststore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"listbot/internal/utils"
	"listbot/store"
)

// Config holds the resource limits enforced by the store. Supplied once at
// construction, never mutated afterward.
type Config struct {
	MaxListNameLength int
	MaxItemLength     int
	MaxLists          int
	MaxItemsPerList   int
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxListNameLength: 50,
		MaxItemLength:     200,
		MaxLists:          50,
		MaxItemsPerList:   100,
	}
}

// Stats holds the collection-wide counters returned by Store.Stats.
type Stats struct {
	TotalLists          int
	TotalItems          int
	AverageItemsPerList float64
	LargestListSize     int
}

// Format renders the stats as a multi-line summary.
func (s Stats) Format() string {
	var b strings.Builder
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "- Total lists: %d\n", s.TotalLists)
	fmt.Fprintf(&b, "- Total items: %d\n", s.TotalItems)
	fmt.Fprintf(&b, "- Average items per list: %.1f\n", s.AverageItemsPerList)
	fmt.Fprintf(&b, "- Largest list size: %d", s.LargestListSize)
	return b.String()
}

// Store manages multiple lists with persistent storage and validation.
//
// All operations are safe for concurrent use: a single mutex is held for the
// whole validate-mutate-persist span, so the in-memory collection and the
// backing storage never diverge under concurrent callers.
type Store struct {
	mu      sync.Mutex
	cfg     Config
	storage store.Storage
	col     *store.Collection
	logger  *utils.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger instance.
func WithLogger(l *utils.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store backed by the given storage, loading the persisted
// collection at construction time.
func New(cfg Config, storage store.Storage, opts ...Option) (*Store, error) {
	s := &Store{
		cfg:     cfg,
		storage: storage,
		logger:  utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	col, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load lists: %w", err)
	}
	s.col = col
	return s, nil
}

// Limits returns the configured resource limits.
func (s *Store) Limits() Config {
	return s.cfg
}

// Reload re-reads the collection from storage, replacing the in-memory state.
// Used when the data file is modified by another process.
func (s *Store) Reload() error {
	col, err := s.storage.Load()
	if err != nil {
		return fmt.Errorf("failed to reload lists: %w", err)
	}
	s.mu.Lock()
	s.col = col
	s.mu.Unlock()
	return nil
}

// Sync persists the current in-memory collection. It gives callers a retry
// path after a storage failure, when memory has outrun the stored state.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save("syncing")
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}

// =============================================================================
// Operations
// =============================================================================

// Create creates a new empty list with the given name.
func (s *Store) Create(name string) (string, error) {
	return s.run("creating the list", func() (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.validateListName(name); err != nil {
			return "", err
		}
		if s.col.Len() >= s.cfg.MaxLists {
			return "", newError(KindLimitExceeded, "Maximum %d lists allowed", s.cfg.MaxLists)
		}

		name = strings.TrimSpace(name)
		if _, ok := s.col.Resolve(name); ok {
			return "", newError(KindAlreadyExists, "List '%s' already exists", name)
		}

		s.col.CreateList(name)
		if err := s.save("create"); err != nil {
			return "", err
		}

		s.logger.Info("created list %q", name)
		return fmt.Sprintf("Created list '%s'", name), nil
	})
}

// AddItem appends a single item to a list.
func (s *Store) AddItem(listName, item string) (string, error) {
	return s.run("adding the item", func() (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.validateItem(item); err != nil {
			return "", err
		}

		actual, ok := s.col.Resolve(listName)
		if !ok {
			return "", newError(KindNotFound, "List '%s' not found", listName)
		}
		if s.col.ItemCount(actual) >= s.cfg.MaxItemsPerList {
			return "", newError(KindLimitExceeded, "Maximum %d items per list allowed", s.cfg.MaxItemsPerList)
		}

		item = strings.TrimSpace(item)
		if s.col.Contains(actual, item) {
			return "", newError(KindAlreadyExists, "'%s' is already in '%s'", item, actual)
		}

		s.col.Append(actual, item)
		if err := s.save("add"); err != nil {
			return "", err
		}

		s.logger.Info("added %q to %q", item, actual)
		return fmt.Sprintf("Added '%s' to '%s'", item, actual), nil
	})
}

// AddItems adds a comma-separated batch of items to a list in one pass,
// partitioning the candidates into added, skipped (duplicates), and failed
// (invalid). The capacity pre-check is all-or-nothing: if the whole batch
// would overflow the list, nothing is added.
func (s *Store) AddItems(listName, itemsText string) (string, error) {
	return s.run("adding the items", func() (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		actual, ok := s.col.Resolve(listName)
		if !ok {
			return "", newError(KindNotFound, "List '%s' not found", listName)
		}

		var candidates []string
		for _, piece := range strings.Split(itemsText, ",") {
			if piece = strings.TrimSpace(piece); piece != "" {
				candidates = append(candidates, piece)
			}
		}
		if len(candidates) == 0 {
			return "", newError(KindValidation, "No valid items found")
		}

		if s.col.ItemCount(actual)+len(candidates) > s.cfg.MaxItemsPerList {
			return "", newError(KindLimitExceeded,
				"Adding %d items would exceed the limit of %d items per list",
				len(candidates), s.cfg.MaxItemsPerList)
		}

		var added, skipped, failed []string
		for _, item := range candidates {
			if err := s.validateItem(item); err != nil {
				failed = append(failed, item+" (invalid)")
				continue
			}
			if s.col.Contains(actual, item) {
				skipped = append(skipped, item)
				continue
			}
			s.col.Append(actual, item)
			added = append(added, item)
		}

		if len(added) > 0 {
			if err := s.save("quick-add"); err != nil {
				return "", err
			}
			s.logger.Info("added %d items to %q", len(added), actual)
		}

		var sections []string
		if len(added) > 0 {
			sections = append(sections, itemSection(
				fmt.Sprintf("Added %d items to '%s':", len(added), actual), added))
		}
		if len(skipped) > 0 {
			sections = append(sections, itemSection(
				fmt.Sprintf("Skipped %d duplicate items:", len(skipped)), skipped))
		}
		if len(failed) > 0 {
			sections = append(sections, itemSection(
				fmt.Sprintf("Failed to add %d items:", len(failed)), failed))
		}
		if len(sections) == 0 {
			return "No items were processed", nil
		}
		return strings.Join(sections, "\n"), nil
	})
}

// RemoveItem removes an item from a list by exact match.
func (s *Store) RemoveItem(listName, item string) (string, error) {
	return s.run("removing the item", func() (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		actual, ok := s.col.Resolve(listName)
		if !ok {
			return "", newError(KindNotFound, "List '%s' not found", listName)
		}

		item = strings.TrimSpace(item)
		if !s.col.RemoveItem(actual, item) {
			return "", newError(KindNotFound, "'%s' not found in '%s'", item, actual)
		}

		if err := s.save("remove"); err != nil {
			return "", err
		}

		s.logger.Info("removed %q from %q", item, actual)
		return fmt.Sprintf("Removed '%s' from '%s'", item, actual), nil
	})
}

// ShowList renders the items of one list as a 1-indexed enumeration.
func (s *Store) ShowList(listName string) (string, error) {
	return s.run("showing the list", func() (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		actual, ok := s.col.Resolve(listName)
		if !ok {
			return "", newError(KindNotFound, "List '%s' not found", listName)
		}

		items := s.col.Items(actual)
		if len(items) == 0 {
			return fmt.Sprintf("List '%s' is empty", actual), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%s (%d items):", actual, len(items))
		for i, item := range items {
			fmt.Fprintf(&b, "\n%d. %s", i+1, item)
		}
		return b.String(), nil
	})
}

// ShowAll renders every list name with its item count, sorted by name
// ascending for deterministic output.
func (s *Store) ShowAll() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.col.Len() == 0 {
		return "No lists created yet. Use 'create <list_name>' to create one."
	}

	names := s.col.Names()
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("All lists:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n- %s (%d items)", name, s.col.ItemCount(name))
	}
	return b.String()
}

// Delete removes a list and all its items.
func (s *Store) Delete(listName string) (string, error) {
	return s.run("deleting the list", func() (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		actual, ok := s.col.Resolve(listName)
		if !ok {
			return "", newError(KindNotFound, "List '%s' not found", listName)
		}

		s.col.DeleteList(actual)
		if err := s.save("delete"); err != nil {
			return "", err
		}

		s.logger.Info("deleted list %q", actual)
		return fmt.Sprintf("Deleted list '%s'", actual), nil
	})
}

// Search performs a case-insensitive substring match of the term against
// every item across every list, in insertion order.
func (s *Store) Search(term string) (string, error) {
	return s.run("searching", func() (string, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		term = strings.TrimSpace(term)
		if term == "" {
			return "", newError(KindValidation, "Search term cannot be empty")
		}

		termLower := strings.ToLower(term)
		var results []string
		for _, name := range s.col.Names() {
			for _, item := range s.col.Items(name) {
				if strings.Contains(strings.ToLower(item), termLower) {
					results = append(results, fmt.Sprintf("%s: %s", name, item))
				}
			}
		}

		if len(results) == 0 {
			return fmt.Sprintf("No items found containing '%s'", term), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Search results for '%s':", term)
		for _, r := range results {
			b.WriteString("\n")
			b.WriteString(r)
		}
		return b.String(), nil
	})
}

// Stats returns collection-wide counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{TotalLists: s.col.Len()}
	for _, name := range s.col.Names() {
		n := s.col.ItemCount(name)
		st.TotalItems += n
		if n > st.LargestListSize {
			st.LargestListSize = n
		}
	}
	if st.TotalLists > 0 {
		st.AverageItemsPerList = float64(st.TotalItems) / float64(st.TotalLists)
	}
	return st
}

// =============================================================================
// Internals
// =============================================================================

// run executes an operation with panic recovery so that an unexpected
// failure in one call never crashes the process.
func (s *Store) run(action string, fn func() (string, error)) (msg string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("unexpected error while %s: %v", action, r)
			msg = ""
			err = newError(KindInternal, "An error occurred while %s", action)
		}
	}()
	return fn()
}

// save flushes the collection to storage. The in-memory mutation has already
// been applied by the time save runs; on failure the caller receives a
// KindStorage error and may retry via Sync.
func (s *Store) save(op string) error {
	if err := s.storage.Save(s.col); err != nil {
		s.logger.Error("failed to save data after %s: %v", op, err)
		return &Error{
			Kind:    KindStorage,
			Message: "An error occurred while saving data",
			Err:     err,
		}
	}
	return nil
}

func (s *Store) validateListName(name string) error {
	if strings.TrimSpace(name) == "" {
		return newError(KindValidation, "List name cannot be empty")
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) > s.cfg.MaxListNameLength {
		return newError(KindValidation, "List name must be 1-%d characters long", s.cfg.MaxListNameLength)
	}
	return nil
}

func (s *Store) validateItem(item string) error {
	if strings.TrimSpace(item) == "" {
		return newError(KindValidation, "Item cannot be empty")
	}
	if utf8.RuneCountInString(strings.TrimSpace(item)) > s.cfg.MaxItemLength {
		return newError(KindValidation, "Item must be 1-%d characters long", s.cfg.MaxItemLength)
	}
	return nil
}

// itemSection renders a header followed by one indented line per item.
func itemSection(header string, items []string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, item := range items {
		b.WriteString("\n  - ")
		b.WriteString(item)
	}
	return b.String()
}
