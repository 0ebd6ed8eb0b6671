package store

// Storage defines the interface for collection persistence backends.
//
// Load must always produce a usable collection: a missing or unreadable data
// source yields an empty collection rather than an error, so a fresh install
// and a recovered-from-corruption state look the same to the caller. Save
// replaces the entire stored collection.
type Storage interface {
	Load() (*Collection, error)
	Save(c *Collection) error
	Close() error
}
