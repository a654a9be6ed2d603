// Package storage provides database abstractions.
package storage

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix.
	// The callback receives a copy of the key; the value slice may be
	// the store's own data and is valid only for the duration of the call.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	// ForEachFrom iterates over keys with the given prefix in ascending
	// key order, starting at the first key >= start. Used for bounded
	// range scans (e.g. a height-ordered log) instead of a full prefix
	// scan.
	ForEachFrom(prefix, start []byte, fn func(key, value []byte) error) error
	Close() error
}
