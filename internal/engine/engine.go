// Package engine implements the log-structured storage engine: the
// append-only command log, the in-memory index mapping each live key to its
// record's file offset and length, crash-recovery replay at startup, and
// online compaction that reclaims space from overwritten and deleted keys.
//
// An alternate implementation of the same contract, backed by an embedded
// ordered-key database, lives in the boltengine subpackage.
package engine

// Engine is the contract shared by every storage backend: point get, set,
// and remove on string keys/values. Every method takes a shared (not
// exclusive) receiver so multiple callers may invoke it concurrently; each
// implementation serializes its own mutating state internally.
type Engine interface {
	// Get returns the value for key and found=true if key is live, or
	// found=false (no error) if it is absent.
	Get(key string) (value string, found bool, err error)

	// Set stores key=value, inserting or overwriting.
	Set(key, value string) error

	// Remove deletes key. It returns kverrors.ErrKeyNotFound (wrapped) if
	// key was not live.
	Remove(key string) error

	// Close flushes any buffered state through the OS and releases file
	// descriptors. The engine must not be used after Close returns.
	Close() error
}
