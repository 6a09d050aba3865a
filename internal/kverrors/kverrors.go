// Package kverrors defines the error kinds shared by every engine
// implementation and by the network front-end that translates them into
// wire replies.
package kverrors

import "errors"

// Sentinel errors identifying the kinds of failure the store can report.
// Call sites wrap these with fmt.Errorf("...: %w", ErrX) so errors.Is still
// matches while context (key, offset, path) is preserved in the message.
var (
	// ErrIO marks an underlying OS I/O failure (open, read, write, rename).
	ErrIO = errors.New("io error")

	// ErrCorrupt marks a log record that failed to decode, or whose decoded
	// key does not match the key the caller asked for.
	ErrCorrupt = errors.New("corrupt record")

	// ErrTruncated marks a log that ends mid-record during recovery.
	ErrTruncated = errors.New("truncated record")

	// ErrKeyNotFound marks a remove against an absent key. Get on an absent
	// key is not an error: it reports found=false.
	ErrKeyNotFound = errors.New("key not found")

	// ErrProtocol marks a wire request line that failed to parse.
	ErrProtocol = errors.New("protocol error")

	// ErrEngineMismatch marks a selected engine that disagrees with the
	// engine implied by already-persisted on-disk state.
	ErrEngineMismatch = errors.New("engine mismatch")
)
