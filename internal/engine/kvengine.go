package engine

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jassi-singh/kvsd/internal/format"
	"github.com/jassi-singh/kvsd/internal/kverrors"
	"github.com/jassi-singh/kvsd/internal/storage"
)

// LogFileName is the fixed name of the primary engine's append-only log,
// used both to open it and, by cmd/kvsd-server, to detect that a directory
// already holds primary-engine state.
const LogFileName = "kvs.log"

// Compaction thresholds (spec-fixed, not configurable): compaction is
// considered once at least CompactionKeys records have been written to the
// log, and only proceeds once the ratio of total records to live keys meets
// or exceeds CompactionRatio. The +1 in that ratio avoids division by zero
// on an empty store.
const (
	CompactionKeys  = 1000
	CompactionRatio = 3
)

// indexEntry locates one live key's record in the current log file.
type indexEntry struct {
	Offset int64
	Length int
}

// logGeneration pairs the log handles for one on-disk log file with a count
// of readers still using them. Get increments readers before releasing
// e.mu and decrements it once its positional read has completed; compact
// waits for readers to drain before closing a generation's handles, so a
// Get that captured this generation just before a compaction swap always
// finishes reading the file it was reading, never a generation that has
// already been closed or repurposed.
type logGeneration struct {
	lf      *storage.LogFiles
	readers sync.WaitGroup
}

// KVEngine is the primary, log-structured Engine implementation. Index, the
// current log generation, and the log-keys counter are guarded by one
// mutex — the engine's critical section — so that "append record" and
// "update index entry" are atomic with respect to other mutations, and so
// that a reader always observes the index and the log generation it
// indexes into as one consistent pair.
type KVEngine struct {
	mu  sync.Mutex
	dir string
	log *logGeneration

	index   map[string]indexEntry
	logKeys int
}

var _ Engine = (*KVEngine)(nil)

// Open creates dir's log file if absent, or replays it to reconstruct the
// index if present, and returns a ready-to-use engine. A corrupt or
// truncated trailing record in an existing log is a fatal error: recovery
// never silently drops it.
func Open(dir string) (*KVEngine, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: create data dir %s: %w: %v", dir, kverrors.ErrIO, err)
	}

	path := filepath.Join(dir, LogFileName)
	log, err := storage.Open(path)
	if err != nil {
		return nil, err
	}

	e := &KVEngine{
		dir:   dir,
		log:   &logGeneration{lf: log},
		index: make(map[string]indexEntry),
	}

	if err := e.recover(); err != nil {
		log.Close()
		return nil, err
	}

	slog.Info("engine: opened",
		"dir", dir,
		"live_keys", len(e.index),
		"log_keys", e.logKeys)
	return e, nil
}

// recover streams every record from offset 0 to EOF, rebuilding the index
// and the log-keys counter. It is called once, from Open, before the engine
// is exposed to any caller, so it needs no locking of its own.
func (e *KVEngine) recover() error {
	f, err := e.log.lf.NewReader()
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var offset int64

	for {
		raw, err := r.ReadBytes(format.Delimiter)
		if err == io.EOF {
			if len(raw) > 0 {
				return fmt.Errorf("engine: recover %s: dangling %d bytes past last complete record: %w",
					e.log.lf.Path(), len(raw), kverrors.ErrTruncated)
			}
			break
		}
		if err != nil {
			return fmt.Errorf("engine: recover %s: %w: %v", e.log.lf.Path(), kverrors.ErrIO, err)
		}

		rec, err := format.Decode(raw)
		if err != nil {
			return fmt.Errorf("engine: recover %s at offset %d: %w", e.log.lf.Path(), offset, err)
		}

		switch rec.Op {
		case format.OpSet:
			e.index[rec.Key] = indexEntry{Offset: offset, Length: len(raw)}
		case format.OpRm:
			delete(e.index, rec.Key)
		}

		e.logKeys++
		offset += int64(len(raw))
	}

	return nil
}

// Get takes the critical section only long enough to snapshot key's index
// entry together with the log generation it indexes into, then performs
// the positional read and decode outside the lock. Snapshotting both under
// one lock acquisition is what makes the offset meaningful: an entry from
// one generation is never read against another generation's log file, even
// if a compaction swap runs concurrently with the read.
func (e *KVEngine) Get(key string) (string, bool, error) {
	e.mu.Lock()
	entry, ok := e.index[key]
	gen := e.log
	if ok {
		gen.readers.Add(1)
	}
	e.mu.Unlock()

	if !ok {
		return "", false, nil
	}
	defer gen.readers.Done()

	raw, err := gen.lf.ReadAt(entry.Offset, entry.Length)
	if err != nil {
		return "", false, err
	}

	rec, err := format.Decode(raw)
	if err != nil {
		return "", false, fmt.Errorf("engine: decode record for key %q at offset %d: %w", key, entry.Offset, err)
	}
	if rec.Op != format.OpSet {
		return "", false, fmt.Errorf("engine: record at offset %d for key %q is not a Set: %w", entry.Offset, key, kverrors.ErrCorrupt)
	}
	if rec.Key != key {
		return "", false, fmt.Errorf("engine: record at offset %d has key %q, expected %q: %w", entry.Offset, rec.Key, key, kverrors.ErrCorrupt)
	}

	return rec.Value, true, nil
}

// Set encodes and appends a Set(key, value) record, then updates the index,
// all inside the critical section, before checking whether compaction
// should run.
func (e *KVEngine) Set(key, value string) error {
	raw, err := format.Encode(format.NewSet(key, value))
	if err != nil {
		return err
	}

	e.mu.Lock()
	offset, err := e.log.lf.Append(raw)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.index[key] = indexEntry{Offset: offset, Length: len(raw)}
	e.logKeys++
	e.mu.Unlock()

	slog.Debug("engine: set", "key", key, "offset", offset, "size", len(raw))
	e.maybeCompact()
	return nil
}

// Remove deletes key from the index and appends an Rm tombstone, inside the
// critical section, before checking whether compaction should run. It
// returns kverrors.ErrKeyNotFound if key was not live.
func (e *KVEngine) Remove(key string) error {
	e.mu.Lock()
	if _, ok := e.index[key]; !ok {
		e.mu.Unlock()
		return fmt.Errorf("engine: remove %q: %w", key, kverrors.ErrKeyNotFound)
	}
	delete(e.index, key)

	raw, err := format.Encode(format.NewRm(key))
	if err != nil {
		e.mu.Unlock()
		return err
	}
	if _, err := e.log.lf.Append(raw); err != nil {
		e.mu.Unlock()
		return err
	}
	e.logKeys++
	e.mu.Unlock()

	slog.Debug("engine: remove", "key", key)
	e.maybeCompact()
	return nil
}

// Close flushes buffered state through the OS and releases the log's file
// descriptors.
func (e *KVEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.lf.Close()
}

// liveKeys reports the number of keys currently in the index, for tests and
// diagnostics.
func (e *KVEngine) liveKeys() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.index)
}
