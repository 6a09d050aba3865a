package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jassi-singh/kvsd/internal/kverrors"
	"github.com/jassi-singh/kvsd/internal/storage"
)

// compactionFileName is the sibling file compaction rewrites into before
// atomically renaming it over the live log.
const compactionFileName = LogFileName + ".1"

// maybeCompact evaluates the compaction trigger and runs compact if it
// fires. It is called after Set/Remove release the critical section, so it
// reacquires the lock itself for the duration of the rewrite — the primary
// design compacts with the lock held for its full duration (see compact.go
// doc comment on compact for the accepted, unimplemented refinement).
func (e *KVEngine) maybeCompact() {
	e.mu.Lock()
	trigger := e.logKeys >= CompactionKeys && e.logKeys/(len(e.index)+1) >= CompactionRatio
	e.mu.Unlock()

	if !trigger {
		return
	}

	if err := e.compact(); err != nil {
		slog.Error("engine: compaction failed", "error", err)
	}
}

// compact rewrites the log to contain exactly one Set record per live key
// and zero tombstones, then atomically swaps it in.
//
// It holds the engine's mutex for the entire rewrite. For a very large log
// this stalls writers; a non-blocking refinement is possible — snapshot the
// index, rewrite without the lock, reacquire briefly to replay any
// mutations that landed during the rewrite, then swap — but it is not
// implemented here; the single critical section is simpler and matches the
// documented contract.
//
// A Get that already captured the old generation before compact acquired
// the lock may still be mid-ReadAt against it (Get performs its read after
// releasing e.mu). compact does not close that generation's handles until
// its readers have drained, so such a Get always finishes reading the file
// it started reading, never a generation compact has already repurposed.
//
// If compaction fails between opening the new file and the rename, the
// next Open recovers from the untouched old log; a stray partial new file
// may be left behind. Open ignores it, and the next compaction deletes it
// before rewriting into a fresh file of the same name.
func (e *KVEngine) compact() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	slog.Info("engine: starting compaction", "log_keys", e.logKeys, "live_keys", len(e.index))

	oldGen := e.log

	newPath := filepath.Join(e.dir, compactionFileName)
	// storage.Open appends, so discard any stray file from an earlier failed
	// compaction rather than writing after its contents.
	if err := os.Remove(newPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("engine: remove stray %s: %w: %v", newPath, kverrors.ErrIO, err)
	}
	newLog, err := storage.Open(newPath)
	if err != nil {
		return err
	}

	newIndex := make(map[string]indexEntry, len(e.index))
	for key, entry := range e.index {
		raw, err := oldGen.lf.ReadAt(entry.Offset, entry.Length)
		if err != nil {
			newLog.Close()
			return err
		}
		newOffset, err := newLog.Append(raw)
		if err != nil {
			newLog.Close()
			return err
		}
		newIndex[key] = indexEntry{Offset: newOffset, Length: entry.Length}
	}

	if err := newLog.Close(); err != nil {
		return err
	}

	livePath := filepath.Join(e.dir, LogFileName)
	if err := os.Rename(newPath, livePath); err != nil {
		return fmt.Errorf("engine: rename %s to %s: %w: %v", newPath, livePath, kverrors.ErrIO, err)
	}

	swapped, err := storage.Open(livePath)
	if err != nil {
		return err
	}
	e.log = &logGeneration{lf: swapped}
	e.index = newIndex
	e.logKeys = len(newIndex)

	// Only now, with e.log already pointing readers at the new generation,
	// wait out any in-flight Get still reading oldGen before closing it.
	oldGen.readers.Wait()
	if err := oldGen.lf.Close(); err != nil {
		return err
	}

	slog.Info("engine: compaction finished", "live_keys", e.logKeys)
	return nil
}
