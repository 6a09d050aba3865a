// Package enginetest exercises the engine.Engine contract against any
// implementation, so both the primary log-structured engine and the
// bbolt-backed alternate engine are checked against identical scenarios.
package enginetest

import (
	"errors"
	"testing"

	"github.com/jassi-singh/kvsd/internal/engine"
	"github.com/jassi-singh/kvsd/internal/kverrors"
)

// Open constructs an Engine rooted at dir for the duration of one test.
type Open func(dir string) (engine.Engine, error)

// RunContract runs the engine.Engine scenarios spec.md's testable
// properties describe (read-your-writes, last-writer-wins, remove
// semantics, persistence across reopen) against open.
func RunContract(t *testing.T, open Open) {
	t.Helper()

	t.Run("OpenEmpty", func(t *testing.T) {
		e, err := open(t.TempDir())
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer e.Close()

		_, found, err := e.Get("a")
		if err != nil || found {
			t.Fatalf("Get() = found %v, err %v, want not found", found, err)
		}
	})

	t.Run("SetThenGet", func(t *testing.T) {
		e, err := open(t.TempDir())
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer e.Close()

		if err := e.Set("a", "1"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, found, err := e.Get("a")
		if err != nil || !found || got != "1" {
			t.Fatalf("Get() = %q, %v, %v, want %q", got, found, err, "1")
		}
	})

	t.Run("LastWriterWins", func(t *testing.T) {
		e, err := open(t.TempDir())
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer e.Close()

		if err := e.Set("a", "1"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := e.Set("a", "2"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, found, err := e.Get("a")
		if err != nil || !found || got != "2" {
			t.Fatalf("Get() = %q, %v, %v, want %q", got, found, err, "2")
		}
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		e, err := open(t.TempDir())
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer e.Close()

		if err := e.Remove("a"); !errors.Is(err, kverrors.ErrKeyNotFound) {
			t.Fatalf("Remove() error = %v, want ErrKeyNotFound", err)
		}
	})

	t.Run("SetThenRemove", func(t *testing.T) {
		e, err := open(t.TempDir())
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		defer e.Close()

		if err := e.Set("a", "1"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := e.Remove("a"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		_, found, err := e.Get("a")
		if err != nil || found {
			t.Fatalf("Get() after Remove() = found %v, err %v, want not found", found, err)
		}
	})

	t.Run("PersistenceAcrossReopen", func(t *testing.T) {
		dir := t.TempDir()

		e, err := open(dir)
		if err != nil {
			t.Fatalf("open() error = %v", err)
		}
		if err := e.Set("k", "v"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := e.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		e2, err := open(dir)
		if err != nil {
			t.Fatalf("reopen open() error = %v", err)
		}
		defer e2.Close()

		got, found, err := e2.Get("k")
		if err != nil || !found || got != "v" {
			t.Fatalf("Get() after reopen = %q, %v, %v", got, found, err)
		}
	})
}
