package storage

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvs.log")

	lf, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lf.Close()

	size, err := lf.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 0 {
		t.Errorf("Size() = %d, want 0 for a fresh file", size)
	}
}

func TestAppendAndReadAt(t *testing.T) {
	dir := t.TempDir()
	lf, err := Open(filepath.Join(dir, "kvs.log"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer lf.Close()

	off1, err := lf.Append([]byte("hello#"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if off1 != 0 {
		t.Errorf("first Append() offset = %d, want 0", off1)
	}

	off2, err := lf.Append([]byte("world#"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if off2 != 6 {
		t.Errorf("second Append() offset = %d, want 6", off2)
	}

	data, err := lf.ReadAt(off2, 6)
	if err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if string(data) != "world#" {
		t.Errorf("ReadAt() = %q, want %q", data, "world#")
	}
}

func TestReopenPreservesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvs.log")

	lf, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := lf.Append([]byte("persisted#")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := lf.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lf2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}
	defer lf2.Close()

	size, err := lf2.Size()
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 10 {
		t.Errorf("Size() after reopen = %d, want 10", size)
	}

	data, err := lf2.ReadAt(0, 10)
	if err != nil {
		t.Fatalf("ReadAt() error = %v", err)
	}
	if string(data) != "persisted#" {
		t.Errorf("ReadAt() = %q", data)
	}
}
