// Package storage provides the log file pair the engine appends to and
// reads from: one append-only writer handle and one positional-read handle
// over the same physical log file.
//
// One monotonic append cursor suffices for writes; point lookups must not
// contend for that cursor and must tolerate concurrent appends by other
// callers. The reader uses positional reads (pread) so its interleaving
// with writes is safe as long as reads target regions the writer has
// already committed — guaranteed because the engine's index only ever
// records committed offsets.
package storage

import (
	"fmt"
	"os"

	"github.com/jassi-singh/kvsd/internal/kverrors"
)

// LogFiles holds the two handles the engine needs onto one log file: an
// append-only writer and a positional-read reader.
type LogFiles struct {
	path   string
	writer *os.File
	reader *os.File
}

// Open opens (creating if absent) the log file at path, returning a writer
// positioned to append and a reader usable for positional reads at any
// committed offset.
func Open(path string) (*LogFiles, error) {
	writer, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open writer at %s: %w: %v", path, kverrors.ErrIO, err)
	}

	reader, err := os.Open(path)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("storage: open reader at %s: %w: %v", path, kverrors.ErrIO, err)
	}

	return &LogFiles{path: path, writer: writer, reader: reader}, nil
}

// Path returns the file path these handles were opened against.
func (l *LogFiles) Path() string {
	return l.path
}

// Size returns the current size of the log file as seen by the writer.
func (l *LogFiles) Size() (int64, error) {
	info, err := l.writer.Stat()
	if err != nil {
		return 0, fmt.Errorf("storage: stat %s: %w: %v", l.path, kverrors.ErrIO, err)
	}
	return info.Size(), nil
}

// Append writes data to the end of the log file and returns the offset of
// its first byte.
func (l *LogFiles) Append(data []byte) (offset int64, err error) {
	before, err := l.Size()
	if err != nil {
		return 0, err
	}

	if _, err := l.writer.Write(data); err != nil {
		return 0, fmt.Errorf("storage: append to %s: %w: %v", l.path, kverrors.ErrIO, err)
	}

	return before, nil
}

// ReadAt reads exactly n bytes starting at offset using a positional read,
// which does not disturb the writer's append cursor and is safe to call
// concurrently with Append.
func (l *LogFiles) ReadAt(offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := l.reader.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("storage: read %d bytes at offset %d from %s: %w: %v", n, offset, l.path, kverrors.ErrIO, err)
	}
	return buf, nil
}

// NewReader opens an independent read-only handle onto the same path, used
// by recovery to stream the whole file without disturbing l's reader cursor
// (which is never seeked — all reads here are positional already — but a
// second handle lets recovery use a buffered sequential reader cheaply).
func (l *LogFiles) NewReader() (*os.File, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("storage: open recovery reader at %s: %w: %v", l.path, kverrors.ErrIO, err)
	}
	return f, nil
}

// Close closes both handles, flushing writer data through the OS buffer.
func (l *LogFiles) Close() error {
	writerErr := l.writer.Close()
	readerErr := l.reader.Close()
	if writerErr != nil {
		return fmt.Errorf("storage: close writer for %s: %w: %v", l.path, kverrors.ErrIO, writerErr)
	}
	if readerErr != nil {
		return fmt.Errorf("storage: close reader for %s: %w: %v", l.path, kverrors.ErrIO, readerErr)
	}
	return nil
}
