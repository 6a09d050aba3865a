// Package format provides encoding and decoding of mutation records, the
// unit the log-structured engine appends to and replays from its log file.
//
// A record is a tagged union with two inhabitants: Set(key, value) asserts
// key currently maps to value; Rm(key) asserts key is absent. Each record is
// framed on disk as its JSON encoding followed by a single delimiter byte
// ('#'), never truncated, so a stream of records can be split without a
// length prefix: Encode writes any '#' inside a JSON string as its \u
// escape (U+0023), so '#' only ever appears as a frame terminator.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jassi-singh/kvsd/internal/kverrors"
)

// Delimiter terminates every framed record on disk.
const Delimiter byte = '#'

// Op identifies which mutation a Record represents.
type Op string

const (
	// OpSet asserts Key currently maps to Value.
	OpSet Op = "set"
	// OpRm asserts Key is absent.
	OpRm Op = "rm"
)

// Record is a single mutation as it appears in the log, independent of its
// framing. Value is empty and ignored for OpRm.
type Record struct {
	Op    Op     `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// NewSet builds a Set(key, value) record.
func NewSet(key, value string) Record {
	return Record{Op: OpSet, Key: key, Value: value}
}

// NewRm builds an Rm(key) record.
func NewRm(key string) Record {
	return Record{Op: OpRm, Key: key}
}

// Encode serializes r as JSON followed by the delimiter byte. The returned
// slice is exactly what the engine appends to the log; its length is the
// framed length recorded in the in-memory index.
func Encode(r Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("format: encode record for key %q: %w", r.Key, err)
	}
	// json.Marshal leaves '#' raw inside strings; '#' can only occur inside
	// strings here, so escaping it keeps the payload valid JSON.
	data = bytes.ReplaceAll(data, []byte{Delimiter}, []byte("\\u0023"))
	return append(data, Delimiter), nil
}

// Decode parses a single framed record from data, which must be exactly one
// frame (payload plus trailing delimiter) — the length the index recorded
// for this record. It returns kverrors.ErrCorrupt if the payload before the
// delimiter is not valid JSON, and kverrors.ErrTruncated if data does not end
// with the delimiter byte at all.
func Decode(data []byte) (Record, error) {
	if len(data) == 0 || data[len(data)-1] != Delimiter {
		return Record{}, fmt.Errorf("format: record has no trailing delimiter: %w", kverrors.ErrTruncated)
	}

	payload := data[:len(data)-1]
	if bytes.IndexByte(payload, Delimiter) != -1 {
		return Record{}, fmt.Errorf("format: unexpected delimiter inside record payload: %w", kverrors.ErrCorrupt)
	}

	var r Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return Record{}, fmt.Errorf("format: decode record: %w: %v", kverrors.ErrCorrupt, err)
	}
	if r.Op != OpSet && r.Op != OpRm {
		return Record{}, fmt.Errorf("format: unknown op %q: %w", r.Op, kverrors.ErrCorrupt)
	}

	return r, nil
}

// SplitFrame reads forward from data (typically a buffered stream) up to and
// including the next delimiter, returning the raw frame bytes (payload plus
// delimiter); len(frame) is the number of bytes consumed. If data is exhausted before a
// delimiter is found, ok is false — the caller is mid-record at EOF.
func SplitFrame(data []byte) (frame []byte, ok bool) {
	idx := bytes.IndexByte(data, Delimiter)
	if idx == -1 {
		return nil, false
	}
	return data[:idx+1], true
}
