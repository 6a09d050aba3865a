// Package format provides unit tests for record encoding and decoding.
package format

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jassi-singh/kvsd/internal/kverrors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{name: "set", record: NewSet("key", "value")},
		{name: "rm", record: NewRm("key")},
		{name: "empty value set", record: NewSet("key", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.record)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if encoded[len(encoded)-1] != Delimiter {
				t.Fatalf("Encode() did not terminate with delimiter: %q", encoded)
			}

			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.record, decoded); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Truncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "no delimiter", data: []byte(`{"op":"set","key":"k","value":"v"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, kverrors.ErrTruncated) {
				t.Fatalf("Decode() error = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "invalid json", data: []byte(`not json#`)},
		{name: "unknown op", data: []byte(`{"op":"frob","key":"k"}#`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, kverrors.ErrCorrupt) {
				t.Fatalf("Decode() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestSplitFrame(t *testing.T) {
	data := []byte(`{"op":"set","key":"a","value":"1"}#{"op":"rm","key":"a"}#`)

	frame, ok := SplitFrame(data)
	if !ok {
		t.Fatal("SplitFrame() ok = false, want true")
	}
	if string(frame) != `{"op":"set","key":"a","value":"1"}#` {
		t.Errorf("SplitFrame() frame = %q", frame)
	}

	_, ok = SplitFrame(data[len(frame):][:10])
	if ok {
		t.Error("SplitFrame() on a partial tail unexpectedly reported ok")
	}
}
