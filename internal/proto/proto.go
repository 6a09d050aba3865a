// Package proto implements the line-delimited wire protocol between
// cmd/kvsd (the client) and cmd/kvsd-server: one JSON-encoded request
// followed by a newline, one reply line followed by a newline, per TCP
// connection.
package proto

import (
	"encoding/json"
	"fmt"

	"github.com/jassi-singh/kvsd/internal/kverrors"
)

// Reply strings the server's worker writes back, verbatim, per spec.
const (
	ReplySuccess  = "Success"
	ReplyNotFound = "Key not found"
)

// Request is the tagged union a client sends: exactly one of Get, Set, or
// Rm is populated, matching the wire shapes
//
//	{"Get":"<key>"} | {"Set":["<key>","<value>"]} | {"Rm":"<key>"}
type Request struct {
	Get *string    `json:"Get,omitempty"`
	Set *[2]string `json:"Set,omitempty"`
	Rm  *string    `json:"Rm,omitempty"`
}

// NewGet builds a Get(key) request.
func NewGet(key string) Request {
	return Request{Get: &key}
}

// NewSet builds a Set(key, value) request.
func NewSet(key, value string) Request {
	pair := [2]string{key, value}
	return Request{Set: &pair}
}

// NewRm builds an Rm(key) request.
func NewRm(key string) Request {
	return Request{Rm: &key}
}

// Encode serializes req as one JSON line, including the trailing newline.
func Encode(req Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("proto: encode request: %w: %v", kverrors.ErrProtocol, err)
	}
	return append(data, '\n'), nil
}

// Decode parses one request line (with or without its trailing newline).
// It returns kverrors.ErrProtocol if line is not valid JSON or names none
// or more than one of Get/Set/Rm.
func Decode(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("proto: decode request %q: %w: %v", line, kverrors.ErrProtocol, err)
	}

	set := 0
	if req.Get != nil {
		set++
	}
	if req.Set != nil {
		set++
	}
	if req.Rm != nil {
		set++
	}
	if set != 1 {
		return Request{}, fmt.Errorf("proto: request %q names %d of Get/Set/Rm, want exactly 1: %w", line, set, kverrors.ErrProtocol)
	}

	return req, nil
}
