// Package boltengine is the alternate engine: it wraps an embedded
// ordered-key database (go.etcd.io/bbolt) behind the same contract the
// primary log-structured engine implements, so the network front-end can
// use either without caring which is live.
//
// No pack example repo wires a client dependency onto an embedded
// ordered-key database; bbolt is adopted here as the closest idiomatic Go
// analog to the "sled" alternate engine the specification names — see
// DESIGN.md for the full justification.
package boltengine

import (
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"

	"github.com/jassi-singh/kvsd/internal/kverrors"
)

// DirName is the name of the subdirectory (relative to the data directory)
// holding the embedded database file, used both to open it and, by
// cmd/kvsd-server, to detect that a directory already holds alternate-engine
// state.
const DirName = "db"

// dbFileName is the single file bbolt persists its B+tree pages in, inside
// DirName.
const dbFileName = "kvs.db"

// bucketName is the single bucket every key/value pair lives in — the
// engine contract has no notion of namespaces.
var bucketName = []byte("kv")

// Engine is the alternate, bbolt-backed implementation of engine.Engine.
type Engine struct {
	db *bolt.DB
}

// Open opens (creating if absent) the embedded database at dir/db/kvs.db.
func Open(dir string) (*Engine, error) {
	dbDir := dir + "/" + DirName
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("boltengine: create dir %s: %w: %v", dbDir, kverrors.ErrIO, err)
	}

	db, err := bolt.Open(dbDir+"/"+dbFileName, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("boltengine: open %s/%s: %w: %v", dbDir, dbFileName, kverrors.ErrIO, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("boltengine: create bucket: %w: %v", kverrors.ErrIO, err)
	}

	return &Engine{db: db}, nil
}

// Get returns the value for key and found=true if key is present.
func (e *Engine) Get(key string) (string, bool, error) {
	var value string
	var found bool

	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("boltengine: get %q: %w: %v", key, kverrors.ErrIO, err)
	}
	return value, found, nil
}

// Set inserts or overwrites key=value. bbolt commits (and fsyncs) the
// transaction's pages before Update returns, so the write is durable when
// Set returns without any further flush call.
func (e *Engine) Set(key, value string) error {
	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("boltengine: set %q: %w: %v", key, kverrors.ErrIO, err)
	}
	return nil
}

// Remove deletes key. It returns kverrors.ErrKeyNotFound if key was absent.
func (e *Engine) Remove(key string) error {
	var found bool
	err := e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return nil
		}
		found = true
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("boltengine: remove %q: %w: %v", key, kverrors.ErrIO, err)
	}
	if !found {
		return fmt.Errorf("boltengine: remove %q: %w", key, kverrors.ErrKeyNotFound)
	}
	return nil
}

// Close releases the database file.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("boltengine: close: %w: %v", kverrors.ErrIO, err)
	}
	return nil
}
