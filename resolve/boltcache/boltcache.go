// Package boltcache is a BoltDB-backed resolve.CacheGateway. Keys are
// sharded two hex characters at a time via github.com/jmank88/nuts, which
// treats a "/"-separated byte key as a path of nested buckets; this keeps
// any single bucket from accumulating every resolve result the process has
// ever cached in one flat list.
package boltcache

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/envresolve/envresolve/resolve"
	"github.com/jmank88/nuts"
	"github.com/pkg/errors"
)

// Gateway implements resolve.CacheGateway over a single BoltDB file. One
// top-level bucket is created per namespace on first use.
type Gateway struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a BoltDB cache file at path.
func Open(path string) (*Gateway, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModeDir|os.ModePerm); err != nil {
			return nil, errors.Wrapf(err, "boltcache: failed to create cache directory %q", dir)
		}
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "boltcache: failed to open cache file %q", path)
	}
	return &Gateway{db: db}, nil
}

func (g *Gateway) Close() error {
	return errors.Wrap(g.db.Close(), "boltcache: failed to close cache file")
}

// Enabled reports whether the underlying BoltDB handle is usable. A boltcache
// Gateway is either fully usable or, if Open failed, never constructed at
// all; Enabled exists so callers can wrap a possibly-nil Gateway uniformly
// with other CacheGateway implementations.
func (g *Gateway) Enabled() bool {
	return g != nil && g.db != nil
}

// shardedKey spreads keys across nested buckets two hex characters at a
// time, so a namespace bucket never holds every key directly: "resolve" /
// "ab" / "cd" / "abcdef...".
func shardedKey(namespace, key string) []byte {
	shard := key
	if len(shard) > 4 {
		shard = shard[:4]
	}
	path := namespace + "/" + shard[:min(2, len(shard))]
	if len(shard) > 2 {
		path += "/" + shard[2:min(4, len(shard))]
	}
	path += "/" + key
	return []byte(path)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func (g *Gateway) Get(namespace, key string) (resolve.CachedEntry, bool, error) {
	var (
		entry resolve.CachedEntry
		found bool
		raw   []byte
	)

	err := g.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			return nil
		}
		v := nuts.GetBytes(b, shardedKey(namespace, key))
		if v == nil {
			return nil
		}
		raw = append([]byte(nil), v...)
		found = true
		return nil
	})
	if err != nil {
		return resolve.CachedEntry{}, false, errors.Wrap(err, "boltcache: get failed")
	}
	if !found {
		return resolve.CachedEntry{}, false, nil
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&entry); err != nil {
		return resolve.CachedEntry{}, false, errors.Wrap(err, "boltcache: failed to decode cached entry")
	}
	return entry, true, nil
}

func (g *Gateway) Set(namespace, key string, entry resolve.CachedEntry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
		return errors.Wrap(err, "boltcache: failed to encode cached entry")
	}

	return g.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return errors.Wrapf(err, "boltcache: failed to create namespace bucket %q", namespace)
		}
		return nuts.PutBytes(b, shardedKey(namespace, key), buf.Bytes())
	})
}

func (g *Gateway) Delete(namespace, key string) error {
	return g.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(namespace))
		if b == nil {
			// Idempotent: deleting from a namespace that was never written
			// to is a no-op, not an error.
			return nil
		}
		return nuts.Delete(b, shardedKey(namespace, key))
	})
}
