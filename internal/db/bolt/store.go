package bolt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/kailas-cloud/similar/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var (
	kvBucket   = []byte("kv")
	hashBucket = []byte("hash")
)

// expiryLen is the size of the expiry header in front of every KV value.
const expiryLen = 8

// Config holds the on-disk location of a bbolt store.
type Config struct {
	Path        string
	OpenTimeout time.Duration
}

// Store implements db.Store on an embedded bbolt file. It suits a single process:
// bbolt holds an exclusive file lock while open.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewStore opens (or creates) the database file.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Second
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	bdb, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: cfg.OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{kvBucket, hashBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	return &Store{db: bdb, now: time.Now}, nil
}

// WithClock replaces the time source (tests).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping checks that the file is still open.
func (s *Store) Ping(_ context.Context) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(kvBucket) == nil {
			return fmt.Errorf("bucket %s missing", kvBucket)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the database file.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns the Ping result; a local file is ready as soon as it is open.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Get retrieves a live value.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(kvBucket).Get([]byte(key))
		if raw == nil {
			return db.ErrKeyNotFound
		}
		value, live := s.decode(raw)
		if !live {
			return db.ErrKeyNotFound
		}
		// bbolt memory is only valid inside the transaction.
		out = append([]byte(nil), value...)
		return nil
	})
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, err
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value that expires after ttl (ttl <= 0: never).
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, expiryLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(expiresAt))
	copy(buf[expiryLen:], value)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(hashBucket).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(kvBucket).Put([]byte(key), buf)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del deletes a key of any type.
func (s *Store) Del(ctx context.Context, key string) error {
	return s.DelMulti(ctx, []string{key})
}

// DelMulti deletes keys in one transaction.
func (s *Store) DelMulti(_ context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		kv, hash := tx.Bucket(kvBucket), tx.Bucket(hashBucket)
		for _, k := range keys {
			if err := kv.Delete([]byte(k)); err != nil {
				return err
			}
			if err := hash.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// HSet merges fields into a hash.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	return s.HSetMulti(ctx, []db.HashSetItem{{Key: key, Fields: fields}})
}

// HSetMulti merges fields into several hashes in one transaction.
func (s *Store) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		hash := tx.Bucket(hashBucket)
		for _, it := range items {
			h, err := decodeHash(hash.Get([]byte(it.Key)))
			if err != nil {
				return fmt.Errorf("key %s: %w", it.Key, err)
			}
			for k, v := range it.Fields {
				h[k] = v
			}
			data, err := json.Marshal(h)
			if err != nil {
				return fmt.Errorf("key %s: %w", it.Key, err)
			}
			if err := tx.Bucket(kvBucket).Delete([]byte(it.Key)); err != nil {
				return err
			}
			if err := hash.Put([]byte(it.Key), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	res, err := s.HGetAllMulti(ctx, []string{key})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

// HGetAllMulti fetches several hashes in one transaction.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]map[string]string, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		hash := tx.Bucket(hashBucket)
		for i, k := range keys {
			h, err := decodeHash(hash.Get([]byte(k)))
			if err != nil {
				return fmt.Errorf("key %s: %w", k, err)
			}
			out[i] = h
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// Exists reports whether a live key of any type exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(hashBucket).Get([]byte(key)) != nil {
			found = true
			return nil
		}
		if raw := tx.Bucket(kvBucket).Get([]byte(key)); raw != nil {
			_, found = s.decode(raw)
		}
		return nil
	})
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return found, nil
}

// Scan returns live keys matching a glob pattern, in key order per bucket.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := []byte(literalPrefix(pattern))

	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{kvBucket, hashBucket} {
			c := tx.Bucket(name).Cursor()
			for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
				if !db.MatchGlob(pattern, string(k)) {
					continue
				}
				if bytes.Equal(name, kvBucket) {
					if _, live := s.decode(v); !live {
						continue
					}
				}
				keys = append(keys, string(k))
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}

func (s *Store) decode(raw []byte) ([]byte, bool) {
	if len(raw) < expiryLen {
		return nil, false
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw[:expiryLen]))
	if expiresAt != 0 && s.now().UnixNano() >= expiresAt {
		return nil, false
	}
	return raw[expiryLen:], true
}

func decodeHash(raw []byte) (map[string]string, error) {
	h := map[string]string{}
	if raw == nil {
		return h, nil
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode hash: %w", err)
	}
	return h, nil
}

// literalPrefix returns the part of a glob before its first wildcard.
func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, `*?\`); i >= 0 {
		return pattern[:i]
	}
	return pattern
}
