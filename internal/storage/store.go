// Package storage provides the origin-scoped key-value store the tracker
// persists its buffer and submission state in.
//
// Backends are selected by DSN:
//
//	memory://                 process-local map (default)
//	sqlite:///path/to/file    durable local file (modernc.org/sqlite)
//	redis://host:port/db      shared store (gofiber/storage/redis)
//
// STORE CONTRACT:
//   - Keys are plain strings (docs_visits, docs_last_submit); values are opaque bytes
//   - Get on a missing key returns nil, nil
//   - A closed or disabled store returns ErrUnavailable from every operation
//   - Operations are individually atomic; there are no multi-key transactions
//
// The last point matches a browser's per-origin storage: two hosts sharing
// one Redis database can interleave read-modify-write cycles on the buffer,
// the same duplicate-submission race two open tabs have.
package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnavailable is returned by every operation of a store that has been
// disabled or closed, the analogue of a browser with storage turned off.
var ErrUnavailable = errors.New("storage unavailable")

// Store is a string-keyed byte store. Get returns nil, nil for a missing key.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte) error
	Delete(key string) error
	Close() error
}

// Open returns the store described by dsn.
func Open(dsn string) (Store, error) {
	if dsn == "" || dsn == "memory://" {
		return NewMemoryStore(), nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid store DSN %q: %w", dsn, err)
	}

	switch u.Scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		path := u.Path
		if u.Host != "" {
			// sqlite://relative/file.db
			path = u.Host + u.Path
		}
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite DSN %q has no file path", dsn)
		}
		return NewSQLiteStore(path)
	case "redis", "rediss":
		return NewRedisStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported store scheme %q (want memory, sqlite or redis)", u.Scheme)
	}
}
