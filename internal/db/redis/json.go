package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// JSONSet replaces the value at path under key.
func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	cmd := s.b().JsonSet().Key(key).Path(path).Value(string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONSetNX writes data at path only if key does not exist yet.
// The server answers nil when the key is already there.
func (s *Store) JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error) {
	cmd := s.b().JsonSet().Key(key).Path(path).Value(string(data)).Nx().Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case rueidis.IsRedisNil(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpJSONSet, Err: err}
	}
}

// JSONGet reads key at paths. A missing key is db.ErrKeyNotFound.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	cmd := s.b().JsonGet().Key(key).Path(paths...).Build()
	raw, err := s.do(ctx, cmd).ToString()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	case raw == "":
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}
