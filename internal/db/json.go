package db

import (
	"context"
	"fmt"
)

// JSONWriter is the subset of JSONStore UpsertJSON needs.
type JSONWriter interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
}

// UpsertJSON stores data as the whole document under key and reports whether the key was new.
// The create is attempted first, so among concurrent writers of one key exactly one sees true.
func UpsertJSON(ctx context.Context, s JSONWriter, key string, data []byte) (bool, error) {
	created, err := s.JSONSetNX(ctx, key, "$", data)
	if err != nil {
		return false, fmt.Errorf("json.set nx %s: %w", key, err)
	}
	if created {
		return true, nil
	}
	if err := s.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return false, nil
}
