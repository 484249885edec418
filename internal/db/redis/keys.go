package redis

import (
	"context"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// DelCount deletes key and reports how many keys went away (0 or 1).
func (s *Store) DelCount(ctx context.Context, key string) (int64, error) {
	n, err := s.do(ctx, s.b().Del().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDel, Err: err}
	}
	return n, nil
}
