// Package redis implements db.Store on rueidis against Redis 8+ (JSON and search modules).
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchsync/internal/db"
)

var _ db.Store = (*Store)(nil)

// Config holds connection parameters.
type Config struct {
	Addrs       []string
	Password    string
	ClientName  string
	DialTimeout time.Duration
}

// Store talks to Redis through one rueidis client. The record store and the
// RediSearch adapter share a Store when they point at the same server.
type Store struct {
	client rueidis.Client
}

// NewStore dials Redis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	opt := rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		ClientName:   cfg.ClientName,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH parsing expects the RESP2 flat array
	}
	if cfg.DialTimeout > 0 {
		opt.Dialer.Timeout = cfg.DialTimeout
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings until Redis answers or timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := s.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error whose message contains one of substrs, ignoring case.
func isRedisErr(err error, substrs ...string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	for _, sub := range substrs {
		if containsIgnoreCase(re.Error(), sub) {
			return true
		}
	}
	return false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
