package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// Search runs FT.SEARCH ... WITHSCORES under DIALECT 2. A blank query matches everything.
// Syntax errors come back as db.ErrQueryRejected with the server diagnostic attached.
func (s *Store) Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	query := strings.TrimSpace(q.Query)
	if query == "" {
		query = "*"
	}

	args := []string{q.IndexName, query, "WITHSCORES"}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	if q.SortBy != nil && q.SortBy.Field != "" {
		dir := "ASC"
		if q.SortBy.Descending {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy.Field, dir)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, classifySearchErr(err)
	}

	return parseScoredResult(raw)
}

func classifySearchErr(err error) error {
	if isRedisErr(err, "unknown index name", "no such index") {
		return db.ErrIndexNotFound
	}
	if isRedisErr(err, "syntax error", "parse", "unknown field", "no such attribute", "invalid") {
		re, _ := rueidis.IsRedisErr(err)
		return &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %s", db.ErrQueryRejected, re.Error())}
	}
	return &db.Error{Op: db.OpSearch, Err: err}
}

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
