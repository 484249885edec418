package sqlrecord

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
)

// Placeholder is the bind-parameter style of a SQL dialect.
type Placeholder int

const (
	// PlaceholderQuestion renders ?, ?, ? (SQLite).
	PlaceholderQuestion Placeholder = iota
	// PlaceholderDollar renders $1, $2, $3 (PostgreSQL).
	PlaceholderDollar
)

const ddl = `CREATE TABLE IF NOT EXISTS searchsync_records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (collection, id)
)`

// Repo is the primary record store on database/sql.
type Repo struct {
	db          *sql.DB
	placeholder Placeholder
	now         func() time.Time
}

// New wraps an open database. Call Migrate before first use.
func New(db *sql.DB, p Placeholder) *Repo {
	return &Repo{db: db, placeholder: p, now: time.Now}
}

// WithClock overrides the timestamp source for updated_at.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	if now != nil {
		r.now = now
	}
	return r
}

// Migrate creates the records table when absent.
func (r *Repo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the underlying database.
func (r *Repo) Close() error {
	return r.db.Close()
}

// Put creates or replaces a record. Returns true if created.
// The insert alone decides created, so concurrent writers of one id see it once.
func (r *Repo) Put(ctx context.Context, collection string, doc *domdoc.Document) (bool, error) {
	body, err := json.Marshal(doc.Fields())
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}
	stamp := r.now().UnixNano()

	res, err := r.db.ExecContext(ctx, r.bind(`INSERT INTO searchsync_records (collection, id, body, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (collection, id) DO NOTHING`),
		collection, doc.ID(), string(body), stamp,
	)
	if err != nil {
		return false, fmt.Errorf("insert %s/%s: %w", collection, doc.ID(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert %s/%s: %w", collection, doc.ID(), err)
	}
	if n == 1 {
		return true, nil
	}

	// A delete may land between the two statements; the upsert still leaves the record in place.
	_, err = r.db.ExecContext(ctx, r.bind(`INSERT INTO searchsync_records (collection, id, body, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`),
		collection, doc.ID(), string(body), stamp,
	)
	if err != nil {
		return false, fmt.Errorf("upsert %s/%s: %w", collection, doc.ID(), err)
	}
	return false, nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, collection, id string) (domdoc.Document, error) {
	var body string
	err := r.db.QueryRowContext(ctx,
		r.bind("SELECT body FROM searchsync_records WHERE collection = ? AND id = ?"),
		collection, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("select %s/%s: %w", collection, id, err)
	}

	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return domdoc.Document{}, fmt.Errorf("unmarshal record %s/%s: %w", collection, id, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return domdoc.Reconstruct(id, fields), nil
}

// Delete removes a record.
func (r *Repo) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx,
		r.bind("DELETE FROM searchsync_records WHERE collection = ? AND id = ?"),
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// bind rewrites ? placeholders for the configured dialect.
func (r *Repo) bind(query string) string {
	if r.placeholder != PlaceholderDollar {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
