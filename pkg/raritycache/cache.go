package raritycache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"wowprofile/pkg/logger"
)

const schema = `CREATE TABLE IF NOT EXISTS rarity (
	kind       TEXT    NOT NULL,
	id         INTEGER NOT NULL,
	rarity     INTEGER,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (kind, id)
)`

// Cache is a SQLite-backed rarity cache. It is safe for concurrent use.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	now    func() time.Time
	logger logger.Logger
}

// Entry is one stored rarity lookup.
type Entry struct {
	Kind      string
	ID        int
	Rarity    *int
	FetchedAt time.Time
}

// Open opens (creating if needed) the cache file at path. Entries older
// than ttl are treated as missing; a ttl of zero never expires entries.
func Open(path string, ttl time.Duration, log logger.Logger) (*Cache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if log == nil {
		log = logger.GetLogger()
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows a single writer; scrapes share one connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create rarity table: %w", err)
	}

	log.DebugWithFields("Rarity cache opened", map[string]interface{}{
		"path": cleanPath,
		"ttl":  ttl.String(),
	})

	return &Cache{
		db:     db,
		ttl:    ttl,
		now:    time.Now,
		logger: log.WithField("component", "raritycache"),
	}, nil
}

// Close closes the database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the stored rarity for kind and id. ok is false when there is
// no entry or the entry is older than the TTL. A fresh entry may still
// carry a nil rarity, meaning the page had none.
func (c *Cache) Get(ctx context.Context, kind string, id int) (rarity *int, ok bool, err error) {
	var (
		value     sql.NullInt64
		fetchedAt int64
	)
	err = c.db.QueryRowContext(ctx,
		`SELECT rarity, fetched_at FROM rarity WHERE kind = ? AND id = ?`,
		kind, id,
	).Scan(&value, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get rarity %s/%d: %w", kind, id, err)
	}

	if !c.fresh(time.UnixMilli(fetchedAt)) {
		return nil, false, nil
	}
	if !value.Valid {
		return nil, true, nil
	}
	v := int(value.Int64)
	return &v, true, nil
}

// Put stores rarity for kind and id, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, kind string, id int, rarity *int) error {
	var value sql.NullInt64
	if rarity != nil {
		value = sql.NullInt64{Int64: int64(*rarity), Valid: true}
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO rarity (kind, id, rarity, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, id) DO UPDATE SET rarity = excluded.rarity, fetched_at = excluded.fetched_at`,
		kind, id, value, c.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put rarity %s/%d: %w", kind, id, err)
	}
	return nil
}

// Entries lists every stored entry, freshest first.
func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT kind, id, rarity, fetched_at FROM rarity ORDER BY fetched_at DESC, kind, id`)
	if err != nil {
		return nil, fmt.Errorf("list rarity entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			value     sql.NullInt64
			fetchedAt int64
		)
		if err := rows.Scan(&e.Kind, &e.ID, &value, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan rarity entry: %w", err)
		}
		if value.Valid {
			v := int(value.Int64)
			e.Rarity = &v
		}
		e.FetchedAt = time.UnixMilli(fetchedAt).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes expired entries and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := c.now().Add(-c.ttl).UTC().UnixMilli()
	res, err := c.db.ExecContext(ctx, `DELETE FROM rarity WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune rarity cache: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		c.logger.DebugWithFields("Pruned rarity cache", map[string]interface{}{
			"removed": n,
		})
	}
	return n, nil
}

func (c *Cache) fresh(fetchedAt time.Time) bool {
	if c.ttl <= 0 {
		return true
	}
	return c.now().Sub(fetchedAt) < c.ttl
}
