package ioingest

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// ResponseCache stores raw source response bodies per external id in a
// local SQLite file, so re-ingests and debugging sessions do not hit
// the external API again.
type ResponseCache struct {
	db *sql.DB
}

// OpenCache opens (and if needed initializes) the response cache file.
func OpenCache(path string) (*ResponseCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, CacheError("open", err)
	}

	q := `
		CREATE TABLE IF NOT EXISTS source_responses (
			external_id INTEGER PRIMARY KEY,
			body BLOB NOT NULL,
			fetched_at TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(q); err != nil {
		_ = db.Close()
		return nil, CacheError("init", err)
	}

	return &ResponseCache{db: db}, nil
}

// Close releases the cache file.
func (c *ResponseCache) Close() error {
	return c.db.Close()
}

// Get returns the cached body for an external id, or (nil, false).
func (c *ResponseCache) Get(extID int64) ([]byte, bool) {
	var body []byte
	err := c.db.QueryRow(
		"SELECT body FROM source_responses WHERE external_id = ?",
		extID,
	).Scan(&body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Put stores a response body for an external id, replacing any
// previous one.
func (c *ResponseCache) Put(extID int64, body []byte) error {
	q := `
		INSERT INTO source_responses (external_id, body, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (external_id) DO UPDATE SET
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`
	if _, err := c.db.Exec(q, extID, body, time.Now().UTC()); err != nil {
		return CacheError("put", err)
	}
	return nil
}
