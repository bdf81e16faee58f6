package index

import (
	"fmt"
	"time"
)

// DeckRow represents a row in the decks table.
type DeckRow struct {
	Path       string
	Title      string
	Theme      string
	SlideCount int
	// Error holds the first structural error message, empty when the deck
	// parses cleanly.
	Error     string
	Checksum  string
	UpdatedAt time.Time
}

// SlideRow represents one slide of an indexed deck.
type SlideRow struct {
	Deck    string
	Index   int
	Heading string
	Body    string
	Notes   string
}

// SearchResult represents one search hit, addressed by deck path and slide index.
type SearchResult struct {
	Deck    string
	Slide   int
	Heading string
	Snippet string
}

// UpsertDeck replaces a deck row and all its slides within a transaction.
func (db *DB) UpsertDeck(d DeckRow, slides []SlideRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO decks (path, title, theme, slide_count, error, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			theme       = excluded.theme,
			slide_count = excluded.slide_count,
			error       = excluded.error,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, d.Path, d.Title, d.Theme, d.SlideCount, d.Error, d.Checksum, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert deck: %w", err)
	}

	// Replace slides: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM slides WHERE deck = ?`, d.Path)
	ftsDelete(tx, d.Path)
	if len(slides) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO slides (deck, idx, heading, body, notes) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare slide insert: %w", err)
		}
		defer stmt.Close()
		for _, s := range slides {
			if _, err := stmt.Exec(d.Path, s.Index, s.Heading, s.Body, s.Notes); err != nil {
				return fmt.Errorf("index: insert slide: %w", err)
			}
			if err := ftsUpsert(tx, d.Path, s.Index, s.Heading, s.Body, s.Notes); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteDeck removes a deck, its slides, and FTS entries.
func (db *DB) DeleteDeck(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM slides WHERE deck = ?`, path)
	_, _ = tx.Exec(`DELETE FROM decks WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a deck, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM decks WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetDeck returns a single deck row, or nil when not indexed.
func (db *DB) GetDeck(path string) (*DeckRow, error) {
	var d DeckRow
	err := db.conn.QueryRow(`
		SELECT path, title, theme, slide_count, error, checksum, updated_at
		FROM decks WHERE path = ?
	`, path).Scan(&d.Path, &d.Title, &d.Theme, &d.SlideCount, &d.Error, &d.Checksum, &d.UpdatedAt)
	if err != nil {
		return nil, nil //nolint:nilnil // not found
	}
	return &d, nil
}

// ListDecks returns a page of deck rows plus the total count.
// sort is "title", "path" or "updated" (default).
func (db *DB) ListDecks(limit, offset int, sort string) ([]DeckRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	order := "updated_at DESC"
	switch sort {
	case "title":
		order = "title COLLATE NOCASE ASC"
	case "path":
		order = "path ASC"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM decks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count decks: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, title, theme, slide_count, error, checksum, updated_at
		FROM decks ORDER BY `+order+` LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list decks: %w", err)
	}
	defer rows.Close()

	var out []DeckRow
	for rows.Next() {
		var d DeckRow
		if err := rows.Scan(&d.Path, &d.Title, &d.Theme, &d.SlideCount, &d.Error, &d.Checksum, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// Slides returns all indexed slides of a deck in order.
func (db *DB) Slides(path string) ([]SlideRow, error) {
	rows, err := db.conn.Query(`
		SELECT deck, idx, heading, body, notes
		FROM slides WHERE deck = ? ORDER BY idx
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: slides: %w", err)
	}
	defer rows.Close()

	var out []SlideRow
	for rows.Next() {
		var s SlideRow
		if err := rows.Scan(&s.Deck, &s.Index, &s.Heading, &s.Body, &s.Notes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed deck.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM decks`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
