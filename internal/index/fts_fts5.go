//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS slides_fts USING fts5(
			deck UNINDEXED,
			idx UNINDEXED,
			heading,
			body,
			notes,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, deck string, idx int, heading, body, notes string) error {
	_, err := tx.Exec(`INSERT INTO slides_fts (deck, idx, heading, body, notes) VALUES (?, ?, ?, ?, ?)`,
		deck, idx, heading, body, notes)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, deck string) {
	_, _ = tx.Exec(`DELETE FROM slides_fts WHERE deck = ?`, deck)
}

// Search performs an FTS5 full-text search over slides and returns hits with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT deck,
		       idx,
		       heading,
		       snippet(slides_fts, 3, '<b>', '</b>', '...', 64)
		FROM slides_fts
		WHERE slides_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Deck, &r.Slide, &r.Heading, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
