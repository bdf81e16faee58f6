package index

import (
	"log/slog"

	"github.com/deckdown/deckdown/internal/checksum"
	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed decks are parsed and upserted
//   - decks removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDeck(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDeck(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexDeck parses data and upserts the deck and its slides into the DB.
// Exported so the deck service can reuse it on writes.
func IndexDeck(db *DB, path string, data []byte) error {
	doc := deck.Parse(string(data))

	row := DeckRow{
		Path:       path,
		Title:      deckTitle(doc),
		Theme:      deckTheme(doc),
		SlideCount: len(doc.Slides),
		Checksum:   checksum.Sum(data),
	}
	if len(doc.Errors) > 0 {
		row.Error = doc.Errors[0].Error()
	}

	slides := make([]SlideRow, 0, len(doc.Slides))
	for _, s := range doc.Slides {
		slides = append(slides, SlideRow{
			Deck:    path,
			Index:   s.Index,
			Heading: s.Title(),
			Body:    s.PlainText(),
			Notes:   s.Notes,
		})
	}
	return db.UpsertDeck(row, slides)
}

// deckTitle prefers the frontmatter title and falls back to the first
// slide's heading.
func deckTitle(doc *deck.Document) string {
	if doc.Meta.Title != "" {
		return doc.Meta.Title
	}
	if len(doc.Slides) > 0 {
		return doc.Slides[0].Title()
	}
	return ""
}

func deckTheme(doc *deck.Document) string {
	if doc.Directives.Theme != nil {
		return *doc.Directives.Theme
	}
	return doc.Meta.Theme
}
