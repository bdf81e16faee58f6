// Package deckservice coordinates storage, index, and rendering for decks.
package deckservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/deckdown/deckdown/internal/apperr"
	"github.com/deckdown/deckdown/internal/checksum"
	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/imgrender"
	"github.com/deckdown/deckdown/internal/index"
	"github.com/deckdown/deckdown/internal/layout"
	"github.com/deckdown/deckdown/internal/render"
	"github.com/deckdown/deckdown/internal/storage"
)

// Geometry is the default slide surface in character cells.
type Geometry struct {
	Width  int
	Height int
}

// DeckDetail is the full representation of a deck.
type DeckDetail struct {
	Path       string         `json:"path"`
	Title      string         `json:"title"`
	Theme      string         `json:"theme,omitempty"`
	Checksum   string         `json:"checksum"`
	SlideCount int            `json:"slide_count"`
	Slides     []SlideSummary `json:"slides"`
	Errors     []string       `json:"errors,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// SlideSummary is one slide in a deck outline.
type SlideSummary struct {
	Index    int    `json:"index"`
	Heading  string `json:"heading,omitempty"`
	HasNotes bool   `json:"has_notes"`
	Error    string `json:"error,omitempty"`
}

// SlideNotes pairs a slide with its speaker notes.
type SlideNotes struct {
	Index   int    `json:"index"`
	Heading string `json:"heading,omitempty"`
	Notes   string `json:"notes"`
}

// DeckListItem is a lightweight item in a list response.
type DeckListItem struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Theme      string    `json:"theme,omitempty"`
	SlideCount int       `json:"slide_count"`
	Checksum   string    `json:"checksum"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service coordinates storage, index, and render operations.
type Service struct {
	store  storage.Provider
	db     *index.DB
	global deck.Settings
	geo    Geometry
}

// NewService creates a new deck service. global holds the configured
// directive defaults; geo the default render surface.
func NewService(store storage.Provider, db *index.DB, global deck.Settings, geo Geometry) *Service {
	if geo.Width < 1 {
		geo.Width = 80
	}
	if geo.Height < 1 {
		geo.Height = 24
	}
	return &Service{store: store, db: db, global: global, geo: geo}
}

// Load reads a deck from storage and parses it.
func (s *Service) Load(ctx context.Context, path string) (*deck.Document, error) {
	data, err := s.Source(ctx, path)
	if err != nil {
		return nil, err
	}
	return deck.Parse(string(data)), nil
}

// Source returns the raw Markdown source of a deck.
func (s *Service) Source(_ context.Context, path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// GetDeck reads a deck from storage, parses it, and builds its outline.
func (s *Service) GetDeck(_ context.Context, path string) (*DeckDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDeckDetail(path, data), nil
}

// CreateDeck writes a new deck and indexes it.
func (s *Service) CreateDeck(_ context.Context, path string, content []byte) (*DeckDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexDeck(s.db, path, content); err != nil {
		return nil, err
	}
	return s.buildDeckDetail(path, content), nil
}

// UpdateDeck writes updated content with optimistic concurrency.
func (s *Service) UpdateDeck(_ context.Context, path string, content []byte, ifMatch string) (*DeckDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := index.IndexDeck(s.db, path, content); err != nil {
		return nil, err
	}
	return s.buildDeckDetail(path, content), nil
}

// DeleteDeck removes a deck from storage and index.
func (s *Service) DeleteDeck(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDeck(path)
}

// ListDecks returns paginated decks from the index.
func (s *Service) ListDecks(_ context.Context, limit, offset int, sort string) ([]DeckListItem, int, error) {
	rows, total, err := s.db.ListDecks(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DeckListItem, len(rows))
	for i, r := range rows {
		items[i] = DeckListItem{
			Path:       r.Path,
			Title:      r.Title,
			Theme:      r.Theme,
			SlideCount: r.SlideCount,
			Checksum:   r.Checksum,
			Error:      r.Error,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Notes returns the speaker notes of every slide that has them.
func (s *Service) Notes(ctx context.Context, path string) ([]SlideNotes, error) {
	doc, err := s.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	out := []SlideNotes{}
	for _, sl := range doc.Slides {
		if sl.Notes == "" {
			continue
		}
		out = append(out, SlideNotes{Index: sl.Index, Heading: sl.Title(), Notes: sl.Notes})
	}
	return out, nil
}

// slide returns the parsed document and one slide by index.
func (s *Service) slide(ctx context.Context, path string, idx int) (*deck.Document, *deck.Slide, error) {
	doc, err := s.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if idx < 0 || idx >= len(doc.Slides) {
		return nil, nil, fmt.Errorf("slide %d: %w", idx, apperr.ErrNotFound)
	}
	return doc, doc.Slides[idx], nil
}

// RenderSlideHTML renders one slide to an HTML fragment.
func (s *Service) RenderSlideHTML(ctx context.Context, path string, idx int) (string, error) {
	_, sl, err := s.slide(ctx, path, idx)
	if err != nil {
		return "", err
	}
	if sl.Err != nil {
		return "", sl.Err
	}
	res := layout.Resolve(sl, s.geo.Width, s.geo.Height)
	return render.SlideHTML(res), nil
}

// RenderSlideText renders one slide to a plain-text frame. Zero width or
// height fall back to the configured geometry; image handling follows the
// slide's effective image_mode.
func (s *Service) RenderSlideText(ctx context.Context, path string, idx, width, height int) (string, error) {
	doc, sl, err := s.slide(ctx, path, idx)
	if err != nil {
		return "", err
	}
	if sl.Err != nil {
		return "", sl.Err
	}
	if width < 1 {
		width = s.geo.Width
	}
	if height < 1 {
		height = s.geo.Height
	}
	settings := doc.SettingsFor(sl, s.global)
	res := layout.Resolve(sl, width, height)
	return render.Frame(res, imgrender.Func(settings.ImageMode)), nil
}

// buildDeckDetail constructs a DeckDetail from raw data without re-reading the file.
func (s *Service) buildDeckDetail(path string, data []byte) *DeckDetail {
	doc := deck.Parse(string(data))

	title := doc.Meta.Title
	if title == "" && len(doc.Slides) > 0 {
		title = doc.Slides[0].Title()
	}
	theme := doc.Meta.Theme
	if doc.Directives.Theme != nil {
		theme = *doc.Directives.Theme
	}

	slides := make([]SlideSummary, len(doc.Slides))
	for i, sl := range doc.Slides {
		slides[i] = SlideSummary{
			Index:    sl.Index,
			Heading:  sl.Title(),
			HasNotes: sl.Notes != "",
		}
		if sl.Err != nil {
			slides[i].Error = sl.Err.Error()
		}
	}
	errs := make([]string, len(doc.Errors))
	for i, e := range doc.Errors {
		errs[i] = e.Error()
	}

	return &DeckDetail{
		Path:       path,
		Title:      title,
		Theme:      theme,
		Checksum:   checksum.Sum(data),
		SlideCount: len(doc.Slides),
		Slides:     slides,
		Errors:     errs,
		UpdatedAt:  time.Now(),
	}
}
