package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/deckdown/deckdown/internal/apperr"
	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/deckservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

// deckPath extracts the deck path from the URL (everything after /api/decks/).
// Supports encoded slashes from OpenAPI clients (e.g. talks%2Fdeck.md).
func deckPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDecks handles GET /api/decks.
//
//	@Summary		List decks with optional pagination
//	@Tags			decks
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated, title, path)
//	@Success		200		{object}	DeckListResponse
//	@Security		BearerAuth
//	@Router			/decks [get]
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	sort := q.Get("sort")

	items, total, err := h.svc.ListDecks(r.Context(), limit, offset, sort)
	if err != nil {
		slog.Error("list decks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"decks": items,
		"total": total,
	})
}

// GetDeck handles GET /api/decks/*.
//
//	@Summary		Get a single deck outline by path
//	@Tags			decks
//	@Produce		json
//	@Param			path	path		string	true	"Deck path"
//	@Success		200		{object}	DeckDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{path} [get]
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	path := deckPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	d, err := h.svc.GetDeck(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get deck failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CreateDeck handles POST /api/decks.
//
//	@Summary		Create a new deck
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDeckRequest	true	"Deck to create"
//	@Success		201		{object}	DeckDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks [post]
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	d, err := h.svc.CreateDeck(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("deck already exists"))
		} else {
			slog.Error("create deck failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// UpdateDeck handles PUT /api/decks/*.
//
//	@Summary		Update a deck with optimistic concurrency
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Deck path"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateDeckRequest	true	"Updated content"
//	@Success		200		{object}	DeckDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{path} [put]
func (h *Handler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := deckPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	d, err := h.svc.UpdateDeck(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("update deck failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteDeck handles DELETE /api/decks/*.
//
//	@Summary		Delete a deck
//	@Tags			decks
//	@Param			path	path	string	true	"Deck path"
//	@Success		204		"Deck deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{path} [delete]
func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	path := deckPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteDeck(r.Context(), path); err != nil {
		slog.Error("delete deck failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenderSlide handles GET /api/slides.
//
//	@Summary		Render one slide
//	@Tags			slides
//	@Produce		html
//	@Param			deck	query		string	true	"Deck path"
//	@Param			index	query		int		true	"Slide index (0-based)"
//	@Param			format	query		string	false	"Output format"	Enums(html, text)
//	@Param			width	query		int		false	"Surface width in cells (text format)"
//	@Param			height	query		int		false	"Surface height in cells (text format)"
//	@Success		200		{string}	string
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/slides [get]
func (h *Handler) RenderSlide(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("deck")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'deck' is required"))
		return
	}
	idx, err := strconv.Atoi(q.Get("index"))
	if err != nil || idx < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'index' must be a non-negative integer"))
		return
	}

	format := q.Get("format")
	var out, contentType string
	switch format {
	case "", "html":
		contentType = "text/html; charset=utf-8"
		out, err = h.svc.RenderSlideHTML(r.Context(), path, idx)
	case "text":
		width, _ := strconv.Atoi(q.Get("width"))
		height, _ := strconv.Atoi(q.Get("height"))
		contentType = "text/plain; charset=utf-8"
		out, err = h.svc.RenderSlideText(r.Context(), path, idx, width, height)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("unknown format: "+format))
		return
	}
	if err != nil {
		var serr *deck.StructuralError
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.As(err, &serr):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(serr.Error()))
		default:
			slog.Error("render slide failed", slog.String("path", path), slog.Int("index", idx), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(out))
}

// Notes handles GET /api/notes.
//
//	@Summary		Get speaker notes for every slide of a deck
//	@Tags			slides
//	@Produce		json
//	@Param			deck	query		string	true	"Deck path"
//	@Success		200		{object}	NotesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("deck")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'deck' is required"))
		return
	}
	notes, err := h.svc.Notes(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("notes failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deck":  path,
		"notes": notes,
	})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across slides
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}
