package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deckdown/deckdown/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// libraryRoot is used to resolve the assets directory.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string, sseHandler http.Handler, libraryRoot string) chi.Router {
	h := NewHandler(svc)
	assets := NewAssetHandler(libraryRoot)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Decks CRUD.
	r.Get("/decks", h.ListDecks)
	r.Post("/decks", h.CreateDeck)
	r.Get("/decks/*", h.GetDeck)
	r.Put("/decks/*", h.UpdateDeck)
	r.Delete("/decks/*", h.DeleteDeck)

	// Slide rendering and speaker notes. Deck paths contain slashes, so
	// these take the deck as a query parameter instead of a second wildcard.
	r.Get("/slides", h.RenderSlide)
	r.Get("/notes", h.Notes)

	// Search.
	r.Get("/search", h.Search)

	// Deck image assets (auth-protected upload, open serving happens on the
	// public router).
	r.Post("/assets", assets.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
