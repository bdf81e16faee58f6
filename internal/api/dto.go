package api

import (
	"github.com/deckdown/deckdown/internal/deckservice"
)

// CreateDeckRequest is the request body for creating a deck.
type CreateDeckRequest struct {
	Path    string `json:"path" example:"talks/hello.md" validate:"required"`
	Content string `json:"content" example:"# Hello\nWorld" validate:"required"`
}

// UpdateDeckRequest is the request body for updating a deck.
type UpdateDeckRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// DeckDetail is the full deck response type (aliased from the domain layer).
type DeckDetail = deckservice.DeckDetail

// DeckListItem is a lightweight item in a list response (aliased from the domain layer).
type DeckListItem = deckservice.DeckListItem

// DeckListResponse wraps paginated deck listings.
type DeckListResponse struct {
	Decks []DeckListItem `json:"decks" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Deck    string `json:"deck" example:"talks/hello.md" validate:"required"`
	Slide   int    `json:"slide" example:"3" validate:"required"`
	Heading string `json:"heading" example:"Hello" validate:"required"`
	Snippet string `json:"snippet" example:"...matched text..." validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// NotesResponse wraps the speaker notes of one deck.
type NotesResponse struct {
	Deck  string                   `json:"deck" example:"talks/hello.md" validate:"required"`
	Notes []deckservice.SlideNotes `json:"notes" validate:"required"`
}

// AssetUploadResponse is returned after a successful asset upload.
type AssetUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/assets/image.png" validate:"required"`
}
