// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Deckdown tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/deckdown/deckdown/internal/deckservice"
	"github.com/deckdown/deckdown/internal/storage"
)

// Server wraps the MCP server with Deckdown tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *deckservice.Service
	store storage.Provider
}

// New creates a new MCP server with all Deckdown tools registered. store is
// used for raw asset writes that bypass the deck parse path.
func New(svc *deckservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Deckdown",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_decks",
		mcp.WithDescription("List all slide decks in the library with title and slide count."),
	), s.listDecks)

	s.mcp.AddTool(mcp.NewTool("deck_outline",
		mcp.WithDescription("Return the outline of a deck: one entry per slide with heading, "+
			"notes flag, and any structural error."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the deck (e.g. talks/demo.md)")),
	), s.deckOutline)

	s.mcp.AddTool(mcp.NewTool("read_deck",
		mcp.WithDescription("Read the raw Markdown source of a deck."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the deck")),
	), s.readDeck)

	s.mcp.AddTool(mcp.NewTool("create_deck",
		mcp.WithDescription("Create a new slide deck at the specified path. "+
			"Content MUST follow the canonical deck format (slides separated by ---, "+
			"optional <!-- deck --> directives, ::: layout blocks, ??? speaker notes). "+
			"Read the contract first via the get_deck_contract tool or the "+
			"deckdown://deck-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new deck (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the Deckdown deck format contract")),
	), s.createDeck)

	s.mcp.AddTool(mcp.NewTool("get_slide",
		mcp.WithDescription("Render one slide of a deck as a plain-text frame."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the deck")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based slide index")),
	), s.getSlide)

	s.mcp.AddTool(mcp.NewTool("get_notes",
		mcp.WithDescription("Return the speaker notes of every slide in a deck that has them."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the deck")),
	), s.getNotes)

	s.mcp.AddTool(mcp.NewTool("search_slides",
		mcp.WithDescription("Full-text search through slide headings, body text, and speaker notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchSlides)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Download an image from a URL (or decode a data: URI) and store it "+
			"in the library's assets directory. Returns a markdownImage field ready to paste "+
			"into a slide."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or base64 data: URI of the asset")),
		mcp.WithString("filename", mcp.Description("Optional filename override (extension decides the format)")),
	), s.uploadAsset)

	s.mcp.AddTool(mcp.NewTool("get_deck_contract",
		mcp.WithDescription("Returns the canonical Deckdown deck format contract. "+
			"Call this before creating or updating decks to ensure correct structure."),
	), s.getDeckContract)

	// Resource: deck format contract.
	s.mcp.AddResource(
		mcp.NewResource("deckdown://deck-format", "Deck Format Contract",
			mcp.WithResourceDescription("Canonical Markdown deck format that all decks must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDeckFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDecks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListDecks(ctx, 200, 0, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deckOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetDeck(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := s.svc.Source(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(source)), nil
}

func (s *Server) createDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detail, err := s.svc.CreateDeck(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(detail.Errors) > 0 {
		return mcp.NewToolResultText(fmt.Sprintf("created with structural errors: %s\n%s",
			path, strings.Join(detail.Errors, "\n"))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%d slides)", path, detail.SlideCount)), nil
}

func (s *Server) getSlide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	idx, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	frame, err := s.svc.RenderSlideText(ctx, path, idx, 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(frame), nil
}

func (s *Server) getNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.Notes(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no speaker notes found"), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchSlides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDeckContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DeckFormatContract), nil
}

func (s *Server) readDeckFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "deckdown://deck-format",
			MIMEType: "text/markdown",
			Text:     DeckFormatContract,
		},
	}, nil
}
