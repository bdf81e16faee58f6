// Package deck implements the presentation document model: frontmatter and
// directive extraction, fence-aware slide splitting, and the fenced-div block
// parser that turns one Markdown file into an ordered sequence of slide
// block trees.
package deck

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Meta holds the presentation metadata read from YAML frontmatter.
// Raw keeps every frontmatter key for callers that want more than the
// recognized fields.
type Meta struct {
	Title  string
	Author string
	Date   string
	Theme  string
	Raw    map[string]any
}

// Document is one fully parsed presentation. It is immutable after Parse;
// live reload replaces the whole Document rather than patching it.
type Document struct {
	Meta       Meta
	Directives Directives // document-level <!-- deck --> block
	Slides     []*Slide
	Errors     []*StructuralError // structural errors, one per failed slide
}

// Slide is one presentation unit. Index is the navigation order. Blocks is
// the root sequence container and is never nil, even for an empty slide or
// a slide that failed to parse.
type Slide struct {
	Index       int
	Blocks      []Block
	Notes       string
	Directives  Directives // per-slide overrides
	Incremental *bool      // <!-- incremental --> / <!-- no-incremental -->
	Err         *StructuralError
}

// Title returns the slide's first Markdown heading, or empty.
func (s *Slide) Title() string {
	for _, b := range s.Blocks {
		t, ok := b.(*Text)
		if !ok {
			continue
		}
		if h := firstHeading(t.Content); h != "" {
			return h
		}
	}
	return ""
}

// Ok reports whether the slide parsed without a structural error.
func (s *Slide) Ok() bool { return s.Err == nil }

// PlainText returns the slide's Markdown content with layout structure
// flattened, in source order. Used for indexing and search.
func (s *Slide) PlainText() string {
	var out []string
	collectText(s.Blocks, &out)
	return strings.Join(out, "\n")
}

func collectText(blocks []Block, out *[]string) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *Text:
			*out = append(*out, v.Content)
		case *Image:
			if v.Alt != "" {
				*out = append(*out, v.Alt)
			}
		case *Columns:
			for _, c := range v.Children {
				collectText(c.Blocks, out)
			}
		case *Center:
			collectText(v.Blocks, out)
		case *Right:
			collectText(v.Blocks, out)
		case *Box:
			if v.Title != "" {
				*out = append(*out, v.Title)
			}
			collectText(v.Blocks, out)
		}
	}
}

func metaFrom(fm map[string]any) Meta {
	m := Meta{Raw: fm}
	m.Title = metaString(fm, "title")
	m.Author = metaString(fm, "author")
	m.Date = metaString(fm, "date")
	m.Theme = metaString(fm, "theme")
	return m
}

func metaString(fm map[string]any, key string) string {
	if fm == nil {
		return ""
	}
	switch v := fm[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Handle is an atomically swapped reference to the current Document.
// Live reload builds a new Document and calls Swap; concurrent renderers
// never observe a torn update, only the previous or the next whole tree.
type Handle struct {
	ptr atomic.Pointer[Document]
}

// NewHandle creates a Handle holding doc (which may be nil).
func NewHandle(doc *Document) *Handle {
	h := &Handle{}
	if doc != nil {
		h.ptr.Store(doc)
	}
	return h
}

// Current returns the document most recently stored, or nil.
func (h *Handle) Current() *Document { return h.ptr.Load() }

// Swap installs doc as the current document. Last writer wins.
func (h *Handle) Swap(doc *Document) { h.ptr.Store(doc) }
