// Package export renders a parsed deck into distributable artifacts: a
// standalone HTML presentation, per-slide plain-text frames, and per-slide
// SVG files.
package export

import (
	"fmt"

	"github.com/deckdown/deckdown/internal/deck"
)

// Options controls the export surface and directive defaults.
type Options struct {
	// Width and Height of the slide surface in character cells.
	Width  int
	Height int
	// Global directive defaults, overridden per document and per slide.
	Global deck.Settings
	// Concurrency bounds parallel slide rendering; 0 means one worker per
	// available CPU.
	Concurrency int
}

func (o Options) normalized() Options {
	if o.Width < 1 {
		o.Width = 80
	}
	if o.Height < 1 {
		o.Height = 24
	}
	return o
}

// slideFilename names per-slide output files. Slides are numbered from 1 in
// filenames to match what presenters see on screen.
func slideFilename(idx int, ext string) string {
	return fmt.Sprintf("slide-%03d.%s", idx+1, ext)
}
