package export

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/layout"
	"github.com/deckdown/deckdown/internal/render"
)

// Cell geometry for SVG output. A character cell maps to a fixed-size
// monospace glyph box.
const (
	svgCellW = 9
	svgCellH = 18
)

// SVG renders every slide of doc to an SVG file under dir, one file per
// slide. The slide is laid out in character cells and emitted as monospace
// <text> rows, so SVG output is structurally identical to the text frame.
func SVG(ctx context.Context, doc *deck.Document, dir string, opts Options) error {
	opts = opts.normalized()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: mkdir: %w", err)
	}

	workers := opts.Concurrency
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, sl := range doc.Slides {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if sl.Err != nil {
				return fmt.Errorf("export: %w", sl.Err)
			}
			res := layout.Resolve(sl, opts.Width, opts.Height)
			frame := render.Frame(res, nil)

			name := filepath.Join(dir, slideFilename(sl.Index, "svg"))
			if err := os.WriteFile(name, slideSVG(frame, opts.Width, opts.Height), 0o644); err != nil {
				return fmt.Errorf("export: write %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// slideSVG converts one rendered text frame into an SVG document.
func slideSVG(frame string, width, height int) []byte {
	w := width * svgCellW
	h := height * svgCellH

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", w, h, w, h)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#1b1b1f"/>`+"\n", w, h)
	fmt.Fprintf(&b, `<g font-family="monospace" font-size="%d" fill="#e6e6e6" xml:space="preserve">`+"\n", svgCellH-4)

	for i, line := range strings.Split(frame, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		y := (i + 1) * svgCellH
		fmt.Fprintf(&b, `<text x="0" y="%d">%s</text>`+"\n", y, html.EscapeString(line))
	}

	b.WriteString("</g>\n</svg>\n")
	return []byte(b.String())
}
