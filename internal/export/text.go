package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/imgrender"
	"github.com/deckdown/deckdown/internal/layout"
	"github.com/deckdown/deckdown/internal/render"
)

// Text renders every slide of doc to a plain-text frame under dir, one file
// per slide. Slides render concurrently; a slide with a structural error
// fails the whole export so broken decks never ship partially.
func Text(ctx context.Context, doc *deck.Document, dir string, opts Options) error {
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
			settings := doc.SettingsFor(sl, opts.Global)
			res := layout.Resolve(sl, opts.Width, opts.Height)
			frame := render.Frame(res, imgrender.Func(settings.ImageMode))

			name := filepath.Join(dir, slideFilename(sl.Index, "txt"))
			if err := os.WriteFile(name, []byte(frame+"\n"), 0o644); err != nil {
				return fmt.Errorf("export: write %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
