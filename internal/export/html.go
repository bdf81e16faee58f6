package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/layout"
	"github.com/deckdown/deckdown/internal/render"
)

// HTML renders the whole deck into one self-contained HTML presentation:
// embedded stylesheet, one <section> per slide, arrow-key navigation, and
// speaker notes tucked into hidden <aside> elements. Slides with structural
// errors become visible error slides instead of failing the export, so a
// half-written deck can still be previewed.
func HTML(doc *deck.Document, opts Options) []byte {
	opts = opts.normalized()
	settings := opts.Global.Apply(doc.Directives)

	title := doc.Meta.Title
	if title == "" {
		title = "Presentation"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\n" + baseCSS + "</style>\n</head>\n")
	fmt.Fprintf(&b, "<body class=\"theme-%s\">\n", html.EscapeString(cssIdent(settings.Theme)))

	for _, sl := range doc.Slides {
		fmt.Fprintf(&b, "<section class=\"slide\" id=\"slide-%d\">\n", sl.Index+1)
		if sl.Err != nil {
			fmt.Fprintf(&b, "<div class=\"slide-error\">%s</div>\n", html.EscapeString(sl.Err.Error()))
		} else {
			res := layout.Resolve(sl, opts.Width, opts.Height)
			b.WriteString(render.SlideHTML(res))
		}
		if sl.Notes != "" {
			fmt.Fprintf(&b, "<aside class=\"notes\">%s</aside>\n", html.EscapeString(sl.Notes))
		}
		b.WriteString("</section>\n")
	}

	fmt.Fprintf(&b, "<footer><span id=\"pos\"></span> / %d</footer>\n", len(doc.Slides))
	b.WriteString("<script>\n" + navJS + "</script>\n</body>\n</html>\n")
	return []byte(b.String())
}

// cssIdent restricts a theme name to a safe CSS class suffix.
func cssIdent(s string) string {
	if s == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

const baseCSS = `html, body { margin: 0; height: 100%; font-family: system-ui, sans-serif; }
body { background: #1b1b1f; color: #e6e6e6; }
body.theme-light { background: #fafafa; color: #1b1b1f; }
.slide { display: none; box-sizing: border-box; height: 100vh; padding: 4rem 6rem; overflow: hidden; }
.slide.active { display: block; }
.slide-error { color: #e05c5c; font-family: monospace; white-space: pre-wrap; }
.columns { display: flex; gap: 2rem; }
.column { box-sizing: border-box; }
.align-center { text-align: center; }
.align-right { text-align: right; }
.box { border: 1px solid currentColor; border-radius: 4px; padding: 1rem; margin: 1rem 0; }
.box-title { font-weight: bold; margin-bottom: .5rem; }
.spacer { width: 100%; }
hr.divider-double { border: none; border-top: 3px double currentColor; }
hr.divider-thick { border: none; border-top: 4px solid currentColor; }
hr.divider-dashed { border: none; border-top: 1px dashed currentColor; }
.bg-split { display: flex; height: 100%; }
.bg-split .bg-content { flex: 1; }
.bg-side img, .bg-full img { width: 100%; height: 100%; object-fit: cover; }
.notes { display: none; }
footer { position: fixed; right: 1rem; bottom: .5rem; opacity: .6; font-size: .8rem; }
`

const navJS = `const slides = document.querySelectorAll('.slide');
let cur = 0;
function show(i) {
  cur = Math.max(0, Math.min(i, slides.length - 1));
  slides.forEach((s, j) => s.classList.toggle('active', j === cur));
  document.getElementById('pos').textContent = cur + 1;
  location.hash = 'slide-' + (cur + 1);
}
document.addEventListener('keydown', (e) => {
  if (e.key === 'ArrowRight' || e.key === ' ' || e.key === 'PageDown') show(cur + 1);
  if (e.key === 'ArrowLeft' || e.key === 'PageUp') show(cur - 1);
  if (e.key === 'Home') show(0);
  if (e.key === 'End') show(slides.length - 1);
});
const fromHash = parseInt((location.hash.match(/slide-(\d+)/) || [])[1], 10);
show(isNaN(fromHash) ? 0 : fromHash - 1);
`
