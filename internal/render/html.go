package render

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/deckdown/deckdown/internal/deck"
	"github.com/deckdown/deckdown/internal/layout"
)

// HTMLTarget renders a resolved slide to an HTML fragment. Markdown content
// goes through goldmark; layout structure becomes flex containers whose
// percentages come from the resolved fractions, so the HTML surface agrees
// with the text surface on structure.
type HTMLTarget struct {
	md  goldmark.Markdown
	buf strings.Builder

	// fractions of the currently open column rows, innermost last.
	rows [][]float64
}

// NewHTML creates an HTMLTarget with table and strikethrough support.
func NewHTML() *HTMLTarget {
	return &HTMLTarget{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

// Fragment returns the rendered HTML.
func (t *HTMLTarget) Fragment() string { return t.buf.String() }

func (t *HTMLTarget) Text(content string, _ int, align layout.Align) {
	var md strings.Builder
	if err := t.md.Convert([]byte(content), &md); err != nil {
		// goldmark only fails on writer errors; fall back to escaped text.
		slog.Warn("markdown render failed", slog.String("error", err.Error()))
		md.Reset()
		md.WriteString("<pre>" + html.EscapeString(content) + "</pre>")
	}
	switch align {
	case layout.AlignCenter:
		fmt.Fprintf(&t.buf, `<div class="align-center">%s</div>`, md.String())
	case layout.AlignRight:
		fmt.Fprintf(&t.buf, `<div class="align-right">%s</div>`, md.String())
	default:
		t.buf.WriteString(md.String())
	}
	t.buf.WriteByte('\n')
}

func (t *HTMLTarget) Image(img *layout.ImageNode) {
	style := ""
	if img.Height > 0 {
		style = fmt.Sprintf(` style="height:%dem"`, img.Height)
	}
	fmt.Fprintf(&t.buf, `<img src="%s" alt="%s"%s>`+"\n",
		html.EscapeString(img.Path), html.EscapeString(img.Alt), style)
}

func (t *HTMLTarget) Spacer(lines int) {
	fmt.Fprintf(&t.buf, `<div class="spacer" style="height:%dem"></div>`+"\n", lines)
}

func (t *HTMLTarget) Divider(node *layout.DividerNode) {
	fmt.Fprintf(&t.buf, `<hr class="divider-%s">`+"\n", node.Style)
}

func (t *HTMLTarget) BeginColumns(_ []int, fractions []float64, _ int) {
	t.rows = append(t.rows, fractions)
	t.buf.WriteString(`<div class="columns">` + "\n")
}

func (t *HTMLTarget) BeginColumn(i, _ int) {
	fractions := t.rows[len(t.rows)-1]
	fmt.Fprintf(&t.buf, `<div class="column" style="width:%.1f%%">`+"\n", fractions[i]*100)
}

func (t *HTMLTarget) EndColumn() {
	t.buf.WriteString("</div>\n")
}

func (t *HTMLTarget) EndColumns() {
	t.rows = t.rows[:len(t.rows)-1]
	t.buf.WriteString("</div>\n")
}

func (t *HTMLTarget) BeginBox(title string, _, _ int) {
	t.buf.WriteString(`<div class="box">` + "\n")
	if title != "" {
		fmt.Fprintf(&t.buf, `<div class="box-title">%s</div>`+"\n", html.EscapeString(title))
	}
}

func (t *HTMLTarget) EndBox() {
	t.buf.WriteString("</div>\n")
}

// SlideHTML renders one resolved slide to a self-contained fragment,
// including any background image region.
func SlideHTML(res *layout.Resolved) string {
	t := NewHTML()
	Walk(res, t)
	content := t.Fragment()

	bg := res.Background
	if bg == nil {
		return content
	}

	img := fmt.Sprintf(`<img class="bg" src="%s" alt="%s">`,
		html.EscapeString(bg.Path), html.EscapeString(bg.Alt))
	switch bg.Placement {
	case deck.PlaceLeft:
		return fmt.Sprintf(`<div class="bg-split"><div class="bg-side" style="width:%d%%">%s</div><div class="bg-content">%s</div></div>`,
			sidePercent(res, res.MarginLeft), img, content)
	case deck.PlaceRight:
		return fmt.Sprintf(`<div class="bg-split"><div class="bg-content">%s</div><div class="bg-side" style="width:%d%%">%s</div></div>`,
			content, sidePercent(res, res.MarginRight), img)
	default:
		return fmt.Sprintf(`<div class="bg-full">%s</div>%s`, img, content)
	}
}

func sidePercent(res *layout.Resolved, margin int) int {
	if res.Width == 0 {
		return 50
	}
	return margin * 100 / res.Width
}
