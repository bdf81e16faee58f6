package render

import (
	"fmt"
	"strings"

	"github.com/deckdown/deckdown/internal/layout"
)

// ImageFunc turns an image path into character-cell lines for a region of
// the given size. Returning false falls back to a textual placeholder.
type ImageFunc func(path string, width, height int) ([]string, bool)

// TextTarget renders a resolved slide to plain text lines. It is the
// reference Target implementation: exporters and the contract tests both
// lean on it.
type TextTarget struct {
	images ImageFunc

	root *textCell
	// Sinks for open containers; the innermost collects output.
	sinks []*textCell
	// Open column rows, innermost last.
	columns []*columnRow
	// Open boxes, innermost last.
	boxes []*boxRegion
}

type textCell struct {
	lines []string
}

type columnRow struct {
	widths []int
	gap    int
	cells  [][]string
}

type boxRegion struct {
	title      string
	width      int
	innerWidth int
}

// NewText creates a TextTarget. images may be nil; inline images then render
// as a placeholder line.
func NewText(images ImageFunc) *TextTarget {
	root := &textCell{}
	return &TextTarget{images: images, root: root, sinks: []*textCell{root}}
}

// Lines returns everything rendered so far.
func (t *TextTarget) Lines() []string { return t.root.lines }

func (t *TextTarget) sink() *textCell { return t.sinks[len(t.sinks)-1] }

func (t *TextTarget) Text(content string, width int, align layout.Align) {
	s := t.sink()
	for _, line := range layout.Wrap(content, width) {
		s.lines = append(s.lines, layout.AlignLine(line, width, align))
	}
}

func (t *TextTarget) Image(img *layout.ImageNode) {
	s := t.sink()
	if t.images != nil {
		height := img.Height
		if height == 0 {
			height = img.Width / 2 // terminal cells are roughly 1:2
		}
		if lines, ok := t.images(img.Path, img.Width, height); ok {
			for _, line := range lines {
				s.lines = append(s.lines, layout.AlignLine(line, img.Width, img.Align))
			}
			return
		}
	}
	s.lines = append(s.lines, layout.AlignLine(fmt.Sprintf("[image: %s]", img.Path), img.Width, img.Align))
}

func (t *TextTarget) Spacer(lines int) {
	s := t.sink()
	for range lines {
		s.lines = append(s.lines, "")
	}
}

func (t *TextTarget) Divider(node *layout.DividerNode) {
	s := t.sink()
	s.lines = append(s.lines, strings.Repeat(string(node.Glyph), node.Width))
}

func (t *TextTarget) BeginColumns(widths []int, _ []float64, gap int) {
	t.columns = append(t.columns, &columnRow{widths: widths, gap: gap})
}

func (t *TextTarget) BeginColumn(_, _ int) {
	t.sinks = append(t.sinks, &textCell{})
}

func (t *TextTarget) EndColumn() {
	cell := t.sink()
	t.sinks = t.sinks[:len(t.sinks)-1]
	row := t.columns[len(t.columns)-1]
	row.cells = append(row.cells, cell.lines)
}

func (t *TextTarget) EndColumns() {
	row := t.columns[len(t.columns)-1]
	t.columns = t.columns[:len(t.columns)-1]
	s := t.sink()
	s.lines = append(s.lines, mergeColumns(row)...)
}

func (t *TextTarget) BeginBox(title string, width, innerWidth int) {
	t.boxes = append(t.boxes, &boxRegion{title: title, width: width, innerWidth: innerWidth})
	t.sinks = append(t.sinks, &textCell{})
}

func (t *TextTarget) EndBox() {
	cell := t.sink()
	t.sinks = t.sinks[:len(t.sinks)-1]
	box := t.boxes[len(t.boxes)-1]
	t.boxes = t.boxes[:len(t.boxes)-1]
	s := t.sink()
	s.lines = append(s.lines, frameBox(box, cell.lines)...)
}

// mergeColumns lays column cells side by side, padding each line to its
// column width and shorter columns to the row height.
func mergeColumns(row *columnRow) []string {
	height := 0
	for _, cell := range row.cells {
		if len(cell) > height {
			height = len(cell)
		}
	}

	gap := strings.Repeat(" ", row.gap)
	out := make([]string, 0, height)
	for r := range height {
		parts := make([]string, len(row.cells))
		for c, cell := range row.cells {
			line := ""
			if r < len(cell) {
				line = cell[r]
			}
			parts[c] = layout.PadRight(line, row.widths[c])
		}
		out = append(out, strings.TrimRight(strings.Join(parts, gap), " "))
	}
	return out
}

// frameBox draws a single-line border around content, embedding the title in
// the top edge.
func frameBox(box *boxRegion, content []string) []string {
	inner := box.innerWidth
	top := buildBoxTop(box.title, inner)
	out := make([]string, 0, len(content)+2)
	out = append(out, top)
	for _, line := range content {
		out = append(out, "│ "+layout.PadRight(line, inner)+" │")
	}
	out = append(out, "└"+strings.Repeat("─", inner+2)+"┘")
	return out
}

func buildBoxTop(title string, inner int) string {
	if title == "" {
		return "┌" + strings.Repeat("─", inner+2) + "┐"
	}
	label := " " + title + " "
	span := inner + 2
	if len([]rune(label)) > span {
		label = string([]rune(label)[:span])
	}
	rest := span - len([]rune(label)) - 1
	if rest < 0 {
		rest = 0
	}
	return "┌─" + label + strings.Repeat("─", rest) + "┐"
}

// Frame renders one resolved slide to a complete text frame, composing the
// content region with any margin reserved by a left/right background image.
func Frame(res *layout.Resolved, images ImageFunc) string {
	t := NewText(images)
	Walk(res, t)
	content := t.Lines()

	if res.MarginLeft == 0 && res.MarginRight == 0 {
		return strings.Join(content, "\n")
	}

	side := marginLines(res, images)
	height := max(len(content), len(side))

	out := make([]string, 0, height)
	for r := range height {
		contentLine := ""
		if r < len(content) {
			contentLine = content[r]
		}
		contentLine = layout.PadRight(contentLine, res.ContentWidth)
		sideLine := ""
		if r < len(side) {
			sideLine = side[r]
		}
		if res.MarginLeft > 0 {
			sideLine = layout.PadRight(sideLine, res.MarginLeft)
			out = append(out, strings.TrimRight(sideLine+contentLine, " "))
		} else {
			out = append(out, strings.TrimRight(contentLine+sideLine, " "))
		}
	}
	return strings.Join(out, "\n")
}

func marginLines(res *layout.Resolved, images ImageFunc) []string {
	bg := res.Background
	if bg == nil {
		return nil
	}
	if images != nil {
		if lines, ok := images(bg.Path, bg.Width, bg.Height); ok {
			return lines
		}
	}
	return []string{fmt.Sprintf("[image: %s]", bg.Path)}
}
