// Package render defines the contract every output surface implements and
// the walker that drives a resolved slide layout through it. Targets are
// free to differ in visual rendition but not in structure: sibling order,
// column widths, spacer counts, divider glyphs and per-line alignment all
// come from the resolved tree and must survive unchanged.
package render

import (
	"github.com/deckdown/deckdown/internal/layout"
)

// Target is implemented by every render surface (terminal text, HTML, SVG,
// and external adapters). Walk calls these methods in document order;
// container methods bracket their children.
type Target interface {
	// Text renders Markdown content into a region of the given width, with
	// the alignment applied to every wrapped line independently.
	Text(content string, width int, align layout.Align)

	// Image renders an inline image into its resolved region.
	Image(img *layout.ImageNode)

	// Spacer emits exactly lines blank lines, regardless of surface width.
	Spacer(lines int)

	// Divider emits a horizontal rule of the given style across width cells.
	Divider(node *layout.DividerNode)

	// BeginColumns starts a column row; widths holds the resolved cell width
	// of each column and fractions their normalized shares.
	BeginColumns(widths []int, fractions []float64, gap int)
	// BeginColumn starts column i of the current row.
	BeginColumn(i, width int)
	EndColumn()
	EndColumns()

	// BeginBox starts a bordered region; children render at innerWidth.
	BeginBox(title string, width, innerWidth int)
	EndBox()
}

// Walk drives a resolved slide through a target, preserving the relative
// order of siblings.
func Walk(res *layout.Resolved, t Target) {
	walkNodes(res.Nodes, t)
}

func walkNodes(nodes []layout.Node, t Target) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *layout.TextNode:
			t.Text(v.Content, v.Width, v.Align)
		case *layout.ImageNode:
			t.Image(v)
		case *layout.SpacerNode:
			t.Spacer(v.Lines)
		case *layout.DividerNode:
			t.Divider(v)
		case *layout.BoxNode:
			t.BeginBox(v.Title, v.Width, v.InnerWidth)
			walkNodes(v.Children, t)
			t.EndBox()
		case *layout.ColumnsNode:
			widths := make([]int, len(v.Columns))
			fractions := make([]float64, len(v.Columns))
			for i, c := range v.Columns {
				widths[i] = c.Width
				fractions[i] = c.Fraction
			}
			t.BeginColumns(widths, fractions, v.Gap)
			for i, c := range v.Columns {
				t.BeginColumn(i, c.Width)
				walkNodes(c.Children, t)
				t.EndColumn()
			}
			t.EndColumns()
		}
	}
}
