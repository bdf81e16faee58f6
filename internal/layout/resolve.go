// Package layout computes concrete layout geometry from an abstract slide
// block tree: column cell widths, spacer heights, divider glyphs, alignment
// and background-image margins. Resolution is a pure function of the tree
// and the available surface size, so independent render targets resolving
// the same slide always agree on structure.
package layout

import (
	"math"

	"github.com/deckdown/deckdown/internal/deck"
)

// Align is the per-line horizontal alignment instruction carried by resolved
// text and image nodes. Alignment applies to every wrapped line
// independently, not to the block as a whole.
type Align int

// Alignment values.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Gap is the number of blank cells between adjacent columns.
const Gap = 2

// MinFraction is the floor a column fraction is clamped to when explicit
// widths leave no room for auto columns.
const MinFraction = 0.01

// Node is one element of a resolved layout tree.
type Node interface {
	layoutNode()
}

// TextNode is Markdown content with its region width and line alignment.
type TextNode struct {
	Content string
	Width   int
	Align   Align
}

// ImageNode is an image with its resolved cell region.
type ImageNode struct {
	Path      string
	Alt       string
	Width     int
	Height    int // 0 means derive from the image's aspect ratio
	Align     Align
	Placement deck.ImagePlacement
	Fit       deck.ImageFit
}

// SpacerNode is a concrete count of blank lines, identical on every surface.
type SpacerNode struct {
	Lines int
}

// DividerNode is a horizontal rule with its glyph and span.
type DividerNode struct {
	Style deck.DividerStyle
	Glyph rune
	Width int
}

// BoxNode is a bordered region. InnerWidth is what the children were
// resolved against (border plus one cell of padding per side).
type BoxNode struct {
	Title      string
	Width      int
	InnerWidth int
	Children   []Node
}

// ColumnNode is one resolved column: its normalized fraction, its concrete
// cell width and its resolved children.
type ColumnNode struct {
	Fraction float64
	Width    int
	Children []Node
}

// ColumnsNode is a resolved row of columns.
type ColumnsNode struct {
	Width   int
	Gap     int
	Columns []ColumnNode
}

func (*TextNode) layoutNode()    {}
func (*ImageNode) layoutNode()   {}
func (*SpacerNode) layoutNode()  {}
func (*DividerNode) layoutNode() {}
func (*BoxNode) layoutNode()     {}
func (*ColumnsNode) layoutNode() {}

// Resolved is the complete layout for one slide on one surface.
type Resolved struct {
	Width  int
	Height int

	// ContentWidth is Width minus any margin reserved by a left/right
	// background image; columns subdivide only this region.
	ContentWidth int
	MarginLeft   int
	MarginRight  int

	// Background is the slide's background image, if any. Left/right
	// placements own the reserved margin; full backgrounds cover the slide.
	Background *ImageNode

	Nodes []Node
}

// Resolve computes the layout of one slide for a surface of the given size
// in cells. The tree is taken read-only and a fresh result is returned each
// call, so concurrent targets can resolve the same document. A non-positive
// size yields a degenerate one-cell layout rather than an error.
func Resolve(s *deck.Slide, width, height int) *Resolved {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	res := &Resolved{Width: width, Height: height, ContentWidth: width}

	blocks, bg := extractBackground(s.Blocks)
	if bg != nil {
		margin := width * bg.SizePercent / 100
		switch bg.Placement {
		case deck.PlaceLeft:
			res.MarginLeft = margin
		case deck.PlaceRight:
			res.MarginRight = margin
		case deck.PlaceBackground:
			margin = 0
		}
		res.ContentWidth = width - res.MarginLeft - res.MarginRight
		if res.ContentWidth < 1 {
			res.ContentWidth = 1
		}
		bgHeight := height
		bgWidth := margin
		if bg.Placement == deck.PlaceBackground {
			bgWidth = width
		}
		res.Background = &ImageNode{
			Path:      bg.Path,
			Alt:       bg.Alt,
			Width:     bgWidth,
			Height:    bgHeight,
			Placement: bg.Placement,
			Fit:       bg.Fit,
		}
	}

	res.Nodes = resolveBlocks(blocks, res.ContentWidth, AlignLeft)
	return res
}

// extractBackground removes the first non-inline image from the flow. The
// side margin it reserves applies to the whole slide, before any column
// split.
func extractBackground(blocks []deck.Block) ([]deck.Block, *deck.Image) {
	for i, b := range blocks {
		img, ok := b.(*deck.Image)
		if !ok || img.Placement == deck.PlaceInline {
			continue
		}
		rest := make([]deck.Block, 0, len(blocks)-1)
		rest = append(rest, blocks[:i]...)
		rest = append(rest, blocks[i+1:]...)
		return rest, img
	}
	return blocks, nil
}

func resolveBlocks(blocks []deck.Block, width int, align Align) []Node {
	if width < 1 {
		width = 1
	}
	nodes := make([]Node, 0, len(blocks))

	for _, b := range blocks {
		switch v := b.(type) {
		case *deck.Text:
			nodes = append(nodes, &TextNode{Content: v.Content, Width: width, Align: align})

		case *deck.Image:
			nodes = append(nodes, resolveImage(v, width, align))

		case *deck.Spacer:
			nodes = append(nodes, &SpacerNode{Lines: v.Lines})

		case *deck.Divider:
			nodes = append(nodes, &DividerNode{Style: v.Style, Glyph: GlyphFor(v.Style), Width: width})

		case *deck.Box:
			inner := width - 4 // border and one cell padding per side
			if inner < 1 {
				inner = 1
			}
			nodes = append(nodes, &BoxNode{
				Title:      v.Title,
				Width:      width,
				InnerWidth: inner,
				Children:   resolveBlocks(v.Blocks, inner, align),
			})

		case *deck.Center:
			nodes = append(nodes, resolveBlocks(v.Blocks, width, AlignCenter)...)

		case *deck.Right:
			nodes = append(nodes, resolveBlocks(v.Blocks, width, AlignRight)...)

		case *deck.Columns:
			nodes = append(nodes, resolveColumns(v, width, align))
		}
	}
	return nodes
}

func resolveImage(img *deck.Image, width int, align Align) *ImageNode {
	w := img.Width
	if w == 0 {
		w = width * img.SizePercent / 100
	}
	if w > width {
		w = width
	}
	if w < 1 {
		w = 1
	}
	return &ImageNode{
		Path:      img.Path,
		Alt:       img.Alt,
		Width:     w,
		Height:    img.Height,
		Align:     align,
		Placement: img.Placement,
		Fit:       img.Fit,
	}
}

func resolveColumns(cols *deck.Columns, width int, align Align) *ColumnsNode {
	n := len(cols.Children)
	percents := make([]int, n)
	for i, c := range cols.Children {
		percents[i] = c.WidthPercent
	}
	fractions := Fractions(percents)

	avail := width - Gap*(n-1)
	if avail < n {
		avail = n // degenerate: one cell per column
	}
	widths := SplitWidths(avail, fractions)

	out := &ColumnsNode{Width: width, Gap: Gap, Columns: make([]ColumnNode, n)}
	for i, c := range cols.Children {
		out.Columns[i] = ColumnNode{
			Fraction: fractions[i],
			Width:    widths[i],
			Children: resolveBlocks(c.Blocks, widths[i], align),
		}
	}
	return out
}

// Fractions normalizes explicit column percentages into fractions that sum
// to 1.0. Columns without an explicit width (0) share the remainder equally.
// Explicit widths need not sum to 100: all-explicit rows normalize to their
// ratios, and rows whose explicit widths already exceed 100 are scaled down
// proportionally with auto columns clamped to MinFraction.
func Fractions(percents []int) []float64 {
	n := len(percents)
	if n == 0 {
		return nil
	}

	sum := 0
	autos := 0
	for _, p := range percents {
		if p > 0 {
			sum += p
		} else {
			autos++
		}
	}

	out := make([]float64, n)
	switch {
	case autos == n:
		for i := range out {
			out[i] = 1.0 / float64(n)
		}

	case autos == 0:
		for i, p := range percents {
			out[i] = float64(p) / float64(sum)
		}

	case sum < 100:
		share := (100.0 - float64(sum)) / 100.0 / float64(autos)
		for i, p := range percents {
			if p > 0 {
				out[i] = float64(p) / 100.0
			} else {
				out[i] = share
			}
		}

	default:
		// Explicit widths claim everything; autos get the floor and the
		// explicit values are scaled down proportionally.
		scale := (1.0 - float64(autos)*MinFraction) / float64(sum)
		for i, p := range percents {
			if p > 0 {
				out[i] = float64(p) * scale
			} else {
				out[i] = MinFraction
			}
		}
	}
	return out
}

// SplitWidths distributes avail cells across fractions using cumulative
// rounding, so the result always sums to avail exactly (before the one-cell
// minimum kicks in on degenerate surfaces).
func SplitWidths(avail int, fractions []float64) []int {
	out := make([]int, len(fractions))
	acc := 0.0
	prev := 0
	for i, f := range fractions {
		acc += f * float64(avail)
		cur := int(math.Round(acc))
		w := cur - prev
		if w < 1 {
			w = 1
			cur = prev + 1
		}
		out[i] = w
		prev = cur
	}
	return out
}

// GlyphFor maps a divider style to its horizontal rule glyph.
func GlyphFor(style deck.DividerStyle) rune {
	switch style {
	case deck.DividerDouble:
		return '═'
	case deck.DividerThick:
		return '━'
	case deck.DividerDashed:
		return '╌'
	default:
		return '─'
	}
}
