package deck

// Block is one node of a slide's content tree. The set of implementations
// is closed: renderers switch over all of them and a missing case is a bug,
// not an extension point.
type Block interface {
	blockNode()
}

// Text holds contiguous Markdown content. The content is opaque to the
// core. Block-level structure around it is ours, inline formatting is the
// downstream Markdown renderer's. Consecutive plain lines coalesce into one
// Text block so lists and paragraph continuations survive intact.
type Text struct {
	Content string
	Line    int
}

// Columns holds an ordered row of Column children.
type Columns struct {
	Children []*Column
	Line     int
}

// Column is a vertical slice of a Columns row. WidthPercent is the explicit
// width (1-100) or 0 for an auto column that shares the remainder equally.
// Column is only legal as a direct child of Columns.
type Column struct {
	Blocks       []Block
	WidthPercent int
	Line         int
}

// Center horizontally centers every wrapped line of its children.
type Center struct {
	Blocks []Block
	Line   int
}

// Right aligns every wrapped line of its children to the right edge.
type Right struct {
	Blocks []Block
	Line   int
}

// Spacer produces vertical blank space. It is a leaf: a well-formed parse
// never attaches content to it.
type Spacer struct {
	Lines int
	Line  int
}

// DividerStyle selects the glyph set for a horizontal rule.
type DividerStyle string

// Divider styles.
const (
	DividerSingle DividerStyle = "single"
	DividerDouble DividerStyle = "double"
	DividerThick  DividerStyle = "thick"
	DividerDashed DividerStyle = "dashed"
)

// Divider is a horizontal rule. Leaf block.
type Divider struct {
	Style DividerStyle
	Line  int
}

// Box wraps its children in a border with an optional title.
type Box struct {
	Blocks []Block
	Title  string
	Line   int
}

// ImagePlacement says where an image sits relative to the slide content.
type ImagePlacement string

// Image placements. PlaceLeft and PlaceRight reserve a side column for the
// image before any other layout happens; PlaceBackground covers the whole
// slide; PlaceInline flows with the content.
const (
	PlaceInline     ImagePlacement = "inline"
	PlaceLeft       ImagePlacement = "left"
	PlaceRight      ImagePlacement = "right"
	PlaceBackground ImagePlacement = "background"
)

// ImageFit selects how an image is scaled into its region.
type ImageFit string

// Image fit modes.
const (
	FitNormal  ImageFit = "normal"
	FitContain ImageFit = "contain"
)

// Image is an image reference lifted out of the Markdown flow because its
// MARP-style alt-text directives affect slide layout.
type Image struct {
	Path        string
	Alt         string
	Placement   ImagePlacement
	SizePercent int // percentage of slide width/height the image may claim
	Width       int // explicit width in cells, 0 when unset
	Height      int // explicit height in cells, 0 when unset
	Fit         ImageFit
	Line        int
}

func (*Text) blockNode()    {}
func (*Columns) blockNode() {}
func (*Column) blockNode()  {}
func (*Center) blockNode()  {}
func (*Right) blockNode()   {}
func (*Spacer) blockNode()  {}
func (*Divider) blockNode() {}
func (*Box) blockNode()     {}
func (*Image) blockNode()   {}
