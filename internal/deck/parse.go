package deck

import (
	"regexp"
	"strconv"
	"strings"
)

// Parse turns raw presentation source into a Document. Structural errors are
// slide-scoped: a slide that violates the layout grammar carries its error
// and an empty block tree while every other slide parses normally, so a
// caller can show a partial deck instead of refusing the whole file.
func Parse(source string) *Document {
	fm, body := splitFrontmatter(source)
	// Line number of the first body line (frontmatter lines precede it).
	baseLine := 1 + strings.Count(source, "\n") - strings.Count(body, "\n")

	dirs, body := extractDeckDirectives(body)

	doc := &Document{Meta: metaFrom(fm), Directives: dirs}

	for i, seg := range splitSlides(body, baseLine) {
		slide := &Slide{Index: i, Blocks: []Block{}}

		segBody, notes := extractNotes(seg.Body)
		slide.Notes = notes

		slideDirs, segBody := extractSlideDirectives(segBody)
		slide.Directives = slideDirs

		inc, segBody := extractIncremental(segBody)
		slide.Incremental = inc

		blocks, err := parseBlocks(segBody, seg.Line)
		if err != nil {
			err.Slide = i
			slide.Err = err
			doc.Errors = append(doc.Errors, err)
		} else {
			slide.Blocks = blocks
		}
		doc.Slides = append(doc.Slides, slide)
	}

	// A frontmatter theme acts as a document-level directive unless the
	// deck block sets one explicitly.
	if doc.Directives.Theme == nil && doc.Meta.Theme != "" {
		theme := doc.Meta.Theme
		doc.Directives.Theme = &theme
	}

	return doc
}

var (
	openMarkerRe  = regexp.MustCompile(`^:::\s*([A-Za-z][A-Za-z-]*)\s*(.*?)\s*$`)
	closeMarkerRe = regexp.MustCompile(`^:::\s*$`)
	imageRefRe    = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	boxTitleRe    = regexp.MustCompile(`^"(.*)"$`)
)

// openBlock is a mutable builder for a layout block that is still open on
// the parse stack. Children accumulate here and ownership transfers to the
// immutable Block when the closing marker pops it; no child ever keeps a
// pointer back to its parent.
type openBlock struct {
	kind    string // "", "columns", "column", "center", "right", "box"
	line    int    // document line of the opening marker
	arg     string
	blocks  []Block
	pending []string // plain lines awaiting coalescing into one Text block
	pendAt  int      // document line of the first pending line
}

func (b *openBlock) addLine(line string, at int) {
	if len(b.pending) == 0 {
		b.pendAt = at
	}
	b.pending = append(b.pending, line)
}

// flushText coalesces pending plain lines into a single Text child.
// Consecutive lines stay together so the downstream Markdown renderer sees
// whole lists and paragraphs, not one fragment per line.
func (b *openBlock) flushText() {
	if len(b.pending) == 0 {
		return
	}
	content := strings.Trim(strings.Join(b.pending, "\n"), "\n")
	b.pending = nil
	if strings.TrimSpace(content) == "" {
		return
	}
	b.blocks = append(b.blocks, &Text{Content: content, Line: b.pendAt})
}

// parseBlocks converts one slide body into its block tree. baseLine is the
// document line number of the first line of body.
func parseBlocks(body string, baseLine int) ([]Block, *StructuralError) {
	root := &openBlock{}
	stack := []*openBlock{root}
	var fences fenceTracker

	lines := strings.Split(body, "\n")
	for i, raw := range lines {
		at := baseLine + i
		top := stack[len(stack)-1]

		wasInFence := fences.active()
		fences.observe(raw)
		if wasInFence || fences.active() {
			// Code fences are opaque: markers inside them are content.
			top.addLine(raw, at)
			continue
		}

		trimmed := strings.TrimSpace(raw)

		switch {
		case closeMarkerRe.MatchString(trimmed):
			if len(stack) == 1 {
				// A close with nothing open is literal content.
				top.addLine(raw, at)
				continue
			}
			top.flushText()
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			block, err := sealBlock(top)
			if err != nil {
				return nil, err
			}
			parent.blocks = append(parent.blocks, block)

		case openMarkerRe.MatchString(trimmed):
			m := openMarkerRe.FindStringSubmatch(trimmed)
			kind := strings.ToLower(m[1])
			arg := m[2]
			if !knownBlockType(kind) {
				// Forward compatibility: an unrecognized type keyword is
				// plain content, matching how unknown directive keys behave.
				top.addLine(raw, at)
				continue
			}
			if err := handleOpen(&stack, kind, arg, at); err != nil {
				return nil, err
			}

		default:
			if lifted, err := liftImages(top, raw, at); err != nil {
				return nil, err
			} else if !lifted {
				top.addLine(raw, at)
			}
		}
	}

	if len(stack) > 1 {
		unclosed := stack[len(stack)-1]
		return nil, structuralErr(unclosed.line, "unclosed %q block", unclosed.kind)
	}
	root.flushText()
	if root.blocks == nil {
		root.blocks = []Block{}
	}
	return root.blocks, nil
}

// blockLine returns the source line a block was opened or written on.
func blockLine(b Block) int {
	switch v := b.(type) {
	case *Text:
		return v.Line
	case *Columns:
		return v.Line
	case *Column:
		return v.Line
	case *Center:
		return v.Line
	case *Right:
		return v.Line
	case *Spacer:
		return v.Line
	case *Divider:
		return v.Line
	case *Box:
		return v.Line
	case *Image:
		return v.Line
	}
	return 0
}

func knownBlockType(kind string) bool {
	switch kind {
	case "columns", "column", "center", "right", "spacer", "box", "divider":
		return true
	}
	return false
}

// handleOpen processes an opening ::: marker. Spacer and divider are leaf
// directives that complete on their own line; the container types push onto
// the stack until their closing ::: pops them.
func handleOpen(stack *[]*openBlock, kind, arg string, at int) *StructuralError {
	top := (*stack)[len(*stack)-1]
	top.flushText()

	switch kind {
	case "spacer":
		lines := 1
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				return structuralErr(at, "spacer: invalid line count %q", arg)
			}
			lines = n
		}
		top.blocks = append(top.blocks, &Spacer{Lines: lines, Line: at})
		return nil

	case "divider":
		style := DividerSingle
		if arg != "" {
			switch DividerStyle(strings.ToLower(arg)) {
			case DividerSingle, DividerDouble, DividerThick, DividerDashed:
				style = DividerStyle(strings.ToLower(arg))
			default:
				return structuralErr(at, "divider: unknown style %q", arg)
			}
		}
		top.blocks = append(top.blocks, &Divider{Style: style, Line: at})
		return nil

	case "column":
		if top.kind != "columns" {
			return structuralErr(at, `"column" outside "columns"`)
		}
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > 100 {
				return structuralErr(at, "column: invalid width %q", arg)
			}
		}

	case "columns", "center", "right":
		if arg != "" {
			return structuralErr(at, "%s: unexpected argument %q", kind, arg)
		}

	case "box":
		if arg != "" && !boxTitleRe.MatchString(arg) {
			return structuralErr(at, "box: title must be quoted, got %q", arg)
		}
	}

	*stack = append(*stack, &openBlock{kind: kind, line: at, arg: arg})
	return nil
}

// sealBlock freezes a popped builder into its immutable Block.
func sealBlock(b *openBlock) (Block, *StructuralError) {
	switch b.kind {
	case "columns":
		cols := make([]*Column, 0, len(b.blocks))
		for _, child := range b.blocks {
			col, ok := child.(*Column)
			if !ok {
				return nil, structuralErr(blockLine(child), "columns: content outside a column")
			}
			cols = append(cols, col)
		}
		if len(cols) == 0 {
			return nil, structuralErr(b.line, "columns: requires at least one column")
		}
		return &Columns{Children: cols, Line: b.line}, nil

	case "column":
		width := 0
		if b.arg != "" {
			width, _ = strconv.Atoi(b.arg) // validated at open
		}
		return &Column{Blocks: b.blocks, WidthPercent: width, Line: b.line}, nil

	case "center":
		return &Center{Blocks: b.blocks, Line: b.line}, nil

	case "right":
		return &Right{Blocks: b.blocks, Line: b.line}, nil

	case "box":
		title := ""
		if m := boxTitleRe.FindStringSubmatch(b.arg); m != nil {
			title = m[1]
		}
		return &Box{Blocks: b.blocks, Title: title, Line: b.line}, nil
	}
	return nil, structuralErr(b.line, "unknown block type %q", b.kind)
}

// liftImages scans one line for MARP-style image directives and lifts them
// out of the text flow into Image blocks. Plain ![alt](path) references
// carry no layout meaning and stay in the surrounding Text. Returns true
// when the line was consumed.
func liftImages(top *openBlock, raw string, at int) (bool, *StructuralError) {
	matches := imageRefRe.FindAllStringSubmatchIndex(raw, -1)
	if matches == nil {
		return false, nil
	}

	consumed := false
	cursor := 0
	for _, m := range matches {
		alt := raw[m[2]:m[3]]
		path := raw[m[4]:m[5]]
		img, directive := parseImageDirectives(alt, path, at)
		if !directive {
			continue
		}
		if before := raw[cursor:m[0]]; strings.TrimSpace(before) != "" {
			top.addLine(before, at)
		}
		top.flushText()
		top.blocks = append(top.blocks, img)
		cursor = m[1]
		consumed = true
	}
	if !consumed {
		return false, nil
	}
	if after := raw[cursor:]; strings.TrimSpace(after) != "" {
		top.addLine(after, at)
	}
	return true, nil
}

var sizeTokenRe = regexp.MustCompile(`^(w|width|h|height):(\d+)$`)

// parseImageDirectives interprets MARP-style alt-text directives:
// "bg" with an optional position (left/right, optionally :N%), fit modes
// (fit/contain/cover), and w:/h: cell sizes. Remaining words become the alt
// text. Returns directive=false for a plain image reference.
func parseImageDirectives(alt, path string, line int) (*Image, bool) {
	img := &Image{
		Path:        path,
		Placement:   PlaceInline,
		SizePercent: 50,
		Fit:         FitNormal,
		Line:        line,
	}

	directive := false
	isBg := false
	var altWords []string

	for _, tok := range strings.Fields(alt) {
		lower := strings.ToLower(tok)
		switch {
		case lower == "bg":
			isBg = true
			directive = true
			img.Placement = PlaceBackground
			img.SizePercent = 100

		case isBg && (lower == "left" || lower == "right"):
			img.Placement = ImagePlacement(lower)
			img.SizePercent = 50

		case isBg && strings.HasPrefix(lower, "left:"):
			img.Placement = PlaceLeft
			img.SizePercent = parsePercent(lower[len("left:"):], 50)

		case isBg && strings.HasPrefix(lower, "right:"):
			img.Placement = PlaceRight
			img.SizePercent = parsePercent(lower[len("right:"):], 50)

		case isBg && (lower == "fit" || lower == "contain"):
			img.Fit = FitContain

		case isBg && lower == "cover":
			img.Fit = FitNormal

		case sizeTokenRe.MatchString(lower):
			m := sizeTokenRe.FindStringSubmatch(lower)
			n, _ := strconv.Atoi(m[2])
			if m[1] == "w" || m[1] == "width" {
				img.Width = n
			} else {
				img.Height = n
			}
			directive = true

		default:
			// Unknown words (including anything after bg) are alt text.
			altWords = append(altWords, tok)
		}
	}

	img.Alt = strings.Join(altWords, " ")
	return img, directive
}

func parsePercent(s string, fallback int) int {
	s = strings.TrimSuffix(s, "%")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 100 {
		return fallback
	}
	return n
}
