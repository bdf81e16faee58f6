package deck

import (
	"strings"
	"testing"
)

func TestParseBasicDeck(t *testing.T) {
	doc := Parse("# One\n\nhello\n\n---\n\n# Two\n\nworld\n")

	if len(doc.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(doc.Slides))
	}
	if doc.Slides[0].Title() != "One" || doc.Slides[1].Title() != "Two" {
		t.Errorf("titles = %q, %q", doc.Slides[0].Title(), doc.Slides[1].Title())
	}
	if len(doc.Errors) != 0 {
		t.Errorf("errors = %v", doc.Errors)
	}
}

func TestParseEmptySourceIsOneEmptySlide(t *testing.T) {
	doc := Parse("")
	if len(doc.Slides) != 1 {
		t.Fatalf("slides = %d, want 1", len(doc.Slides))
	}
	if len(doc.Slides[0].Blocks) != 0 {
		t.Errorf("blocks = %v, want empty", doc.Slides[0].Blocks)
	}
	if doc.Slides[0].Blocks == nil {
		t.Error("blocks must never be nil")
	}
}

func TestParseCoalescesConsecutiveLines(t *testing.T) {
	doc := Parse("- one\n- two\n- three")
	blocks := doc.Slides[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 coalesced text block", len(blocks))
	}
	txt := blocks[0].(*Text)
	if txt.Content != "- one\n- two\n- three" {
		t.Errorf("content = %q", txt.Content)
	}
}

func TestParseNestedLayout(t *testing.T) {
	src := `::: columns
::: column 30
left
:::
::: column
right
:::
:::`
	doc := Parse(src)
	sl := doc.Slides[0]
	if sl.Err != nil {
		t.Fatalf("err = %v", sl.Err)
	}
	cols, ok := sl.Blocks[0].(*Columns)
	if !ok {
		t.Fatalf("block = %T, want *Columns", sl.Blocks[0])
	}
	if len(cols.Children) != 2 {
		t.Fatalf("children = %d", len(cols.Children))
	}
	if cols.Children[0].WidthPercent != 30 || cols.Children[1].WidthPercent != 0 {
		t.Errorf("widths = %d, %d", cols.Children[0].WidthPercent, cols.Children[1].WidthPercent)
	}
}

func TestParseBoxTitle(t *testing.T) {
	doc := Parse("::: box \"Warning\"\ncareful\n:::")
	box, ok := doc.Slides[0].Blocks[0].(*Box)
	if !ok {
		t.Fatalf("block = %T, want *Box", doc.Slides[0].Blocks[0])
	}
	if box.Title != "Warning" {
		t.Errorf("title = %q", box.Title)
	}
}

func TestParseBoxUnquotedTitleFails(t *testing.T) {
	doc := Parse("::: box Warning\nx\n:::")
	if doc.Slides[0].Err == nil {
		t.Fatal("expected structural error for unquoted box title")
	}
	if !strings.Contains(doc.Slides[0].Err.Msg, "title must be quoted") {
		t.Errorf("msg = %q", doc.Slides[0].Err.Msg)
	}
}

func TestParseSpacerAndDivider(t *testing.T) {
	doc := Parse("::: spacer 3\n::: divider double")
	blocks := doc.Slides[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	if sp := blocks[0].(*Spacer); sp.Lines != 3 {
		t.Errorf("spacer lines = %d", sp.Lines)
	}
	if dv := blocks[1].(*Divider); dv.Style != DividerDouble {
		t.Errorf("divider style = %q", dv.Style)
	}
}

func TestParseSpacerInvalidCount(t *testing.T) {
	doc := Parse("::: spacer zero")
	if doc.Slides[0].Err == nil {
		t.Fatal("expected error for non-numeric spacer count")
	}
}

func TestParseDividerUnknownStyle(t *testing.T) {
	doc := Parse("::: divider wavy")
	if doc.Slides[0].Err == nil {
		t.Fatal("expected error for unknown divider style")
	}
}

func TestParseUnclosedBlockReportsLine(t *testing.T) {
	doc := Parse("# A\n---\n::: box \"T\"\nnever closed")

	if doc.Slides[0].Err != nil {
		t.Errorf("slide 1 should parse: %v", doc.Slides[0].Err)
	}
	err := doc.Slides[1].Err
	if err == nil {
		t.Fatal("expected structural error on slide 2")
	}
	if err.Slide != 1 || err.Line != 3 {
		t.Errorf("err = slide %d line %d, want slide 1 line 3", err.Slide, err.Line)
	}
	if got := err.Error(); got != `slide 2, line 3: unclosed "box" block` {
		t.Errorf("Error() = %q", got)
	}
	if len(doc.Errors) != 1 {
		t.Errorf("doc.Errors = %v", doc.Errors)
	}
}

func TestParseColumnOutsideColumns(t *testing.T) {
	doc := Parse("::: column\nx\n:::")
	err := doc.Slides[0].Err
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Msg, `"column" outside "columns"`) {
		t.Errorf("msg = %q", err.Msg)
	}
}

func TestParseLooseContentInColumns(t *testing.T) {
	doc := Parse("::: columns\nloose text\n:::")
	err := doc.Slides[0].Err
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Msg, "content outside a column") {
		t.Errorf("msg = %q", err.Msg)
	}
}

func TestParseEmptyColumns(t *testing.T) {
	doc := Parse("::: columns\n:::")
	if doc.Slides[0].Err == nil {
		t.Fatal("expected error for columns without columns")
	}
}

func TestParseUnknownBlockTypeIsContent(t *testing.T) {
	doc := Parse("::: sidebar\ntext")
	sl := doc.Slides[0]
	if sl.Err != nil {
		t.Fatalf("unknown type must not error: %v", sl.Err)
	}
	txt := sl.Blocks[0].(*Text)
	if !strings.Contains(txt.Content, "::: sidebar") {
		t.Errorf("content = %q", txt.Content)
	}
}

func TestParseStrayCloseIsContent(t *testing.T) {
	doc := Parse("before\n:::\nafter")
	sl := doc.Slides[0]
	if sl.Err != nil {
		t.Fatalf("stray close must not error: %v", sl.Err)
	}
	txt := sl.Blocks[0].(*Text)
	if !strings.Contains(txt.Content, ":::") {
		t.Errorf("content = %q", txt.Content)
	}
}

func TestParseMarkersInsideFenceAreLiteral(t *testing.T) {
	src := "```\n::: box \"not a block\"\n---\n:::\n```"
	doc := Parse(src)

	if len(doc.Slides) != 1 {
		t.Fatalf("slides = %d, want 1 (fence must protect the separator)", len(doc.Slides))
	}
	sl := doc.Slides[0]
	if sl.Err != nil {
		t.Fatalf("err = %v", sl.Err)
	}
	txt := sl.Blocks[0].(*Text)
	if !strings.Contains(txt.Content, "::: box") || !strings.Contains(txt.Content, "---") {
		t.Errorf("fence content mangled: %q", txt.Content)
	}
}

func TestParseLongerFenceContainsShorter(t *testing.T) {
	src := "````\n```\n---\n```\n````\n---\nnext"
	doc := Parse(src)
	if len(doc.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(doc.Slides))
	}
}

func TestParseBackgroundImage(t *testing.T) {
	doc := Parse("![bg left:30 sunset](sunset.png)\n\nbody")
	sl := doc.Slides[0]
	if sl.Err != nil {
		t.Fatalf("err = %v", sl.Err)
	}

	var img *Image
	for _, b := range sl.Blocks {
		if v, ok := b.(*Image); ok {
			img = v
		}
	}
	if img == nil {
		t.Fatal("bg image not lifted out of text flow")
	}
	if img.Placement != PlaceLeft || img.SizePercent != 30 {
		t.Errorf("placement = %q size = %d", img.Placement, img.SizePercent)
	}
	if img.Alt != "sunset" {
		t.Errorf("alt = %q", img.Alt)
	}
}

func TestParseSizedInlineImage(t *testing.T) {
	doc := Parse("![w:10 h:4 logo](logo.png)")
	img, ok := doc.Slides[0].Blocks[0].(*Image)
	if !ok {
		t.Fatalf("block = %T, want *Image", doc.Slides[0].Blocks[0])
	}
	if img.Placement != PlaceInline || img.Width != 10 || img.Height != 4 {
		t.Errorf("img = %+v", img)
	}
	if img.Alt != "logo" {
		t.Errorf("alt = %q", img.Alt)
	}
}

func TestParsePlainImageStaysInText(t *testing.T) {
	doc := Parse("see ![chart](q3.png) for details")
	blocks := doc.Slides[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	txt, ok := blocks[0].(*Text)
	if !ok {
		t.Fatalf("block = %T, plain image reference must stay text", blocks[0])
	}
	if !strings.Contains(txt.Content, "![chart](q3.png)") {
		t.Errorf("content = %q", txt.Content)
	}
}

func TestParseBgFitMode(t *testing.T) {
	doc := Parse("![bg fit](full.png)")
	img := doc.Slides[0].Blocks[0].(*Image)
	if img.Placement != PlaceBackground || img.Fit != FitContain {
		t.Errorf("img = %+v", img)
	}
	if img.SizePercent != 100 {
		t.Errorf("size = %d, want 100 for full background", img.SizePercent)
	}
}
