package deck

import (
	"strings"
	"testing"
)

func TestSlideTitleFirstHeading(t *testing.T) {
	doc := Parse("intro text\n\n## Section Heading\n\nmore")
	if got := doc.Slides[0].Title(); got != "Section Heading" {
		t.Errorf("title = %q", got)
	}
}

func TestSlideTitleEmpty(t *testing.T) {
	doc := Parse("no heading here")
	if got := doc.Slides[0].Title(); got != "" {
		t.Errorf("title = %q, want empty", got)
	}
}

func TestPlainTextFlattensLayout(t *testing.T) {
	src := `# Top

::: columns
::: column
left words
:::
::: column
right words
:::
:::

::: box "Box Title"
boxed
:::

![bg alt words](img.png)`
	doc := Parse(src)
	text := doc.Slides[0].PlainText()

	for _, want := range []string{"# Top", "left words", "right words", "Box Title", "boxed", "alt words"} {
		if !strings.Contains(text, want) {
			t.Errorf("plain text missing %q:\n%s", want, text)
		}
	}
}

func TestHandleSwap(t *testing.T) {
	h := NewHandle(nil)
	if h.Current() != nil {
		t.Fatal("empty handle should return nil")
	}

	first := Parse("# One")
	h.Swap(first)
	if h.Current() != first {
		t.Error("handle should return the stored document")
	}

	second := Parse("# Two")
	h.Swap(second)
	if h.Current() != second {
		t.Error("swap should replace the document")
	}
}

func TestSlideOk(t *testing.T) {
	doc := Parse("fine\n---\n::: box \"x\"\nbroken")
	if !doc.Slides[0].Ok() || doc.Slides[1].Ok() {
		t.Errorf("Ok = %v, %v", doc.Slides[0].Ok(), doc.Slides[1].Ok())
	}
}
