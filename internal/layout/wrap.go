package layout

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks text into lines no wider than width cells. Existing newlines
// are respected; words longer than the width are hard-broken. Width is in
// runes. Wide-glyph aware measurement is a render-target concern.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var (
		out     []string
		current strings.Builder
		curLen  int
	)
	flush := func() {
		out = append(out, current.String())
		current.Reset()
		curLen = 0
	}

	for _, word := range strings.Fields(line) {
		wl := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+1+wl > width {
			flush()
		}
		if wl > width {
			// Hard-break an oversized word.
			for _, r := range word {
				if curLen == width {
					flush()
				}
				current.WriteRune(r)
				curLen++
			}
			continue
		}
		if curLen > 0 {
			current.WriteByte(' ')
			curLen++
		}
		current.WriteString(word)
		curLen += wl
	}
	if curLen > 0 || len(out) == 0 {
		flush()
	}
	return out
}

// AlignLine pads one line into a region of the given width according to the
// alignment instruction. Lines already at or over the width are returned
// unchanged.
func AlignLine(line string, width int, align Align) string {
	pad := width - utf8.RuneCountInString(line)
	if pad <= 0 {
		return line
	}
	switch align {
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + line + strings.Repeat(" ", pad-left)
	case AlignRight:
		return strings.Repeat(" ", pad) + line
	default:
		return line + strings.Repeat(" ", pad)
	}
}

// PadRight pads line with spaces to exactly width runes.
func PadRight(line string, width int) string {
	pad := width - utf8.RuneCountInString(line)
	if pad <= 0 {
		return line
	}
	return line + strings.Repeat(" ", pad)
}
