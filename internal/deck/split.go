package deck

import (
	"regexp"
	"strings"
)

// Segment is one raw slide body produced by the splitter, together with the
// 1-based line number where it starts in the source document.
type Segment struct {
	Body string
	Line int
}

var separatorRe = regexp.MustCompile(`^\s*-{3,}\s*$`)

// splitSlides partitions body into slide segments on separator lines (three
// or more dashes alone on a line). Separator-looking lines inside fenced code
// blocks are content, never boundaries, so the splitter tracks fence state.
// baseLine is the document line number of the first body line.
func splitSlides(body string, baseLine int) []Segment {
	lines := strings.Split(body, "\n")
	var (
		segs    []Segment
		current []string
		start   = baseLine
		fences  fenceTracker
	)

	flush := func(nextStart int) {
		segs = append(segs, Segment{Body: strings.Join(current, "\n"), Line: start})
		current = nil
		start = nextStart
	}

	for i, line := range lines {
		wasInFence := fences.active()
		fences.observe(line)
		if !wasInFence && !fences.active() && separatorRe.MatchString(line) {
			flush(baseLine + i + 1)
			continue
		}
		current = append(current, line)
	}
	flush(0)

	return segs
}

var notesCommentRe = regexp.MustCompile(`(?s)<!--\s*notes:\s*(.*?)\s*-->`)

// extractNotes pulls presenter notes out of one slide segment. Two markers
// are recognized: a line consisting solely of "???", after which everything
// to the end of the segment is notes, and an inline <!-- notes: ... -->
// comment whose content is the notes. Whichever marker appears first in the
// segment takes effect. Notes are plain text, never re-parsed as Markdown.
func extractNotes(segment string) (body, notes string) {
	qIdx := questionMarkerIndex(segment)
	cLoc := notesCommentRe.FindStringSubmatchIndex(segment)

	switch {
	case qIdx >= 0 && (cLoc == nil || qIdx < cLoc[0]):
		body = segment[:qIdx]
		after := segment[qIdx:]
		// Skip the marker line itself.
		if nl := strings.IndexByte(after, '\n'); nl >= 0 {
			notes = after[nl+1:]
		}
		return strings.TrimRight(body, "\n"), strings.TrimSpace(notes)

	case cLoc != nil:
		notes = strings.TrimSpace(segment[cLoc[2]:cLoc[3]])
		// Blank the comment out to keep line numbers stable.
		body = segment[:cLoc[0]] + newlinesOnly(segment[cLoc[0]:cLoc[1]]) + segment[cLoc[1]:]
		return body, notes

	default:
		return segment, ""
	}
}

// questionMarkerIndex returns the byte offset of the first standalone "???"
// line, or -1.
func questionMarkerIndex(segment string) int {
	offset := 0
	for _, line := range strings.Split(segment, "\n") {
		if strings.TrimSpace(line) == "???" {
			return offset
		}
		offset += len(line) + 1
	}
	return -1
}

// fenceTracker follows backtick/tilde code fence state line by line so that
// separator and layout markers inside code samples stay literal. A fence
// closes only on a run of the same character at least as long as the opener
// with no trailing info text; longer openers may therefore contain shorter
// fence-looking lines as content.
type fenceTracker struct {
	open []fenceMark
}

type fenceMark struct {
	ch byte
	n  int
}

func (t *fenceTracker) active() bool { return len(t.open) > 0 }

func (t *fenceTracker) observe(line string) {
	mark, info, ok := fenceDelim(line)
	if !ok {
		return
	}
	if len(t.open) == 0 {
		t.open = append(t.open, mark)
		return
	}
	top := t.open[len(t.open)-1]
	if mark.ch == top.ch && mark.n >= top.n && info == "" {
		t.open = t.open[:len(t.open)-1]
	}
	// Anything else inside an open fence is literal content.
}

// fenceDelim reports whether line is a code fence delimiter (a run of three
// or more backticks or tildes after at most three spaces of indentation) and
// returns its mark and trailing info string.
func fenceDelim(line string) (fenceMark, string, bool) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	if i >= len(line) || (line[i] != '`' && line[i] != '~') {
		return fenceMark{}, "", false
	}
	ch := line[i]
	n := 0
	for i < len(line) && line[i] == ch {
		i++
		n++
	}
	if n < 3 {
		return fenceMark{}, "", false
	}
	return fenceMark{ch: ch, n: n}, strings.TrimSpace(line[i:]), true
}
