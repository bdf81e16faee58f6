package layout

import (
	"reflect"
	"testing"
)

func TestWrapShortLineUnchanged(t *testing.T) {
	got := Wrap("hello world", 20)
	if !reflect.DeepEqual(got, []string{"hello world"}) {
		t.Errorf("got %v", got)
	}
}

func TestWrapBreaksAtWords(t *testing.T) {
	got := Wrap("the quick brown fox jumps", 10)
	want := []string{"the quick", "brown fox", "jumps"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWrapRespectsNewlines(t *testing.T) {
	got := Wrap("a\nb", 10)
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v", got)
	}
}

func TestWrapHardBreaksLongWord(t *testing.T) {
	got := Wrap("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWrapCountsRunesNotBytes(t *testing.T) {
	got := Wrap("héllo wörld", 5)
	want := []string{"héllo", "wörld"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWrapEmptyLineSurvives(t *testing.T) {
	got := Wrap("a\n\nb", 10)
	if !reflect.DeepEqual(got, []string{"a", "", "b"}) {
		t.Errorf("got %v", got)
	}
}

func TestAlignLine(t *testing.T) {
	cases := []struct {
		align Align
		want  string
	}{
		{AlignLeft, "ab        "},
		{AlignCenter, "    ab    "},
		{AlignRight, "        ab"},
	}
	for _, tc := range cases {
		if got := AlignLine("ab", 10, tc.align); got != tc.want {
			t.Errorf("align %d: %q, want %q", tc.align, got, tc.want)
		}
	}
}

func TestAlignLineCenterOddPadding(t *testing.T) {
	// Odd padding puts the extra cell on the right.
	if got := AlignLine("abc", 6, AlignCenter); got != " abc  " {
		t.Errorf("got %q", got)
	}
}

func TestAlignLineOverWidthUnchanged(t *testing.T) {
	if got := AlignLine("toolong", 3, AlignCenter); got != "toolong" {
		t.Errorf("got %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("got %q", got)
	}
	if got := PadRight("abcdef", 5); got != "abcdef" {
		t.Errorf("got %q", got)
	}
}
