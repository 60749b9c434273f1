package ember

import (
	"reflect"
	"testing"
)

// The bitmap font advances 8px per glyph at size 8, which makes expected
// line widths trivial to compute by counting characters.

func TestWrapAtWordBoundary(t *testing.T) {
	f := NewBitmapFont()
	got := WrapLines(f, "the quick brown fox", 8, 72)
	want := []string{"the quick", "brown fox"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WrapLines = %q, want %q", got, want)
	}
}

func TestWrapKeepsWordsIntact(t *testing.T) {
	f := NewBitmapFont()
	// "jumps" (40px) does not fit after "fox " at 64px; the separating
	// space is consumed by the break.
	got := WrapLines(f, "fox jumps", 8, 64)
	want := []string{"fox", "jumps"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WrapLines = %q, want %q", got, want)
	}
}

func TestWrapDropsLeadingSpaceWithoutEmptyLine(t *testing.T) {
	f := NewBitmapFont()
	// The only break point is the leading space; consuming it must not
	// produce an empty first line.
	got := WrapLines(f, " abcd", 8, 32)
	want := []string{"abcd"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WrapLines = %q, want %q", got, want)
	}
}

func TestHardBreakForOverlongWord(t *testing.T) {
	f := NewBitmapFont()
	got := WrapLines(f, "abcdefghijkl", 8, 32)
	want := []string{"abcd", "efgh", "ijkl"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WrapLines = %q, want %q", got, want)
	}
}

func TestForcedLineBreaks(t *testing.T) {
	f := NewBitmapFont()
	cases := []struct {
		text string
		want []string
	}{
		{"ab\ncd", []string{"ab", "cd"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"ab cd", []string{"ab", "cd"}},
		{"", []string{""}},
	}
	for _, tc := range cases {
		got := WrapLines(f, tc.text, 8, 0)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("WrapLines(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestNoWrapWhenDisabled(t *testing.T) {
	f := NewBitmapFont()
	got := WrapLines(f, "a very long single line of text", 8, 0)
	if len(got) != 1 {
		t.Errorf("maxWidth <= 0 must disable wrapping, got %d lines", len(got))
	}
}

func TestLayoutBaselines(t *testing.T) {
	f := NewBitmapFont()
	// At size 8 the ascent is 7 and the line height is 9.
	placements, size := LayoutText(f, "ab\ncd", 8, 0, AlignLeft)
	if len(placements) != 4 {
		t.Fatalf("placement count = %d, want 4", len(placements))
	}
	if placements[0].Pos.Y != 7 || placements[1].Pos.Y != 7 {
		t.Errorf("first line baseline = %v, %v, want 7", placements[0].Pos.Y, placements[1].Pos.Y)
	}
	if placements[2].Pos.Y != 16 || placements[3].Pos.Y != 16 {
		t.Errorf("second line baseline = %v, %v, want 16", placements[2].Pos.Y, placements[3].Pos.Y)
	}
	if placements[1].Pos.X != 8 {
		t.Errorf("second glyph x = %v, want 8", placements[1].Pos.X)
	}
	if size.X != 16 || size.Y != 18 {
		t.Errorf("block size = %+v, want {16 18}", size)
	}
}

func TestLayoutWhitespaceAdvancesWithoutPlacement(t *testing.T) {
	f := NewBitmapFont()
	placements, _ := LayoutText(f, "a b", 8, 0, AlignLeft)
	if len(placements) != 2 {
		t.Fatalf("placement count = %d, want 2 (space must not render)", len(placements))
	}
	if placements[1].Pos.X != 16 {
		t.Errorf("glyph after space at x = %v, want 16", placements[1].Pos.X)
	}
}

func TestLayoutAlignment(t *testing.T) {
	f := NewBitmapFont()
	// Line "ab" is 16px wide inside a 100px block.
	cases := []struct {
		align Alignment
		wantX float32
	}{
		{AlignLeft, 0},
		{AlignCenter, 42},
		{AlignRight, 84},
	}
	for _, tc := range cases {
		placements, _ := LayoutText(f, "ab", 8, 100, tc.align)
		if len(placements) == 0 {
			t.Fatalf("align %v: no placements", tc.align)
		}
		if placements[0].Pos.X != tc.wantX {
			t.Errorf("align %v: first glyph x = %v, want %v", tc.align, placements[0].Pos.X, tc.wantX)
		}
	}
}

func TestLayoutOrderIsStable(t *testing.T) {
	f := NewBitmapFont()
	placements, _ := LayoutText(f, "wrap order stays", 8, 40, AlignLeft)
	text := ""
	for _, p := range placements {
		text += string(p.Rune)
	}
	if text != "wraporderstays" {
		t.Errorf("glyphs out of order: %q", text)
	}
}
