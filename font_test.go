package ember

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestBitmapFontMetricsScale(t *testing.T) {
	f := NewBitmapFont()
	g, ok := f.GlyphID('A')
	if !ok {
		t.Fatal("bitmap font should cover 'A'")
	}

	m, ok := f.Metrics(g, 8)
	if !ok {
		t.Fatal("Metrics failed for covered glyph")
	}
	if m.Advance != 8 || m.Width != 8 || m.Height != 8 || m.BearingY != -7 {
		t.Errorf("size 8 metrics = %+v", m)
	}

	m16, _ := f.Metrics(g, 16)
	if m16.Advance != 16 || m16.Width != 16 || m16.Height != 16 || m16.BearingY != -14 {
		t.Errorf("size 16 metrics = %+v, want doubled", m16)
	}

	// Sizes below the cell never scale to zero.
	m4, _ := f.Metrics(g, 4)
	if m4.Advance != 8 {
		t.Errorf("size 4 advance = %v, want 8", m4.Advance)
	}
}

func TestBitmapFontSpaceIsEmpty(t *testing.T) {
	f := NewBitmapFont()
	g, ok := f.GlyphID(' ')
	if !ok {
		t.Fatal("bitmap font should cover space")
	}
	bm, m, err := f.Rasterize(g, 8)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if bm.Width != 0 || bm.Height != 0 {
		t.Errorf("space bitmap = %dx%d, want empty", bm.Width, bm.Height)
	}
	if m.Advance != 8 {
		t.Errorf("space advance = %v, want 8", m.Advance)
	}
}

func TestBitmapFontRasterizeDeterministic(t *testing.T) {
	f := NewBitmapFont()
	g, _ := f.GlyphID('X')
	first, _, err := f.Rasterize(g, 16)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	second, _, _ := f.Rasterize(g, 16)
	if !bytes.Equal(first.Pixels, second.Pixels) {
		t.Error("repeated rasterization must produce identical bitmaps")
	}
	if first.Width != 16 || first.Height != 16 {
		t.Errorf("bitmap = %dx%d, want 16x16", first.Width, first.Height)
	}
}

func TestBitmapFontUnknownRune(t *testing.T) {
	f := NewBitmapFont()
	if _, ok := f.GlyphID('é'); ok {
		t.Error("bitmap font should not claim coverage outside its table")
	}
}

func TestFontIDsAreUnique(t *testing.T) {
	a := NewBitmapFont()
	b := NewBitmapFont()
	if a.ID() == b.ID() {
		t.Error("distinct font instances must have distinct ids")
	}
}

func TestOutlineFontParseError(t *testing.T) {
	_, err := NewOutlineFont([]byte("definitely not an sfnt"))
	if !errors.Is(err, ErrFontParse) {
		t.Errorf("err = %v, want ErrFontParse", err)
	}
}

func TestOutlineFontRasterize(t *testing.T) {
	f, err := NewOutlineFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewOutlineFont: %v", err)
	}

	g, ok := f.GlyphID('A')
	if !ok {
		t.Fatal("Go Regular should cover 'A'")
	}
	m, ok := f.Metrics(g, 24)
	if !ok {
		t.Fatal("Metrics failed")
	}
	if m.Advance <= 0 {
		t.Errorf("advance = %v, want > 0", m.Advance)
	}

	bm, _, err := f.Rasterize(g, 24)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if bm.Width <= 0 || bm.Height <= 0 {
		t.Fatalf("bitmap = %dx%d, want nonempty", bm.Width, bm.Height)
	}
	if len(bm.Pixels) != bm.Width*bm.Height {
		t.Errorf("pixel buffer length %d for %dx%d", len(bm.Pixels), bm.Width, bm.Height)
	}
	covered := false
	for _, p := range bm.Pixels {
		if p != 0 {
			covered = true
			break
		}
	}
	if !covered {
		t.Error("rasterized 'A' has no coverage at all")
	}

	if f.LineHeight(24) <= 0 || f.Ascent(24) <= 0 {
		t.Errorf("line metrics = %v / %v, want > 0", f.LineHeight(24), f.Ascent(24))
	}
}

func TestOutlineFontLargerSizeLargerGlyph(t *testing.T) {
	f, err := NewOutlineFont(goregular.TTF)
	if err != nil {
		t.Fatalf("NewOutlineFont: %v", err)
	}
	g, _ := f.GlyphID('M')
	small, _, err := f.Rasterize(g, 12)
	if err != nil {
		t.Fatalf("Rasterize small: %v", err)
	}
	big, _, err := f.Rasterize(g, 48)
	if err != nil {
		t.Fatalf("Rasterize big: %v", err)
	}
	if big.Width <= small.Width || big.Height <= small.Height {
		t.Errorf("48px glyph (%dx%d) not larger than 12px glyph (%dx%d)",
			big.Width, big.Height, small.Width, small.Height)
	}
}
