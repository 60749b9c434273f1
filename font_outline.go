package ember

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// OutlineFont is the scalable font backend. It parses TTF/OTF bytes and
// rasterizes glyph outlines to 8-bit coverage bitmaps on demand.
//
// Glyph ids are the codepoints themselves; the sfnt glyph index is only
// consulted to answer whether a codepoint is covered. One face is created
// lazily per requested pixel size and reused for the font's lifetime.
type OutlineFont struct {
	id    uint64
	font  *sfnt.Font
	buf   sfnt.Buffer
	faces map[int]font.Face
}

// NewOutlineFont parses font bytes supplied by the host. It returns
// ErrFontParse (wrapped) for malformed input; the renderer is unaffected
// by the failure.
func NewOutlineFont(data []byte) (*OutlineFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontParse, err)
	}
	return &OutlineFont{
		id:    nextFontID(),
		font:  f,
		faces: make(map[int]font.Face),
	}, nil
}

// ID implements Font.
func (f *OutlineFont) ID() uint64 { return f.id }

// GlyphID implements Font.
func (f *OutlineFont) GlyphID(r rune) (GlyphID, bool) {
	idx, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil || idx == 0 {
		return 0, false
	}
	return GlyphID(r), true
}

func (f *OutlineFont) face(sizePx int) (font.Face, error) {
	if sizePx < 1 {
		sizePx = 1
	}
	if face, ok := f.faces[sizePx]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    float64(sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("ember: create face at %dpx: %w", sizePx, err)
	}
	f.faces[sizePx] = face
	return face, nil
}

// Metrics implements Font.
func (f *OutlineFont) Metrics(g GlyphID, sizePx int) (GlyphMetrics, bool) {
	face, err := f.face(sizePx)
	if err != nil {
		return GlyphMetrics{}, false
	}
	bounds, advance, ok := face.GlyphBounds(rune(g))
	if !ok {
		return GlyphMetrics{}, false
	}
	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	maxX := bounds.Max.X.Ceil()
	maxY := bounds.Max.Y.Ceil()
	return GlyphMetrics{
		Advance:  fixedToFloat(advance),
		BearingX: float32(minX),
		BearingY: float32(minY),
		Width:    maxX - minX,
		Height:   maxY - minY,
	}, true
}

// Rasterize implements Font. Rasterization goes through the face's glyph
// renderer with the dot at the origin, so the returned bitmap is exactly
// the glyph's bounding box and repeated calls produce identical bytes.
func (f *OutlineFont) Rasterize(g GlyphID, sizePx int) (GlyphBitmap, GlyphMetrics, error) {
	face, err := f.face(sizePx)
	if err != nil {
		return GlyphBitmap{}, GlyphMetrics{}, err
	}
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{}, rune(g))
	if !ok {
		return GlyphBitmap{}, GlyphMetrics{}, fmt.Errorf("%w: no glyph for %q", ErrInvalidHandle, rune(g))
	}
	metrics := GlyphMetrics{
		Advance:  fixedToFloat(advance),
		BearingX: float32(dr.Min.X),
		BearingY: float32(dr.Min.Y),
		Width:    dr.Dx(),
		Height:   dr.Dy(),
	}
	if dr.Empty() {
		// Whitespace: advances the pen but has nothing to draw.
		return GlyphBitmap{}, metrics, nil
	}
	alpha, ok := mask.(*image.Alpha)
	if !ok {
		return GlyphBitmap{}, GlyphMetrics{}, fmt.Errorf("ember: unexpected mask type %T", mask)
	}
	w, h := dr.Dx(), dr.Dy()
	pixels := make([]byte, w*h)
	for y := 0; y < h; y++ {
		src := (maskp.Y+y)*alpha.Stride + maskp.X
		copy(pixels[y*w:(y+1)*w], alpha.Pix[src:src+w])
	}
	return GlyphBitmap{Width: w, Height: h, Pixels: pixels}, metrics, nil
}

// LineHeight implements Font.
func (f *OutlineFont) LineHeight(sizePx int) float32 {
	face, err := f.face(sizePx)
	if err != nil {
		return float32(sizePx)
	}
	return fixedToFloat(face.Metrics().Height)
}

// Ascent implements Font.
func (f *OutlineFont) Ascent(sizePx int) float32 {
	face, err := f.face(sizePx)
	if err != nil {
		return float32(sizePx)
	}
	return fixedToFloat(face.Metrics().Ascent)
}

func fixedToFloat(x fixed.Int26_6) float32 {
	return float32(x) / 64
}
