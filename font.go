package ember

import "sync/atomic"

// GlyphID identifies a glyph within a font. The mapping from codepoints to
// glyph ids is backend-defined; ids from one font are meaningless in
// another.
type GlyphID uint32

// GlyphMetrics describes a rasterized glyph's placement. BearingX and
// BearingY position the bitmap relative to the pen: BearingX to the right
// of the pen, BearingY down from the baseline (negative above it).
type GlyphMetrics struct {
	Advance  float32 // Horizontal pen advance after this glyph
	BearingX float32
	BearingY float32
	Width    int // Bitmap width in pixels
	Height   int // Bitmap height in pixels
}

// GlyphBitmap is an 8-bit coverage bitmap, row-major, Width*Height bytes.
type GlyphBitmap struct {
	Width  int
	Height int
	Pixels []byte
}

// Font is the capability interface over the two font backends: the
// built-in fixed 8x8 bitmap font and the scalable outline rasterizer.
// Call sites stay backend-agnostic.
//
// Rasterize must be deterministic and side-effect-free for fixed inputs;
// the glyph cache relies on re-rasterization producing identical bitmaps.
// Fonts are not safe for concurrent use, matching the renderer's
// single-threaded contract.
type Font interface {
	// ID returns the font's identity, stable for the lifetime of the
	// handle. It keys the glyph cache.
	ID() uint64

	// GlyphID maps a codepoint to a glyph id. The second return value is
	// false when the font has no glyph for the rune.
	GlyphID(r rune) (GlyphID, bool)

	// Metrics returns placement metrics for a glyph at the given pixel
	// size without rasterizing it.
	Metrics(g GlyphID, sizePx int) (GlyphMetrics, bool)

	// Rasterize produces the glyph's coverage bitmap and metrics at the
	// given pixel size. Whitespace glyphs may return an empty bitmap.
	Rasterize(g GlyphID, sizePx int) (GlyphBitmap, GlyphMetrics, error)

	// LineHeight returns the baseline-to-baseline distance at the given
	// pixel size.
	LineHeight(sizePx int) float32

	// Ascent returns the distance from the top of a line to its baseline
	// at the given pixel size.
	Ascent(sizePx int) float32
}

var fontIDCounter atomic.Uint64

// nextFontID allocates a process-unique font identity.
func nextFontID() uint64 {
	return fontIDCounter.Add(1)
}
