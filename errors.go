package ember

import "errors"

// Sentinel errors for the failure modes callers are expected to
// distinguish. Wrapped errors carry the underlying cause; test with
// errors.Is.
var (
	// ErrNoUsableTier means capability negotiation found neither a modern
	// nor a legacy rendering tier. Fatal: initialization aborts and no
	// rendering is possible.
	ErrNoUsableTier = errors.New("ember: no usable rendering tier")

	// ErrFontParse means font bytes could not be parsed. Font creation
	// fails; the renderer is unaffected.
	ErrFontParse = errors.New("ember: font parse failed")

	// ErrImageDecode means image bytes could not be decoded. Texture
	// creation fails; the renderer is unaffected.
	ErrImageDecode = errors.New("ember: image decode failed")

	// ErrInvalidHandle means a draw call referenced a nil font or a zero
	// texture handle. The offending submission is skipped; the rest of the
	// frame's queue proceeds unaffected.
	ErrInvalidHandle = errors.New("ember: invalid handle")

	// ErrGlyphTooLarge means a rasterized glyph cannot fit an atlas page
	// even after eviction. The glyph is skipped for this draw call.
	ErrGlyphTooLarge = errors.New("ember: glyph larger than atlas page")
)
