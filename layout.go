package ember

import (
	"strings"
	"unicode"
)

// Alignment positions finished lines inside the text block.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// GlyphPlacement is one positioned glyph produced by text layout. Pos is
// the pen position: X at the glyph's origin, Y on the baseline. The
// glyph's bearing offsets are applied when the quad is built.
type GlyphPlacement struct {
	Rune  rune
	Glyph GlyphID
	Pos   Vec2
}

// layoutRun is a measured rune inside the current line buffer.
type layoutRun struct {
	r       rune
	glyph   GlyphID
	advance float32
}

type layoutLine struct {
	runs  []layoutRun
	width float32
}

// mustBreakLine reports whether a codepoint forces a line break. These
// characters are consumed, never rendered.
func mustBreakLine(c rune) bool {
	switch c {
	case '\n', '\v', '\f', '\r', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// canBreakLine reports whether a line may wrap cleanly at this codepoint.
func canBreakLine(c rune) bool {
	return unicode.IsSpace(c) || c == '\u200b'
}

// wrapRuns splits text into measured lines. Greedy accumulation of glyph
// advances: a line breaks at the last breakable codepoint before the
// width would overflow, and a single word wider than maxWidth hard-breaks
// mid-word. A maxWidth of zero or less disables wrapping.
func wrapRuns(f Font, text string, sizePx int, maxWidth float32) []layoutLine {
	var lines []layoutLine
	var buf []layoutRun
	var penX float32
	lastBreak := -1 // index in buf of the latest breakable rune

	flush := func(upto int) {
		runs := make([]layoutRun, upto)
		copy(runs, buf[:upto])
		var w float32
		for _, run := range runs {
			w += run.advance
		}
		lines = append(lines, layoutLine{runs: runs, width: w})
	}

	for _, c := range text {
		if mustBreakLine(c) {
			flush(len(buf))
			buf = buf[:0]
			penX = 0
			lastBreak = -1
			continue
		}
		g, ok := f.GlyphID(c)
		if !ok {
			continue
		}
		m, ok := f.Metrics(g, sizePx)
		if !ok {
			continue
		}

		if maxWidth > 0 && penX+m.Advance > maxWidth && len(buf) > 0 {
			switch {
			case canBreakLine(c):
				// The overflowing rune is itself a break point: the
				// whole buffer becomes a line and the rune is consumed.
				flush(len(buf))
				buf = buf[:0]
				penX = 0
				lastBreak = -1
				continue
			case lastBreak >= 0:
				// lastBreak == 0 means the only break point is leading
				// whitespace; dropping it must not emit an empty line.
				if lastBreak > 0 {
					flush(lastBreak)
				}
				rest := append([]layoutRun(nil), buf[lastBreak+1:]...)
				buf = append(buf[:0], rest...)
			default:
				// A single word wider than the limit: hard break.
				flush(len(buf))
				buf = buf[:0]
			}
			penX = 0
			lastBreak = -1
			for _, run := range buf {
				penX += run.advance
			}
		}

		if canBreakLine(c) {
			lastBreak = len(buf)
		}
		buf = append(buf, layoutRun{r: c, glyph: g, advance: m.Advance})
		penX += m.Advance
	}
	flush(len(buf))
	return lines
}

// WrapLines returns the word-wrapped line texts for the given font, size
// and width limit. It applies exactly the same breaking rules as
// LayoutText and exists mainly for measurement.
func WrapLines(f Font, text string, sizePx int, maxWidth float32) []string {
	lines := wrapRuns(f, text, sizePx, maxWidth)
	out := make([]string, len(lines))
	for i, line := range lines {
		var sb strings.Builder
		for _, run := range line.runs {
			sb.WriteRune(run.r)
		}
		out[i] = sb.String()
	}
	return out
}

// LayoutText converts text into an ordered sequence of positioned glyphs,
// relative to the text block's origin at its top-left corner. Whitespace
// contributes advances but produces no placements. The returned size is
// the block's overall width and height.
func LayoutText(f Font, text string, sizePx int, maxWidth float32, align Alignment) ([]GlyphPlacement, Vec2) {
	lines := wrapRuns(f, text, sizePx, maxWidth)

	blockWidth := maxWidth
	if blockWidth <= 0 {
		for _, line := range lines {
			if line.width > blockWidth {
				blockWidth = line.width
			}
		}
	}

	lineHeight := f.LineHeight(sizePx)
	baseline := f.Ascent(sizePx)

	var out []GlyphPlacement
	for _, line := range lines {
		penX := lineStartX(line.width, blockWidth, align)
		for _, run := range line.runs {
			if !unicode.IsSpace(run.r) {
				out = append(out, GlyphPlacement{
					Rune:  run.r,
					Glyph: run.glyph,
					Pos:   Vec2{X: penX, Y: baseline},
				})
			}
			penX += run.advance
		}
		baseline += lineHeight
	}
	return out, Vec2{X: blockWidth, Y: float32(len(lines)) * lineHeight}
}

// lineStartX offsets a finished line for its alignment.
func lineStartX(lineWidth, blockWidth float32, align Alignment) float32 {
	switch align {
	case AlignCenter:
		return (blockWidth - lineWidth) / 2
	case AlignRight:
		return blockWidth - lineWidth
	default:
		return 0
	}
}
