package ember

import (
	"testing"
)

// countingFont rasterizes fixed-size squares and counts how often each
// glyph is rasterized, to prove the cache only pays once.
type countingFont struct {
	id         uint64
	side       int
	rasterized map[GlyphID]int
}

func newCountingFont(side int) *countingFont {
	return &countingFont{id: nextFontID(), side: side, rasterized: make(map[GlyphID]int)}
}

func (f *countingFont) ID() uint64 { return f.id }

func (f *countingFont) GlyphID(r rune) (GlyphID, bool) { return GlyphID(r), true }

func (f *countingFont) Metrics(g GlyphID, sizePx int) (GlyphMetrics, bool) {
	m := GlyphMetrics{Advance: float32(f.side)}
	if g != ' ' {
		m.Width = f.side
		m.Height = f.side
	}
	return m, true
}

func (f *countingFont) Rasterize(g GlyphID, sizePx int) (GlyphBitmap, GlyphMetrics, error) {
	f.rasterized[g]++
	m, _ := f.Metrics(g, sizePx)
	if m.Width == 0 {
		return GlyphBitmap{}, m, nil
	}
	return GlyphBitmap{
		Width:  f.side,
		Height: f.side,
		Pixels: make([]byte, f.side*f.side),
	}, m, nil
}

func (f *countingFont) LineHeight(sizePx int) float32 { return float32(f.side) + 2 }

func (f *countingFont) Ascent(sizePx int) float32 { return float32(f.side) }

func TestGlyphCacheRasterizesOnce(t *testing.T) {
	font := newCountingFont(10)
	c := newGlyphCache(newFakeAtlasBackend(), 64, 64, 1)

	first, err := c.Lookup(font, 'a', 8)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	second, err := c.Lookup(font, 'a', 8)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if font.rasterized['a'] != 1 {
		t.Errorf("rasterized %d times, want 1", font.rasterized['a'])
	}
	if first.Texture != second.Texture || first.Rect != second.Rect {
		t.Errorf("cache hit returned a different location: %+v vs %+v", first, second)
	}
	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss", stats)
	}
}

func TestGlyphCacheDistinguishesSizes(t *testing.T) {
	font := newCountingFont(10)
	c := newGlyphCache(newFakeAtlasBackend(), 64, 64, 1)

	c.Lookup(font, 'a', 8)
	c.Lookup(font, 'a', 16)
	if font.rasterized['a'] != 2 {
		t.Errorf("distinct sizes must rasterize separately, got %d calls", font.rasterized['a'])
	}
}

func TestGlyphCacheWhitespaceNeedsNoAtlas(t *testing.T) {
	font := newCountingFont(10)
	backend := newFakeAtlasBackend()
	c := newGlyphCache(backend, 64, 64, 1)

	g, err := c.Lookup(font, ' ', 8)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if g.Texture != 0 {
		t.Errorf("whitespace glyph got texture %d, want 0", g.Texture)
	}
	if len(backend.uploads) != 0 {
		t.Errorf("whitespace glyph must not upload")
	}
	if g.Metrics.Advance != 10 {
		t.Errorf("metrics must still carry the advance, got %v", g.Metrics.Advance)
	}
}

func TestGlyphCacheEvictsToFit(t *testing.T) {
	// One 62x62 glyph fills the single page, so every subsequent glyph
	// evicts its predecessor. No insertion may fail.
	font := newCountingFont(62)
	c := newGlyphCache(newFakeAtlasBackend(), 64, 64, 1)

	for i := 0; i < 5; i++ {
		if _, err := c.Lookup(font, GlyphID('a'+i), 8); err != nil {
			t.Fatalf("Lookup %d: %v", i, err)
		}
		c.nextFrame()
	}
	if c.Stats().Evictions != 4 {
		t.Errorf("evictions = %d, want 4", c.Stats().Evictions)
	}

	// The evicted glyph comes back transparently, at the cost of a
	// second rasterization.
	if _, err := c.Lookup(font, 'a', 8); err != nil {
		t.Fatalf("re-Lookup: %v", err)
	}
	if font.rasterized['a'] != 2 {
		t.Errorf("evicted glyph rasterized %d times, want 2", font.rasterized['a'])
	}
}

func TestGlyphCacheFlushesBeforeEvictingInFlightGlyphs(t *testing.T) {
	// Both glyphs land in one frame and only one fits: the cache must
	// drain the pending queue before reclaiming the first glyph's
	// texels, so the quads already queued for it still sample live data.
	font := newCountingFont(62)
	backend := newFakeAtlasBackend()
	c := newGlyphCache(backend, 64, 64, 1)
	flushes := 0
	c.flushPending = func() error {
		flushes++
		c.nextFrame()
		return nil
	}

	if _, err := c.Lookup(font, 'a', 8); err != nil {
		t.Fatalf("Lookup a: %v", err)
	}
	if len(backend.clears) != 0 {
		t.Fatalf("clears before pressure = %v, want none", backend.clears)
	}
	if _, err := c.Lookup(font, 'b', 8); err != nil {
		t.Fatalf("Lookup b: %v", err)
	}
	if flushes != 1 {
		t.Errorf("pending queue flushed %d times, want 1", flushes)
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestGlyphCachePressureWithoutFlushHookFails(t *testing.T) {
	font := newCountingFont(62)
	c := newGlyphCache(newFakeAtlasBackend(), 64, 64, 1)

	if _, err := c.Lookup(font, 'a', 8); err != nil {
		t.Fatalf("Lookup a: %v", err)
	}
	if _, err := c.Lookup(font, 'b', 8); err == nil {
		t.Fatalf("Lookup b succeeded, want failure while 'a' is in flight")
	}
	// The resident glyph keeps its spot.
	if g, err := c.Lookup(font, 'a', 8); err != nil || g.Texture == 0 {
		t.Errorf("Lookup a after pressure: %v, tex %d", err, g.Texture)
	}
}

func TestGlyphCacheLiveRectsNeverOverlap(t *testing.T) {
	font := newCountingFont(20)
	c := newGlyphCache(newFakeAtlasBackend(), 64, 64, 2)

	var live []CachedGlyph
	for i := 0; i < 8; i++ {
		g, err := c.Lookup(font, GlyphID('a'+i), 8)
		if err != nil {
			t.Fatalf("Lookup %d: %v", i, err)
		}
		live = append(live, g)
		c.nextFrame()
	}

	// Re-look-up everything still cached and check pairwise overlap per
	// page. Evicted entries are skipped: their old rects are dead.
	current := make([]CachedGlyph, 0, len(live))
	for i := 0; i < 8; i++ {
		key := glyphKey{font: font.id, glyph: GlyphID('a' + i), size: 8}
		if _, ok := c.entries[key]; !ok {
			continue
		}
		g, _ := c.Lookup(font, GlyphID('a'+i), 8)
		current = append(current, g)
	}
	for i := 0; i < len(current); i++ {
		for j := i + 1; j < len(current); j++ {
			a, b := current[i], current[j]
			if a.Texture != b.Texture {
				continue
			}
			if rectsOverlap(a.Rect, b.Rect) {
				t.Errorf("live rects overlap: %+v and %+v", a.Rect, b.Rect)
			}
		}
	}
}

func rectsOverlap(a, b RectPx) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func TestGlyphCacheClear(t *testing.T) {
	font := newCountingFont(10)
	c := newGlyphCache(newFakeAtlasBackend(), 64, 64, 1)

	c.Lookup(font, 'a', 8)
	c.Clear()
	c.Lookup(font, 'a', 8)

	if font.rasterized['a'] != 2 {
		t.Errorf("glyph must re-rasterize after Clear, got %d calls", font.rasterized['a'])
	}
}

func TestGlyphCacheRestoreReplaysBitmaps(t *testing.T) {
	font := newCountingFont(10)
	backend := newFakeAtlasBackend()
	c := newGlyphCache(backend, 64, 64, 1)

	c.Lookup(font, 'a', 8)
	c.Lookup(font, 'b', 8)
	uploadsBefore := len(backend.uploads)
	pagesBefore := len(backend.pages)

	if err := c.restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if len(backend.pages) != pagesBefore+1 {
		t.Errorf("restore must reallocate the page texture")
	}
	if len(backend.uploads) != uploadsBefore+2 {
		t.Errorf("restore uploaded %d bitmaps, want 2", len(backend.uploads)-uploadsBefore)
	}
	if font.rasterized['a'] != 1 || font.rasterized['b'] != 1 {
		t.Errorf("restore must not re-rasterize: got %d, %d calls",
			font.rasterized['a'], font.rasterized['b'])
	}

	// Cached lookups still work against the new pages.
	if _, err := c.Lookup(font, 'a', 8); err != nil {
		t.Fatalf("Lookup after restore: %v", err)
	}
	if font.rasterized['a'] != 1 {
		t.Errorf("post-restore lookup re-rasterized")
	}
}
