package ember

import "errors"

// glyphKey identifies a cached glyph: font identity, glyph id and pixel
// size. Rasterization is deterministic for a fixed key, so the cache is
// never authoritative and any entry can be dropped and rebuilt.
type glyphKey struct {
	font  uint64
	glyph GlyphID
	size  int
}

// CachedGlyph is the renderable result of a cache lookup: the atlas page
// and texel rectangle holding the glyph's coverage bitmap, plus its
// placement metrics. Whitespace glyphs have a zero Texture and an empty
// Rect. The value is immutable; the underlying entry is only ever removed
// by eviction, never mutated.
type CachedGlyph struct {
	Texture TextureID
	Rect    RectPx
	Metrics GlyphMetrics
}

type cacheEntry struct {
	spot    *atlasSpot // nil when the glyph has no pixels
	metrics GlyphMetrics
	bitmap  GlyphBitmap // retained so context loss replays without re-rasterizing
}

// CacheStats counts glyph cache activity since creation.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// GlyphCache avoids repeated rasterization and upload for the same
// (font, glyph, size). All operations run on the thread owning the
// rendering context; there is no locking.
type GlyphCache struct {
	atlas   *Atlas
	entries map[glyphKey]*cacheEntry
	frame   uint64
	stats   CacheStats

	// flushPending drains the owner's draw queue so that in-flight atlas
	// spots become evictable. Set by the renderer; nil in isolated use.
	flushPending func() error
}

func newGlyphCache(backend AtlasBackend, pageW, pageH, maxPages int) *GlyphCache {
	return &GlyphCache{
		atlas:   newAtlas(backend, pageW, pageH, maxPages),
		entries: make(map[glyphKey]*cacheEntry),
	}
}

// Lookup returns the cached glyph, rasterizing and uploading it on a
// miss. On atlas pressure it evicts least-recently-used entries until the
// new glyph fits; evicted glyphs are re-rasterized transparently when
// next requested. Entries accessed since the last flush are never
// evicted: when only those remain, the pending queue is flushed first so
// already-submitted quads keep their texels.
func (c *GlyphCache) Lookup(f Font, g GlyphID, sizePx int) (CachedGlyph, error) {
	key := glyphKey{font: f.ID(), glyph: g, size: sizePx}
	if e, ok := c.entries[key]; ok {
		c.stats.Hits++
		if e.spot == nil {
			return CachedGlyph{Metrics: e.metrics}, nil
		}
		e.spot.lastUse = c.frame
		return CachedGlyph{Texture: e.spot.page.tex, Rect: e.spot.rect, Metrics: e.metrics}, nil
	}

	c.stats.Misses++
	bitmap, metrics, err := f.Rasterize(g, sizePx)
	if err != nil {
		return CachedGlyph{}, err
	}
	if bitmap.Width == 0 || bitmap.Height == 0 {
		c.entries[key] = &cacheEntry{metrics: metrics}
		return CachedGlyph{Metrics: metrics}, nil
	}

	spot, evicted, err := c.atlas.place(key, bitmap.Width, bitmap.Height, c.frame)
	if errors.Is(err, errAtlasPressure) && c.flushPending != nil {
		// Flushing advances the access stamp even when it fails, since
		// a dropped queue references no texels either way.
		_ = c.flushPending()
		var more []glyphKey
		spot, more, err = c.atlas.place(key, bitmap.Width, bitmap.Height, c.frame)
		evicted = append(evicted, more...)
	}
	for _, k := range evicted {
		delete(c.entries, k)
		c.stats.Evictions++
	}
	if err != nil {
		return CachedGlyph{}, err
	}
	if err := c.atlas.backend.UploadGlyph(spot.page.tex, spot.rect, bitmap.Pixels); err != nil {
		c.atlas.evict(spot)
		return CachedGlyph{}, err
	}

	c.entries[key] = &cacheEntry{spot: spot, metrics: metrics, bitmap: bitmap}
	return CachedGlyph{Texture: spot.page.tex, Rect: spot.rect, Metrics: metrics}, nil
}

// nextFrame advances the access stamp used by the LRU policy. Called
// after every queue flush: once flushed, queued instances no longer pin
// the atlas texels they sample.
func (c *GlyphCache) nextFrame() {
	c.frame++
}

// Clear drops every cached glyph and zeroes the atlas pages. Useful for
// long-running sessions to reclaim space proactively, e.g. after a UI
// stops using a large font size.
func (c *GlyphCache) Clear() {
	clear(c.entries)
	c.atlas.clear()
}

// restore reallocates the atlas pages after context loss and replays the
// retained CPU-side bitmaps into them. No glyph is re-rasterized.
func (c *GlyphCache) restore() error {
	if err := c.atlas.restore(); err != nil {
		return err
	}
	for _, e := range c.entries {
		if e.spot == nil {
			continue
		}
		if err := c.atlas.backend.UploadGlyph(e.spot.page.tex, e.spot.rect, e.bitmap.Pixels); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns cache activity counters.
func (c *GlyphCache) Stats() CacheStats {
	return c.stats
}
