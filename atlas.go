package ember

import (
	"errors"
	"fmt"
)

// Atlas packing keeps glyphs one pixel away from page edges and from each
// other so linear filtering never bleeds between neighbors.
const (
	atlasMargin = 1
	atlasGap    = 1
)

// RectPx is an integer rectangle in atlas texel coordinates.
type RectPx struct {
	X, Y, W, H int
}

// AtlasBackend is the GPU-facing surface the glyph atlas needs: page
// creation, sub-image upload and region clearing. The OpenGL backend
// implements it; tests substitute an in-memory fake.
type AtlasBackend interface {
	// CreateAtlasPage allocates a zeroed single-channel coverage texture.
	CreateAtlasPage(w, h int) (TextureID, error)
	// UploadGlyph copies a tightly packed coverage bitmap into a page.
	UploadGlyph(page TextureID, r RectPx, pixels []byte) error
	// ClearRegion zeroes a page region, used when a glyph is evicted.
	ClearRegion(page TextureID, r RectPx) error
}

// errAtlasPressure reports that every resident glyph was accessed since
// the last queue flush, so none can be evicted without corrupting quads
// already queued. The glyph cache reacts by draining the pending queue
// and retrying.
var errAtlasPressure = errors.New("ember: atlas full of in-flight glyphs")

// atlasSpot is one reserved glyph rectangle.
type atlasSpot struct {
	key     glyphKey
	rect    RectPx
	page    *atlasPage
	shelf   *atlasShelf
	lastUse uint64 // Frame stamp of the most recent access
	seq     uint64 // Insertion order, breaks LRU ties deterministically
}

// atlasShelf is a horizontal row of spots sharing a y coordinate. Spots
// are kept sorted by x so gap scans are a single pass.
type atlasShelf struct {
	y      int
	height int
	spots  []*atlasSpot
}

type atlasPage struct {
	tex     TextureID
	width   int
	height  int
	shelves []*atlasShelf
	nextY   int // y for the next new shelf
}

// Atlas owns one or more fixed-size texture pages and a shelf allocator
// over them. Placement packs left to right into a compatible shelf, opens
// a new shelf when no gap fits, opens a new page when the page height is
// exhausted, and finally evicts least-recently-used spots until the new
// glyph fits.
type Atlas struct {
	backend  AtlasBackend
	pageW    int
	pageH    int
	maxPages int
	pages    []*atlasPage
	seq      uint64
}

func newAtlas(backend AtlasBackend, pageW, pageH, maxPages int) *Atlas {
	return &Atlas{backend: backend, pageW: pageW, pageH: pageH, maxPages: maxPages}
}

// place reserves a w x h rectangle, evicting old spots if it must. It
// returns the reserved spot and the keys of any evicted glyphs so the
// cache can invalidate them. frame is the current access stamp: spots
// used since the last flush are never evicted, since their texels may be
// referenced by queued draw instances; place fails with errAtlasPressure
// instead and the caller flushes and retries.
func (a *Atlas) place(key glyphKey, w, h int, frame uint64) (*atlasSpot, []glyphKey, error) {
	if w > a.pageW-2*atlasMargin || h > a.pageH-2*atlasMargin {
		return nil, nil, fmt.Errorf("%w: %dx%d on %dx%d page", ErrGlyphTooLarge, w, h, a.pageW, a.pageH)
	}

	if spot := a.tryPlace(key, w, h, frame); spot != nil {
		return spot, nil, nil
	}

	var evicted []glyphKey
	for {
		victim := a.pickVictim(frame)
		if victim == nil {
			return nil, evicted, fmt.Errorf("%w: no evictable spot for %dx%d", errAtlasPressure, w, h)
		}
		a.evict(victim)
		evicted = append(evicted, victim.key)
		if spot := a.tryPlace(key, w, h, frame); spot != nil {
			return spot, evicted, nil
		}
	}
}

// tryPlace attempts placement without evicting: existing shelf gaps
// first, then a new shelf, then a new page.
func (a *Atlas) tryPlace(key glyphKey, w, h int, frame uint64) *atlasSpot {
	for _, page := range a.pages {
		for _, shelf := range page.shelves {
			if !shelf.fitsHeight(h) {
				continue
			}
			if x, ok := shelf.findGap(w, page.width); ok {
				return a.reserve(key, page, shelf, x, w, h, frame)
			}
		}
	}
	for _, page := range a.pages {
		if shelf := page.addShelf(h); shelf != nil {
			return a.reserve(key, page, shelf, atlasMargin, w, h, frame)
		}
	}
	if len(a.pages) < a.maxPages {
		page, err := a.addPage()
		if err != nil {
			return nil
		}
		shelf := page.addShelf(h)
		return a.reserve(key, page, shelf, atlasMargin, w, h, frame)
	}
	return nil
}

func (a *Atlas) addPage() (*atlasPage, error) {
	tex, err := a.backend.CreateAtlasPage(a.pageW, a.pageH)
	if err != nil {
		return nil, err
	}
	page := &atlasPage{tex: tex, width: a.pageW, height: a.pageH, nextY: atlasMargin}
	a.pages = append(a.pages, page)
	return page, nil
}

func (a *Atlas) reserve(key glyphKey, page *atlasPage, shelf *atlasShelf, x, w, h int, frame uint64) *atlasSpot {
	a.seq++
	spot := &atlasSpot{
		key:     key,
		rect:    RectPx{X: x, Y: shelf.y, W: w, H: h},
		page:    page,
		shelf:   shelf,
		lastUse: frame,
		seq:     a.seq,
	}
	// Keep the shelf sorted by x.
	i := 0
	for i < len(shelf.spots) && shelf.spots[i].rect.X < x {
		i++
	}
	shelf.spots = append(shelf.spots, nil)
	copy(shelf.spots[i+1:], shelf.spots[i:])
	shelf.spots[i] = spot
	return spot
}

// pickVictim selects the least-recently-used spot among those not touched
// since the last flush. Ties break by insertion order so the eviction
// sequence is deterministic for a given access history. Returns nil when
// every spot is still in flight.
func (a *Atlas) pickVictim(frame uint64) *atlasSpot {
	var best *atlasSpot
	for _, page := range a.pages {
		for _, shelf := range page.shelves {
			for _, spot := range shelf.spots {
				if spot.lastUse < frame && (best == nil || spot.older(best)) {
					best = spot
				}
			}
		}
	}
	return best
}

func (s *atlasSpot) older(other *atlasSpot) bool {
	if s.lastUse != other.lastUse {
		return s.lastUse < other.lastUse
	}
	return s.seq < other.seq
}

func (a *Atlas) evict(spot *atlasSpot) {
	shelf := spot.shelf
	for i, s := range shelf.spots {
		if s == spot {
			shelf.spots = append(shelf.spots[:i], shelf.spots[i+1:]...)
			break
		}
	}
	// The texels must be zeroed: the freed area may be only partially
	// covered by the next occupant.
	_ = a.backend.ClearRegion(spot.page.tex, spot.rect)
}

// clear drops every shelf and zeroes every page, keeping the page
// textures allocated.
func (a *Atlas) clear() {
	for _, page := range a.pages {
		_ = a.backend.ClearRegion(page.tex, RectPx{X: 0, Y: 0, W: page.width, H: page.height})
		page.shelves = nil
		page.nextY = atlasMargin
	}
}

// restore reallocates every page texture after context loss, preserving
// the packing layout so retained CPU bitmaps can be replayed in place.
func (a *Atlas) restore() error {
	for _, page := range a.pages {
		tex, err := a.backend.CreateAtlasPage(page.width, page.height)
		if err != nil {
			return err
		}
		page.tex = tex
	}
	return nil
}

// fitsHeight reports whether a glyph of height h belongs on this shelf.
// Shelves accept glyphs between half and full shelf height, so short
// glyphs do not strand tall rows.
func (s *atlasShelf) fitsHeight(h int) bool {
	return h <= s.height && h*2 >= s.height
}

// findGap scans for a free x position wide enough for w, honoring the
// margin at page edges and the gap between neighbors.
func (s *atlasShelf) findGap(w, pageWidth int) (int, bool) {
	left := atlasMargin
	for _, spot := range s.spots {
		if spot.rect.X-atlasGap-left >= w {
			return left, true
		}
		left = spot.rect.X + spot.rect.W + atlasGap
	}
	if pageWidth-atlasMargin-left >= w {
		return left, true
	}
	return 0, false
}

// addShelf opens a new shelf of the given height if vertical space
// remains, returning nil otherwise.
func (p *atlasPage) addShelf(h int) *atlasShelf {
	if p.nextY+h+atlasMargin > p.height {
		return nil
	}
	shelf := &atlasShelf{y: p.nextY, height: h}
	p.nextY += h + atlasGap
	p.shelves = append(p.shelves, shelf)
	return shelf
}
