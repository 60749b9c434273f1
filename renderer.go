package ember

import "fmt"

// Path is the rendering path selected by capability negotiation at
// initialization. The choice is fixed for the session.
type Path uint8

const (
	// PathLegacy draws through duplicated per-vertex attributes with no
	// instancing, for fixed-attribute contexts.
	PathLegacy Path = iota
	// PathModern draws through hardware instancing over a shared unit
	// quad, and requires vertex array objects.
	PathModern
)

// String implements fmt.Stringer.
func (p Path) String() string {
	if p == PathModern {
		return "modern"
	}
	return "legacy"
}

// Backend is the GPU-facing interface the renderer composes over. The
// opengl package provides the real implementation; tests inject fakes.
//
// Implementations must be called only from the thread owning the graphics
// context.
type Backend interface {
	AtlasBackend

	// Path returns the rendering path negotiated at backend creation.
	Path() Path

	// Flush drains the queue to the GPU, one draw call per batch. On
	// error the caller drops the queue; Flush must leave GPU state
	// consistent either way.
	Flush(q *DrawQueue) error

	// CreateTexture uploads an RGBA image and returns its handle.
	CreateTexture(img *ImageRGBA) (TextureID, error)

	// DeleteTexture releases a texture handle. Unknown handles are
	// ignored.
	DeleteTexture(id TextureID)

	// Restore recompiles shaders and reallocates GPU objects after
	// context loss. Previously returned TextureIDs for user textures
	// become invalid; atlas pages are restored by the renderer.
	Restore() error
}

// RenderStats counts renderer activity since creation.
type RenderStats struct {
	DrawCalls     uint64 // One per flushed batch
	Instances     uint64 // Quads flushed
	PartialFlush  uint64 // Implicit flushes due to capacity overflow
	DroppedFrames uint64 // Queues dropped after a failed flush
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxInstances bounds the per-frame instance capacity. Submissions
// beyond the bound trigger an implicit partial flush, never data loss.
func WithMaxInstances(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxInstances = n
		}
	}
}

// WithAtlasPageSize sets the glyph atlas page dimensions in texels.
func WithAtlasPageSize(w, h int) Option {
	return func(r *Renderer) {
		if w > 0 && h > 0 {
			r.atlasW, r.atlasH = w, h
		}
	}
}

// WithMaxAtlasPages bounds the number of glyph atlas pages before the
// cache starts evicting.
func WithMaxAtlasPages(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.atlasPages = n
		}
	}
}

// Renderer is the per-frame entry point. It owns the frame's draw queue
// and the glyph cache, and submits to the GPU through the injected
// Backend.
//
// Typical frame: BeginFrame, any number of DrawQuad / DrawTexturedQuad /
// DrawText calls, then Flush. All calls must come from the thread owning
// the graphics context.
type Renderer struct {
	backend Backend
	queue   DrawQueue
	glyphs  *GlyphCache

	maxInstances int
	atlasW       int
	atlasH       int
	atlasPages   int

	stats    RenderStats
	frameErr error // first implicit-flush failure, surfaced by Flush
}

// New creates a renderer over an initialized backend.
func New(backend Backend, opts ...Option) (*Renderer, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrInvalidHandle)
	}
	r := &Renderer{
		backend:      backend,
		maxInstances: 16384,
		atlasW:       1024,
		atlasH:       1024,
		atlasPages:   4,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.glyphs = newGlyphCache(backend, r.atlasW, r.atlasH, r.atlasPages)
	r.glyphs.flushPending = func() error {
		if r.queue.Len() > 0 {
			r.stats.PartialFlush++
		}
		return r.flushQueue()
	}
	emberLogger.Debug("renderer created",
		"path", backend.Path().String(),
		"maxInstances", r.maxInstances,
		"atlasPageSize", fmt.Sprintf("%dx%d", r.atlasW, r.atlasH))
	return r, nil
}

// Path returns the negotiated rendering path.
func (r *Renderer) Path() Path {
	return r.backend.Path()
}

// BeginFrame starts a new frame, discarding any leftover queue state and
// any unreported flush error.
func (r *Renderer) BeginFrame() {
	r.queue.Reset()
	r.frameErr = nil
}

// DrawQuad submits a solid tinted quad. Submission order defines paint
// order: later submissions draw over earlier ones at equal depth.
func (r *Renderer) DrawQuad(pos, size Vec2, rotation float32, pivot Vec2, color uint32, depth float32) {
	r.submit(ProgramSolid, 0, Instance{
		Pos:      pos,
		Size:     size,
		Rotation: rotation,
		Pivot:    pivot,
		Color:    color,
		Region:   SolidRegion(),
		Depth:    depth,
	})
}

// DrawTexturedQuad submits a quad sampling the given texel region of a
// texture. Passing SolidRegion() is allowed and renders the tint only; the
// sentinel travels through the textured shader untouched. An invalid
// handle skips this submission only and the rest of the queue proceeds.
func (r *Renderer) DrawTexturedQuad(tex TextureID, region Region, pos, size Vec2, rotation float32, pivot Vec2, color uint32, depth float32) error {
	if tex == 0 {
		emberLogger.Warn("skipping textured quad with zero texture handle")
		return fmt.Errorf("%w: zero texture", ErrInvalidHandle)
	}
	r.submit(ProgramTextured, tex, Instance{
		Pos:      pos,
		Size:     size,
		Rotation: rotation,
		Pivot:    pivot,
		Color:    color,
		Region:   region,
		Depth:    depth,
	})
	return nil
}

// DrawText lays out text and submits one textured glyph quad per visible
// glyph, consulting the glyph cache. maxWidth of zero or less disables
// word wrapping. Glyphs that cannot be cached are skipped individually;
// the first such error is returned after the rest of the text is
// submitted.
func (r *Renderer) DrawText(f Font, text string, sizePx int, pos Vec2, maxWidth float32, align Alignment, color uint32, depth float32) error {
	if f == nil {
		emberLogger.Warn("skipping text with nil font")
		return fmt.Errorf("%w: nil font", ErrInvalidHandle)
	}
	placements, _ := LayoutText(f, text, sizePx, maxWidth, align)

	var firstErr error
	for _, p := range placements {
		cached, err := r.glyphs.Lookup(f, p.Glyph, sizePx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			emberLogger.Warn("skipping glyph", "rune", string(p.Rune), "err", err)
			continue
		}
		if cached.Texture == 0 {
			continue
		}
		m := cached.Metrics
		r.submit(ProgramText, cached.Texture, Instance{
			Pos:   pos.Add(p.Pos).Add(Vec2{X: m.BearingX, Y: m.BearingY}),
			Size:  Vec2{X: float32(m.Width), Y: float32(m.Height)},
			Color: color,
			Region: Region{
				U: float32(cached.Rect.X),
				V: float32(cached.Rect.Y),
				W: float32(cached.Rect.W),
				H: float32(cached.Rect.H),
			},
			Depth: depth,
		})
	}
	return firstErr
}

// MeasureText returns the laid-out size of a text block without
// submitting anything.
func (r *Renderer) MeasureText(f Font, text string, sizePx int, maxWidth float32) Vec2 {
	if f == nil {
		return Vec2{}
	}
	_, size := LayoutText(f, text, sizePx, maxWidth, AlignLeft)
	return size
}

// submit enqueues an instance, flushing the queue first when the frame
// capacity is reached. The partial flush is synchronous and preserves
// order; nothing is ever dropped silently, and a failed partial flush is
// remembered and reported by the next Flush.
func (r *Renderer) submit(program ProgramKind, tex TextureID, inst Instance) {
	if r.queue.Len() >= r.maxInstances {
		r.stats.PartialFlush++
		if err := r.flushQueue(); err != nil {
			emberLogger.Error("implicit flush failed", "err", err)
		}
	}
	r.queue.Push(program, tex, inst)
}

// Flush drains the frame's queue to the GPU. A failed flush drops the
// queue rather than retrying: the frame is abandoned, not corrupted. A
// nil return means the whole frame reached the GPU, including any
// implicit partial flushes since the last Flush.
func (r *Renderer) Flush() error {
	err := r.flushQueue()
	if err == nil {
		err = r.frameErr
	}
	r.frameErr = nil
	return err
}

// flushQueue submits and resets the queue, then advances the glyph
// cache's access stamp: flushed instances no longer pin atlas texels.
func (r *Renderer) flushQueue() error {
	if r.queue.Len() == 0 {
		r.glyphs.nextFrame()
		return nil
	}
	batches := uint64(r.queue.BatchCount())
	instances := uint64(r.queue.Len())
	err := r.backend.Flush(&r.queue)
	r.queue.Reset()
	r.glyphs.nextFrame()
	if err != nil {
		r.stats.DroppedFrames++
		werr := fmt.Errorf("ember: flush: %w", err)
		if r.frameErr == nil {
			r.frameErr = werr
		}
		return werr
	}
	r.stats.DrawCalls += batches
	r.stats.Instances += instances
	return nil
}

// CreateTexture decodes image bytes and uploads them as a texture. Decode
// failure returns ErrImageDecode (wrapped) without touching GPU state.
func (r *Renderer) CreateTexture(data []byte) (TextureID, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return 0, err
	}
	return r.backend.CreateTexture(img)
}

// CreateTextureRGBA uploads already-decoded RGBA pixels as a texture.
func (r *Renderer) CreateTextureRGBA(img *ImageRGBA) (TextureID, error) {
	return r.backend.CreateTexture(img)
}

// DeleteTexture releases a texture created through this renderer.
func (r *Renderer) DeleteTexture(id TextureID) {
	r.backend.DeleteTexture(id)
}

// ClearGlyphCache drops every cached glyph and zeroes the atlas pages.
// Intended for long-running sessions to reclaim space proactively.
func (r *Renderer) ClearGlyphCache() {
	r.glyphs.Clear()
}

// Restore rebuilds all GPU-side state after context loss: the backend
// recompiles its shaders and buffers, atlas pages are reallocated, and
// cached glyph bitmaps are replayed into them without re-rasterizing.
// User textures must be re-created by the host.
func (r *Renderer) Restore() error {
	if err := r.backend.Restore(); err != nil {
		return fmt.Errorf("ember: restore backend: %w", err)
	}
	if err := r.glyphs.restore(); err != nil {
		return fmt.Errorf("ember: restore glyph cache: %w", err)
	}
	emberLogger.Debug("renderer state restored after context loss")
	return nil
}

// Stats returns cumulative renderer counters.
func (r *Renderer) Stats() RenderStats {
	return r.stats
}

// GlyphCacheStats returns glyph cache activity counters.
func (r *Renderer) GlyphCacheStats() CacheStats {
	return r.glyphs.Stats()
}
