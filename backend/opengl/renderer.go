// Package opengl provides the OpenGL backend for the ember renderer.
//
// The backend negotiates one of two rendering paths when it is created:
// the modern path (desktop GL 3.3+ or ES 3.0+) draws every batch with one
// instanced call over a shared unit quad, and the legacy path (GL 2.x /
// ES 2.0) expands quads on the CPU and draws indexed triangle lists. The
// choice is fixed for the lifetime of the backend.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-compatibility/gl"

	"github.com/ember2d/ember"
)

// floatsPerInstance is the size of one packed instance in the modern
// path's instance buffer: position, size, rotation, pivot, depth, texel
// region and color.
const floatsPerInstance = 16

type program struct {
	handle     uint32
	projLoc    int32
	texLoc     int32
	texSizeLoc int32

	// Legacy attribute locations; unused on the modern path, which pins
	// locations with layout qualifiers.
	posLoc   int32
	uvLoc    int32
	colorLoc int32
}

type texInfo struct {
	w, h  int
	atlas bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithForceLegacy forces the legacy rendering path even when the context
// is capable of the modern one. Intended for driver workarounds and for
// exercising the legacy path on modern hardware.
func WithForceLegacy() Option {
	return func(r *Renderer) { r.forceLegacy = true }
}

// Renderer implements ember.Backend on an OpenGL context. The context
// must be current on the calling goroutine for every method, New
// included.
type Renderer struct {
	path        ember.Path
	version     Version
	forceLegacy bool
	width       int
	height      int

	programs [ember.ProgramCount]program

	// Modern path objects.
	vao         uint32
	quadVBO     uint32
	quadEBO     uint32
	instanceVBO uint32
	instanceBuf []float32

	// Legacy path objects.
	legacyVBO  uint32
	legacyEBO  uint32
	indexQuads int // Quads covered by the uploaded index pattern
	vertexBuf  []ember.Vertex

	textures map[ember.TextureID]texInfo
}

// New initializes the OpenGL function pointers, negotiates the rendering
// path from the context's version string, and compiles the shader
// programs for that path. width and height are the framebuffer size used
// for the projection; use Resize when it changes.
func New(width, height int, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		width:    width,
		height:   height,
		textures: make(map[ember.TextureID]texInfo),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to load OpenGL: %w", err)
	}

	versionStr := gl.GoStr(gl.GetString(gl.VERSION))
	version, err := ParseVersion(versionStr)
	if err != nil {
		return nil, err
	}
	r.version = version

	switch {
	case version.ModernCapable() && !r.forceLegacy:
		r.path = ember.PathModern
	case version.Major >= 2:
		// Desktop 2.x and ES 2.0 both have the programmable pipeline the
		// legacy path needs.
		r.path = ember.PathLegacy
	default:
		return nil, fmt.Errorf("%w: %s", ember.ErrNoUsableTier, version)
	}

	if err := r.initGL(); err != nil {
		return nil, err
	}
	return r, nil
}

// initGL compiles the path's shader programs and allocates buffer
// objects. Called from New and again from Restore after context loss.
func (r *Renderer) initGL() error {
	if r.path == ember.PathModern {
		if err := r.initModern(); err != nil {
			return err
		}
	} else {
		if err := r.initLegacy(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) initModern() error {
	pre := preamble(r.version.API, true)
	frags := [ember.ProgramCount]string{
		ember.ProgramSolid:    modernSolidFragSource,
		ember.ProgramTextured: modernTexturedFragSource,
		ember.ProgramText:     modernTextFragSource,
	}
	for kind, frag := range frags {
		handle, err := linkProgram(pre+modernVertexSource, pre+frag)
		if err != nil {
			return fmt.Errorf("program %d: %w", kind, err)
		}
		r.programs[kind] = program{
			handle:     handle,
			projLoc:    gl.GetUniformLocation(handle, gl.Str("u_projection\x00")),
			texLoc:     gl.GetUniformLocation(handle, gl.Str("u_tex\x00")),
			texSizeLoc: gl.GetUniformLocation(handle, gl.Str("u_texSize\x00")),
		}
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	// Shared unit quad: four corners, two triangles.
	corners := []float32{0, 0, 1, 0, 1, 1, 0, 1}
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(corners)*4, gl.Ptr(corners), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 8, 0)
	gl.EnableVertexAttribArray(0)

	indices := ember.QuadIndices
	gl.GenBuffers(1, &r.quadEBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.quadEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices[:]), gl.STATIC_DRAW)

	// Instance attributes advance once per instance. The pointer offsets
	// are rebound per batch during Flush; divisors and enables live in
	// the VAO.
	gl.GenBuffers(1, &r.instanceVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.instanceVBO)
	stride := int32(floatsPerInstance * 4)
	for loc := uint32(1); loc <= 4; loc++ {
		gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, stride, uintptr(loc-1)*16)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribDivisor(loc, 1)
	}

	gl.BindVertexArray(0)
	return nil
}

func (r *Renderer) initLegacy() error {
	pre := preamble(r.version.API, false)
	frags := [ember.ProgramCount]string{
		ember.ProgramSolid:    legacySolidFragSource,
		ember.ProgramTextured: legacyTexturedFragSource,
		ember.ProgramText:     legacyTextFragSource,
	}
	for kind, frag := range frags {
		handle, err := linkProgram(pre+legacyVertexSource, pre+frag)
		if err != nil {
			return fmt.Errorf("program %d: %w", kind, err)
		}
		r.programs[kind] = program{
			handle:   handle,
			projLoc:  gl.GetUniformLocation(handle, gl.Str("u_projection\x00")),
			texLoc:   gl.GetUniformLocation(handle, gl.Str("u_tex\x00")),
			posLoc:   gl.GetAttribLocation(handle, gl.Str("a_pos\x00")),
			uvLoc:    gl.GetAttribLocation(handle, gl.Str("a_uv\x00")),
			colorLoc: gl.GetAttribLocation(handle, gl.Str("a_color\x00")),
		}
	}

	gl.GenBuffers(1, &r.legacyVBO)
	gl.GenBuffers(1, &r.legacyEBO)
	r.indexQuads = 0
	return nil
}

// Path returns the negotiated rendering path.
func (r *Renderer) Path() ember.Path {
	return r.path
}

// Version returns the parsed context version.
func (r *Renderer) Version() Version {
	return r.version
}

// Resize updates the framebuffer size used for the projection.
func (r *Renderer) Resize(width, height int) {
	r.width = width
	r.height = height
}

// Flush draws the queue in batch order, one draw call per batch.
func (r *Renderer) Flush(q *ember.DrawQueue) error {
	if q.Len() == 0 {
		return nil
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	if r.path == ember.PathModern {
		r.flushModern(q)
	} else {
		r.flushLegacy(q)
	}
	return nil
}

func (r *Renderer) flushModern(q *ember.DrawQueue) {
	r.instanceBuf = r.instanceBuf[:0]
	for _, b := range q.Batches {
		for _, inst := range b.Instances {
			cr, cg, cb, ca := ember.UnpackRGBA(inst.Color)
			r.instanceBuf = append(r.instanceBuf,
				inst.Pos.X, inst.Pos.Y, inst.Size.X, inst.Size.Y,
				inst.Rotation, inst.Pivot.X, inst.Pivot.Y, inst.Depth,
				inst.Region.U, inst.Region.V, inst.Region.W, inst.Region.H,
				float32(cr)/255, float32(cg)/255, float32(cb)/255, float32(ca)/255,
			)
		}
	}

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.instanceVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.instanceBuf)*4, gl.Ptr(r.instanceBuf), gl.STREAM_DRAW)

	proj := orthoMatrix(0, float32(r.width), float32(r.height), 0, -1, 1)
	stride := int32(floatsPerInstance * 4)
	base := 0
	for _, b := range q.Batches {
		p := r.programs[b.Program]
		gl.UseProgram(p.handle)
		gl.UniformMatrix4fv(p.projLoc, 1, false, &proj[0])
		if b.Texture != 0 {
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, uint32(b.Texture))
			gl.Uniform1i(p.texLoc, 0)
			info := r.textures[b.Texture]
			if info.w > 0 && info.h > 0 {
				gl.Uniform2f(p.texSizeLoc, float32(info.w), float32(info.h))
			} else {
				gl.Uniform2f(p.texSizeLoc, 1, 1)
			}
		}

		// GL 3.3 has no base-instance draw, so the instance attributes
		// are re-pointed at this batch's slice of the packed buffer.
		offset := uintptr(base * floatsPerInstance * 4)
		for loc := uint32(1); loc <= 4; loc++ {
			gl.VertexAttribPointerWithOffset(loc, 4, gl.FLOAT, false, stride, offset+uintptr(loc-1)*16)
		}

		gl.DrawElementsInstanced(gl.TRIANGLES, 6, gl.UNSIGNED_INT, nil, int32(len(b.Instances)))
		base += len(b.Instances)
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) flushLegacy(q *ember.DrawQueue) {
	r.vertexBuf = r.vertexBuf[:0]
	for _, b := range q.Batches {
		info := r.textures[b.Texture]
		for _, inst := range b.Instances {
			vs := ember.ExpandInstance(inst, float32(info.w), float32(info.h))
			r.vertexBuf = append(r.vertexBuf, vs[:]...)
		}
	}

	quads := len(r.vertexBuf) / 4
	r.ensureIndexQuads(quads)

	vertexSize := int(unsafe.Sizeof(ember.Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, r.legacyVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.vertexBuf)*vertexSize, gl.Ptr(r.vertexBuf), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.legacyEBO)

	firstQuad := 0
	for _, b := range q.Batches {
		p := r.programs[b.Program]
		gl.UseProgram(p.handle)
		proj := orthoMatrix(0, float32(r.width), float32(r.height), 0, -1, 1)
		gl.UniformMatrix4fv(p.projLoc, 1, false, &proj[0])
		if b.Texture != 0 {
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, uint32(b.Texture))
			gl.Uniform1i(p.texLoc, 0)
		}

		// Attribute locations are assigned per program on this path, so
		// the pointers are bound per draw. A location of -1 means the
		// driver optimized the attribute out (the solid program has no
		// use for uvs). The pointers re-base onto each window's first
		// vertex so the shared 16-bit index pattern always starts at
		// zero; windows of maxLegacyQuads keep every index in range no
		// matter how large the queue grew.
		stride := int32(vertexSize)
		for done := 0; done < len(b.Instances); {
			window := len(b.Instances) - done
			if window > maxLegacyQuads {
				window = maxLegacyQuads
			}
			base := uintptr((firstQuad+done)*4) * unsafe.Sizeof(ember.Vertex{})
			gl.VertexAttribPointerWithOffset(uint32(p.posLoc), 3, gl.FLOAT, false, stride, base)
			gl.EnableVertexAttribArray(uint32(p.posLoc))
			if p.uvLoc >= 0 {
				gl.VertexAttribPointerWithOffset(uint32(p.uvLoc), 2, gl.FLOAT, false, stride, base+unsafe.Offsetof(ember.Vertex{}.UV))
				gl.EnableVertexAttribArray(uint32(p.uvLoc))
			}
			gl.VertexAttribPointerWithOffset(uint32(p.colorLoc), 4, gl.UNSIGNED_BYTE, true, stride, base+unsafe.Offsetof(ember.Vertex{}.Color))
			gl.EnableVertexAttribArray(uint32(p.colorLoc))

			gl.DrawElementsWithOffset(gl.TRIANGLES, int32(window*6), gl.UNSIGNED_SHORT, 0)
			done += window
		}
		firstQuad += len(b.Instances)
	}
}

// maxLegacyQuads is the largest quad count a single legacy draw can
// address: 16-bit indices reach 65536 vertices, four per quad.
const maxLegacyQuads = 1 << 14

// quadIndexPattern builds the triangle-list index pattern for n quads,
// n at most maxLegacyQuads.
func quadIndexPattern(n int) []uint16 {
	indices := make([]uint16, 0, n*6)
	for q := 0; q < n; q++ {
		base := uint16(q * 4)
		for _, i := range ember.QuadIndices {
			indices = append(indices, base+uint16(i))
		}
	}
	return indices
}

// ensureIndexQuads grows the legacy index buffer to cover at least n
// quads, capped at maxLegacyQuads; larger flushes are drawn in windows
// over the same pattern.
func (r *Renderer) ensureIndexQuads(n int) {
	if n > maxLegacyQuads {
		n = maxLegacyQuads
	}
	if n <= r.indexQuads {
		return
	}
	indices := quadIndexPattern(n)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.legacyEBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(indices), gl.STATIC_DRAW)
	r.indexQuads = n
}

// CreateTexture uploads an RGBA image as a linearly filtered texture.
func (r *Renderer) CreateTexture(img *ember.ImageRGBA) (ember.TextureID, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return 0, fmt.Errorf("%w: empty image", ember.ErrInvalidHandle)
	}
	if len(img.Pixels) < img.Width*img.Height*4 {
		return 0, fmt.Errorf("%w: pixel data short for %dx%d", ember.ErrInvalidHandle, img.Width, img.Height)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Width), int32(img.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	id := ember.TextureID(tex)
	r.textures[id] = texInfo{w: img.Width, h: img.Height}
	return id, nil
}

// DeleteTexture releases a texture. Unknown handles are ignored.
func (r *Renderer) DeleteTexture(id ember.TextureID) {
	if _, ok := r.textures[id]; !ok {
		return
	}
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
	delete(r.textures, id)
}

// glyphFormat returns the single-channel texture format for atlas pages.
// GL_RED needs GL 3.0; the legacy path uses GL_ALPHA, which its text
// shader samples instead.
func (r *Renderer) glyphFormat() int32 {
	if r.path == ember.PathModern {
		return gl.RED
	}
	return gl.ALPHA
}

// CreateAtlasPage allocates a zeroed single-channel texture for glyph
// storage.
func (r *Renderer) CreateAtlasPage(w, h int) (ember.TextureID, error) {
	format := r.glyphFormat()
	zero := make([]byte, w*h)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	// Glyphs are drawn at their rasterized size; nearest magnification
	// keeps them crisp while linear minification smooths scaled-down text.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, format, int32(w), int32(h), 0,
		uint32(format), gl.UNSIGNED_BYTE, gl.Ptr(zero))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	id := ember.TextureID(tex)
	r.textures[id] = texInfo{w: w, h: h, atlas: true}
	return id, nil
}

// UploadGlyph copies a tightly packed coverage bitmap into an atlas page.
func (r *Renderer) UploadGlyph(page ember.TextureID, rect ember.RectPx, pixels []byte) error {
	info, ok := r.textures[page]
	if !ok || !info.atlas {
		return fmt.Errorf("%w: texture %d is not an atlas page", ember.ErrInvalidHandle, page)
	}
	if len(pixels) < rect.W*rect.H {
		return fmt.Errorf("glyph bitmap short: %d bytes for %dx%d", len(pixels), rect.W, rect.H)
	}

	gl.BindTexture(gl.TEXTURE_2D, uint32(page))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(rect.X), int32(rect.Y), int32(rect.W), int32(rect.H),
		uint32(r.glyphFormat()), gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// ClearRegion zeroes a rectangle of an atlas page.
func (r *Renderer) ClearRegion(page ember.TextureID, rect ember.RectPx) error {
	info, ok := r.textures[page]
	if !ok || !info.atlas {
		return fmt.Errorf("%w: texture %d is not an atlas page", ember.ErrInvalidHandle, page)
	}
	zero := make([]byte, rect.W*rect.H)
	gl.BindTexture(gl.TEXTURE_2D, uint32(page))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(rect.X), int32(rect.Y), int32(rect.W), int32(rect.H),
		uint32(r.glyphFormat()), gl.UNSIGNED_BYTE, gl.Ptr(zero))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// Restore rebuilds shader programs and buffer objects on a freshly
// recreated context. All previously issued texture handles are invalid
// after context loss; user textures must be re-created by the caller and
// atlas pages are re-created by the glyph cache's restore path.
func (r *Renderer) Restore() error {
	r.textures = make(map[ember.TextureID]texInfo)
	r.indexQuads = 0
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to reload OpenGL: %w", err)
	}
	return r.initGL()
}

// Delete releases all GL objects owned by the backend.
func (r *Renderer) Delete() {
	for id := range r.textures {
		tex := uint32(id)
		gl.DeleteTextures(1, &tex)
	}
	r.textures = make(map[ember.TextureID]texInfo)
	if r.instanceVBO != 0 {
		gl.DeleteBuffers(1, &r.instanceVBO)
	}
	if r.quadEBO != 0 {
		gl.DeleteBuffers(1, &r.quadEBO)
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.legacyEBO != 0 {
		gl.DeleteBuffers(1, &r.legacyEBO)
	}
	if r.legacyVBO != 0 {
		gl.DeleteBuffers(1, &r.legacyVBO)
	}
	for _, p := range r.programs {
		if p.handle != 0 {
			gl.DeleteProgram(p.handle)
		}
	}
}

// orthoMatrix creates an orthographic projection matrix with a top-left
// origin.
func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}
