/*
Package ember is a hardware-accelerated 2D sprite and text renderer.

# Overview

Ember renders tinted, rotated and textured quads plus word-wrapped text
through one of two OpenGL capability tiers: a modern tier using hardware
instancing and vertex array objects, and a legacy tier that expands every
quad to duplicated vertices for fixed-attribute contexts. The tier is
negotiated once at initialization and both tiers produce pixel-equivalent
output.

Submitted quads are gathered into batches: maximal runs of submissions that
share a shader program and texture collapse into a single draw call, and
submission order is never reordered, so later submissions always paint over
earlier ones at equal depth.

Text rendering rasterizes glyphs on demand (from an 8x8 built-in bitmap
font or a scalable outline font), packs them into texture-atlas pages with
a shelf allocator, and evicts least-recently-used glyphs under atlas
pressure. Evicted glyphs are transparently re-rasterized on next use.

# Quick Start

	// Setup, after making an OpenGL context current
	backend, err := opengl.New(1280, 720)
	if err != nil {
	    log.Fatal(err)
	}
	r, err := ember.New(backend)
	if err != nil {
	    log.Fatal(err)
	}
	font := ember.NewBitmapFont()

	// Frame loop
	for !window.ShouldClose() {
	    r.BeginFrame()
	    r.DrawQuad(ember.Vec2{X: 10, Y: 10}, ember.Vec2{X: 64, Y: 64},
	        0.5, ember.Vec2{X: 32, Y: 32}, ember.ColorRed, 0)
	    r.DrawText(font, "hello", 16, ember.Vec2{X: 10, Y: 100},
	        200, ember.AlignLeft, ember.ColorWhite, 0)
	    if err := r.Flush(); err != nil {
	        log.Print(err)
	    }
	    window.SwapBuffers()
	}

# Threading

Every call into the renderer and its backend must happen on the thread
that owns the graphics context. This is a hard constraint of OpenGL, not a
design preference; nothing in this package takes locks.
*/
package ember
