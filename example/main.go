// Demo: a rotating sprite, solid quads and wrapped text rendered with
// whichever path the context supports.
package main

import (
	"log"
	"runtime"

	"github.com/go-gl/gl/v3.3-compatibility/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/ember2d/ember"
	"github.com/ember2d/ember/backend/opengl"
)

const (
	windowWidth  = 800
	windowHeight = 600
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := glfw.Init(); err != nil {
		log.Fatalf("failed to initialize GLFW: %v", err)
	}
	defer glfw.Terminate()

	window, err := createWindow()
	if err != nil {
		log.Fatalf("failed to create window: %v", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	backend, err := opengl.New(windowWidth, windowHeight)
	if err != nil {
		log.Fatalf("failed to create backend: %v", err)
	}
	defer backend.Delete()
	log.Printf("rendering path: %s (%s)", backend.Path(), backend.Version())

	renderer, err := ember.New(backend)
	if err != nil {
		log.Fatalf("failed to create renderer: %v", err)
	}

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
		backend.Resize(w, h)
	})

	font := ember.NewBitmapFont()

	var angle float32
	for !window.ShouldClose() {
		angle += 0.01

		gl.ClearColor(0.1, 0.1, 0.12, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		renderer.BeginFrame()

		// Background panel.
		renderer.DrawQuad(
			ember.Vec2{X: 40, Y: 40}, ember.Vec2{X: 720, Y: 520},
			0, ember.Vec2{}, ember.RGBA(30, 30, 40, 255), 0)

		// Spinner rotating around its center.
		renderer.DrawQuad(
			ember.Vec2{X: 350, Y: 250}, ember.Vec2{X: 100, Y: 100},
			angle, ember.Vec2{X: 50, Y: 50}, ember.ColorYellow, 0)

		renderer.DrawText(font, "ember sprite renderer", 16,
			ember.Vec2{X: 60, Y: 60}, 0, ember.AlignLeft, ember.ColorWhite, 0)
		renderer.DrawText(font,
			"Text wraps at word boundaries when a maximum width is set, "+
				"and falls back to hard breaks for words wider than a line.",
			8, ember.Vec2{X: 60, Y: 100}, 300, ember.AlignLeft, ember.RGBA(200, 200, 200, 255), 0)

		if err := renderer.Flush(); err != nil {
			log.Printf("flush failed: %v", err)
		}

		window.SwapBuffers()
		glfw.PollEvents()
	}

	stats := renderer.Stats()
	log.Printf("frames drawn with %d draw calls, %d instances", stats.DrawCalls, stats.Instances)
}

// createWindow asks for a 3.3 core context first and falls back to
// whatever default context the platform offers, which exercises the
// legacy path on old drivers.
func createWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "ember demo", nil, nil)
	if err == nil {
		return window, nil
	}

	glfw.DefaultWindowHints()
	return glfw.CreateWindow(windowWidth, windowHeight, "ember demo", nil, nil)
}
