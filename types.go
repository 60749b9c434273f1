package ember

import "math"

// Vec2 represents a 2D vector for positions and sizes.
type Vec2 struct {
	X, Y float32
}

// Add returns the sum of two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Rect represents a rectangle with position and size in pixels.
type Rect struct {
	X, Y float32 // Top-left position
	W, H float32 // Width and height
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Region is a texture sub-rectangle in texel coordinates.
//
// The reserved value returned by SolidRegion disables texture sampling
// entirely; see SolidRegion.
type Region struct {
	U, V float32 // Top-left texel
	W, H float32 // Width and height in texels
}

// SolidRegion returns the reserved region value meaning "no texture, solid
// tint only". The exact values are part of the wire format between the CPU
// side and both shader variants: the shaders detect a negative region and
// skip sampling, so these values must be passed through untouched.
func SolidRegion() Region {
	return Region{U: -1, V: -1, W: -2, H: -2}
}

// IsSolid reports whether the region is the reserved solid-tint value.
func (r Region) IsSolid() bool {
	return r.U == -1 && r.V == -1 && r.W == -2 && r.H == -2
}

// TextureID is an opaque handle for a GPU texture owned by the backend.
// The zero value is never a valid handle.
type TextureID uint32

// Instance holds the placement data for a single quad. Instances are
// frame-scoped: they are accumulated into batches during a frame and
// discarded at flush.
type Instance struct {
	Pos      Vec2    // World position of the quad's origin (top-left)
	Size     Vec2    // Width and height in pixels
	Rotation float32 // Rotation in radians, applied around Pivot
	Pivot    Vec2    // Pivot point relative to the quad's origin
	Color    uint32  // Packed RGBA tint
	Region   Region  // Texture region in texels, or SolidRegion()
	Depth    float32 // Depth in [-1, 1]; ties resolve by submission order
}

// Vertex is one corner of an expanded quad on the legacy rendering path.
// The memory layout matches the legacy vertex attribute setup.
type Vertex struct {
	Pos   [3]float32 // Position (x, y, depth)
	UV    [2]float32 // Normalized texture coordinates
	Color uint32     // Packed RGBA color
}

// Color constants (RGBA packed as 0xAABBGGRR for OpenGL compatibility).
const (
	ColorWhite       uint32 = 0xFFFFFFFF
	ColorBlack       uint32 = 0xFF000000
	ColorRed         uint32 = 0xFF0000FF
	ColorGreen       uint32 = 0xFF00FF00
	ColorBlue        uint32 = 0xFFFF0000
	ColorYellow      uint32 = 0xFF00FFFF
	ColorTransparent uint32 = 0x00000000
)

// RGBA creates a packed color from individual components (0-255).
func RGBA(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// RGBAf creates a packed color from float components (0.0-1.0).
func RGBAf(r, g, b, a float32) uint32 {
	return RGBA(
		uint8(clampf(r, 0, 1)*255),
		uint8(clampf(g, 0, 1)*255),
		uint8(clampf(b, 0, 1)*255),
		uint8(clampf(a, 0, 1)*255),
	)
}

// UnpackRGBA extracts RGBA components from a packed color.
func UnpackRGBA(c uint32) (r, g, b, a uint8) {
	return uint8(c), uint8(c >> 8), uint8(c >> 16), uint8(c >> 24)
}

// QuadCorners returns the four world-space corners of an instance in the
// order top-left, top-right, bottom-right, bottom-left. Each corner is
// rotated around the instance's pivot and then translated to its world
// position. Both rendering paths use exactly this math: the legacy path
// runs it on the CPU during vertex expansion, and the modern path's vertex
// shader mirrors it on the GPU.
func QuadCorners(inst Instance) [4]Vec2 {
	sin64, cos64 := math.Sincos(float64(inst.Rotation))
	sin, cos := float32(sin64), float32(cos64)

	locals := [4]Vec2{
		{0, 0},
		{inst.Size.X, 0},
		{inst.Size.X, inst.Size.Y},
		{0, inst.Size.Y},
	}

	var out [4]Vec2
	for i, l := range locals {
		d := l.Sub(inst.Pivot)
		r := Vec2{
			X: d.X*cos - d.Y*sin,
			Y: d.X*sin + d.Y*cos,
		}
		out[i] = inst.Pos.Add(inst.Pivot).Add(r)
	}
	return out
}

// ExpandInstance expands an instance into four legacy-path vertices
// (top-left, top-right, bottom-right, bottom-left). texW and texH are the
// dimensions of the bound texture, used to normalize the texel region; they
// are ignored for the solid-tint sentinel, whose corners keep negative
// texture coordinates so the legacy fragment shader skips sampling.
func ExpandInstance(inst Instance, texW, texH float32) [4]Vertex {
	corners := QuadCorners(inst)

	var uvs [4][2]float32
	if inst.Region.IsSolid() || texW <= 0 || texH <= 0 {
		for i := range uvs {
			uvs[i] = [2]float32{-1, -1}
		}
	} else {
		u0 := inst.Region.U / texW
		v0 := inst.Region.V / texH
		u1 := (inst.Region.U + inst.Region.W) / texW
		v1 := (inst.Region.V + inst.Region.H) / texH
		uvs = [4][2]float32{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}}
	}

	var out [4]Vertex
	for i := range out {
		out[i] = Vertex{
			Pos:   [3]float32{corners[i].X, corners[i].Y, inst.Depth},
			UV:    uvs[i],
			Color: inst.Color,
		}
	}
	return out
}

// QuadIndices holds the index pattern expanding one quad's four vertices
// into two triangles.
var QuadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

func clampf(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}
