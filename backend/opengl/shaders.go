package opengl

// Shader sources are written without a #version directive; the preamble
// for the negotiated API and path is prepended at compile time. Modern
// sources use GLSL 330 core / 300 es syntax, legacy sources stick to the
// GLSL 110 / 100 subset.

// preamble returns the directive block prepended to every shader source.
func preamble(api API, modern bool) string {
	switch {
	case modern && api == ES:
		return "#version 300 es\nprecision mediump float;\n"
	case modern:
		return "#version 330 core\n"
	case api == ES:
		return "#version 100\nprecision mediump float;\n"
	default:
		return "#version 110\n"
	}
}

// Modern vertex shader. One unit-quad corner per vertex, placement data
// per instance. The rotation math must stay in lockstep with the CPU-side
// quad expansion used by the legacy path: rotate the corner's offset from
// the pivot, then translate by position plus pivot.
//
// The region attribute is in texels; a negative region width is the
// solid-tint sentinel and is forwarded as a negative texture coordinate
// so the fragment shader skips sampling.
const modernVertexSource = `
layout(location = 0) in vec2 a_corner;
layout(location = 1) in vec4 a_posSize;
layout(location = 2) in vec4 a_rotPivotDepth;
layout(location = 3) in vec4 a_region;
layout(location = 4) in vec4 a_color;

uniform mat4 u_projection;
uniform vec2 u_texSize;

out vec2 v_uv;
out vec4 v_color;

void main() {
    vec2 pos = a_posSize.xy;
    vec2 size = a_posSize.zw;
    float rot = a_rotPivotDepth.x;
    vec2 pivot = a_rotPivotDepth.yz;
    float depth = a_rotPivotDepth.w;

    vec2 d = a_corner * size - pivot;
    float c = cos(rot);
    float s = sin(rot);
    vec2 world = pos + pivot + vec2(d.x * c - d.y * s, d.x * s + d.y * c);
    gl_Position = u_projection * vec4(world, depth, 1.0);

    if (a_region.z < 0.0) {
        v_uv = vec2(-1.0, -1.0);
    } else {
        vec2 uv0 = a_region.xy / u_texSize;
        vec2 uv1 = (a_region.xy + a_region.zw) / u_texSize;
        v_uv = mix(uv0, uv1, a_corner);
    }
    v_color = a_color;
}
`

const modernSolidFragSource = `
in vec2 v_uv;
in vec4 v_color;

out vec4 fragColor;

void main() {
    fragColor = v_color;
}
`

const modernTexturedFragSource = `
in vec2 v_uv;
in vec4 v_color;

uniform sampler2D u_tex;

out vec4 fragColor;

void main() {
    if (v_uv.x < 0.0) {
        fragColor = v_color;
    } else {
        fragColor = texture(u_tex, v_uv) * v_color;
    }
}
`

// Atlas pages are single-channel GL_RED on the modern path; coverage
// lands in .r.
const modernTextFragSource = `
in vec2 v_uv;
in vec4 v_color;

uniform sampler2D u_tex;

out vec4 fragColor;

void main() {
    fragColor = vec4(v_color.rgb, v_color.a * texture(u_tex, v_uv).r);
}
`

// Legacy vertex shader. Quads arrive pre-expanded on the CPU, so there is
// nothing to compute beyond the projection. Texture coordinates are
// already normalized, with the solid-tint sentinel carried as (-1, -1).
const legacyVertexSource = `
attribute vec3 a_pos;
attribute vec2 a_uv;
attribute vec4 a_color;

uniform mat4 u_projection;

varying vec2 v_uv;
varying vec4 v_color;

void main() {
    gl_Position = u_projection * vec4(a_pos, 1.0);
    v_uv = a_uv;
    v_color = a_color;
}
`

const legacySolidFragSource = `
varying vec2 v_uv;
varying vec4 v_color;

void main() {
    gl_FragColor = v_color;
}
`

const legacyTexturedFragSource = `
varying vec2 v_uv;
varying vec4 v_color;

uniform sampler2D u_tex;

void main() {
    if (v_uv.x < 0.0) {
        gl_FragColor = v_color;
    } else {
        gl_FragColor = texture2D(u_tex, v_uv) * v_color;
    }
}
`

// Atlas pages are GL_ALPHA on the legacy path; coverage lands in .a.
const legacyTextFragSource = `
varying vec2 v_uv;
varying vec4 v_color;

uniform sampler2D u_tex;

void main() {
    gl_FragColor = vec4(v_color.rgb, v_color.a * texture2D(u_tex, v_uv).a);
}
`
