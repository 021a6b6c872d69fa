package shader

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 position;
void main() {
    gl_Position = vec4(position, 0.0, 1.0);
}
`

const compositeVertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 position;
out vec2 frag_uv;
void main() {
    frag_uv = position * 0.5 + 0.5;
    gl_Position = vec4(position, 0.0, 1.0);
}
`

const compositeFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
uniform float u_opacity;
void main() {
    vec4 c = texture(u_texture, frag_uv);
    fragColor = vec4(c.rgb, c.a * u_opacity);
}
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 position;
void main() {
    gl_Position = vec4(position, 0.0, 1.0);
}
`

const compositeVertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 position;
out vec2 frag_uv;
void main() {
    frag_uv = position * 0.5 + 0.5;
    gl_Position = vec4(position, 0.0, 1.0);
}
`

const compositeFragmentShaderSourceGLES = `#version 300 es
precision mediump float;
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
uniform float u_opacity;
void main() {
    vec4 c = texture(u_texture, frag_uv);
    fragColor = vec4(c.rgb, c.a * u_opacity);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// PositionAttribute is the vertex input every host binds its quad to.
const PositionAttribute = "position"

// GenerateVertexShader returns the clip-space pass-through vertex program.
func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}

// CompositeShaders returns the program used to blend a canvas texture onto
// the window.
func CompositeShaders(isGLES bool) (vertex, fragment string) {
	if isGLES {
		return compositeVertexShaderSourceGLES, compositeFragmentShaderSourceGLES
	}
	return compositeVertexShaderSourceGL, compositeFragmentShaderSourceGL
}

// QuadVertices covers clip space with two triangles.
var QuadVertices = []float32{
	-1, -1, 1, -1, -1, 1,
	-1, 1, 1, -1, 1, 1,
}

// QuadVertexCount is the number of vertices drawn per frame.
const QuadVertexCount = 6
