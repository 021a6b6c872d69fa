package shader

import (
	"image/color"
	"sort"
)

// Uniform names shared by every fragment program.
const (
	TimeUniform       = "u_time"
	ResolutionUniform = "u_resolution"
)

// ShadeFunc is a CPU rendition of a fragment program: the color at pixel
// coordinate (x, y) of a width x height buffer at time t seconds.
type ShadeFunc func(x, y, t, width, height float64) color.RGBA

// Fragment is a named fragment program with its CPU reference.
type Fragment struct {
	Name   string
	Source string
	Shade  ShadeFunc
}

const colorFieldSource = `#version 300 es
precision mediump float;
uniform float u_time;
out vec4 fragColor;
void main() {
    float x = gl_FragCoord.x / 600.0;
    float y = gl_FragCoord.y / 400.0;
    float r = 0.5 + 0.5 * sin(u_time + x * 10.0);
    float g = 0.5 + 0.5 * sin(u_time + y * 10.0 + 2.0);
    float b = 0.5 + 0.5 * sin(u_time + x * 10.0 + y * 10.0 + 4.0);
    fragColor = vec4(r, g, b, 1.0);
}
`

const glitchASource = `#version 300 es
precision mediump float;
uniform float u_time;
uniform vec2 u_resolution;
out vec4 fragColor;
float random(vec2 st) {
    return fract(sin(dot(st.xy, vec2(12.9898, 78.233))) * 43758.5453123);
}
void main() {
    vec2 uv = gl_FragCoord.xy / u_resolution.xy;
    float yLines = step(0.95, fract(uv.y * 40.0));
    float xLines = step(0.98, fract(uv.x * 80.0));
    float glitch = step(0.8, random(vec2(u_time * 2.0, uv.y * 100.0 + u_time * 10.0)));
    float flicker = step(0.7, random(vec2(u_time * 10.0, uv.x * 200.0)));
    float color = max(yLines, xLines);
    color = max(color, glitch * flicker);
    fragColor = vec4(vec3(color), 1.0);
}
`

const glitchBSource = `#version 300 es
precision mediump float;
uniform float u_time;
uniform vec2 u_resolution;
out vec4 fragColor;
float random(vec2 st) {
    return fract(sin(dot(st.xy, vec2(12.9898, 78.233))) * 43758.5453123);
}
void main() {
    vec2 uv = gl_FragCoord.xy / u_resolution.xy;
    float yLines = step(0.92, fract(uv.y * 30.0 + u_time * 0.5));
    float xLines = step(0.97, fract(uv.x * 60.0));
    float glitch = step(0.85, random(vec2(floor(u_time * 8.0), floor(uv.y * 60.0))));
    float flicker = step(0.6, random(vec2(u_time * 6.0, uv.x * 150.0)));
    float color = max(yLines, xLines);
    color = max(color, glitch * flicker);
    fragColor = vec4(vec3(color), 1.0);
}
`

var (
	ColorField = Fragment{Name: "color-field", Source: colorFieldSource, Shade: colorFieldShade}
	GlitchA    = Fragment{Name: "glitch-a", Source: glitchASource, Shade: glitchAShade}
	GlitchB    = Fragment{Name: "glitch-b", Source: glitchBSource, Shade: glitchBShade}
)

var fragments = map[string]Fragment{}

func init() {
	for _, f := range []Fragment{ColorField, GlitchA, GlitchB} {
		Register(f)
	}
}

// Register adds a fragment program to the registry, replacing any program
// with the same name.
func Register(f Fragment) {
	fragments[f.Name] = f
}

// Lookup returns the registered fragment program called name.
func Lookup(name string) (Fragment, bool) {
	f, ok := fragments[name]
	return f, ok
}

// Names lists the registered fragment programs in sorted order.
func Names() []string {
	names := make([]string, 0, len(fragments))
	for name := range fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
