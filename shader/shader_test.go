package shader

import (
	"image/color"
	"strings"
	"testing"
)

func TestColorFieldShade(t *testing.T) {
	got := ColorField.Shade(0, 0, 0, 600, 400)
	want := color.RGBA{R: 128, G: 243, B: 31, A: 255}
	if got != want {
		t.Errorf("Shade(0,0,0) = %v, want %v", got, want)
	}
}

func TestGlitchGratingsAreLit(t *testing.T) {
	tests := []struct {
		name  string
		frag  Fragment
		x, y  float64
		w, h  float64
		t     float64
		isLit bool
	}{
		{"a horizontal line", GlitchA, 10, 0.99 / 40 * 400, 800, 400, 0, true},
		{"a vertical line", GlitchA, 0.99 / 80 * 800, 10, 800, 400, 0, true},
		{"b vertical line", GlitchB, 0.985 / 60 * 600, 17, 600, 600, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.frag.Shade(tt.x, tt.y, tt.t, tt.w, tt.h)
			if lit := c.R == 255; lit != tt.isLit {
				t.Errorf("Shade(%v, %v) = %v, lit = %v, want %v", tt.x, tt.y, c, lit, tt.isLit)
			}
			if c.R != c.G || c.G != c.B || c.A != 255 {
				t.Errorf("glitch output must be opaque gray, got %v", c)
			}
		})
	}
}

func TestRandomRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := Random(float64(i)*0.37, float64(i)*1.91)
		if v < 0 || v >= 1 {
			t.Fatalf("Random() = %v, want [0,1)", v)
		}
	}
}

func TestRegistry(t *testing.T) {
	names := Names()
	want := []string{"color-field", "glitch-a", "glitch-b"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	f, ok := Lookup("glitch-a")
	if !ok || !strings.Contains(f.Source, ResolutionUniform) {
		t.Errorf("Lookup(glitch-a) = %v, %v", f.Name, ok)
	}
	if _, ok := Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
	if strings.Contains(ColorField.Source, ResolutionUniform) {
		t.Error("color-field must not declare a resolution uniform")
	}
}

func TestQuadCoversClipSpace(t *testing.T) {
	if len(QuadVertices) != QuadVertexCount*2 {
		t.Fatalf("quad has %d floats, want %d", len(QuadVertices), QuadVertexCount*2)
	}
	for _, v := range QuadVertices {
		if v != -1 && v != 1 {
			t.Errorf("quad coordinate %v is not a clip-space corner", v)
		}
	}
}
