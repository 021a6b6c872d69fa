package renderer

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/breakingrobots/shaderbg/animation"
	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/graphics/graphicstest"
	"github.com/breakingrobots/shaderbg/translator"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func mountPreset(t *testing.T, name string, view graphics.Viewport) (*Host, *graphicstest.Surface, *animation.Queue) {
	t.Helper()
	cfg, ok := Preset(name)
	if !ok {
		t.Fatalf("Preset(%q) not found", name)
	}
	surface := graphicstest.NewSurface(view)
	q := animation.NewQueue(func() time.Duration { return 0 })
	h := NewHost(cfg, surface, q, WithTranslator(translator.Passthrough{}), WithGLES(true))
	if err := h.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return h, surface, q
}

func TestColorFieldFrames(t *testing.T) {
	captureLogs(t)
	h, surface, q := mountPreset(t, "color-field", graphics.Viewport{Width: 1920, Height: 1080, PixelRatio: 1})

	for i, ms := range []int{0, 16, 32} {
		q.Flush(time.Duration(ms) * time.Millisecond)
		if got := len(surface.GL.Draws); got != i+1 {
			t.Fatalf("after frame %d: %d draws, want %d", i, got, i+1)
		}
	}

	want := []float32{0, 0.016, 0.032}
	for i, d := range surface.GL.Draws {
		if got := d.Uniforms["u_time"]; len(got) != 1 || got[0] != want[i] {
			t.Errorf("draw %d u_time = %v, want %v", i, got, want[i])
		}
		if _, ok := d.Uniforms["u_resolution"]; ok {
			t.Errorf("draw %d set u_resolution on a variant without one", i)
		}
	}

	if surface.Listeners() != 0 {
		t.Errorf("fixed-size host registered %d resize listeners", surface.Listeners())
	}
	if len(surface.SizeHistory) != 1 || surface.SizeHistory[0] != [2]int{600, 400} {
		t.Errorf("buffer sizes = %v, want only the fixed 600x400", surface.SizeHistory)
	}
	if surface.GL.ViewportRect != [4]int32{0, 0, 600, 400} {
		t.Errorf("viewport = %v, want 600x400", surface.GL.ViewportRect)
	}
	if h.State() != Running {
		t.Errorf("State() = %v, want running", h.State())
	}
}

func TestGlitchResizeWithPixelRatio(t *testing.T) {
	captureLogs(t)
	_, surface, q := mountPreset(t, "glitch-a", graphics.Viewport{Width: 1024, Height: 768, PixelRatio: 1})

	if w, ht := surface.BufferSize(); w != 1024 || ht != 768 {
		t.Fatalf("initial buffer = %dx%d, want 1024x768", w, ht)
	}

	surface.Resize(graphics.Viewport{Width: 800, Height: 600, PixelRatio: 2})
	if w, ht := surface.BufferSize(); w != 1600 || ht != 1200 {
		t.Fatalf("buffer after resize = %dx%d, want 1600x1200", w, ht)
	}
	if surface.GL.ViewportRect != [4]int32{0, 0, 1600, 1200} {
		t.Fatalf("viewport after resize = %v, want 1600x1200", surface.GL.ViewportRect)
	}

	q.Flush(16 * time.Millisecond)
	d, ok := surface.GL.LastDraw()
	if !ok {
		t.Fatal("no draw after resize")
	}
	if got := d.Uniforms["u_resolution"]; len(got) != 2 || got[0] != 1600 || got[1] != 1200 {
		t.Errorf("u_resolution = %v, want [1600 1200]", got)
	}
	if d.Viewport != [4]int32{0, 0, 1600, 1200} {
		t.Errorf("draw viewport = %v, want buffer size", d.Viewport)
	}
	if surface.GL.Clears != 1 {
		t.Errorf("Clears = %d, want 1", surface.GL.Clears)
	}
}

func TestGlitchBIgnoresPixelRatio(t *testing.T) {
	captureLogs(t)
	_, surface, q := mountPreset(t, "glitch-b", graphics.Viewport{Width: 640, Height: 480, PixelRatio: 1})

	surface.Resize(graphics.Viewport{Width: 800, Height: 600, PixelRatio: 2})
	q.Flush(0)

	d, _ := surface.GL.LastDraw()
	if got := d.Uniforms["u_resolution"]; len(got) != 2 || got[0] != 800 || got[1] != 600 {
		t.Errorf("u_resolution = %v, want [800 600]", got)
	}
}

func TestEveryDrawSubmitsSixVertices(t *testing.T) {
	captureLogs(t)
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			_, surface, q := mountPreset(t, name, graphics.Viewport{Width: 320, Height: 200, PixelRatio: 1.5})
			for i := 0; i < 50; i++ {
				q.Flush(time.Duration(i) * 16 * time.Millisecond)
			}
			if len(surface.GL.Draws) != 50 {
				t.Fatalf("draws = %d, want 50", len(surface.GL.Draws))
			}
			for i, d := range surface.GL.Draws {
				if d.Mode != graphics.Triangles || d.First != 0 || d.Count != 6 {
					t.Fatalf("draw %d = %v %d+%d, want triangles 0+6", i, d.Mode, d.First, d.Count)
				}
			}
		})
	}
}

func TestTimeIsStrictlyMonotonic(t *testing.T) {
	captureLogs(t)
	_, surface, q := mountPreset(t, "glitch-a", graphics.Viewport{Width: 100, Height: 100, PixelRatio: 1})

	stamps := []time.Duration{0, 0, 5 * time.Millisecond, 5 * time.Millisecond, 3 * time.Millisecond, 40 * time.Millisecond}
	for _, s := range stamps {
		q.Flush(s)
	}

	var prev float32
	for i, d := range surface.GL.Draws {
		cur := d.Uniforms["u_time"][0]
		if i > 0 && cur <= prev {
			t.Errorf("frame %d time %v not greater than %v", i, cur, prev)
		}
		prev = cur
	}
}

func TestTimeIsMeasuredFromMount(t *testing.T) {
	captureLogs(t)
	cfg, _ := Preset("color-field")
	surface := graphicstest.NewSurface(graphics.Viewport{Width: 10, Height: 10, PixelRatio: 1})
	clock := &animation.ManualClock{}
	clock.Set(10 * time.Second)
	q := animation.NewQueue(clock.Now)
	h := NewHost(cfg, surface, q, WithTranslator(translator.Passthrough{}))
	if err := h.Mount(); err != nil {
		t.Fatal(err)
	}
	q.Flush(10*time.Second + 500*time.Millisecond)
	d, _ := surface.GL.LastDraw()
	if got := d.Uniforms["u_time"][0]; got != 0.5 {
		t.Errorf("u_time = %v, want 0.5", got)
	}
}

func TestUnmountStopsDrawing(t *testing.T) {
	captureLogs(t)
	h, surface, q := mountPreset(t, "glitch-a", graphics.Viewport{Width: 100, Height: 100, PixelRatio: 1})
	q.Flush(0)
	q.Flush(16 * time.Millisecond)
	if surface.Listeners() != 1 {
		t.Fatalf("listeners = %d, want 1", surface.Listeners())
	}

	h.Unmount()
	if h.State() != TornDown {
		t.Errorf("State() = %v, want torn-down", h.State())
	}
	if surface.Listeners() != 0 {
		t.Errorf("resize listener still attached after unmount")
	}
	if q.Len() != 1 {
		t.Fatalf("pending callbacks = %d, want the one already scheduled", q.Len())
	}

	q.Flush(32 * time.Millisecond)
	q.Flush(48 * time.Millisecond)
	if len(surface.GL.Draws) != 2 {
		t.Errorf("draws = %d after teardown, want 2", len(surface.GL.Draws))
	}
	if q.Len() != 0 {
		t.Errorf("torn down host rescheduled a frame")
	}

	h.Unmount()
	if err := h.Mount(); !errors.Is(err, ErrMounted) {
		t.Errorf("Mount() after teardown = %v, want ErrMounted", err)
	}
}

func TestBuildFailureIsLoggedAndLeavesCanvasUndrawn(t *testing.T) {
	logs := captureLogs(t)
	cfg := Custom("broken", "#version 300 es\n#error unexpected token\nvoid main() {}\n")
	surface := graphicstest.NewSurface(graphics.Viewport{Width: 100, Height: 100, PixelRatio: 1})
	q := animation.NewQueue(nil)
	h := NewHost(cfg, surface, q, WithTranslator(translator.Passthrough{}))

	err := h.Mount()
	var be *BuildError
	if !errors.As(err, &be) || be.Stage != StageFragment {
		t.Fatalf("Mount() error = %v, want fragment BuildError", err)
	}
	if !strings.Contains(be.Log, "unexpected token") {
		t.Errorf("BuildError.Log = %q, want driver diagnostic", be.Log)
	}
	if h.State() != TornDown {
		t.Errorf("State() = %v, want torn-down", h.State())
	}
	if !strings.Contains(logs.String(), "shader program build failed") || !strings.Contains(logs.String(), "unexpected token") {
		t.Errorf("log missing diagnostic:\n%s", logs.String())
	}

	q.Flush(0)
	if len(surface.GL.Draws) != 0 || q.Len() != 0 {
		t.Errorf("failed host drew %d frames, %d pending", len(surface.GL.Draws), q.Len())
	}
	if surface.Listeners() != 0 {
		t.Errorf("failed host left a resize listener")
	}
	if shaders, programs := surface.GL.Live(); shaders != 0 || programs != 0 {
		t.Errorf("live objects after failed compile: %d shaders, %d programs", shaders, programs)
	}
	h.Unmount()
}

func TestLinkFailure(t *testing.T) {
	captureLogs(t)
	cfg, _ := Preset("glitch-b")
	surface := graphicstest.NewSurface(graphics.Viewport{Width: 100, Height: 100, PixelRatio: 1})
	surface.GL.LinkError = "ERROR: Linking failed: varying mismatch"
	h := NewHost(cfg, surface, animation.NewQueue(nil), WithTranslator(translator.Passthrough{}))

	var be *BuildError
	if err := h.Mount(); !errors.As(err, &be) || be.Stage != StageLink {
		t.Fatalf("Mount() error = %v, want link BuildError", err)
	}
	if shaders, programs := surface.GL.Live(); shaders != 0 || programs != 0 {
		t.Errorf("live objects after failed link: %d shaders, %d programs", shaders, programs)
	}
}

func TestMountKeepsOnlyTheProgram(t *testing.T) {
	_, surface, _ := mountPreset(t, "glitch-a", graphics.Viewport{Width: 100, Height: 100, PixelRatio: 1})
	if shaders, programs := surface.GL.Live(); shaders != 0 || programs != 1 {
		t.Errorf("live objects after mount: %d shaders, %d programs, want 0 and 1", shaders, programs)
	}
}

type failingTranslator struct{}

func (failingTranslator) Fragment(string) (*translator.Shader, error) {
	return nil, errors.New("ERROR: 0:3: 'vec5' : no such type")
}

func TestTranslationFailure(t *testing.T) {
	captureLogs(t)
	cfg, _ := Preset("glitch-a")
	surface := graphicstest.NewSurface(graphics.Viewport{Width: 100, Height: 100, PixelRatio: 1})
	h := NewHost(cfg, surface, animation.NewQueue(nil), WithTranslator(failingTranslator{}))

	var be *BuildError
	if err := h.Mount(); !errors.As(err, &be) || be.Stage != StageTranslate {
		t.Fatalf("Mount() error = %v, want translate BuildError", err)
	}
	if len(surface.GL.Calls) != 0 {
		t.Errorf("no GL calls expected before translation succeeds, got %v", surface.GL.Calls)
	}
}

func TestContextUnavailable(t *testing.T) {
	logs := captureLogs(t)
	cfg, _ := Preset("color-field")
	surface := graphicstest.NewSurface(graphics.Viewport{})
	surface.Err = errors.New("no OpenGL 4.1 support")
	q := animation.NewQueue(nil)
	h := NewHost(cfg, surface, q, WithTranslator(translator.Passthrough{}))

	if err := h.Mount(); !errors.Is(err, ErrContextUnavailable) {
		t.Fatalf("Mount() error = %v, want ErrContextUnavailable", err)
	}
	if h.State() != TornDown || q.Len() != 0 {
		t.Errorf("state = %v, pending = %d", h.State(), q.Len())
	}
	if !strings.Contains(logs.String(), "drawing context unavailable") {
		t.Errorf("log missing context failure:\n%s", logs.String())
	}
}

func TestMissingPositionAttribute(t *testing.T) {
	captureLogs(t)
	cfg, _ := Preset("color-field")
	surface := graphicstest.NewSurface(graphics.Viewport{})
	surface.GL.Attribs = map[string]int32{}
	h := NewHost(cfg, surface, animation.NewQueue(nil), WithTranslator(translator.Passthrough{}))

	var be *BuildError
	if err := h.Mount(); !errors.As(err, &be) || be.Stage != StageAttribute {
		t.Fatalf("Mount() error = %v, want attribute BuildError", err)
	}
}

func TestQuadUploadedOnce(t *testing.T) {
	captureLogs(t)
	_, surface, q := mountPreset(t, "glitch-a", graphics.Viewport{Width: 100, Height: 100, PixelRatio: 1})
	for i := 0; i < 10; i++ {
		q.Flush(time.Duration(i) * time.Millisecond)
	}
	if len(surface.GL.BufferData) != 1 {
		t.Fatalf("uploaded %d buffers, want 1", len(surface.GL.BufferData))
	}
	lookups := 0
	for _, c := range surface.GL.Calls {
		if strings.HasPrefix(c, "GetUniformLocation") {
			lookups++
		}
	}
	if lookups != 2 {
		t.Errorf("uniform lookups = %d, want 2 resolved once at mount", lookups)
	}
	if size := surface.GL.EnabledAttribs[0]; size != 2 {
		t.Errorf("position attribute size = %d, want 2", size)
	}
}
