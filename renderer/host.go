package renderer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/breakingrobots/shaderbg/animation"
	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/shader"
	"github.com/breakingrobots/shaderbg/translator"
)

// State is the lifecycle position of a Host.
type State int

const (
	Uninitialized State = iota
	Initializing
	Running
	TornDown
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case TornDown:
		return "torn-down"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option customises a Host.
type Option func(*Host)

// WithTranslator sets the translator used for the fragment program. The
// default is translator.Shared.
func WithTranslator(t translator.Translator) Option {
	return func(h *Host) { h.translator = t }
}

// WithGLES selects the GLSL ES vertex program.
func WithGLES(gles bool) Option {
	return func(h *Host) { h.gles = gles }
}

// Host renders one fragment program onto a surface, redrawing on every
// repaint from mount until teardown. A Host is mounted at most once.
type Host struct {
	cfg        Config
	surface    graphics.Surface
	sched      animation.Scheduler
	translator translator.Translator
	gles       bool

	state         State
	gl            graphics.GL
	program       uint32
	vao           uint32
	timeLoc       int32
	resolutionLoc int32
	start         time.Duration
	lastTime      float32
	frames        uint64
	loop          *animation.Loop
	removeResize  func()
}

func NewHost(cfg Config, surface graphics.Surface, sched animation.Scheduler, opts ...Option) *Host {
	h := &Host{
		cfg:           cfg,
		surface:       surface,
		sched:         sched,
		timeLoc:       -1,
		resolutionLoc: -1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Name() string { return h.cfg.Name }

func (h *Host) State() State { return h.state }

// Frames reports how many frames have been drawn.
func (h *Host) Frames() uint64 { return h.frames }

// Mount acquires the drawing context, builds the program, uploads the quad
// and starts the frame loop. Failures are logged, leave the host torn down
// and are returned; they are never retried.
func (h *Host) Mount() error {
	if h.state != Uninitialized {
		return ErrMounted
	}
	h.state = Initializing

	if err := h.init(); err != nil {
		h.fail(err)
		return err
	}

	h.start = h.sched.Now()
	h.loop = animation.NewLoop(h.sched, h.frame)
	h.loop.Start()
	h.state = Running
	Logger().Info("shader host mounted", "name", h.cfg.Name, "resize", h.cfg.Resize.String())
	return nil
}

func (h *Host) init() error {
	if err := h.cfg.Validate(); err != nil {
		return err
	}

	gl, err := h.surface.Context()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrContextUnavailable, err)
	}
	h.gl = gl

	tr := h.translator
	if tr == nil {
		if tr, err = translator.Shared(); err != nil {
			return &BuildError{Stage: StageTranslate, Log: err.Error()}
		}
	}
	fs, err := tr.Fragment(h.cfg.Fragment)
	if err != nil {
		return &BuildError{Stage: StageTranslate, Log: err.Error()}
	}

	h.program, err = newProgram(gl, shader.GenerateVertexShader(h.gles), fs.Code)
	if err != nil {
		return err
	}
	gl.UseProgram(h.program)

	h.vao, err = uploadQuad(gl, h.program)
	if err != nil {
		return err
	}

	h.timeLoc = h.uniformLocation(fs, shader.TimeUniform)
	if h.cfg.Resolution {
		h.resolutionLoc = h.uniformLocation(fs, shader.ResolutionUniform)
	}
	Logger().Debug("shader host resources",
		"name", h.cfg.Name, "program", h.program, "vao", h.vao,
		"timeLoc", h.timeLoc, "resolutionLoc", h.resolutionLoc)

	if h.cfg.Resize.FollowsViewport() {
		h.resize(h.surface.Viewport())
		h.removeResize = h.surface.AddResizeListener(h.resize)
	} else {
		w, ht := h.cfg.Resize.BufferSize(graphics.Viewport{}, h.cfg.Width, h.cfg.Height)
		h.surface.SetBufferSize(w, ht)
		gl.Viewport(0, 0, int32(w), int32(ht))
	}
	return nil
}

func (h *Host) uniformLocation(fs *translator.Shader, name string) int32 {
	mapped, ok := fs.MappedName(name)
	if !ok {
		Logger().Debug("uniform not present in program", "name", h.cfg.Name, "uniform", name)
		return -1
	}
	return h.gl.GetUniformLocation(h.program, mapped)
}

func (h *Host) fail(err error) {
	h.state = TornDown
	attrs := []any{"name", h.cfg.Name, "err", err}
	var be *BuildError
	if errors.As(err, &be) {
		attrs = append(attrs, "stage", be.Stage, "log", be.Log)
		Logger().Error("shader program build failed", attrs...)
		return
	}
	if errors.Is(err, ErrContextUnavailable) {
		Logger().Error("drawing context unavailable", attrs...)
		return
	}
	Logger().Error("shader host mount failed", attrs...)
}

func (h *Host) resize(vp graphics.Viewport) {
	w, ht := h.cfg.Resize.BufferSize(vp, h.cfg.Width, h.cfg.Height)
	h.surface.SetBufferSize(w, ht)
	h.gl.Viewport(0, 0, int32(w), int32(ht))
	Logger().Debug("shader host resized", "name", h.cfg.Name,
		"viewport", fmt.Sprintf("%dx%d@%g", vp.Width, vp.Height, vp.PixelRatio),
		"buffer", fmt.Sprintf("%dx%d", w, ht))
}

func (h *Host) frame(now time.Duration) {
	t := float32((now - h.start).Seconds())
	if t < 0 {
		t = 0
	}
	if h.frames > 0 && t <= h.lastTime {
		t = math.Nextafter32(h.lastTime, float32(math.Inf(1)))
	}
	h.lastTime = t

	gl := h.gl
	gl.UseProgram(h.program)
	gl.BindVertexArray(h.vao)
	if h.cfg.Clear {
		gl.Clear()
	}
	gl.Uniform1f(h.timeLoc, t)
	if h.resolutionLoc >= 0 {
		w, ht := h.surface.BufferSize()
		gl.Uniform2f(h.resolutionLoc, float32(w), float32(ht))
	}
	gl.DrawArrays(graphics.Triangles, 0, shader.QuadVertexCount)
	h.frames++
}

// Unmount stops the frame loop and detaches the resize listener. A frame
// callback already queued still fires once but draws nothing. GPU objects
// are left to the surface owner. Calling Unmount again is a no-op.
func (h *Host) Unmount() {
	if h.state == TornDown {
		return
	}
	if h.loop != nil {
		h.loop.Stop()
	}
	if h.removeResize != nil {
		h.removeResize()
		h.removeResize = nil
	}
	wasRunning := h.state == Running
	h.state = TornDown
	if wasRunning {
		Logger().Info("shader host unmounted", "name", h.cfg.Name, "frames", h.frames)
	}
}
