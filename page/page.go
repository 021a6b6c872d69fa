// Package page stacks shader hosts as layers behind one window and drives
// them from a single repaint queue.
package page

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/breakingrobots/shaderbg/animation"
	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/renderer"
)

// FrameSink receives composited frames as bottom-up RGBA rows.
type FrameSink interface {
	WriteFrame(pixels []byte) error
}

// Page owns the repaint queue and the mounted layers. The first mounted
// layer is the bottom-most. All methods must be called on the thread that
// owns the window's context.
type Page struct {
	window graphics.Context
	device graphics.Device
	queue  *animation.Queue
	layers []*Layer
}

// New creates a page over window. A nil clock reads the window's timer.
func New(window graphics.Context, device graphics.Device, clock func() time.Duration) *Page {
	if clock == nil {
		clock = func() time.Duration {
			return time.Duration(window.Time() * float64(time.Second))
		}
	}
	p := &Page{
		window: window,
		device: device,
		queue:  animation.NewQueue(clock),
	}
	window.SetResizeCallback(p.resized)
	return p
}

// Viewport reports the window size in logical pixels and the ratio of
// framebuffer pixels to window pixels.
func (p *Page) Viewport() graphics.Viewport {
	w, h := p.window.GetWindowSize()
	fbw, _ := p.window.GetFramebufferSize()
	ratio := 1.0
	if w > 0 && fbw > 0 {
		ratio = float64(fbw) / float64(w)
	}
	return graphics.Viewport{Width: w, Height: h, PixelRatio: ratio}
}

// Layers returns the mounted layers, bottom first.
func (p *Page) Layers() []*Layer {
	return append([]*Layer(nil), p.layers...)
}

// Mount creates a canvas for cfg and mounts a host on it. On failure the
// error is logged and returned and the page carries on without the layer.
func (p *Page) Mount(cfg renderer.Config, opacity float32, opts ...renderer.Option) (*Layer, error) {
	fbw, fbh := p.window.GetFramebufferSize()
	canvas, err := p.device.NewCanvas(fbw, fbh)
	if err != nil {
		err = fmt.Errorf("%w: %w", renderer.ErrContextUnavailable, err)
		renderer.Logger().Error("layer canvas unavailable", "name", cfg.Name, "err", err)
		return nil, err
	}

	l := &Layer{
		page:      p,
		canvas:    canvas,
		opacity:   min(max(opacity, 0), 1),
		listeners: make(map[int]func(graphics.Viewport)),
	}
	l.host = renderer.NewHost(cfg, l, p.queue, opts...)
	if err := l.host.Mount(); err != nil {
		canvas.Destroy()
		return nil, err
	}
	p.layers = append(p.layers, l)
	return l, nil
}

// Unmount tears down the layer's host and releases its canvas.
func (p *Page) Unmount(l *Layer) {
	for i, cur := range p.layers {
		if cur == l {
			p.layers = append(p.layers[:i], p.layers[i+1:]...)
			l.host.Unmount()
			l.canvas.Destroy()
			return
		}
	}
}

// Frame runs one repaint at the clock's current time.
func (p *Page) Frame() {
	p.frameAt(p.queue.Now())
}

func (p *Page) frameAt(now time.Duration) {
	p.queue.Flush(now)
	fbw, fbh := p.window.GetFramebufferSize()
	p.device.BeginComposite(fbw, fbh)
	for _, l := range p.layers {
		l.canvas.Present(l.opacity)
	}
}

// Run repaints and presents until the window is asked to close or ctx is
// cancelled.
func (p *Page) Run(ctx context.Context) error {
	for !p.window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		p.Frame()
		p.window.EndFrame()
	}
	return nil
}

// Record renders frames at a fixed step of 1/fps starting from the clock's
// current time and writes every composited frame to sink. Frames are
// composited offscreen and read back from there. It returns the number of
// frames written.
func (p *Page) Record(ctx context.Context, sink FrameSink, frames, fps int) (int, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("invalid frame rate %d", fps)
	}
	base := p.queue.Now()
	fbw, fbh := p.window.GetFramebufferSize()
	if err := p.device.BeginOffscreen(fbw, fbh); err != nil {
		return 0, fmt.Errorf("failed to prepare offscreen compositing: %w", err)
	}
	defer p.device.EndOffscreen()
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if p.window.ShouldClose() {
			return i, errors.New("window closed while recording")
		}
		p.frameAt(base + time.Duration(i)*time.Second/time.Duration(fps))
		pixels, err := p.device.ReadPixels(fbw, fbh)
		if err != nil {
			return i, fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(pixels); err != nil {
			return i, err
		}
		p.window.EndFrame()
	}
	return frames, nil
}

// Close unmounts every layer, topmost first.
func (p *Page) Close() {
	for i := len(p.layers) - 1; i >= 0; i-- {
		p.Unmount(p.layers[i])
	}
	p.window.SetResizeCallback(nil)
}

func (p *Page) resized() {
	vp := p.Viewport()
	renderer.Logger().Debug("page resized", "width", vp.Width, "height", vp.Height, "ratio", vp.PixelRatio)
	for _, l := range p.layers {
		l.notify(vp)
	}
}

// Layer is one mounted host and the canvas it draws into. It is the host's
// drawing surface.
type Layer struct {
	page    *Page
	host    *renderer.Host
	canvas  graphics.Canvas
	opacity float32

	listeners map[int]func(graphics.Viewport)
	nextID    int
}

var _ graphics.Surface = (*Layer)(nil)

func (l *Layer) Host() *renderer.Host { return l.host }

func (l *Layer) Opacity() float32 { return l.opacity }

func (l *Layer) Context() (graphics.GL, error) { return l.canvas.Context() }

func (l *Layer) BufferSize() (int, int) { return l.canvas.BufferSize() }

func (l *Layer) SetBufferSize(width, height int) { l.canvas.SetBufferSize(width, height) }

func (l *Layer) Viewport() graphics.Viewport { return l.page.Viewport() }

func (l *Layer) AddResizeListener(fn func(graphics.Viewport)) func() {
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	return func() { delete(l.listeners, id) }
}

func (l *Layer) notify(vp graphics.Viewport) {
	ids := make([]int, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := l.listeners[id]; ok {
			fn(vp)
		}
	}
}
