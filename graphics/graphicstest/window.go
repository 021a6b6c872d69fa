package graphicstest

import (
	"errors"

	"github.com/breakingrobots/shaderbg/graphics"
)

// Window is a fake graphics.Context.
type Window struct {
	FramebufferWidth  int
	FramebufferHeight int
	WindowWidth       int
	WindowHeight      int
	Seconds           float64
	// FrameStep is added to Seconds on every EndFrame.
	FrameStep float64
	// CloseAfter makes ShouldClose report true after that many frames.
	CloseAfter int

	Frames    int
	Current   bool
	Closed    bool
	Destroyed bool

	resize func()
}

func NewWindow(width, height int) *Window {
	return &Window{
		FramebufferWidth:  width,
		FramebufferHeight: height,
		WindowWidth:       width,
		WindowHeight:      height,
	}
}

func (w *Window) MakeCurrent() { w.Current = true }

func (w *Window) Shutdown() { w.Destroyed = true }

func (w *Window) ShouldClose() bool {
	return w.Closed || (w.CloseAfter > 0 && w.Frames >= w.CloseAfter)
}

func (w *Window) RequestClose() { w.Closed = true }

func (w *Window) EndFrame() {
	w.Frames++
	w.Seconds += w.FrameStep
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.FramebufferWidth, w.FramebufferHeight
}

func (w *Window) GetWindowSize() (int, int) {
	return w.WindowWidth, w.WindowHeight
}

func (w *Window) Time() float64 { return w.Seconds }

func (w *Window) SetResizeCallback(fn func()) { w.resize = fn }

// Resize changes the window and framebuffer sizes and fires the callback.
func (w *Window) Resize(width, height, fbWidth, fbHeight int) {
	w.WindowWidth, w.WindowHeight = width, height
	w.FramebufferWidth, w.FramebufferHeight = fbWidth, fbHeight
	if w.resize != nil {
		w.resize()
	}
}

// Canvas is a fake graphics.Canvas with its own recording GL.
type Canvas struct {
	GL        *GL
	Width     int
	Height    int
	Presented []float32
	Destroyed bool
}

func (c *Canvas) Context() (graphics.GL, error) {
	if c.Destroyed {
		return nil, errors.New("canvas destroyed")
	}
	return c.GL, nil
}

func (c *Canvas) BufferSize() (int, int) { return c.Width, c.Height }

func (c *Canvas) SetBufferSize(width, height int) { c.Width, c.Height = width, height }

func (c *Canvas) Present(opacity float32) { c.Presented = append(c.Presented, opacity) }

func (c *Canvas) Destroy() { c.Destroyed = true }

// Device is a fake graphics.Device.
type Device struct {
	// CanvasErr, when set, fails the next NewCanvas call and is then cleared.
	CanvasErr error
	// Pixels is returned by ReadPixels; nil yields a zeroed buffer.
	Pixels []byte
	// OffscreenErr, when set, fails BeginOffscreen.
	OffscreenErr error

	Canvases   []*Canvas
	Composites int
	Reads      int

	Offscreen     bool
	OffscreenSize [2]int
	// OffscreenComposites counts composites into the offscreen target.
	OffscreenComposites int
}

func (d *Device) NewCanvas(width, height int) (graphics.Canvas, error) {
	if err := d.CanvasErr; err != nil {
		d.CanvasErr = nil
		return nil, err
	}
	c := &Canvas{GL: NewGL(), Width: width, Height: height}
	d.Canvases = append(d.Canvases, c)
	return c, nil
}

func (d *Device) BeginComposite(width, height int) {
	d.Composites++
	if d.Offscreen {
		d.OffscreenComposites++
	}
}

func (d *Device) BeginOffscreen(width, height int) error {
	if d.OffscreenErr != nil {
		return d.OffscreenErr
	}
	d.Offscreen = true
	d.OffscreenSize = [2]int{width, height}
	return nil
}

func (d *Device) EndOffscreen() { d.Offscreen = false }

// ReadPixels fails outside offscreen compositing, as the window framebuffer
// is not readable.
func (d *Device) ReadPixels(width, height int) ([]byte, error) {
	if !d.Offscreen {
		return nil, errors.New("read back outside offscreen compositing")
	}
	d.Reads++
	if d.Pixels != nil {
		return d.Pixels, nil
	}
	return make([]byte, width*height*4), nil
}
