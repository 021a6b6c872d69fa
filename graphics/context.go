package graphics

// Context defines the interface for the window that hosts the page.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// RequestClose asks the event loop to stop after the current frame.
	RequestClose()
	EndFrame()
	GetFramebufferSize() (int, int)
	GetWindowSize() (int, int)
	Time() float64
	// SetResizeCallback registers the function called after the window or
	// its framebuffer changes size. Only one callback is kept.
	SetResizeCallback(func())
}

// Canvas is an offscreen backing buffer that one mounted host draws into.
type Canvas interface {
	// Context returns the drawing context bound to this canvas.
	Context() (GL, error)
	BufferSize() (int, int)
	SetBufferSize(width, height int)
	// Present composites the canvas over the window's default framebuffer.
	Present(opacity float32)
	Destroy()
}

// Device creates canvases and composites them onto the window.
type Device interface {
	NewCanvas(width, height int) (Canvas, error)
	// BeginComposite binds and clears the composite target: the offscreen
	// target between BeginOffscreen and EndOffscreen, the window otherwise.
	BeginComposite(width, height int)
	// BeginOffscreen routes compositing to an offscreen target of the given
	// size, so frames can be read back from windows that are not visible.
	BeginOffscreen(width, height int) error
	EndOffscreen()
	// ReadPixels reads the offscreen composite target as bottom-up RGBA rows.
	// It fails outside BeginOffscreen and EndOffscreen.
	ReadPixels(width, height int) ([]byte, error)
}
