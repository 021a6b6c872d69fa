package glfwcontext

import (
	"log"
	"runtime"

	options "github.com/breakingrobots/shaderbg/options"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

// Context is a GLFW window implementing graphics.Context.
type Context struct {
	window       *glfw.Window
	swapInterval int
	resize       func()
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()

	// windowed position and size restored when leaving fullscreen
	windowedX, windowedY          int
	windowedWidth, windowedHeight int
}

// New creates and initializes a new GLFW window and returns a Context object.
// An invisible window still owns a default framebuffer of the requested size.
func New(options *options.Options, visible bool) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	width, height := *options.Width, *options.Height
	var monitor *glfw.Monitor
	if visible && *options.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			if w, h, _, ok := fullscreenSize(monitor.GetVideoMode()); ok {
				width, height = w, h
			}
		}
	}

	win, err := glfw.CreateWindow(width, height, *options.Title, monitor, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:         win,
		keyCallbacks:   make(map[glfw.Key]func()),
		windowedWidth:  *options.Width,
		windowedHeight: *options.Height,
	}
	if *options.VSync {
		c.swapInterval = 1
	}

	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) { c.notifyResize() })
	win.SetSizeCallback(func(_ *glfw.Window, _, _ int) { c.notifyResize() })
	win.SetContentScaleCallback(func(_ *glfw.Window, _, _ float32) { c.notifyResize() })

	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}

	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

func (c *Context) notifyResize() {
	if c.resize != nil {
		c.resize()
	}
}

// ToggleFullscreen switches between the primary monitor and the last
// windowed placement.
func (c *Context) ToggleFullscreen() {
	if c.window.GetMonitor() != nil {
		c.window.SetMonitor(nil, c.windowedX, c.windowedY, c.windowedWidth, c.windowedHeight, 0)
		return
	}
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		log.Printf("No monitor available for fullscreen")
		return
	}
	width, height, rate, ok := fullscreenSize(monitor.GetVideoMode())
	if !ok {
		log.Printf("No video mode available for fullscreen")
		return
	}
	c.windowedX, c.windowedY = c.window.GetPos()
	c.windowedWidth, c.windowedHeight = c.window.GetSize()
	c.window.SetMonitor(monitor, 0, 0, width, height, rate)
}

// fullscreenSize returns the size and refresh rate of a monitor video mode,
// or false when the mode is missing or empty.
func fullscreenSize(mode *glfw.VidMode) (width, height, refreshRate int, ok bool) {
	if mode == nil || mode.Width <= 0 || mode.Height <= 0 {
		return 0, 0, 0, false
	}
	return mode.Width, mode.Height, mode.RefreshRate, true
}

// MakeCurrent makes the context current for the calling goroutine and applies
// the swap interval.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
	glfw.SwapInterval(c.swapInterval)
}

func (c *Context) IsGLES() bool {
	// GLFW does not provide a direct way to check if the context is GLES.
	return false
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) RequestClose() {
	c.window.SetShouldClose(true)
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) GetWindowSize() (int, int) {
	return c.window.GetSize()
}

func (c *Context) SetResizeCallback(fn func()) {
	c.resize = fn
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
