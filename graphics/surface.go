package graphics

// Viewport is the visible area a surface fills, in logical pixels, with the
// ratio of device pixels to logical pixels.
type Viewport struct {
	Width      int
	Height     int
	PixelRatio float64
}

// Surface is the drawing surface a shader host renders to.
type Surface interface {
	// Context acquires the surface's drawing context. An error means no
	// context can be provided.
	Context() (GL, error)
	BufferSize() (int, int)
	SetBufferSize(width, height int)
	Viewport() Viewport
	// AddResizeListener registers fn for viewport changes and returns the
	// function that removes it.
	AddResizeListener(fn func(Viewport)) (remove func())
}
