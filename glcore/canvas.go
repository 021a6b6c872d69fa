package glcore

import (
	"errors"
	"fmt"

	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/shader"
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// Device owns the compositing program and the quad shared by every canvas.
type Device struct {
	quadVAO     uint32
	quadVBO     uint32
	blitProgram uint32
	textureLoc  int32
	opacityLoc  int32
	canvases    map[*Canvas]struct{}
	clearColor  [3]float32

	// composite target used while recording
	offscreen  bool
	offFBO     uint32
	offTexture uint32
	offWidth   int
	offHeight  int
}

var _ graphics.Device = (*Device)(nil)

// NewDevice prepares compositing resources on the current context.
func NewDevice(isGLES bool) (*Device, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	d := &Device{canvases: make(map[*Canvas]struct{})}

	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(shader.QuadVertices)*4, gl.Ptr(shader.QuadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	vs, fs := shader.CompositeShaders(isGLES)
	var err error
	d.blitProgram, err = newProgram(vs, fs)
	if err != nil {
		d.Destroy()
		return nil, fmt.Errorf("failed to create composite program: %w", err)
	}
	d.textureLoc = gl.GetUniformLocation(d.blitProgram, gl.Str("u_texture\x00"))
	d.opacityLoc = gl.GetUniformLocation(d.blitProgram, gl.Str("u_opacity\x00"))
	return d, nil
}

// SetClearColor sets the color shown where no layer covers the window.
func (d *Device) SetClearColor(r, g, b float32) {
	d.clearColor = [3]float32{r, g, b}
}

func (d *Device) NewCanvas(width, height int) (graphics.Canvas, error) {
	c := &Canvas{device: d}
	gl.GenFramebuffers(1, &c.fbo)
	gl.GenTextures(1, &c.textureID)
	c.allocate(max(width, 1), max(height, 1))
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, c.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		c.Destroy()
		return nil, fmt.Errorf("canvas framebuffer is not complete: 0x%x", status)
	}
	d.canvases[c] = struct{}{}
	return c, nil
}

func (d *Device) BeginComposite(width, height int) {
	if d.offscreen {
		gl.BindFramebuffer(gl.FRAMEBUFFER, d.offFBO)
		width, height = d.offWidth, d.offHeight
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(d.clearColor[0], d.clearColor[1], d.clearColor[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// BeginOffscreen creates or resizes the composite framebuffer and routes
// compositing into it. Pixels of a hidden window's framebuffer are
// undefined, so frames that are read back never come from the window.
func (d *Device) BeginOffscreen(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid offscreen size %dx%d", width, height)
	}
	if d.offFBO == 0 {
		gl.GenFramebuffers(1, &d.offFBO)
		gl.GenTextures(1, &d.offTexture)
	}
	if width != d.offWidth || height != d.offHeight {
		gl.BindTexture(gl.TEXTURE_2D, d.offTexture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		d.offWidth, d.offHeight = width, height
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.offFBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, d.offTexture, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("composite framebuffer is not complete: 0x%x", status)
	}
	d.offscreen = true
	return nil
}

// EndOffscreen composites onto the window again. The framebuffer is kept for
// the next recording.
func (d *Device) EndOffscreen() {
	d.offscreen = false
}

func (d *Device) ReadPixels(width, height int) ([]byte, error) {
	if !d.offscreen {
		return nil, errors.New("read back outside offscreen compositing")
	}
	if width <= 0 || height <= 0 || width > d.offWidth || height > d.offHeight {
		return nil, fmt.Errorf("invalid read size %dx%d for %dx%d target", width, height, d.offWidth, d.offHeight)
	}
	pixels := make([]byte, width*height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, d.offFBO)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels failed: 0x%x", e)
	}
	return pixels, nil
}

// Destroy releases the compositing resources and every live canvas.
func (d *Device) Destroy() {
	for c := range d.canvases {
		c.Destroy()
	}
	if d.blitProgram != 0 {
		gl.DeleteProgram(d.blitProgram)
	}
	if d.offFBO != 0 {
		gl.DeleteFramebuffers(1, &d.offFBO)
		gl.DeleteTextures(1, &d.offTexture)
		d.offFBO, d.offTexture = 0, 0
	}
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
}

// Canvas is an offscreen color buffer one host renders into.
type Canvas struct {
	device    *Device
	fbo       uint32
	textureID uint32
	width     int
	height    int
	viewport  [4]int32
	destroyed bool
}

var _ graphics.Canvas = (*Canvas)(nil)

func (c *Canvas) allocate(width, height int) {
	gl.BindTexture(gl.TEXTURE_2D, c.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	c.width, c.height = width, height
	c.viewport = [4]int32{0, 0, int32(width), int32(height)}
}

// Context returns a GL whose clears and draws land in this canvas.
func (c *Canvas) Context() (graphics.GL, error) {
	if c.destroyed {
		return nil, errors.New("canvas destroyed")
	}
	return &canvasGL{canvas: c}, nil
}

func (c *Canvas) BufferSize() (int, int) {
	return c.width, c.height
}

// SetBufferSize reallocates the backing texture. Contents are discarded.
func (c *Canvas) SetBufferSize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == c.width && height == c.height {
		return
	}
	c.allocate(width, height)
}

func (c *Canvas) Present(opacity float32) {
	if c.destroyed {
		return
	}
	d := c.device
	if opacity < 1 {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		defer gl.Disable(gl.BLEND)
	}
	gl.UseProgram(d.blitProgram)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, c.textureID)
	gl.Uniform1i(d.textureLoc, 0)
	gl.Uniform1f(d.opacityLoc, opacity)
	gl.BindVertexArray(d.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, shader.QuadVertexCount)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (c *Canvas) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	gl.DeleteFramebuffers(1, &c.fbo)
	gl.DeleteTextures(1, &c.textureID)
	delete(c.device.canvases, c)
}

// canvasGL targets its canvas: it binds the canvas framebuffer and restores
// the canvas viewport before every clear and draw, since the underlying
// context is shared by all canvases.
type canvasGL struct {
	GL
	canvas *Canvas
}

func (g *canvasGL) bind() {
	c := g.canvas
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.fbo)
	gl.Viewport(c.viewport[0], c.viewport[1], c.viewport[2], c.viewport[3])
}

func (g *canvasGL) Viewport(x, y, width, height int32) {
	g.canvas.viewport = [4]int32{x, y, width, height}
}

func (g *canvasGL) Clear() {
	g.bind()
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (g *canvasGL) DrawArrays(mode graphics.DrawMode, first, count int32) {
	g.bind()
	gl.DrawArrays(drawMode(mode), first, count)
}
