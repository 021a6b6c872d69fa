// Package glcore implements the graphics interfaces on OpenGL 4.1 core.
// Every call must be made on the thread that owns the current context.
package glcore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/breakingrobots/shaderbg/graphics"
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

var glInitOnce sync.Once
var glInitErr error

// Init loads the OpenGL function pointers for the current context.
func Init() error {
	glInitOnce.Do(func() {
		glInitErr = gl.Init()
	})
	if glInitErr != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", glInitErr)
	}
	return nil
}

// Version returns the driver's version string.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// GL issues commands against the current OpenGL context.
type GL struct{}

var _ graphics.GL = GL{}

func shaderType(kind graphics.ShaderKind) uint32 {
	if kind == graphics.VertexShader {
		return gl.VERTEX_SHADER
	}
	return gl.FRAGMENT_SHADER
}

func drawMode(mode graphics.DrawMode) uint32 {
	switch mode {
	case graphics.Triangles:
		return gl.TRIANGLES
	default:
		panic(fmt.Sprintf("unsupported draw mode %d", mode))
	}
}

func (GL) CreateShader(kind graphics.ShaderKind) uint32 {
	return gl.CreateShader(shaderType(kind))
}

func (GL) ShaderSource(shader uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
}

func (GL) CompileShader(shader uint32) {
	gl.CompileShader(shader)
}

func (GL) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (GL) ShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
	return logText
}

func (GL) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (GL) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (GL) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (GL) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

func (GL) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (GL) ProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return logText
}

func (GL) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (GL) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (GL) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (GL) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (GL) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (GL) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (GL) CreateBuffer() uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return vbo
}

func (GL) BufferStaticData(buffer uint32, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (GL) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (GL) VertexAttribPointer(index uint32, size int32) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, size*4, gl.PtrOffset(0))
}

func (GL) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (GL) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (GL) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (GL) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (GL) DrawArrays(mode graphics.DrawMode, first, count int32) {
	gl.DrawArrays(drawMode(mode), first, count)
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	var g GL
	vertexShader, err := compileShader(vertexShaderSource, graphics.VertexShader)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, graphics.FragmentShader)
	if err != nil {
		g.DeleteShader(vertexShader)
		return 0, err
	}

	program := g.CreateProgram()
	g.AttachShader(program, vertexShader)
	g.AttachShader(program, fragmentShader)
	g.LinkProgram(program)
	g.DeleteShader(vertexShader)
	g.DeleteShader(fragmentShader)

	if !g.ProgramLinked(program) {
		log := g.ProgramInfoLog(program)
		g.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, kind graphics.ShaderKind) (uint32, error) {
	var g GL
	shader := g.CreateShader(kind)
	g.ShaderSource(shader, source)
	g.CompileShader(shader)
	if !g.ShaderCompiled(shader) {
		logText := g.ShaderInfoLog(shader)
		g.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile %s shader: %v", kind, logText)
	}
	return shader, nil
}
