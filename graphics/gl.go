package graphics

// ShaderKind selects the pipeline stage of a shader object.
type ShaderKind int

const (
	VertexShader ShaderKind = iota
	FragmentShader
)

func (k ShaderKind) String() string {
	switch k {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

// DrawMode is the primitive topology passed to DrawArrays.
type DrawMode int

const Triangles DrawMode = 0

// GL is the drawing context: the subset of GPU commands a shader host issues.
// Handles are the raw GL object names; locations are -1 when not found.
type GL interface {
	CreateShader(kind ShaderKind) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	GetAttribLocation(program uint32, name string) int32
	GetUniformLocation(program uint32, name string) int32

	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	CreateBuffer() uint32
	// BufferStaticData binds buffer as the array buffer and uploads data with
	// static usage.
	BufferStaticData(buffer uint32, data []float32)
	EnableVertexAttribArray(index uint32)
	// VertexAttribPointer describes tightly packed float components of the
	// currently bound array buffer.
	VertexAttribPointer(index uint32, size int32)

	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)

	Viewport(x, y, width, height int32)
	Clear()
	DrawArrays(mode DrawMode, first, count int32)
}
