package renderer

import (
	"strings"

	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/shader"
)

func newProgram(gl graphics.GL, vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(gl, vertexShaderSource, graphics.VertexShader)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(gl, fragmentShaderSource, graphics.FragmentShader)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	if !gl.ProgramLinked(program) {
		log := trimLog(gl.ProgramInfoLog(program))
		gl.DeleteProgram(program)
		return 0, &BuildError{Stage: StageLink, Log: log}
	}
	return program, nil
}

func compileShader(gl graphics.GL, source string, kind graphics.ShaderKind) (uint32, error) {
	sh := gl.CreateShader(kind)
	gl.ShaderSource(sh, source)
	gl.CompileShader(sh)

	if !gl.ShaderCompiled(sh) {
		stage := StageVertex
		if kind == graphics.FragmentShader {
			stage = StageFragment
		}
		log := trimLog(gl.ShaderInfoLog(sh))
		gl.DeleteShader(sh)
		return 0, &BuildError{Stage: stage, Log: log}
	}
	return sh, nil
}

// trimLog drops the NUL padding and trailing whitespace drivers leave in info logs.
func trimLog(log string) string {
	return strings.TrimRight(log, "\x00\r\n\t ")
}

// uploadQuad creates the vertex array holding the full-screen quad bound to
// the position attribute.
func uploadQuad(gl graphics.GL, program uint32) (vao uint32, err error) {
	loc := gl.GetAttribLocation(program, shader.PositionAttribute)
	if loc < 0 {
		return 0, &BuildError{Stage: StageAttribute, Log: "attribute " + shader.PositionAttribute + " not found"}
	}
	vao = gl.CreateVertexArray()
	gl.BindVertexArray(vao)
	vbo := gl.CreateBuffer()
	gl.BufferStaticData(vbo, shader.QuadVertices)
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointer(uint32(loc), 2)
	return vao, nil
}
