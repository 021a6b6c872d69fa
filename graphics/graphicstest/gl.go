// Package graphicstest provides recording fakes of the graphics interfaces
// for tests that run without a GPU or a window.
package graphicstest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/breakingrobots/shaderbg/graphics"
)

// Draw is one recorded DrawArrays call with the state it was issued under.
type Draw struct {
	Mode     graphics.DrawMode
	First    int32
	Count    int32
	Program  uint32
	VAO      uint32
	Viewport [4]int32
	// Uniforms holds the current value of every uniform set on the program,
	// keyed by name.
	Uniforms map[string][]float32
}

type shaderObject struct {
	kind     graphics.ShaderKind
	source   string
	compiled bool
	log      string
	deleted  bool
}

type programObject struct {
	shaders []uint32
	linked  bool
	log     string
	deleted bool
	values  map[int32][]float32
}

var errorDirective = regexp.MustCompile(`(?m)^\s*#error\s*(.*)$`)

// GL is a fake drawing context that records the commands issued to it.
//
// A shader fails to compile when its source contains an #error directive or
// when CompileError returns a non-empty log. Uniforms resolve when their name
// appears in a source attached to the program.
type GL struct {
	// CompileError overrides compilation results when non-nil.
	CompileError func(kind graphics.ShaderKind, source string) string
	// LinkError, when set, makes every link fail with this log.
	LinkError string
	// Attribs maps attribute names to locations. Defaults to position at 0.
	Attribs map[string]int32

	Calls          []string
	Draws          []Draw
	Clears         int
	ViewportRect   [4]int32
	BufferData     map[uint32][]float32
	EnabledAttribs map[uint32]int32

	next       uint32
	shaders    map[uint32]*shaderObject
	programs   map[uint32]*programObject
	locations  map[string]int32
	names      map[int32]string
	current    uint32
	currentVAO uint32
}

func NewGL() *GL {
	return &GL{
		Attribs:        map[string]int32{"position": 0},
		BufferData:     make(map[uint32][]float32),
		EnabledAttribs: make(map[uint32]int32),
		shaders:        make(map[uint32]*shaderObject),
		programs:       make(map[uint32]*programObject),
		locations:      make(map[string]int32),
		names:          make(map[int32]string),
	}
}

func (g *GL) record(format string, args ...any) {
	g.Calls = append(g.Calls, fmt.Sprintf(format, args...))
}

func (g *GL) alloc() uint32 {
	g.next++
	return g.next
}

func (g *GL) CreateShader(kind graphics.ShaderKind) uint32 {
	id := g.alloc()
	g.shaders[id] = &shaderObject{kind: kind}
	g.record("CreateShader(%s)", kind)
	return id
}

func (g *GL) ShaderSource(shader uint32, source string) {
	if s, ok := g.shaders[shader]; ok {
		s.source = source
	}
}

func (g *GL) CompileShader(shader uint32) {
	g.record("CompileShader(%d)", shader)
	s, ok := g.shaders[shader]
	if !ok {
		return
	}
	var msg string
	if g.CompileError != nil {
		msg = g.CompileError(s.kind, s.source)
	} else if m := errorDirective.FindStringSubmatch(s.source); m != nil {
		msg = fmt.Sprintf("ERROR: 0:1: '#error' : %s", strings.TrimSpace(m[1]))
	}
	s.compiled = msg == ""
	s.log = msg
}

func (g *GL) ShaderCompiled(shader uint32) bool {
	s, ok := g.shaders[shader]
	return ok && s.compiled
}

func (g *GL) ShaderInfoLog(shader uint32) string {
	if s, ok := g.shaders[shader]; ok {
		return s.log
	}
	return ""
}

func (g *GL) DeleteShader(shader uint32) {
	if s, ok := g.shaders[shader]; ok {
		s.deleted = true
	}
}

func (g *GL) CreateProgram() uint32 {
	id := g.alloc()
	g.programs[id] = &programObject{values: make(map[int32][]float32)}
	g.record("CreateProgram()")
	return id
}

func (g *GL) AttachShader(program, shader uint32) {
	if p, ok := g.programs[program]; ok {
		p.shaders = append(p.shaders, shader)
	}
}

func (g *GL) LinkProgram(program uint32) {
	g.record("LinkProgram(%d)", program)
	p, ok := g.programs[program]
	if !ok {
		return
	}
	p.linked = g.LinkError == ""
	p.log = g.LinkError
	for _, id := range p.shaders {
		if s := g.shaders[id]; s == nil || !s.compiled {
			p.linked = false
			p.log = "ERROR: one or more attached shaders not successfully compiled"
		}
	}
}

func (g *GL) ProgramLinked(program uint32) bool {
	p, ok := g.programs[program]
	return ok && p.linked
}

func (g *GL) ProgramInfoLog(program uint32) string {
	if p, ok := g.programs[program]; ok {
		return p.log
	}
	return ""
}

func (g *GL) DeleteProgram(program uint32) {
	g.record("DeleteProgram(%d)", program)
	if p, ok := g.programs[program]; ok {
		p.deleted = true
	}
}

// Live reports the shader and program objects created and not yet deleted.
func (g *GL) Live() (shaders, programs int) {
	for _, s := range g.shaders {
		if !s.deleted {
			shaders++
		}
	}
	for _, p := range g.programs {
		if !p.deleted {
			programs++
		}
	}
	return shaders, programs
}

func (g *GL) UseProgram(program uint32) {
	g.current = program
}

func (g *GL) GetAttribLocation(program uint32, name string) int32 {
	if loc, ok := g.Attribs[name]; ok {
		return loc
	}
	return -1
}

func (g *GL) GetUniformLocation(program uint32, name string) int32 {
	g.record("GetUniformLocation(%s)", name)
	p, ok := g.programs[program]
	if !ok || !p.linked {
		return -1
	}
	for _, id := range p.shaders {
		if s := g.shaders[id]; s != nil && strings.Contains(s.source, name) {
			loc, ok := g.locations[name]
			if !ok {
				loc = int32(len(g.locations))
				g.locations[name] = loc
				g.names[loc] = name
			}
			return loc
		}
	}
	return -1
}

func (g *GL) CreateVertexArray() uint32 {
	return g.alloc()
}

func (g *GL) BindVertexArray(vao uint32) {
	g.currentVAO = vao
}

func (g *GL) CreateBuffer() uint32 {
	return g.alloc()
}

func (g *GL) BufferStaticData(buffer uint32, data []float32) {
	g.record("BufferStaticData(%d)", buffer)
	g.BufferData[buffer] = append([]float32(nil), data...)
}

func (g *GL) EnableVertexAttribArray(index uint32) {
	g.EnabledAttribs[index] = 0
}

func (g *GL) VertexAttribPointer(index uint32, size int32) {
	g.EnabledAttribs[index] = size
}

func (g *GL) setUniform(location int32, v ...float32) {
	if location < 0 {
		return
	}
	if p, ok := g.programs[g.current]; ok {
		p.values[location] = v
	}
}

func (g *GL) Uniform1f(location int32, v float32) {
	g.setUniform(location, v)
}

func (g *GL) Uniform2f(location int32, x, y float32) {
	g.setUniform(location, x, y)
}

func (g *GL) Viewport(x, y, width, height int32) {
	g.record("Viewport(%d,%d,%d,%d)", x, y, width, height)
	g.ViewportRect = [4]int32{x, y, width, height}
}

func (g *GL) Clear() {
	g.Clears++
}

func (g *GL) DrawArrays(mode graphics.DrawMode, first, count int32) {
	d := Draw{
		Mode:     mode,
		First:    first,
		Count:    count,
		Program:  g.current,
		VAO:      g.currentVAO,
		Viewport: g.ViewportRect,
		Uniforms: make(map[string][]float32),
	}
	if p, ok := g.programs[g.current]; ok {
		for loc, v := range p.values {
			d.Uniforms[g.names[loc]] = append([]float32(nil), v...)
		}
	}
	g.Draws = append(g.Draws, d)
}

// LastDraw returns the most recent draw, or false when nothing was drawn.
func (g *GL) LastDraw() (Draw, bool) {
	if len(g.Draws) == 0 {
		return Draw{}, false
	}
	return g.Draws[len(g.Draws)-1], true
}

// Source returns the source most recently given to a shader of kind.
func (g *GL) Source(kind graphics.ShaderKind) string {
	var id uint32
	src := ""
	for sid, s := range g.shaders {
		if s.kind == kind && sid > id {
			id, src = sid, s.source
		}
	}
	return src
}
