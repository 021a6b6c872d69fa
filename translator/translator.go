package translator

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

// Shader is a fragment program in the target dialect.
type Shader struct {
	Code string
	// Uniforms maps each uniform's source name to its name in Code.
	Uniforms map[string]string
}

// MappedName returns the name to resolve a uniform by, and false when the
// uniform does not survive translation.
func (s *Shader) MappedName(name string) (string, bool) {
	mapped, ok := s.Uniforms[name]
	return mapped, ok
}

// Translator converts GLSL ES 3.00 fragment sources for the drawing context.
type Translator interface {
	Fragment(source string) (*Shader, error)
}

// Format is the dialect a Translator emits.
type Format int

const (
	GLSL410 Format = iota
	ESSL
)

type angle struct {
	st     *gst.ShaderTranslator
	format Format
}

// New creates a translator backed by goshadertranslator.
func New(ctx context.Context, format Format) (Translator, error) {
	st, err := gst.NewShaderTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}
	return &angle{st: st, format: format}, nil
}

func (a *angle) Fragment(source string) (*Shader, error) {
	outputFormat := gst.OutputFormatGLSL410
	if a.format == ESSL {
		outputFormat = gst.OutputFormatESSL
	}
	fs, err := a.st.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, err
	}
	s := &Shader{Code: fs.Code, Uniforms: make(map[string]string, len(fs.Variables))}
	for name, v := range fs.Variables {
		s.Uniforms[name] = v.MappedName
	}
	return s, nil
}

var (
	shared     Translator
	sharedErr  error
	sharedOnce sync.Once
)

// Shared returns the process-wide GLSL 410 translator, creating it on first use.
func Shared() (Translator, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New(context.Background(), GLSL410)
	})
	return shared, sharedErr
}

var uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*(?:\[[^\]]*\])?\s*;`)

// Passthrough leaves sources untouched; every declared uniform keeps its name.
// It serves contexts that accept GLSL ES 3.00 directly.
type Passthrough struct{}

func (Passthrough) Fragment(source string) (*Shader, error) {
	s := &Shader{Code: source, Uniforms: make(map[string]string)}
	for _, m := range uniformDecl.FindAllStringSubmatch(source, -1) {
		s.Uniforms[m[1]] = m[1]
	}
	return s, nil
}
