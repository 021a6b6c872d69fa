package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrContextUnavailable means the surface could not provide a drawing context.
	ErrContextUnavailable = errors.New("drawing context unavailable")
	// ErrMounted is returned when mounting a host that was already mounted.
	ErrMounted = errors.New("host already mounted")
)

// Build stages reported by BuildError.
const (
	StageTranslate = "translate"
	StageVertex    = "vertex"
	StageFragment  = "fragment"
	StageLink      = "link"
	StageAttribute = "attribute"
)

// BuildError is a shader compilation, link or binding failure with the
// diagnostic log the driver produced.
type BuildError struct {
	Stage string
	Log   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build %s stage: %s", e.Stage, e.Log)
}
