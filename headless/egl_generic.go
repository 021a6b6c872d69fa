//go:build !linux

package headless

import (
	"errors"

	"github.com/breakingrobots/shaderbg/graphics"
)

// Context is unavailable off Linux; New always fails.
type Context struct {
	graphics.Context
}

func New(width, height int) (*Context, error) {
	return nil, errors.New("egl headless rendering is not supported on this platform")
}

func (h *Context) IsGLES() bool { return true }
