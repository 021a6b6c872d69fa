package graphicstest

import (
	"sort"

	"github.com/breakingrobots/shaderbg/graphics"
)

// Surface is a fake drawing surface backed by a recording GL.
type Surface struct {
	GL *GL
	// Err, when set, is returned by Context.
	Err error

	Width  int
	Height int
	View   graphics.Viewport

	// SizeHistory records every SetBufferSize call.
	SizeHistory [][2]int

	listeners map[int]func(graphics.Viewport)
	nextID    int
}

func NewSurface(view graphics.Viewport) *Surface {
	return &Surface{
		GL:        NewGL(),
		View:      view,
		listeners: make(map[int]func(graphics.Viewport)),
	}
}

func (s *Surface) Context() (graphics.GL, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.GL, nil
}

func (s *Surface) BufferSize() (int, int) {
	return s.Width, s.Height
}

func (s *Surface) SetBufferSize(width, height int) {
	s.Width, s.Height = width, height
	s.SizeHistory = append(s.SizeHistory, [2]int{width, height})
}

func (s *Surface) Viewport() graphics.Viewport {
	return s.View
}

func (s *Surface) AddResizeListener(fn func(graphics.Viewport)) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

// Listeners reports the number of registered resize listeners.
func (s *Surface) Listeners() int {
	return len(s.listeners)
}

// Resize changes the viewport and notifies listeners in registration order.
func (s *Surface) Resize(view graphics.Viewport) {
	s.View = view
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s.listeners[id](view)
	}
}
