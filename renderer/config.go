package renderer

import (
	"fmt"
	"sort"

	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/shader"
)

// ResizeMode decides how a host sizes its backing buffer.
type ResizeMode int

const (
	// ResizeFixed keeps the configured Width x Height and ignores the viewport.
	ResizeFixed ResizeMode = iota
	// ResizeViewport matches the viewport's logical size.
	ResizeViewport
	// ResizeDevicePixelRatio matches the viewport scaled by its pixel ratio.
	ResizeDevicePixelRatio
)

func (m ResizeMode) String() string {
	switch m {
	case ResizeFixed:
		return "fixed"
	case ResizeViewport:
		return "viewport"
	case ResizeDevicePixelRatio:
		return "device-pixel-ratio"
	default:
		return fmt.Sprintf("ResizeMode(%d)", int(m))
	}
}

// FollowsViewport reports whether the mode listens for viewport changes.
func (m ResizeMode) FollowsViewport() bool {
	return m == ResizeViewport || m == ResizeDevicePixelRatio
}

// BufferSize returns the backing buffer size for a viewport. fixedW and
// fixedH are used by ResizeFixed. Results are truncated to whole pixels and
// never smaller than 1.
func (m ResizeMode) BufferSize(vp graphics.Viewport, fixedW, fixedH int) (int, int) {
	var w, h int
	switch m {
	case ResizeViewport:
		w, h = vp.Width, vp.Height
	case ResizeDevicePixelRatio:
		ratio := vp.PixelRatio
		if ratio <= 0 {
			ratio = 1
		}
		w = int(float64(vp.Width) * ratio)
		h = int(float64(vp.Height) * ratio)
	default:
		w, h = fixedW, fixedH
	}
	return max(w, 1), max(h, 1)
}

// Config describes one shader host: its fragment program and how it is fed.
type Config struct {
	Name string
	// Fragment is a GLSL ES 3.00 fragment program reading u_time and,
	// when Resolution is set, u_resolution.
	Fragment   string
	Resolution bool
	Resize     ResizeMode
	// Width and Height size the backing buffer under ResizeFixed.
	Width  int
	Height int
	// Clear clears the buffer before each draw.
	Clear bool
	// Shade is the CPU equivalent of Fragment, nil when there is none.
	Shade shader.ShadeFunc
}

// Validate checks the configuration before mounting.
func (c Config) Validate() error {
	if c.Fragment == "" {
		return fmt.Errorf("config %q: empty fragment program", c.Name)
	}
	if c.Resize == ResizeFixed && (c.Width <= 0 || c.Height <= 0) {
		return fmt.Errorf("config %q: fixed resize needs a positive size, got %dx%d", c.Name, c.Width, c.Height)
	}
	if c.Resize < ResizeFixed || c.Resize > ResizeDevicePixelRatio {
		return fmt.Errorf("config %q: unknown resize mode %d", c.Name, int(c.Resize))
	}
	return nil
}

var presets = map[string]Config{
	shader.ColorField.Name: {
		Name:     shader.ColorField.Name,
		Fragment: shader.ColorField.Source,
		Shade:    shader.ColorField.Shade,
		Resize:   ResizeFixed,
		Width:    600,
		Height:   400,
	},
	shader.GlitchA.Name: {
		Name:       shader.GlitchA.Name,
		Fragment:   shader.GlitchA.Source,
		Shade:      shader.GlitchA.Shade,
		Resolution: true,
		Resize:     ResizeDevicePixelRatio,
		Clear:      true,
	},
	shader.GlitchB.Name: {
		Name:       shader.GlitchB.Name,
		Fragment:   shader.GlitchB.Source,
		Shade:      shader.GlitchB.Shade,
		Resolution: true,
		Resize:     ResizeViewport,
		Clear:      true,
	},
}

// Preset returns the built-in configuration called name.
func Preset(name string) (Config, bool) {
	c, ok := presets[name]
	return c, ok
}

// Presets lists the built-in configuration names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Custom configures a host for a user supplied fragment program. It follows
// the viewport at device resolution and receives u_resolution. It has no CPU
// shade, whatever its name.
func Custom(name, fragment string) Config {
	return Config{
		Name:       name,
		Fragment:   fragment,
		Resolution: true,
		Resize:     ResizeDevicePixelRatio,
		Clear:      true,
	}
}
