package options

import (
	"fmt"
	"strconv"
	"strings"
)

// Modes accepted by -mode.
const (
	ModeWindow = "window"
	ModeRecord = "record"
	ModePoster = "poster"
)

type Options struct {
	Help        *bool
	Mode        *string
	Layers      *string // comma separated preset names, each optionally suffixed with :opacity
	Fragment    *string // path to a custom GLSL ES 3.00 fragment program, mounted on top
	Width       *int
	Height      *int
	Fullscreen  *bool
	Headless    *bool // record through an EGL pbuffer instead of a hidden window
	Title       *string
	Background  *string // #rrggbb shown where no layer covers the window
	VSync       *bool
	Duration    *float64
	FPS         *int
	OutputFile  *string
	Codec       *string
	FFMPEGPath  *string
	PosterTime  *float64 // seconds into the animation the poster frame is taken at
	Supersample *int
}

// ParseColor parses a #rrggbb hex colour into red, green and blue in [0, 1].
// The leading # is optional.
func ParseColor(value string) ([3]float32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 {
		return [3]float32{}, fmt.Errorf("colour %q: want #rrggbb", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [3]float32{}, fmt.Errorf("colour %q: %w", value, err)
	}
	return [3]float32{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// Layer is one entry of -layers.
type Layer struct {
	Name    string
	Opacity float32
}

// ParseLayers splits a -layers value. Opacity defaults to 1 and must lie in [0, 1].
func ParseLayers(value string) ([]Layer, error) {
	var layers []Layer
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		l := Layer{Name: item, Opacity: 1}
		if name, op, ok := strings.Cut(item, ":"); ok {
			f, err := strconv.ParseFloat(op, 32)
			if err != nil {
				return nil, fmt.Errorf("layer %q: invalid opacity: %w", item, err)
			}
			if f < 0 || f > 1 {
				return nil, fmt.Errorf("layer %q: opacity %v out of range [0,1]", item, f)
			}
			l = Layer{Name: name, Opacity: float32(f)}
		}
		layers = append(layers, l)
	}
	return layers, nil
}

// Validate checks the parsed flags. known reports whether a layer name exists.
func (o *Options) Validate(known func(string) bool) error {
	switch *o.Mode {
	case ModeWindow, ModeRecord, ModePoster:
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height)
	}
	layers, err := ParseLayers(*o.Layers)
	if err != nil {
		return err
	}
	if len(layers) == 0 && *o.Fragment == "" {
		return fmt.Errorf("no layers to render")
	}
	for _, l := range layers {
		if !known(l.Name) {
			return fmt.Errorf("unknown layer %q", l.Name)
		}
	}
	if _, err := ParseColor(*o.Background); err != nil {
		return err
	}
	if *o.Headless && *o.Mode != ModeRecord {
		return fmt.Errorf("headless rendering is only available in record mode")
	}
	switch *o.Mode {
	case ModeRecord:
		if *o.FPS <= 0 {
			return fmt.Errorf("fps must be positive, got %d", *o.FPS)
		}
		if *o.Duration <= 0 {
			return fmt.Errorf("duration must be positive, got %v", *o.Duration)
		}
		if *o.OutputFile == "" {
			return fmt.Errorf("record mode needs an output file")
		}
	case ModePoster:
		if *o.Supersample < 1 {
			return fmt.Errorf("supersample must be at least 1, got %d", *o.Supersample)
		}
		if *o.PosterTime < 0 {
			return fmt.Errorf("poster time must not be negative, got %v", *o.PosterTime)
		}
	}
	return nil
}
