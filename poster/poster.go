// Package poster renders still frames of the layer stack on the CPU, for
// previews and fallbacks where no GL context is available.
package poster

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"sync"

	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/renderer"
	"github.com/breakingrobots/shaderbg/shader"
	"golang.org/x/image/draw"
)

// Layer is one entry of the stack, bottom first.
type Layer struct {
	Config  renderer.Config
	Opacity float32
}

type Options struct {
	Width  int
	Height int
	// Time is the animation time in seconds.
	Time float64
	// Supersample multiplies the viewport before shading. The result is
	// downscaled to Width x Height.
	Supersample int
	// Background fills the image below the layers. Nil means black.
	Background color.Color
}

// Render shades every layer into its own buffer, sized the way the layer's
// resize mode sizes it on screen, and composites the buffers stretched over
// a Width x Height image.
func Render(layers []Layer, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid poster size %dx%d", opts.Width, opts.Height)
	}
	ss := max(opts.Supersample, 1)
	vp := graphics.Viewport{Width: opts.Width * ss, Height: opts.Height * ss, PixelRatio: 1}

	dst := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	bg := opts.Background
	if bg == nil {
		bg = color.Black
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for _, l := range layers {
		if l.Config.Shade == nil {
			return nil, fmt.Errorf("layer %q has no CPU shade", l.Config.Name)
		}
		bw, bh := l.Config.Resize.BufferSize(vp, l.Config.Width, l.Config.Height)
		buf := Shade(l.Config.Shade, bw, bh, opts.Time)

		scaled := image.NewRGBA(dst.Bounds())
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), buf, buf.Bounds(), draw.Src, nil)

		alpha := uint8(min(max(l.Opacity, 0), 1) * 255)
		draw.DrawMask(dst, dst.Bounds(), scaled, image.Point{}, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
	}
	return dst, nil
}

// Shade evaluates fn for every pixel center of a width x height buffer at
// time t. fn receives bottom-up coordinates; the image is top-down.
func Shade(fn shader.ShadeFunc, width, height int, t float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	w, h := float64(width), float64(height)

	rows := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				fy := float64(height-1-y) + 0.5
				for x := 0; x < width; x++ {
					img.SetRGBA(x, y, fn(float64(x)+0.5, fy, t, w, h))
				}
			}
		}()
	}
	for y := 0; y < height; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()
	return img
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create poster file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode poster: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
