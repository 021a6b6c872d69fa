package shader

import (
	"image/color"
	"math"
)

func fract(x float64) float64 {
	return x - math.Floor(x)
}

func step(edge, x float64) float64 {
	if x < edge {
		return 0
	}
	return 1
}

// Random is the hash both glitch programs use for their noise fields.
func Random(x, y float64) float64 {
	return fract(math.Sin(x*12.9898+y*78.233) * 43758.5453123)
}

func unit(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}

func gray(v float64) color.RGBA {
	c := unit(v)
	return color.RGBA{R: c, G: c, B: c, A: 255}
}

func colorFieldShade(x, y, t, _, _ float64) color.RGBA {
	nx := x / 600
	ny := y / 400
	r := 0.5 + 0.5*math.Sin(t+nx*10)
	g := 0.5 + 0.5*math.Sin(t+ny*10+2)
	b := 0.5 + 0.5*math.Sin(t+nx*10+ny*10+4)
	return color.RGBA{R: unit(r), G: unit(g), B: unit(b), A: 255}
}

func glitchAShade(x, y, t, width, height float64) color.RGBA {
	u, v := x/width, y/height
	yLines := step(0.95, fract(v*40))
	xLines := step(0.98, fract(u*80))
	glitch := step(0.8, Random(t*2, v*100+t*10))
	flicker := step(0.7, Random(t*10, u*200))
	return gray(math.Max(math.Max(yLines, xLines), glitch*flicker))
}

func glitchBShade(x, y, t, width, height float64) color.RGBA {
	u, v := x/width, y/height
	yLines := step(0.92, fract(v*30+t*0.5))
	xLines := step(0.97, fract(u*60))
	glitch := step(0.85, Random(math.Floor(t*8), math.Floor(v*60)))
	flicker := step(0.6, Random(t*6, u*150))
	return gray(math.Max(math.Max(yLines, xLines), glitch*flicker))
}
