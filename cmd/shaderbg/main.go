package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/breakingrobots/shaderbg/animation"
	"github.com/breakingrobots/shaderbg/encoder"
	"github.com/breakingrobots/shaderbg/glcore"
	"github.com/breakingrobots/shaderbg/glfwcontext"
	"github.com/breakingrobots/shaderbg/graphics"
	"github.com/breakingrobots/shaderbg/headless"
	"github.com/breakingrobots/shaderbg/options"
	"github.com/breakingrobots/shaderbg/page"
	"github.com/breakingrobots/shaderbg/poster"
	"github.com/breakingrobots/shaderbg/renderer"
	"github.com/breakingrobots/shaderbg/translator"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

type layer struct {
	config  renderer.Config
	opacity float32
}

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := &options.Options{
		Help:        flag.Bool("help", false, "Show help message"),
		Mode:        flag.String("mode", options.ModeWindow, "Run mode: window, record or poster"),
		Layers:      flag.String("layers", "glitch-a", "Comma separated layers, bottom first, each optionally name:opacity ("+strings.Join(renderer.Presets(), ", ")+")"),
		Fragment:    flag.String("fragment", "", "Path to a GLSL ES 3.00 fragment program mounted above the layers"),
		Width:       flag.Int("width", 1280, "Width of the window or output"),
		Height:      flag.Int("height", 720, "Height of the window or output"),
		Fullscreen:  flag.Bool("fullscreen", false, "Open the window fullscreen on the primary monitor"),
		Headless:    flag.Bool("headless", false, "Record through an EGL pbuffer without a display (Linux only)"),
		Title:       flag.String("title", "shaderbg", "Window title"),
		Background:  flag.String("background", "#000000", "Colour shown where no layer covers the window"),
		VSync:       flag.Bool("vsync", true, "Synchronise buffer swaps with the display"),
		Duration:    flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:         flag.Int("fps", 60, "Frames per second for recording"),
		OutputFile:  flag.String("output", "", "Output file (default output.mp4 when recording, poster.png for posters)"),
		Codec:       flag.String("codec", "h264", "Video codec for recording: h264 or hevc"),
		FFMPEGPath:  flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		PosterTime:  flag.Float64("time", 0, "Animation time in seconds for the poster frame"),
		Supersample: flag.Int("supersample", 2, "Poster supersampling factor"),
	}
	debug := flag.Bool("debug", false, "Log shader host details")

	flag.Parse()

	if *opts.Help {
		fmt.Println("Animated shader backgrounds")
		flag.PrintDefaults()
		return
	}

	if *debug {
		renderer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *opts.OutputFile == "" {
		switch *opts.Mode {
		case options.ModeRecord:
			*opts.OutputFile = "output.mp4"
		case options.ModePoster:
			*opts.OutputFile = "poster.png"
		}
	}

	known := func(name string) bool {
		_, ok := renderer.Preset(name)
		return ok
	}
	if err := opts.Validate(known); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	layers, err := loadLayers(opts)
	if err != nil {
		log.Fatalf("Failed to load layers: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *opts.Mode == options.ModePoster {
		err = runPoster(opts, layers)
	} else {
		err = runGL(ctx, opts, layers)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func loadLayers(opts *options.Options) ([]layer, error) {
	parsed, err := options.ParseLayers(*opts.Layers)
	if err != nil {
		return nil, err
	}
	var layers []layer
	for _, p := range parsed {
		cfg, _ := renderer.Preset(p.Name)
		layers = append(layers, layer{config: cfg, opacity: p.Opacity})
	}
	if *opts.Fragment != "" {
		src, err := os.ReadFile(*opts.Fragment)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(*opts.Fragment), filepath.Ext(*opts.Fragment))
		layers = append(layers, layer{config: renderer.Custom(name, string(src)), opacity: 1})
	}
	return layers, nil
}

// window is the drawing context the page renders behind.
type window interface {
	graphics.Context
	IsGLES() bool
}

// openWindow creates the drawing context for the mode and makes it current.
// The returned function releases it.
func openWindow(opts *options.Options, record bool) (window, func(), error) {
	if *opts.Headless {
		h, err := headless.New(*opts.Width, *opts.Height)
		if err != nil {
			return nil, nil, err
		}
		return h, h.Shutdown, nil
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	// If recording, the window will be hidden
	w, err := glfwcontext.New(opts, !record)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, fmt.Errorf("failed to create window: %w", err)
	}
	w.MakeCurrent()
	if !record {
		w.RegisterKeyCallback(glfw.KeyF, w.ToggleFullscreen)
	}
	return w, func() {
		w.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

func runGL(ctx context.Context, opts *options.Options, layers []layer) error {
	record := *opts.Mode == options.ModeRecord

	win, release, err := openWindow(opts, record)
	if err != nil {
		return err
	}
	defer release()

	device, err := glcore.NewDevice(win.IsGLES())
	if err != nil {
		return err
	}
	defer device.Destroy()
	bg, _ := options.ParseColor(*opts.Background)
	device.SetClearColor(bg[0], bg[1], bg[2])
	log.Printf("OpenGL %s", glcore.Version())

	hostOpts := []renderer.Option{renderer.WithGLES(win.IsGLES())}
	if win.IsGLES() {
		tr, err := translator.New(ctx, translator.ESSL)
		if err != nil {
			return err
		}
		hostOpts = append(hostOpts, renderer.WithTranslator(tr))
	}

	var clock func() time.Duration
	if record {
		clock = (&animation.ManualClock{}).Now
	}
	pg := page.New(win, device, clock)
	defer pg.Close()

	for _, l := range layers {
		if _, err := pg.Mount(l.config, l.opacity, hostOpts...); err != nil {
			log.Printf("Layer %s not mounted: %v", l.config.Name, err)
		}
	}
	if len(pg.Layers()) == 0 {
		return errors.New("no layer could be mounted")
	}

	if !record {
		log.Println("Starting render loop...")
		if err := pg.Run(ctx); err != nil {
			return err
		}
		for _, l := range pg.Layers() {
			log.Printf("Layer %s drew %d frames", l.Host().Name(), l.Host().Frames())
		}
		return nil
	}

	width, height := win.GetFramebufferSize()
	enc, err := encoder.New(encoder.Config{
		Width:      width,
		Height:     height,
		FPS:        *opts.FPS,
		Output:     *opts.OutputFile,
		Codec:      *opts.Codec,
		Bitrate:    "25M",
		FFmpegPath: *opts.FFMPEGPath,
	})
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	frames := int(math.Round(*opts.Duration * float64(*opts.FPS)))
	log.Printf("Recording %d frames...", frames)
	n, err := pg.Record(ctx, enc, frames, *opts.FPS)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("recording stopped after %d frames: %w", n, err)
	}
	log.Printf("Successfully rendered %d frames to %s", n, *opts.OutputFile)
	return nil
}

func runPoster(opts *options.Options, layers []layer) error {
	stack := make([]poster.Layer, 0, len(layers))
	for _, l := range layers {
		stack = append(stack, poster.Layer{Config: l.config, Opacity: l.opacity})
	}
	bg, _ := options.ParseColor(*opts.Background)
	background := color.RGBA{R: uint8(bg[0]*255 + 0.5), G: uint8(bg[1]*255 + 0.5), B: uint8(bg[2]*255 + 0.5), A: 255}
	img, err := poster.Render(stack, poster.Options{
		Width:       *opts.Width,
		Height:      *opts.Height,
		Time:        *opts.PosterTime,
		Supersample: *opts.Supersample,
		Background:  background,
	})
	if err != nil {
		return err
	}
	if err := poster.WritePNG(*opts.OutputFile, img); err != nil {
		return err
	}
	log.Printf("Wrote poster to %s", *opts.OutputFile)
	return nil
}
