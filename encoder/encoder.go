// Package encoder pipes raw RGBA frames read back from the compositor into
// an ffmpeg process.
package encoder

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrClosed is returned when writing to an encoder after Close.
var ErrClosed = errors.New("encoder closed")

type Config struct {
	Width      int
	Height     int
	FPS        int
	Output     string
	Codec      string // "h264" or "hevc"
	Bitrate    string // ffmpeg b:v value, empty for the codec default
	FFmpegPath string
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid frame rate %d", c.FPS)
	}
	if c.Output == "" {
		return errors.New("no output file")
	}
	switch c.Codec {
	case "", "h264", "hevc":
	default:
		return fmt.Errorf("unsupported codec %q", c.Codec)
	}
	return nil
}

// FrameSize is the byte length of one RGBA frame.
func (c Config) FrameSize() int {
	return c.Width * c.Height * 4
}

// Args builds the ffmpeg input and output arguments for goos.
// Frames arrive bottom-up from glReadPixels, so the output is flipped.
func Args(cfg Config, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"framerate": cfg.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}

	switch goos {
	case "darwin":
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
	default:
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
	}

	if cfg.Bitrate != "" {
		outputArgs["b:v"] = cfg.Bitrate
	}
	if cfg.Codec == "hevc" && strings.HasSuffix(cfg.Output, ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Encoder feeds frames to a running ffmpeg process.
type Encoder struct {
	frameSize int
	pipe      *io.PipeWriter
	errc      chan error

	mu     sync.Mutex
	closed bool
	frames int
}

// New starts ffmpeg. Frames must be written in presentation order.
func New(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	inputArgs, outputArgs := Args(cfg, runtime.GOOS)
	log.Printf("Encoding %dx%d@%d to %s with %v", cfg.Width, cfg.Height, cfg.FPS, cfg.Output, outputArgs["c:v"])

	return start(cfg.FrameSize(), func(r io.Reader) error {
		ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
			Output(cfg.Output, outputArgs).
			OverWriteOutput().WithInput(r).ErrorToStdOut()

		if cfg.FFmpegPath != "" {
			ffmpegCmd = ffmpegCmd.SetFfmpegPath(cfg.FFmpegPath)
		}
		return ffmpegCmd.Run()
	}), nil
}

// start runs consume on the read end of a pipe. When consume returns the
// read end is closed so pending writes fail instead of blocking.
func start(frameSize int, consume func(io.Reader) error) *Encoder {
	pipeReader, pipeWriter := io.Pipe()
	e := &Encoder{
		frameSize: frameSize,
		pipe:      pipeWriter,
		errc:      make(chan error, 1),
	}
	go func() {
		err := consume(pipeReader)
		if err != nil {
			pipeReader.CloseWithError(fmt.Errorf("ffmpeg exited: %w", err))
		} else {
			pipeReader.CloseWithError(errors.New("ffmpeg exited"))
		}
		e.errc <- err
	}()
	return e
}

// WriteFrame writes one RGBA frame. The slice must be exactly one frame long.
func (e *Encoder) WriteFrame(pixels []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if len(pixels) != e.frameSize {
		return fmt.Errorf("frame is %d bytes, want %d", len(pixels), e.frameSize)
	}
	if _, err := e.pipe.Write(pixels); err != nil {
		return fmt.Errorf("failed to write frame %d to ffmpeg: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// Frames reports how many frames were written.
func (e *Encoder) Frames() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// Close signals end of stream and waits for ffmpeg to finish.
func (e *Encoder) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.closed = true
	e.mu.Unlock()

	e.pipe.Close()
	if err := <-e.errc; err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	return nil
}
