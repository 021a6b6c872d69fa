package options

import "testing"

func TestParseLayers(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []Layer
		wantErr bool
	}{
		{"single", "glitch-a", []Layer{{"glitch-a", 1}}, false},
		{"stacked with opacity", "color-field, glitch-b:0.25", []Layer{{"color-field", 1}, {"glitch-b", 0.25}}, false},
		{"empty entries skipped", ",glitch-a,,", []Layer{{"glitch-a", 1}}, false},
		{"empty", "", nil, false},
		{"bad opacity", "glitch-a:half", nil, true},
		{"opacity too large", "glitch-a:1.5", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLayers(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLayers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLayers() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("layer %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func newOptions() *Options {
	help, fullscreen, headless, vsync := false, false, false, true
	mode, layers, fragment, title, background := ModeWindow, "glitch-a", "", "Breaking Robots", "#000000"
	width, height, fps, supersample := 1280, 720, 30, 2
	duration, posterTime := 5.0, 1.0
	output, codec, ffmpegPath := "out.mp4", "h264", ""
	return &Options{
		Help: &help, Mode: &mode, Layers: &layers, Fragment: &fragment,
		Width: &width, Height: &height, Fullscreen: &fullscreen, Headless: &headless, Title: &title, Background: &background,
		VSync: &vsync, Duration: &duration, FPS: &fps, OutputFile: &output,
		Codec: &codec, FFMPEGPath: &ffmpegPath, PosterTime: &posterTime,
		Supersample: &supersample,
	}
}

func TestValidate(t *testing.T) {
	known := func(name string) bool { return name == "glitch-a" || name == "color-field" }
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"unknown mode", func(o *Options) { *o.Mode = "stream" }, true},
		{"unknown layer", func(o *Options) { *o.Layers = "plasma" }, true},
		{"no layers", func(o *Options) { *o.Layers = "" }, true},
		{"fragment only", func(o *Options) { *o.Layers = ""; *o.Fragment = "bg.frag" }, false},
		{"zero width", func(o *Options) { *o.Width = 0 }, true},
		{"record without fps", func(o *Options) { *o.Mode = ModeRecord; *o.FPS = 0 }, true},
		{"record without output", func(o *Options) { *o.Mode = ModeRecord; *o.OutputFile = "" }, true},
		{"record", func(o *Options) { *o.Mode = ModeRecord }, false},
		{"headless record", func(o *Options) { *o.Mode = ModeRecord; *o.Headless = true }, false},
		{"headless window", func(o *Options) { *o.Headless = true }, true},
		{"bad background", func(o *Options) { *o.Background = "navy" }, true},
		{"poster without supersample", func(o *Options) { *o.Mode = ModePoster; *o.Supersample = 0 }, true},
		{"poster negative time", func(o *Options) { *o.Mode = ModePoster; *o.PosterTime = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOptions()
			tt.mutate(o)
			if err := o.Validate(known); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		value   string
		want    [3]float32
		wantErr bool
	}{
		{"#000000", [3]float32{0, 0, 0}, false},
		{"#ff8000", [3]float32{1, 128.0 / 255, 0}, false},
		{"33ccff", [3]float32{0x33 / 255.0, 0xcc / 255.0, 1}, false},
		{"#fff", [3]float32{}, true},
		{"#gg0000", [3]float32{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseColor(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor() = %v, want %v", got, tt.want)
			}
		})
	}
}
