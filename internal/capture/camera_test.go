package capture

import (
	"errors"
	"testing"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantFPS int
	}{
		{
			name:    "zero options use defaults",
			opts:    Options{},
			wantFPS: DefaultFPS,
		},
		{
			name:    "device 1",
			opts:    Options{Source: "1"},
			wantFPS: DefaultFPS,
		},
		{
			name:    "explicit fps",
			opts:    Options{Source: "0", FPS: 15},
			wantFPS: 15,
		},
		{
			name:    "negative fps falls back",
			opts:    Options{FPS: -3},
			wantFPS: DefaultFPS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.opts)

			if cam == nil {
				t.Fatal("NewCamera returned nil")
			}

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}

			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestNewCamera_FillsResolution(t *testing.T) {
	cam := NewCamera(Options{Source: "video.mp4"}).(*cameraImpl)

	if cam.opts.Width != 1280 || cam.opts.Height != 720 {
		t.Errorf("resolution = %dx%d, want 1280x720", cam.opts.Width, cam.opts.Height)
	}
	if cam.opts.Source != "video.mp4" {
		t.Errorf("Source = %q, want video.mp4", cam.opts.Source)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 10", fps: 10, wantFPS: 10},
		{name: "set to 60", fps: 60, wantFPS: 60},
		{name: "set to 0 should keep previous", fps: 0, wantFPS: 60},
		{name: "set to negative should keep previous", fps: -5, wantFPS: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultOptions())

	err := cam.Open()
	if err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Cols() != DefaultWidth || mat.Rows() != DefaultHeight {
			t.Logf("Frame dimensions: %dx%d (expected 1280x720, but camera may not support)", mat.Cols(), mat.Rows())
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestIsFileSource(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{source: "0", want: false},
		{source: "2", want: false},
		{source: "clip.mp4", want: true},
		{source: "/tmp/hands.avi", want: true},
		{source: "rtsp://cam.local/stream", want: true},
	}

	for _, tt := range tests {
		if got := isFileSource(tt.source); got != tt.want {
			t.Errorf("isFileSource(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestReadError(t *testing.T) {
	tests := []struct {
		name  string
		file  bool
		pos   float64
		count float64
		want  error
	}{
		{name: "file at end", file: true, pos: 120, count: 120, want: ErrEndOfStream},
		{name: "file past reported count", file: true, pos: 121, count: 120, want: ErrEndOfStream},
		{name: "file mid-stream", file: true, pos: 40, count: 120, want: ErrFrame},
		{name: "stream without frame count", file: true, pos: 40, count: 0, want: ErrFrame},
		{name: "stream with negative count", file: true, pos: 40, count: -1, want: ErrFrame},
		{name: "device", file: false, pos: 0, count: 0, want: ErrFrame},
		{name: "device reporting a count", file: false, pos: 10, count: 10, want: ErrFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := readError(tt.file, tt.pos, tt.count)
			if !errors.Is(err, tt.want) {
				t.Errorf("readError() = %v, want %v", err, tt.want)
			}
		})
	}
}
