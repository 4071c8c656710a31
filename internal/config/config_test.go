package config

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/duckpunch/internal/calibration"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Missing(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_Apply(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
[camera]
source = "clip.mp4"
mirror = true

[assets]
target = "/tmp/duck.png"

[audio]
volume = 0.5
enabled = false

[game]
duration = "45s"
dwell = "350ms"
proximity-cm = 32.5
field = [50, 60, 700, 400]

[[calibration.samples]]
raw = 240
cm = 20
[[calibration.samples]]
raw = 188
cm = 25
[[calibration.samples]]
raw = 161
cm = 30
`)

	fc, err := LoadConfig(path)
	require.NoError(t, err)

	s := Defaults()
	fc.Apply(&s)

	assert.Equal(t, "clip.mp4", s.CameraSource)
	assert.True(t, s.Mirror)
	assert.Equal(t, 1280, s.Width, "unset values keep defaults")
	assert.Equal(t, "/tmp/duck.png", s.TargetSprite)
	assert.Equal(t, Defaults().HitSprite, s.HitSprite)
	assert.Equal(t, 0.5, s.Volume)
	assert.False(t, s.AudioEnabled)
	assert.Equal(t, 45*time.Second, s.Duration)
	assert.Equal(t, 350*time.Millisecond, s.Dwell)
	assert.Equal(t, 32.5, s.ProximityCM)
	assert.Equal(t, image.Rect(50, 60, 700, 400), s.Field)
	assert.Equal(t, calibration.Table{{Raw: 240, CM: 20}, {Raw: 188, CM: 25}, {Raw: 161, CM: 30}}, s.Calibration)
	assert.NoError(t, s.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "syntax", body: "[camera\nsource = 1"},
		{name: "bad duration", body: "[game]\nduration = \"soon\""},
		{name: "unknown key", body: "[camera]\nzoom = 2"},
		{name: "wrong type", body: "[camera]\nwidth = \"wide\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestDefaults_Valid(t *testing.T) {
	t.Parallel()

	s := Defaults()
	require.NoError(t, s.Validate())
	assert.Len(t, s.Calibration, 17)
	assert.Equal(t, 20*time.Second, s.Duration)
	assert.Equal(t, 0.2, s.Volume)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "resolution", mutate: func(s *Settings) { s.Width = 0 }, wantErr: "resolution"},
		{name: "fps", mutate: func(s *Settings) { s.FPS = -1 }, wantErr: "fps"},
		{name: "volume", mutate: func(s *Settings) { s.Volume = 1.5 }, wantErr: "volume"},
		{name: "confidence", mutate: func(s *Settings) { s.MinConfidence = -0.1 }, wantErr: "min-confidence"},
		{name: "duration", mutate: func(s *Settings) { s.Duration = 0 }, wantErr: "duration"},
		{name: "dwell", mutate: func(s *Settings) { s.Dwell = -time.Second }, wantErr: "dwell"},
		{name: "proximity", mutate: func(s *Settings) { s.ProximityCM = 0 }, wantErr: "proximity-cm"},
		{name: "empty field", mutate: func(s *Settings) { s.Field = image.Rect(10, 10, 10, 50) }, wantErr: "empty"},
		{name: "field outside frame", mutate: func(s *Settings) { s.Field = image.Rect(100, 100, 2000, 600) }, wantErr: "exceeds"},
		{name: "sprites", mutate: func(s *Settings) { s.HitSprite = "" }, wantErr: "sprites"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTemplate_Decodes(t *testing.T) {
	t.Parallel()

	// Uncommenting every key must still give a valid file.
	var lines []string
	for _, line := range strings.Split(Template(), "\n") {
		trimmed := strings.TrimPrefix(line, "# ")
		if strings.Contains(trimmed, " = ") || strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "raw") || strings.HasPrefix(trimmed, "cm") {
			lines = append(lines, trimmed)
		}
	}

	var fc FileConfig
	_, err := toml.Decode(strings.Join(lines, "\n"), &fc)
	require.NoError(t, err)
	require.NotNil(t, fc.Game.Duration)
	assert.Equal(t, 20*time.Second, fc.Game.Duration.Duration)
	require.NotNil(t, fc.Camera.Width)
	assert.Equal(t, 1280, *fc.Camera.Width)
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, "/cfg/duckpunch/config.toml", DefaultConfigPath())
	assert.Equal(t, "/data/duckpunch/assets", DefaultAssetDir())
}
