// Package config loads the game settings from a TOML file and fills in defaults.
package config

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ayusman/duckpunch/internal/calibration"
)

// FileConfig represents the TOML configuration file. Every field is
// optional; nil means "use the default".
type FileConfig struct {
	Camera      CameraConfig      `toml:"camera"`
	Assets      AssetsConfig      `toml:"assets"`
	Audio       AudioConfig       `toml:"audio"`
	Detector    DetectorConfig    `toml:"detector"`
	Game        GameConfig        `toml:"game"`
	Calibration CalibrationConfig `toml:"calibration"`
}

// CameraConfig maps video source settings.
type CameraConfig struct {
	Source *string `toml:"source"`
	Width  *int    `toml:"width"`
	Height *int    `toml:"height"`
	FPS    *int    `toml:"fps"`
	Mirror *bool   `toml:"mirror"`
}

// AssetsConfig maps sprite paths.
type AssetsConfig struct {
	Target *string `toml:"target"`
	Hit    *string `toml:"hit"`
}

// AudioConfig maps the score sound.
type AudioConfig struct {
	Enabled *bool    `toml:"enabled"`
	Sound   *string  `toml:"sound"`
	Volume  *float64 `toml:"volume"`
}

// DetectorConfig maps hand tracker settings.
type DetectorConfig struct {
	Script        *string  `toml:"script"`
	Python        *string  `toml:"python"`
	MinConfidence *float64 `toml:"min-confidence"`
}

// GameConfig maps game tuning.
type GameConfig struct {
	Duration    *duration `toml:"duration"`
	Dwell       *duration `toml:"dwell"`
	ProximityCM *float64  `toml:"proximity-cm"`
	Field       *[4]int   `toml:"field"`
}

// CalibrationConfig replaces the built-in calibration samples.
type CalibrationConfig struct {
	Samples []calibration.Sample `toml:"samples"`
}

// duration decodes TOML strings such as "20s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Settings is the resolved configuration the game runs with.
type Settings struct {
	CameraSource string
	Width        int
	Height       int
	FPS          int
	Mirror       bool

	TargetSprite string
	HitSprite    string

	AudioEnabled bool
	Sound        string
	Volume       float64

	DetectorScript string
	Python         string
	MinConfidence  float64

	Duration    time.Duration
	Dwell       time.Duration
	ProximityCM float64
	Field       image.Rectangle

	Calibration calibration.Table
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	assets := DefaultAssetDir()
	return Settings{
		CameraSource:  "0",
		Width:         1280,
		Height:        720,
		FPS:           30,
		TargetSprite:  filepath.Join(assets, "duck.png"),
		HitSprite:     filepath.Join(assets, "duck_hit.png"),
		AudioEnabled:  true,
		Volume:        0.2,
		MinConfidence: 0.8,
		Duration:      20 * time.Second,
		Dwell:         200 * time.Millisecond,
		ProximityCM:   40,
		Field:         image.Rect(100, 100, 1100, 600),
		Calibration:   calibration.DefaultTable(),
	}
}

// Apply overlays the values present in the file onto s.
func (fc FileConfig) Apply(s *Settings) {
	setString(&s.CameraSource, fc.Camera.Source)
	setInt(&s.Width, fc.Camera.Width)
	setInt(&s.Height, fc.Camera.Height)
	setInt(&s.FPS, fc.Camera.FPS)
	setBool(&s.Mirror, fc.Camera.Mirror)

	setString(&s.TargetSprite, fc.Assets.Target)
	setString(&s.HitSprite, fc.Assets.Hit)

	setBool(&s.AudioEnabled, fc.Audio.Enabled)
	setString(&s.Sound, fc.Audio.Sound)
	setFloat(&s.Volume, fc.Audio.Volume)

	setString(&s.DetectorScript, fc.Detector.Script)
	setString(&s.Python, fc.Detector.Python)
	setFloat(&s.MinConfidence, fc.Detector.MinConfidence)

	if fc.Game.Duration != nil {
		s.Duration = fc.Game.Duration.Duration
	}
	if fc.Game.Dwell != nil {
		s.Dwell = fc.Game.Dwell.Duration
	}
	setFloat(&s.ProximityCM, fc.Game.ProximityCM)
	if f := fc.Game.Field; f != nil {
		s.Field = image.Rect(f[0], f[1], f[2], f[3])
	}

	if len(fc.Calibration.Samples) > 0 {
		s.Calibration = calibration.Table(fc.Calibration.Samples)
	}
}

// Validate rejects settings the game cannot run with.
func (s Settings) Validate() error {
	var errs []error
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("resolution must be positive, got %dx%d", s.Width, s.Height))
	}
	if s.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", s.FPS))
	}
	if s.Volume < 0 || s.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be within [0,1], got %v", s.Volume))
	}
	if s.MinConfidence < 0 || s.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min-confidence must be within [0,1], got %v", s.MinConfidence))
	}
	if s.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %s", s.Duration))
	}
	if s.Dwell < 0 {
		errs = append(errs, fmt.Errorf("dwell must not be negative, got %s", s.Dwell))
	}
	if s.ProximityCM <= 0 {
		errs = append(errs, fmt.Errorf("proximity-cm must be positive, got %v", s.ProximityCM))
	}
	if s.Field.Empty() {
		errs = append(errs, fmt.Errorf("field %v is empty", s.Field))
	} else if !s.Field.In(image.Rect(0, 0, s.Width+1, s.Height+1)) {
		errs = append(errs, fmt.Errorf("field %v exceeds %dx%d frame", s.Field, s.Width, s.Height))
	}
	if s.TargetSprite == "" || s.HitSprite == "" {
		errs = append(errs, errors.New("both target sprites must be set"))
	}
	return errors.Join(errs...)
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}

// Template is the commented starter file written by the config command.
func Template() string {
	d := Defaults()
	return fmt.Sprintf(`# %[1]s configuration
# Uncomment a value to enable it. CLI flags override config values.

[camera]
# source = %[2]q          # device index or video file
# width = %[3]d
# height = %[4]d
# fps = %[5]d
# mirror = false

[assets]
# target = %[6]q
# hit = %[7]q

[audio]
# enabled = true
# sound = ""              # mp3 or wav; empty plays the built-in chime
# volume = %[8]v

[detector]
# script = ""             # path to hand_service.py
# python = ""
# min-confidence = %[9]v

[game]
# duration = %[10]q
# dwell = %[11]q
# proximity-cm = %[12]v
# field = [100, 100, 1100, 600]   # min x, min y, max x, max y

# Replace the calibration samples (knuckle span in px -> distance in cm).
# [[calibration.samples]]
# raw = 240
# cm = 20
`, AppName, d.CameraSource, d.Width, d.Height, d.FPS, d.TargetSprite, d.HitSprite,
		d.Volume, d.MinConfidence, d.Duration.String(), d.Dwell.String(), d.ProximityCM)
}
