// Package audio plays the score sound.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const chimeSampleRate = beep.SampleRate(44100)

// ErrUnsupportedFormat is returned for files that are neither mp3 nor wav.
var ErrUnsupportedFormat = errors.New("unsupported sound format")

// Config configures the score sound.
type Config struct {
	Enabled bool
	// Path is an mp3 or wav file. Empty selects the built-in chime.
	Path string
	// Volume is a linear gain between 0 and 1.
	Volume float64
	// MaxVoices caps overlapping playbacks; extra Play calls are dropped.
	MaxVoices int
}

// DefaultVoices lets a second strike sound over the tail of the first: the
// chime outlasts the default dwell.
const DefaultVoices = 2

// DefaultConfig returns an enabled chime at 20% volume.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Volume:    0.2,
		MaxVoices: DefaultVoices,
	}
}

// output is where mixed audio goes. The speaker in production.
type output interface {
	Init(format beep.Format, mixer *beep.Mixer) error
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(format beep.Format, mixer *beep.Mixer) error {
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(mixer)
	return nil
}

func (speakerOutput) Lock()   { speaker.Lock() }
func (speakerOutput) Unlock() { speaker.Unlock() }

// SoundManager holds one decoded sound and plays it on demand.
type SoundManager struct {
	mu          sync.Mutex
	cfg         Config
	out         output
	buffer      *beep.Buffer
	mixer       *beep.Mixer
	initialized bool
}

// NewSoundManager creates a manager writing to the system speaker.
func NewSoundManager(cfg Config) *SoundManager {
	return newSoundManager(cfg, speakerOutput{})
}

func newSoundManager(cfg Config, out output) *SoundManager {
	if cfg.MaxVoices <= 0 {
		cfg.MaxVoices = 1
	}
	cfg.Volume = clampVolume(cfg.Volume)
	return &SoundManager{
		cfg:   cfg,
		out:   out,
		mixer: &beep.Mixer{},
	}
}

// Initialize decodes the sound once and opens the audio device. It is a
// no-op when audio is disabled.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	buf, err := loadBuffer(sm.cfg.Path)
	if err != nil {
		return err
	}

	if err := sm.out.Init(buf.Format(), sm.mixer); err != nil {
		return fmt.Errorf("init audio device: %w", err)
	}

	sm.buffer = buf
	sm.initialized = true
	return nil
}

// SetVolume changes the gain of subsequent plays.
func (sm *SoundManager) SetVolume(v float64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.cfg.Volume = clampVolume(v)
}

// Volume returns the current gain.
func (sm *SoundManager) Volume() float64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.cfg.Volume
}

// Play starts the sound without waiting for it and reports whether a voice
// was free.
func (sm *SoundManager) Play() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return false
	}

	sm.out.Lock()
	defer sm.out.Unlock()

	if sm.mixer.Len() >= sm.cfg.MaxVoices {
		return false
	}

	sm.mixer.Add(&effects.Volume{
		Streamer: sm.buffer.Streamer(0, sm.buffer.Len()),
		Base:     2,
		Volume:   math.Log2(max(sm.cfg.Volume, 1e-9)),
		Silent:   sm.cfg.Volume == 0,
	})
	return true
}

// Cleanup stops all sounds.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	sm.out.Lock()
	sm.mixer.Clear()
	sm.out.Unlock()

	// The speaker stays initialized for the process; only queued sounds go.
	sm.initialized = false
}

func loadBuffer(path string) (*beep.Buffer, error) {
	if path == "" {
		format := beep.Format{SampleRate: chimeSampleRate, NumChannels: 2, Precision: 2}
		buf := beep.NewBuffer(format)
		buf.Append(coinChime(chimeSampleRate))
		return buf, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode sound %s: %w", path, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode sound %s: %w", path, err)
	}
	return buf, nil
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
