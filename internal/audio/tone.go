package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// square generates a square wave with a linear release so notes do not click.
type square struct {
	freq     float64
	phase    float64
	position int
	duration int
	release  int
	rate     beep.SampleRate
}

func newSquare(freq float64, duration, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &square{
		freq:     freq,
		duration: rate.N(duration),
		release:  rate.N(release),
		rate:     rate,
	}
}

func (s *square) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if s.position >= s.duration {
			return i, i > 0
		}

		val := 1.0
		if s.phase >= 0.5 {
			val = -1.0
		}
		if left := s.duration - s.position; left < s.release {
			val *= float64(left) / float64(s.release)
		}

		samples[i][0] = val
		samples[i][1] = val

		s.phase += s.freq / float64(s.rate)
		s.phase -= math.Floor(s.phase)
		s.position++
	}
	return len(samples), true
}

func (s *square) Err() error { return nil }

// coinChime is a two-note B5 to E6 chime.
func coinChime(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		newSquare(987.77, 80*time.Millisecond, 20*time.Millisecond, rate),
		newSquare(1318.51, 220*time.Millisecond, 150*time.Millisecond, rate),
	)
}
