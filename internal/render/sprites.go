package render

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ErrSprite is returned when a sprite file is missing or has no alpha channel.
var ErrSprite = errors.New("invalid sprite")

// Sprites holds the normal and struck target images and caches scaled
// copies, since the scale only changes when the score does.
type Sprites struct {
	normal gocv.Mat
	hit    gocv.Mat

	mu    sync.Mutex
	cache map[spriteKey]gocv.Mat
}

type spriteKey struct {
	hit   bool
	scale float64
}

// LoadSprites reads both target images with their alpha channels.
func LoadSprites(normalPath, hitPath string) (*Sprites, error) {
	normal, err := loadSprite(normalPath)
	if err != nil {
		return nil, err
	}
	hit, err := loadSprite(hitPath)
	if err != nil {
		normal.Close()
		return nil, err
	}
	return NewSprites(normal, hit), nil
}

// NewSprites takes ownership of two already decoded BGRA images.
func NewSprites(normal, hit gocv.Mat) *Sprites {
	return &Sprites{
		normal: normal,
		hit:    hit,
		cache:  make(map[spriteKey]gocv.Mat),
	}
}

func loadSprite(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("%w: cannot read %s", ErrSprite, path)
	}
	if img.Channels() != 4 {
		ch := img.Channels()
		img.Close()
		return gocv.Mat{}, fmt.Errorf("%w: %s has %d channels, want 4", ErrSprite, path, ch)
	}
	return img, nil
}

// Scaled returns the sprite resized by scale. The returned Mat is owned by
// Sprites and stays valid until Close.
func (s *Sprites) Scaled(hit bool, scale float64) gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := spriteKey{hit: hit, scale: scale}
	if m, ok := s.cache[key]; ok {
		return m
	}

	src := s.normal
	if hit {
		src = s.hit
	}
	size := image.Pt(max(1, int(float64(src.Cols())*scale)), max(1, int(float64(src.Rows())*scale)))

	dst := gocv.NewMat()
	gocv.Resize(src, &dst, size, 0, 0, gocv.InterpolationArea)
	s.cache[key] = dst
	return dst
}

// Close releases the images and every cached copy.
func (s *Sprites) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, m := range s.cache {
		m.Close()
		delete(s.cache, k)
	}
	s.normal.Close()
	s.hit.Close()
	return nil
}
