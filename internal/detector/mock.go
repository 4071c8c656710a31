package detector

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either a fixed set of
// hands or a scripted sequence consumed one frame at a time.
type MockDetector struct {
	mu       sync.Mutex
	hands    []Hand
	sequence [][]Hand
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetSequence queues per-frame results. Once the queue is drained Detect
// falls back to the hands set with SetHands.
func (m *MockDetector) SetSequence(frames [][]Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next scripted result, the pre-configured hands, or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmLandmarks returns normalized landmarks of an upright open right palm.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.68}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return landmarks
}

// PalmAt builds a pixel-space hand whose knuckle span (index MCP to pinky
// MCP) is span pixels wide and horizontal, centered on center. The box is
// roughly twice the span in each direction around the center.
func PalmAt(center image.Point, span int) Hand {
	h := Hand{Handedness: "Right", Score: 0.95}

	half := span / 2
	knuckleY := center.Y
	h.Points[IndexMCP] = image.Pt(center.X-half, knuckleY)
	h.Points[PinkyMCP] = image.Pt(center.X-half+span, knuckleY)
	h.Points[MiddleMCP] = image.Pt(center.X-half+span/3, knuckleY)
	h.Points[RingMCP] = image.Pt(center.X-half+2*span/3, knuckleY)
	h.Points[Wrist] = image.Pt(center.X, center.Y+span)
	h.Points[ThumbCMC] = image.Pt(center.X-half, center.Y+3*span/4)
	h.Points[ThumbMCP] = image.Pt(center.X-span, center.Y+span/2)
	h.Points[ThumbIP] = image.Pt(center.X-span, center.Y+span/4)
	h.Points[ThumbTip] = image.Pt(center.X-span, center.Y)

	for i, base := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		x := h.Points[base].X
		lift := span / 3
		if i == 3 {
			lift = span / 4
		}
		h.Points[base+1] = image.Pt(x, knuckleY-lift)
		h.Points[base+2] = image.Pt(x, knuckleY-2*lift)
		h.Points[base+3] = image.Pt(x, knuckleY-3*lift)
	}

	h.Box = BoundingBox(h.Points[:])
	return h
}
