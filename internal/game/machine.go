// Package game implements the target state machine: when a hand close
// enough to the camera covers the target, the target is struck, the score
// goes up after a short dwell, and the target respawns somewhere else,
// smaller, until the session clock runs out.
package game

import (
	"image"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// State is the phase of the game.
type State int

const (
	// Idle waits for the first hand before the countdown starts.
	Idle State = iota
	// Active runs the countdown with an interactive target.
	Active
	// Struck shows the hit sprite for the dwell period; no further hits register.
	Struck
	// Expired is the game-over screen. Only restart and quit apply.
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Struck:
		return "struck"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Event is a discrete transition raised by Step.
type Event int

const (
	// HandAppeared starts the countdown.
	HandAppeared Event = iota + 1
	// TargetStruck is raised once per hit.
	TargetStruck
	// TargetRespawned follows a completed dwell; the score has been incremented.
	TargetRespawned
	// SessionExpired is raised on the frame the countdown reaches zero.
	SessionExpired
)

func (e Event) String() string {
	switch e {
	case HandAppeared:
		return "hand-appeared"
	case TargetStruck:
		return "target-struck"
	case TargetRespawned:
		return "target-respawned"
	case SessionExpired:
		return "session-expired"
	default:
		return "unknown"
	}
}

// Hand is the per-frame hand input: its bounding box in frame pixels and
// its estimated distance from the camera.
type Hand struct {
	Box      image.Rectangle
	Distance float64
}

// Target is the thing to hit.
type Target struct {
	Center   image.Point
	Struck   bool
	StruckAt time.Time
	Scale    float64
}

// Session tracks one play-through between restarts.
type Session struct {
	ID        uuid.UUID
	Score     int
	StartedAt time.Time
	Duration  time.Duration
	Started   bool
}

// Frame is the outcome of one Step, with everything a renderer needs.
type Frame struct {
	State       State
	Session     Session
	Target      Target
	Remaining   time.Duration
	HandPresent bool
	Events      []Event
}

// Has reports whether ev was raised during this frame.
func (f Frame) Has(ev Event) bool {
	for _, e := range f.Events {
		if e == ev {
			return true
		}
	}
	return false
}

// Machine owns the target and session. It is not safe for concurrent use;
// the game loop is its only caller.
type Machine struct {
	rules   Rules
	rng     *rand.Rand
	state   State
	session Session
	target  Target
}

// New creates a machine in the Idle state.
func New(rules Rules, rng *rand.Rand, now time.Time) *Machine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0x9e3779b97f4a7c15))
	}
	m := &Machine{
		rules: rules,
		rng:   rng,
	}
	m.reset(now)
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Session returns a copy of the current session.
func (m *Machine) Session() Session {
	return m.session
}

// Target returns a copy of the current target.
func (m *Machine) Target() Target {
	return m.target
}

// Rules returns the rules the machine was built with.
func (m *Machine) Rules() Rules {
	return m.rules
}

// Step advances the machine by one frame. hand is nil when no hand was
// observed. At most one hit registers per frame.
func (m *Machine) Step(now time.Time, hand *Hand) Frame {
	var events []Event

	switch m.state {
	case Idle:
		if hand != nil {
			m.state = Active
			m.session.Started = true
			m.session.StartedAt = now
			events = append(events, HandAppeared)
			log.Printf("session %s: hand appeared, countdown started", m.session.ID)
		}
		return m.frame(now, hand != nil, events)

	case Expired:
		return m.frame(now, hand != nil, events)
	}

	if now.Sub(m.session.StartedAt) >= m.rules.Duration {
		m.state = Expired
		m.target.Struck = false
		events = append(events, SessionExpired)
		log.Printf("session %s: time up, score %d", m.session.ID, m.session.Score)
		return m.frame(now, hand != nil, events)
	}

	if hand != nil && m.state == Active && m.hits(*hand) {
		m.state = Struck
		m.target.Struck = true
		m.target.StruckAt = now
		events = append(events, TargetStruck)
	}

	if m.state == Struck && now.Sub(m.target.StruckAt) > m.rules.Dwell {
		m.respawn()
		events = append(events, TargetRespawned)
	}

	return m.frame(now, hand != nil, events)
}

// Restart resets score, target and countdown and returns to Idle, so the
// next session starts with the next hand, as at cold start.
func (m *Machine) Restart(now time.Time) {
	m.reset(now)
	log.Printf("session %s: restarted", m.session.ID)
}

// Remaining returns the countdown left at now. Before the first hand it is
// the full duration.
func (m *Machine) Remaining(now time.Time) time.Duration {
	if m.state == Idle {
		return m.rules.Duration
	}
	left := m.rules.Duration - now.Sub(m.session.StartedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (m *Machine) hits(h Hand) bool {
	if h.Distance >= m.rules.ProximityCM {
		return false
	}
	c := m.target.Center
	return h.Box.Min.X < c.X && c.X < h.Box.Max.X &&
		h.Box.Min.Y < c.Y && c.Y < h.Box.Max.Y
}

func (m *Machine) respawn() {
	m.session.Score++
	m.state = Active
	m.target = Target{
		Center: m.randomCenter(),
		Scale:  m.rules.Scale(m.session.Score),
	}
}

func (m *Machine) randomCenter() image.Point {
	f := m.rules.Field
	return image.Pt(
		f.Min.X+m.rng.IntN(f.Dx()+1),
		f.Min.Y+m.rng.IntN(f.Dy()+1),
	)
}

func (m *Machine) reset(now time.Time) {
	m.state = Idle
	m.session = Session{
		ID:        uuid.New(),
		StartedAt: now,
		Duration:  m.rules.Duration,
	}
	m.target = Target{
		Center: m.rules.Home,
		Scale:  m.rules.Scale(0),
	}
}

func (m *Machine) frame(now time.Time, handPresent bool, events []Event) Frame {
	return Frame{
		State:       m.state,
		Session:     m.session,
		Target:      m.target,
		Remaining:   m.Remaining(now),
		HandPresent: handPresent,
		Events:      events,
	}
}
