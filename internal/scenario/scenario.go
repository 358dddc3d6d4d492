package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"city-flight-simulator/internal/sim"

	"gopkg.in/yaml.v3"
)

// ErrNoSteps is returned for a script without steps.
var ErrNoSteps = errors.New("scenario has no steps")

const (
	ActionDown = "down"
	ActionUp   = "up"
)

// Script is a timed list of key presses replayed against the simulator.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 20s
//	steps:
//	  - {t: 0s, key: KeyW, action: down}
//	  - {t: 6s, key: ArrowDown, action: down, hold: 1s}
//
// Keys use KeyboardEvent.code names. A step with hold is released
// automatically after that long. Step times must be non-decreasing.
type Script struct {
	Version  int           `yaml:"version"`
	Duration time.Duration `yaml:"duration"`
	Steps    []Step        `yaml:"steps"`
}

type Step struct {
	T      time.Duration `yaml:"t"`
	Key    string        `yaml:"key"`
	Action string        `yaml:"action"`
	Hold   time.Duration `yaml:"hold"`
}

// KeyEvent is a resolved key transition at a point in simulated time.
type KeyEvent struct {
	T       time.Duration
	Key     sim.KeyCode
	Pressed bool
}

// Load reads and unmarshals a YAML script from path.
func Load(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	return Parse(b)
}

// Parse unmarshals a YAML script.
func Parse(b []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Script{}, fmt.Errorf("parse scenario: %w", err)
	}
	return s, nil
}

// Validate checks the version, step ordering, key names and actions.
// Version 0 is treated as 1.
func (s *Script) Validate() error {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Version != 1 {
		return fmt.Errorf("unsupported scenario version %d", s.Version)
	}
	if len(s.Steps) == 0 {
		return ErrNoSteps
	}
	var prev time.Duration
	for i, st := range s.Steps {
		if st.T < 0 {
			return fmt.Errorf("steps[%d]: negative time %s", i, st.T)
		}
		if i > 0 && st.T < prev {
			return fmt.Errorf("steps[%d]: time %s is before previous step %s", i, st.T, prev)
		}
		prev = st.T
		if _, ok := sim.ParseKeyCode(st.Key); !ok {
			return fmt.Errorf("steps[%d]: unknown key %q", i, st.Key)
		}
		switch st.Action {
		case ActionDown:
		case ActionUp:
			if st.Hold != 0 {
				return fmt.Errorf("steps[%d]: hold is only valid with action %q", i, ActionDown)
			}
		default:
			return fmt.Errorf("steps[%d]: unknown action %q", i, st.Action)
		}
		if st.Hold < 0 {
			return fmt.Errorf("steps[%d]: negative hold %s", i, st.Hold)
		}
	}
	return nil
}

// Events expands the script into key transitions ordered by time. Held
// presses produce a synthesized release.
func (s Script) Events() []KeyEvent {
	events := make([]KeyEvent, 0, len(s.Steps))
	for _, st := range s.Steps {
		key, _ := sim.ParseKeyCode(st.Key)
		events = append(events, KeyEvent{T: st.T, Key: key, Pressed: st.Action == ActionDown})
		if st.Action == ActionDown && st.Hold > 0 {
			events = append(events, KeyEvent{T: st.T + st.Hold, Key: key, Pressed: false})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].T < events[j].T })
	return events
}

// Player hands out script events as simulated time advances.
type Player struct {
	events   []KeyEvent
	next     int
	duration time.Duration
}

// NewPlayer validates script and returns a Player positioned at t=0.
func NewPlayer(script Script) (*Player, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	events := script.Events()
	dur := script.Duration
	if dur <= 0 {
		dur = events[len(events)-1].T
	}
	return &Player{events: events, duration: dur}, nil
}

// Duration is the script duration, or the time of the last event when
// the script does not set one.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Due returns the events at or before elapsed that have not been returned
// yet.
func (p *Player) Due(elapsed time.Duration) []KeyEvent {
	start := p.next
	for p.next < len(p.events) && p.events[p.next].T <= elapsed {
		p.next++
	}
	if start == p.next {
		return nil
	}
	return p.events[start:p.next]
}

// Done reports whether every event has been returned.
func (p *Player) Done() bool {
	return p.next >= len(p.events)
}

func (p *Player) Reset() {
	p.next = 0
}

// KeyHandler receives key transitions; *sim.Simulator satisfies it.
type KeyHandler interface {
	HandleKey(code sim.KeyCode, pressed bool)
}

// Feed returns a callback for Simulator.RunHeadless that forwards due
// events to h.
func (p *Player) Feed(h KeyHandler) func(elapsed time.Duration) {
	return func(elapsed time.Duration) {
		for _, ev := range p.Due(elapsed) {
			h.HandleKey(ev.Key, ev.Pressed)
		}
	}
}
