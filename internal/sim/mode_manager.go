package sim

import (
	"sort"

	"github.com/rs/zerolog"
)

// CameraMode is one camera placement strategy.
type CameraMode interface {
	Name() string
	Activate()
	Deactivate()
	Update(snap FlightSnapshot, dt float64)
}

// ModeManager keeps a registry of named modes and the one in use.
type ModeManager struct {
	modes   map[string]CameraMode
	current CameraMode
	log     zerolog.Logger
}

func NewModeManager(log zerolog.Logger) *ModeManager {
	return &ModeManager{
		modes: make(map[string]CameraMode),
		log:   log,
	}
}

func (m *ModeManager) Register(mode CameraMode) {
	m.modes[mode.Name()] = mode
}

// Switch makes name the current mode. Unknown names are rejected and leave
// the current mode untouched.
func (m *ModeManager) Switch(name string) bool {
	next, ok := m.modes[name]
	if !ok {
		m.log.Warn().Str("mode", name).Msg("unknown camera mode")
		return false
	}
	if m.current == next {
		return true
	}
	if m.current != nil {
		m.current.Deactivate()
	}
	m.current = next
	next.Activate()
	m.log.Info().Str("mode", name).Msg("camera mode changed")
	return true
}

func (m *ModeManager) Current() CameraMode { return m.current }

func (m *ModeManager) CurrentName() string {
	if m.current == nil {
		return ""
	}
	return m.current.Name()
}

func (m *ModeManager) Names() []string {
	names := make([]string, 0, len(m.modes))
	for name := range m.modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
