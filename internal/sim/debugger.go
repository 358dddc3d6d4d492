package sim

import (
	"github.com/rs/zerolog"
)

const debugNudge = 0.02

// debugPosition is where the airplane is parked while the debugger is on.
var debugPosition = Vec3{0, 10, 0}

// DebugInfo describes the frozen airplane for overlays.
type DebugInfo struct {
	Active     bool
	RollDeg    float64
	YawDeg     float64
	PitchDeg   float64
	Position   Vec3
	ForwardDir Vec3
}

// Debugger freezes the flight model and lets the orientation be stepped by
// hand to inspect the axis conventions.
type Debugger struct {
	airplane *Airplane
	active   bool
	log      zerolog.Logger
}

func NewDebugger(a *Airplane, log zerolog.Logger) *Debugger {
	return &Debugger{airplane: a, log: log}
}

func (d *Debugger) Active() bool { return d.active }

// Toggle switches debug mode and returns the new state.
func (d *Debugger) Toggle() bool {
	d.active = !d.active
	if d.active {
		d.enter()
	} else {
		d.exit()
	}
	d.log.Info().Bool("debug", d.active).Msg("debug mode toggled")
	return d.active
}

func (d *Debugger) enter() {
	d.ResetPose()
	d.airplane.Physics.DebugMode = true
	d.airplane.DisableControls()
}

func (d *Debugger) exit() {
	d.airplane.Physics.DebugMode = false
	d.airplane.EnableControls()
}

// ResetPose parks the airplane level at the debug position with all motion
// and controls zeroed. It does not go through Physics.Reset, so no reset
// event is recorded.
func (d *Debugger) ResetPose() {
	p := d.airplane.Physics
	p.Position = debugPosition
	p.Rotation = Vec3{}
	p.Velocity = Vec3{}
	p.Acceleration = Vec3{}
	p.AngularVelocity = Vec3{}
	p.Controls = ControlAxes{}
	d.airplane.updateBounds()
}

// HandleKey applies a key-down while debugging. It reports whether the key
// was consumed.
func (d *Debugger) HandleKey(code KeyCode) bool {
	if !d.active {
		return false
	}
	r := &d.airplane.Physics.Rotation
	switch code {
	case KeyArrowLeft:
		r.X -= debugNudge
	case KeyArrowRight:
		r.X += debugNudge
	case KeyArrowUp:
		r.Z += debugNudge
	case KeyArrowDown:
		r.Z -= debugNudge
	case KeyQ:
		r.Y += debugNudge
	case KeyE:
		r.Y -= debugNudge
	case KeyR:
		d.ResetPose()
	default:
		return false
	}
	return true
}

func (d *Debugger) Info() DebugInfo {
	p := d.airplane.Physics
	return DebugInfo{
		Active:     d.active,
		RollDeg:    RadToDeg(p.Rotation.X),
		YawDeg:     RadToDeg(p.Rotation.Y),
		PitchDeg:   RadToDeg(p.Rotation.Z),
		Position:   p.Position,
		ForwardDir: d.airplane.ForwardVector(),
	}
}
