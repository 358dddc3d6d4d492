package sim

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// ControlTarget is what the controller drives. *Physics satisfies it.
type ControlTarget interface {
	SetControls(ControlAxes)
	IsGrounded() bool
	ApplyGroundBrake(factor float64)
	ApplyAirBrake(factor float64)
	Reset(pos *Vec3)
}

type ControllerConfig struct {
	ThrottleStep  float64 `mapstructure:"throttleStep"`
	PitchStep     float64 `mapstructure:"pitchStep"`
	YawStep       float64 `mapstructure:"yawStep"`
	RollStep      float64 `mapstructure:"rollStep"`
	RampUpTime    float64 `mapstructure:"rampUpTime"`
	MaxPitch      float64 `mapstructure:"maxPitch"`
	MaxRoll       float64 `mapstructure:"maxRoll"`
	PitchReturn   float64 `mapstructure:"pitchReturn"`
	YawReturn     float64 `mapstructure:"yawReturn"`
	RollReturn    float64 `mapstructure:"rollReturn"`
	IdleThrottle  float64 `mapstructure:"idleThrottle"`
	BoostFactor   float64 `mapstructure:"boostFactor"`
	GroundBrake   float64 `mapstructure:"groundBrake"`
	AirBrake      float64 `mapstructure:"airBrake"`
	ResetPosition Vec3    `mapstructure:"resetPosition"`
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		ThrottleStep:  0.02,
		PitchStep:     0.04,
		YawStep:       0.03,
		RollStep:      0.05,
		RampUpTime:    1.5,
		MaxPitch:      1.0,
		MaxRoll:       1.2,
		PitchReturn:   0.08,
		YawReturn:     0.03,
		RollReturn:    0.06,
		IdleThrottle:  0.1,
		BoostFactor:   1.2,
		GroundBrake:   0.95,
		AirBrake:      1.5,
		ResetPosition: Vec3{0, 10, 0},
	}
}

// rampTimer tracks how long a ramped axis has been deflected.
type rampTimer struct {
	held float64
}

func (r *rampTimer) advance(dt, rampUp float64) float64 {
	r.held += dt
	if rampUp <= 0 {
		return 1
	}
	return math.Min(1, r.held/rampUp)
}

func (r *rampTimer) progress(rampUp float64) float64 {
	if rampUp <= 0 {
		return 1
	}
	return math.Min(1, r.held/rampUp)
}

func (r *rampTimer) reset() { r.held = 0 }

// ControlStatus is a read-only view of the controller for HUDs.
type ControlStatus struct {
	Active    bool
	Axes      ControlAxes
	PitchRamp float64
	RollRamp  float64
	HeldKeys  []string
}

// Controller turns key state into smoothly changing control axes.
type Controller struct {
	target   ControlTarget
	cfg      ControllerConfig
	bindings map[KeyCode]Action
	keys     map[KeyCode]bool
	axes     ControlAxes
	pitch    rampTimer
	roll     rampTimer
	active   bool
	log      zerolog.Logger
}

func NewController(target ControlTarget, cfg ControllerConfig, log zerolog.Logger) *Controller {
	return &Controller{
		target:   target,
		cfg:      cfg,
		bindings: DefaultBindings,
		keys:     make(map[KeyCode]bool),
		log:      log,
	}
}

func (c *Controller) Activate() {
	c.active = true
	c.log.Debug().Msg("flight controls activated")
}

// Deactivate stops input processing and zeroes axes, timers and held keys.
func (c *Controller) Deactivate() {
	c.active = false
	c.axes = ControlAxes{}
	c.pitch.reset()
	c.roll.reset()
	c.keys = make(map[KeyCode]bool)
	c.log.Debug().Msg("flight controls deactivated")
}

func (c *Controller) Active() bool { return c.active }

func (c *Controller) Axes() ControlAxes { return c.axes }

// SetKeyState records a key edge. A reset key press acts immediately.
func (c *Controller) SetKeyState(code KeyCode, pressed bool) {
	if !c.active {
		return
	}
	c.keys[code] = pressed
	if pressed && c.bindings[code] == ActionReset {
		c.ResetAirplane()
	}
}

func (c *Controller) held(a Action) bool {
	for code, action := range c.bindings {
		if action == a && c.keys[code] {
			return true
		}
	}
	return false
}

// Tick updates throttle, pitch, yaw, roll and brake in that order and pushes
// the result to the target.
func (c *Controller) Tick(dt float64) {
	if !c.active {
		return
	}

	c.updateThrottle()
	c.updatePitch(dt)
	c.updateYaw()
	c.updateRoll(dt)
	c.updateSpecialControls()

	if c.target != nil {
		c.target.SetControls(c.axes)
	}
}

func (c *Controller) updateThrottle() {
	step := c.cfg.ThrottleStep
	switch {
	case c.held(ActionThrottleUp):
		c.axes.Throttle = math.Min(1, c.axes.Throttle+step)
	case c.held(ActionThrottleDown):
		c.axes.Throttle = math.Max(0, c.axes.Throttle-step)
	default:
		c.axes.Throttle = math.Max(c.cfg.IdleThrottle, c.axes.Throttle-step*0.5)
	}

	if c.held(ActionBoost) {
		c.axes.Throttle = math.Min(1, c.axes.Throttle*c.cfg.BoostFactor)
	}
}

func (c *Controller) updatePitch(dt float64) {
	c.axes.Pitch = c.rampAxis(c.axes.Pitch, &c.pitch, dt,
		c.held(ActionPitchDown), c.held(ActionPitchUp),
		c.cfg.MaxPitch, c.cfg.PitchStep, c.cfg.PitchReturn)
}

func (c *Controller) updateRoll(dt float64) {
	c.axes.Roll = c.rampAxis(c.axes.Roll, &c.roll, dt,
		c.held(ActionRollLeft), c.held(ActionRollRight),
		c.cfg.MaxRoll, c.cfg.RollStep, c.cfg.RollReturn)
}

// rampAxis moves value toward the ramped limit while a direction is held
// (negative wins when both are held) and returns it to zero otherwise.
func (c *Controller) rampAxis(value float64, timer *rampTimer, dt float64, negative, positive bool, maxRate, step, returnSpeed float64) float64 {
	if !negative && !positive {
		timer.reset()
		return Clamp(towardZero(value, returnSpeed), -1, 1)
	}

	factor := timer.advance(dt, c.cfg.RampUpTime)
	limit := maxRate * factor
	if negative {
		value = math.Max(-limit, value-step*factor)
	} else {
		value = math.Min(limit, value+step*factor)
	}
	return Clamp(value, -1, 1)
}

func (c *Controller) updateYaw() {
	switch {
	case c.held(ActionYawLeft):
		c.axes.Yaw = math.Min(1, c.axes.Yaw+c.cfg.YawStep)
	case c.held(ActionYawRight):
		c.axes.Yaw = math.Max(-1, c.axes.Yaw-c.cfg.YawStep)
	default:
		c.axes.Yaw = towardZero(c.axes.Yaw, c.cfg.YawReturn)
	}
}

func (c *Controller) updateSpecialControls() {
	if !c.held(ActionBrake) || c.target == nil {
		return
	}
	if c.target.IsGrounded() {
		c.target.ApplyGroundBrake(c.cfg.GroundBrake)
	} else {
		c.target.ApplyAirBrake(c.cfg.AirBrake)
	}
}

// ResetAirplane zeroes axes and timers and asks the target to reset to the
// configured reset position, bypassing smoothing.
func (c *Controller) ResetAirplane() {
	c.axes = ControlAxes{}
	c.pitch.reset()
	c.roll.reset()
	if c.target != nil {
		pos := c.cfg.ResetPosition
		c.target.Reset(&pos)
	}
	c.log.Info().Msg("airplane reset to initial position")
}

func (c *Controller) Status() ControlStatus {
	held := make([]string, 0, len(c.keys))
	for code, down := range c.keys {
		if down {
			held = append(held, code.String())
		}
	}
	sort.Strings(held)
	return ControlStatus{
		Active:    c.active,
		Axes:      c.axes,
		PitchRamp: c.pitch.progress(c.cfg.RampUpTime),
		RollRamp:  c.roll.progress(c.cfg.RampUpTime),
		HeldKeys:  held,
	}
}

func towardZero(v, step float64) float64 {
	if v > 0 {
		return math.Max(0, v-step)
	}
	return math.Min(0, v+step)
}
