package sim

import (
	"math"

	"github.com/rs/zerolog"
)

// AngularRates holds per-axis maximum angular velocities in rad/s.
type AngularRates struct {
	Pitch float64 `mapstructure:"pitch"`
	Yaw   float64 `mapstructure:"yaw"`
	Roll  float64 `mapstructure:"roll"`
}

type PhysicsConfig struct {
	Mass            float64      `mapstructure:"mass"`
	MaxThrust       float64      `mapstructure:"maxThrust"`
	Drag            float64      `mapstructure:"drag"`
	Gravity         float64      `mapstructure:"gravity"`
	StallSpeed      float64      `mapstructure:"stallSpeed"`
	TakeoffSpeed    float64      `mapstructure:"takeoffSpeed"`
	MaxSpeed        float64      `mapstructure:"maxSpeed"`
	MaxAngular      AngularRates `mapstructure:"maxAngularVelocity"`
	AirDensity      float64      `mapstructure:"airDensity"`
	WingArea        float64      `mapstructure:"wingArea"`
	LiftCoefficient float64      `mapstructure:"liftCoefficient"`
	AoAGain         float64      `mapstructure:"aoaGain"`
	GroundClearance float64      `mapstructure:"groundClearance"`
	CrashSpeed      float64      `mapstructure:"crashSpeed"`
	GroundFriction  float64      `mapstructure:"groundFriction"`
	InitialPosition Vec3         `mapstructure:"initialPosition"`
}

func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Mass:            1000,
		MaxThrust:       15000,
		Drag:            0.02,
		Gravity:         -9.81,
		StallSpeed:      8,
		TakeoffSpeed:    12,
		MaxSpeed:        80,
		MaxAngular:      AngularRates{Pitch: 1.5, Yaw: 1.0, Roll: 2.0},
		AirDensity:      1.225,
		WingArea:        12,
		LiftCoefficient: 0.6,
		AoAGain:         0.8,
		GroundClearance: 1.0,
		CrashSpeed:      8,
		GroundFriction:  0.8,
		InitialPosition: Vec3{0, 5, 0},
	}
}

const (
	stallAngle       = math.Pi / 4
	stallBand        = math.Pi / 6
	stallLiftFloor   = 0.2
	minLiftFraction  = 0.3
	rollLimit        = math.Pi / 2
	pitchLimit       = math.Pi / 3
	controlRefSpeed  = 10.0
	rollStabilize    = 0.95
	pitchStabilize   = 0.98
	crashDamping     = 0.1
	normalizeEpsilon = 1e-9
)

// ControlAxes are the normalized pilot inputs consumed by Physics.
type ControlAxes struct {
	Throttle float64 // 0..1
	Pitch    float64 // -1..1
	Yaw      float64 // -1..1
	Roll     float64 // -1..1
}

func (c ControlAxes) clamped() ControlAxes {
	return ControlAxes{
		Throttle: Clamp(c.Throttle, 0, 1),
		Pitch:    Clamp(c.Pitch, -1, 1),
		Yaw:      Clamp(c.Yaw, -1, 1),
		Roll:     Clamp(c.Roll, -1, 1),
	}
}

// Physics is the airplane's rigid-body-ish flight model. Rotation is an
// XYZ Euler triple where X is roll, Y is yaw and Z is pitch.
type Physics struct {
	Position        Vec3
	Velocity        Vec3
	Acceleration    Vec3
	Rotation        Vec3
	AngularVelocity Vec3

	Controls  ControlAxes
	OnGround  bool
	DebugMode bool

	// Drag is the effective drag coefficient for the current tick. It is
	// re-derived from the configured base after every Update.
	Drag float64

	// OnCrash fires after a crash transition. Optional.
	OnCrash func()

	cfg          PhysicsConfig
	groundHeight float64
	thrust       float64
	lift         float64
	events       []EventKind
	log          zerolog.Logger
}

func NewPhysics(cfg PhysicsConfig, log zerolog.Logger) *Physics {
	p := &Physics{
		cfg:  cfg,
		Drag: cfg.Drag,
		log:  log,
	}
	p.Position = cfg.InitialPosition
	return p
}

func (p *Physics) Config() PhysicsConfig { return p.cfg }

// Update advances the flight model by dt seconds. It does nothing while
// DebugMode is set or when dt is not positive.
func (p *Physics) Update(dt float64) {
	if p.DebugMode || dt <= 0 {
		return
	}

	p.UpdateThrust()
	p.UpdateAerodynamics()
	p.UpdateForces()
	p.UpdatePosition(dt)
	p.UpdateRotation(dt)
	p.CheckGroundCollision()
	p.ApplyLimits()

	// Numerical safety: guard against NaN/Inf creeping in
	p.Position = sanitizeVec(p.Position)
	p.Velocity = sanitizeVec(p.Velocity)
	p.Rotation = sanitizeVec(p.Rotation)

	p.Drag = p.cfg.Drag
}

func (p *Physics) UpdateThrust() {
	p.thrust = p.Controls.Throttle * p.cfg.MaxThrust
}

func (p *Physics) UpdateAerodynamics() {
	speed := p.Velocity.Length()
	dynamicPressure := 0.5 * p.cfg.AirDensity * speed * speed

	aoa := p.Rotation.Z

	baseLift := p.cfg.LiftCoefficient
	if speed <= p.cfg.StallSpeed && p.cfg.StallSpeed > 0 {
		baseLift = p.cfg.LiftCoefficient * (speed / p.cfg.StallSpeed)
	}
	angleEffect := math.Sin(aoa) * p.cfg.AoAGain

	p.lift = dynamicPressure * p.cfg.WingArea * (baseLift + angleEffect)

	if math.Abs(aoa) > stallAngle {
		factor := 1 - math.Min(1, (math.Abs(aoa)-stallAngle)/stallBand)
		p.lift *= math.Max(stallLiftFloor, factor)
	}

	if speed > p.cfg.StallSpeed {
		p.lift = math.Max(p.lift, p.cfg.Mass*minLiftFraction)
	}
}

func (p *Physics) UpdateForces() {
	thrustForce := Vec3{p.thrust, 0, 0}.ApplyEuler(p.Rotation)
	gravityForce := Vec3{0, p.cfg.Mass * p.cfg.Gravity, 0}
	liftForce := Vec3{0, p.lift, 0}.ApplyEuler(p.Rotation)

	speed := p.Velocity.Length()
	dragForce := p.Velocity.NormalizeSafe(normalizeEpsilon).Mul(-p.Drag * speed * speed)

	var frictionForce Vec3
	if p.OnGround {
		frictionForce = p.Velocity.Mul(-p.cfg.GroundFriction)
		frictionForce.Y = 0
	}

	total := thrustForce.Add(gravityForce).Add(liftForce).Add(dragForce).Add(frictionForce)
	if p.cfg.Mass > 0 {
		p.Acceleration = total.Mul(1.0 / p.cfg.Mass)
	} else {
		p.Acceleration = Vec3{}
	}
}

// UpdatePosition integrates velocity before position (semi-implicit Euler).
func (p *Physics) UpdatePosition(dt float64) {
	p.Velocity = p.Velocity.Add(p.Acceleration.Mul(dt))
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
}

func (p *Physics) UpdateRotation(dt float64) {
	speed := p.Velocity.Length()
	effectiveness := math.Min(speed/controlRefSpeed, 1.0)

	p.AngularVelocity = Vec3{
		X: p.Controls.Roll * p.cfg.MaxAngular.Roll * effectiveness,
		Y: p.Controls.Yaw * p.cfg.MaxAngular.Yaw * effectiveness,
		Z: p.Controls.Pitch * p.cfg.MaxAngular.Pitch * effectiveness,
	}
	p.Rotation = p.Rotation.Add(p.AngularVelocity.Mul(dt))

	if speed > p.cfg.StallSpeed && !p.OnGround {
		p.Rotation.X *= rollStabilize
		p.Rotation.Z *= pitchStabilize
	}
}

func (p *Physics) CheckGroundCollision() {
	floor := p.groundHeight + p.cfg.GroundClearance
	wasOnGround := p.OnGround

	if p.Position.Y <= floor {
		p.Position.Y = floor
		if p.Velocity.Y < 0 {
			if math.Abs(p.Velocity.Y) > p.cfg.CrashSpeed {
				p.Crash()
				return
			}
			p.Velocity.Y = 0
			p.OnGround = true
			if !wasOnGround {
				p.emit(EventLanding)
			}
		}
		return
	}

	p.OnGround = false
	if wasOnGround {
		p.emit(EventTakeoff)
	}
}

func (p *Physics) ApplyLimits() {
	p.Rotation.X = Clamp(p.Rotation.X, -rollLimit, rollLimit)
	p.Rotation.Z = Clamp(p.Rotation.Z, -pitchLimit, pitchLimit)

	if speed := p.Velocity.Length(); speed > p.cfg.MaxSpeed {
		p.Velocity = p.Velocity.Normalize().Mul(p.cfg.MaxSpeed)
	}
}

// Crash damps the airplane to near rest on the ground and notifies OnCrash.
func (p *Physics) Crash() {
	p.Velocity = p.Velocity.Mul(crashDamping)
	p.AngularVelocity = Vec3{}
	p.OnGround = true
	p.log.Warn().
		Float64("x", p.Position.X).
		Float64("y", p.Position.Y).
		Float64("z", p.Position.Z).
		Msg("airplane crashed")
	p.emit(EventCrash)
	if p.OnCrash != nil {
		p.OnCrash()
	}
}

// SetControls stores the axes after clamping them to their ranges.
func (p *Physics) SetControls(c ControlAxes) { p.Controls = c.clamped() }

func (p *Physics) SetThrottle(v float64) { p.Controls.Throttle = Clamp(v, 0, 1) }
func (p *Physics) SetPitch(v float64)    { p.Controls.Pitch = Clamp(v, -1, 1) }
func (p *Physics) SetYaw(v float64)      { p.Controls.Yaw = Clamp(v, -1, 1) }
func (p *Physics) SetRoll(v float64)     { p.Controls.Roll = Clamp(v, -1, 1) }

func (p *Physics) IsGrounded() bool { return p.OnGround }

// ApplyGroundBrake scales velocity once; used by the wheel brake.
func (p *Physics) ApplyGroundBrake(factor float64) {
	p.Velocity = p.Velocity.Mul(factor)
}

// ApplyAirBrake scales drag for the current tick only.
func (p *Physics) ApplyAirBrake(factor float64) {
	p.Drag = p.cfg.Drag * factor
}

func (p *Physics) SetGroundHeight(h float64) { p.groundHeight = h }
func (p *Physics) GroundHeight() float64     { return p.groundHeight }

func (p *Physics) Thrust() float64 { return p.thrust }
func (p *Physics) Lift() float64   { return p.lift }

func (p *Physics) Speed() float64 { return p.Velocity.Length() }

func (p *Physics) Altitude() float64 {
	return math.Max(0, p.Position.Y-p.groundHeight)
}

func (p *Physics) Heading() float64 { return p.Rotation.Y }

func (p *Physics) IsFlying() bool {
	return !p.OnGround && p.Speed() > p.cfg.StallSpeed
}

func (p *Physics) CanTakeoff() bool {
	return p.OnGround && p.Speed() > p.cfg.TakeoffSpeed
}

func (p *Physics) IsStalled() bool {
	return !p.OnGround && (p.Speed() <= p.cfg.StallSpeed || math.Abs(p.Rotation.Z) > stallAngle)
}

// Reset places the airplane at pos (or the configured initial position when
// pos is nil) at rest, level and with neutral controls.
func (p *Physics) Reset(pos *Vec3) {
	if pos != nil {
		p.Position = *pos
	} else {
		p.Position = p.cfg.InitialPosition
	}
	p.Velocity = Vec3{}
	p.Acceleration = Vec3{}
	p.Rotation = Vec3{}
	p.AngularVelocity = Vec3{}
	p.OnGround = false
	p.Controls = ControlAxes{}
	p.Drag = p.cfg.Drag
	p.thrust = 0
	p.lift = 0
	p.emit(EventReset)
}

func (p *Physics) emit(kind EventKind) {
	p.events = append(p.events, kind)
}

// DrainEvents returns the transitions recorded since the previous call.
func (p *Physics) DrainEvents() []EventKind {
	if len(p.events) == 0 {
		return nil
	}
	out := p.events
	p.events = nil
	return out
}

func sanitizeFinite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func sanitizeVec(v Vec3) Vec3 {
	return Vec3{sanitizeFinite(v.X), sanitizeFinite(v.Y), sanitizeFinite(v.Z)}
}
