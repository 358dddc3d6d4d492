package sim

import (
	"math"
)

// chaseMode trails the airplane, smoothing toward a point behind and above.
type chaseMode struct{ c *CameraController }

func (m *chaseMode) Name() string { return ModeChase }
func (m *chaseMode) Activate()    {}
func (m *chaseMode) Deactivate()  {}

func (m *chaseMode) Update(snap FlightSnapshot, dt float64) {
	c := m.c
	target, look := c.chaseTarget(snap, c.cfg.FollowDistance, c.cfg.FollowHeight)
	target = c.AvoidCollisions(target, snap.Position)

	c.targetPosition = target
	c.targetLookAt = look
	c.position = c.position.Lerp(target, c.cfg.SmoothingFactor)
	c.lookAt = c.lookAt.Lerp(look, c.cfg.SmoothingFactor)
	c.up = worldUp
	c.roll = 0
}

// cockpitMode rides on the airplane and mirrors its attitude.
type cockpitMode struct{ c *CameraController }

func (m *cockpitMode) Name() string { return ModeCockpit }
func (m *cockpitMode) Activate()    {}

func (m *cockpitMode) Deactivate() {
	m.c.up = worldUp
	m.c.roll = 0
}

func (m *cockpitMode) Update(snap FlightSnapshot, dt float64) {
	c := m.c
	forward, _, _, _ := followFrame(snap)
	eye := snap.Position.Add(c.cfg.CockpitOffset)

	c.position = eye
	c.lookAt = eye.Add(forward.Mul(cockpitLookAhead))
	c.targetPosition = c.position
	c.targetLookAt = c.lookAt
	c.up = worldUp.ApplyEuler(snap.Rotation)
	c.roll = snap.Rotation.X
}

// orbitMode circles the airplane at a fixed radius and height.
type orbitMode struct{ c *CameraController }

func (m *orbitMode) Name() string { return ModeOrbit }
func (m *orbitMode) Activate()    {}
func (m *orbitMode) Deactivate()  {}

func (m *orbitMode) Update(snap FlightSnapshot, dt float64) {
	c := m.c
	c.orbitAngle += c.cfg.OrbitSpeed * dt

	r := c.cfg.OrbitRadius
	c.position = Vec3{
		X: snap.Position.X + math.Cos(c.orbitAngle)*r,
		Y: snap.Position.Y + c.cfg.FollowHeight,
		Z: snap.Position.Z + math.Sin(c.orbitAngle)*r,
	}
	c.lookAt = snap.Position
	c.targetPosition = c.position
	c.targetLookAt = c.lookAt
	c.up = worldUp
	c.roll = 0
}

// freeMode leaves the camera where it is until the airplane gets too far
// away, then falls back to chase.
type freeMode struct{ c *CameraController }

func (m *freeMode) Name() string { return ModeFree }
func (m *freeMode) Activate()    {}
func (m *freeMode) Deactivate()  {}

func (m *freeMode) Update(snap FlightSnapshot, dt float64) {
	c := m.c
	if c.position.DistanceTo(snap.Position) > c.cfg.AutoSwitchDistance {
		c.log.Debug().Msg("free camera lost the airplane, switching to chase")
		c.SetMode(ModeChase)
		return
	}
	c.up = worldUp
	c.roll = 0
}

// dynamicMode is a chase camera that pulls back with speed, rises with
// altitude and swings out in turns.
type dynamicMode struct{ c *CameraController }

func (m *dynamicMode) Name() string { return ModeDynamic }
func (m *dynamicMode) Activate()    {}
func (m *dynamicMode) Deactivate()  {}

func (m *dynamicMode) Update(snap FlightSnapshot, dt float64) {
	c := m.c
	forward, backward, right, up := followFrame(snap)

	distance := c.cfg.FollowDistance * c.zoom
	if c.dynamic.SpeedBasedDistance {
		distance *= 1 + dynamicSpeedGain*math.Min(snap.Speed/dynamicSpeedRef, 1)
	}

	height := c.cfg.FollowHeight * c.zoom
	if c.dynamic.AltitudeBasedHeight {
		height += snap.Altitude * dynamicAltGain
	}
	height = Clamp(height, c.cfg.MinHeight, c.cfg.MaxHeight)

	turn := snap.Velocity.NormalizeSafe(1e-9).Cross(forward).Y
	lateral := right.Mul(turn * dynamicTurnGain * c.zoom)

	target := snap.Position.
		Add(backward.Mul(distance)).
		Add(up.Mul(height)).
		Add(lateral)
	target.Y = math.Max(target.Y, c.cfg.MinHeight)
	target = c.AvoidCollisions(target, snap.Position)
	look := snap.Position.Add(forward.Mul(c.cfg.LookAhead))

	adapt := 1 + math.Min(snap.Speed/adaptiveSpeedRef, 1)
	h := Clamp(c.cfg.SmoothingFactor*adapt, 0, 1)
	v := Clamp(c.cfg.VerticalSmoothing*adapt, 0, 1)

	c.targetPosition = target
	c.targetLookAt = look
	c.position = Vec3{
		X: c.position.X + (target.X-c.position.X)*h,
		Y: c.position.Y + (target.Y-c.position.Y)*v,
		Z: c.position.Z + (target.Z-c.position.Z)*h,
	}
	c.lookAt = c.lookAt.Lerp(look, h)
	c.up = worldUp
	c.roll = 0
}
