package sim

import (
	"github.com/rs/zerolog"
)

// airplaneSize is the full extent of the collision hull.
var airplaneSize = Vec3{4, 1.5, 6}

// cameraTargetOffset is the body-frame point the overview camera aims at.
var cameraTargetOffset = Vec3{-10, 5, 0}

// Airplane ties the flight model to the pilot controls and keeps a
// collision hull in sync with the position.
type Airplane struct {
	Physics    *Physics
	Controller *Controller

	bounds  AABB
	prevPos Vec3
	prevRot Vec3
	log     zerolog.Logger

	// OnCrash fires after any crash, ground or building. Optional.
	OnCrash func()
	// OnBuildingCollision receives the index of the building that was hit.
	OnBuildingCollision func(index int)
}

func NewAirplane(pcfg PhysicsConfig, ccfg ControllerConfig, log zerolog.Logger) *Airplane {
	a := &Airplane{log: log}
	a.Physics = NewPhysics(pcfg, log)
	a.Controller = NewController(a.Physics, ccfg, log)
	a.Physics.OnCrash = a.handleCrash
	a.prevPos, a.prevRot = a.Physics.Position, a.Physics.Rotation
	a.updateBounds()
	return a
}

// Update runs one control tick, one physics tick and refreshes the hull.
func (a *Airplane) Update(dt float64) {
	a.prevPos, a.prevRot = a.Physics.Position, a.Physics.Rotation
	a.Controller.Tick(dt)
	a.Physics.Update(dt)
	a.updateBounds()
}

func (a *Airplane) updateBounds() {
	a.bounds = BoxAround(a.Physics.Position, airplaneSize)
}

func (a *Airplane) Bounds() AABB { return a.bounds }

// ModelMatrix places the hull between the previous and current tick.
// alpha is clamped to [0,1].
func (a *Airplane) ModelMatrix(alpha float64) Mat4 {
	alpha = Clamp(alpha, 0, 1)
	p := a.prevPos.Lerp(a.Physics.Position, alpha)
	r := a.prevRot.Lerp(a.Physics.Rotation, alpha)
	return TranslationMat4(p).
		Mul(EulerMat4(r)).
		Mul(ScaleMat4(airplaneSize.X, airplaneSize.Y, airplaneSize.Z))
}

func (a *Airplane) handleCrash() {
	if a.OnCrash != nil {
		a.OnCrash()
	}
}

// CheckGroundCollision raises the ground under the airplane to the top of
// the first surface it overlaps.
func (a *Airplane) CheckGroundCollision(surfaces []AABB) bool {
	for _, s := range surfaces {
		if a.bounds.Intersects(s) {
			a.Physics.SetGroundHeight(s.Max.Y)
			return true
		}
	}
	return false
}

// CheckBuildingCollision crashes the airplane into the first building its
// hull overlaps.
func (a *Airplane) CheckBuildingCollision(buildings []AABB) bool {
	for i, b := range buildings {
		if !a.bounds.Intersects(b) {
			continue
		}
		a.log.Warn().Int("building", i).Msg("airplane collided with building")
		a.Physics.Crash()
		if a.OnBuildingCollision != nil {
			a.OnBuildingCollision(i)
		}
		return true
	}
	return false
}

// ForwardVector is the nose direction in world space.
func (a *Airplane) ForwardVector() Vec3 {
	return Vec3{1, 0, 0}.ApplyEuler(a.Physics.Rotation)
}

func (a *Airplane) CameraTarget() Vec3 {
	return a.Physics.Position.Add(cameraTargetOffset.ApplyEuler(a.Physics.Rotation))
}

// FlightData copies the current state. Fuel is not modelled and stays full.
func (a *Airplane) FlightData() FlightSnapshot {
	p := a.Physics
	return FlightSnapshot{
		Position:   p.Position,
		Velocity:   p.Velocity,
		Rotation:   p.Rotation,
		Forward:    a.ForwardVector(),
		Speed:      p.Speed(),
		Altitude:   p.Altitude(),
		Heading:    p.Heading(),
		IsFlying:   p.IsFlying(),
		IsOnGround: p.OnGround,
		Throttle:   p.Controls.Throttle,
		Fuel:       1.0,
	}
}

func (a *Airplane) EnableControls()  { a.Controller.Activate() }
func (a *Airplane) DisableControls() { a.Controller.Deactivate() }

// Reset moves the airplane to pos at rest. A nil pos uses the controller's
// reset position.
func (a *Airplane) Reset(pos *Vec3) {
	if pos == nil {
		p := a.Controller.cfg.ResetPosition
		pos = &p
	}
	a.Physics.Reset(pos)
	a.prevPos, a.prevRot = a.Physics.Position, a.Physics.Rotation
	a.updateBounds()
	a.log.Info().
		Float64("x", pos.X).
		Float64("y", pos.Y).
		Float64("z", pos.Z).
		Msg("airplane reset")
}
