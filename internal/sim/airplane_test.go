package sim_test

import (
	"math"
	"testing"

	sim "city-flight-simulator/internal/sim"

	"github.com/rs/zerolog"
)

func newAirplane() *sim.Airplane {
	return sim.NewAirplane(sim.DefaultPhysicsConfig(), sim.DefaultControllerConfig(), zerolog.Nop())
}

func TestAirplaneHullFollowsPosition(t *testing.T) {
	a := newAirplane()
	want := sim.BoxAround(sim.Vec3{Y: 5}, sim.Vec3{X: 4, Y: 1.5, Z: 6})
	if a.Bounds() != want {
		t.Fatalf("initial hull got %+v want %+v", a.Bounds(), want)
	}

	a.Physics.Velocity = sim.Vec3{X: 10}
	a.Update(tick)
	if got := a.Bounds().Center(); !vecNear(got, a.Physics.Position, 1e-9) {
		t.Fatalf("hull center %v should track position %v", got, a.Physics.Position)
	}
}

func TestAirplaneForwardAndCameraTarget(t *testing.T) {
	a := newAirplane()
	if a.ForwardVector() != (sim.Vec3{X: 1}) {
		t.Fatalf("level forward should be +X, got %v", a.ForwardVector())
	}
	if got := a.CameraTarget(); !vecNear(got, sim.Vec3{X: -10, Y: 10}, 1e-9) {
		t.Fatalf("camera target got %v", got)
	}

	a.Physics.Rotation = sim.Vec3{Y: math.Pi}
	if got := a.ForwardVector(); !vecNear(got, sim.Vec3{X: -1}, 1e-9) {
		t.Fatalf("yaw 180° forward got %v", got)
	}
}

func TestAirplaneBuildingCollisionCrashes(t *testing.T) {
	a := newAirplane()
	hit := -1
	crashes := 0
	a.OnBuildingCollision = func(i int) { hit = i }
	a.OnCrash = func() { crashes++ }

	buildings := []sim.AABB{
		sim.BoxAround(sim.Vec3{X: 50, Y: 10}, sim.Vec3{X: 10, Y: 20, Z: 10}),
		sim.BoxAround(sim.Vec3{X: 2, Y: 5}, sim.Vec3{X: 4, Y: 20, Z: 4}),
	}
	if !a.CheckBuildingCollision(buildings) {
		t.Fatalf("expected a collision")
	}
	if hit != 1 || crashes != 1 {
		t.Fatalf("expected building 1 and one crash, got hit=%d crashes=%d", hit, crashes)
	}
	ev := a.Physics.DrainEvents()
	if len(ev) != 1 || ev[0] != sim.EventCrash {
		t.Fatalf("expected crash event, got %v", ev)
	}
	if a.CheckBuildingCollision(buildings[:1]) {
		t.Fatalf("distant building should not collide")
	}
}

func TestAirplaneGroundCollisionRaisesGround(t *testing.T) {
	a := newAirplane()
	roof := sim.AABB{Min: sim.Vec3{X: -5, Y: 0, Z: -5}, Max: sim.Vec3{X: 5, Y: 4.5, Z: 5}}
	if !a.CheckGroundCollision([]sim.AABB{roof}) {
		t.Fatalf("hull should overlap the roof")
	}
	if a.Physics.GroundHeight() != 4.5 {
		t.Fatalf("ground height should be the roof, got %v", a.Physics.GroundHeight())
	}
}

func TestAirplaneModelMatrixInterpolates(t *testing.T) {
	a := newAirplane()
	a.Physics.Velocity = sim.Vec3{X: 12}
	prev := a.Physics.Position
	a.Update(tick)
	cur := a.Physics.Position

	if got := translation(a.ModelMatrix(0)); !vecNear(got, prev, 1e-9) {
		t.Fatalf("alpha 0 should be the previous tick, got %v", got)
	}
	if got := translation(a.ModelMatrix(1)); !vecNear(got, cur, 1e-9) {
		t.Fatalf("alpha 1 should be the current tick, got %v", got)
	}
	if got := translation(a.ModelMatrix(0.5)); !vecNear(got, prev.Lerp(cur, 0.5), 1e-9) {
		t.Fatalf("alpha 0.5 should be halfway, got %v", got)
	}
	if a.ModelMatrix(7) != a.ModelMatrix(1) {
		t.Fatalf("alpha should clamp to 1")
	}
}

func TestAirplaneResetAndFlightData(t *testing.T) {
	a := newAirplane()
	a.EnableControls()
	a.Physics.Velocity = sim.Vec3{X: 30}
	a.Reset(nil)

	data := a.FlightData()
	if data.Position != (sim.Vec3{Y: 10}) || data.Speed != 0 {
		t.Fatalf("reset should park at (0,10,0) at rest, got %+v", data)
	}
	if data.Fuel != 1 || data.Forward != (sim.Vec3{X: 1}) {
		t.Fatalf("unexpected flight data %+v", data)
	}
	if got := translation(a.ModelMatrix(0)); got != data.Position {
		t.Fatalf("interpolation history should restart at the reset point, got %v", got)
	}

	a.DisableControls()
	if a.Controller.Active() {
		t.Fatalf("controls should be disabled")
	}
}

func translation(m sim.Mat4) sim.Vec3 { return sim.Vec3{X: m[12], Y: m[13], Z: m[14]} }
