package sim_test

import (
	"math"
	"testing"

	sim "city-flight-simulator/internal/sim"

	"github.com/rs/zerolog"
)

type fixedSource struct{ snap sim.FlightSnapshot }

func (f *fixedSource) FlightData() sim.FlightSnapshot { return f.snap }

func levelSnapshot(pos sim.Vec3) sim.FlightSnapshot {
	return sim.FlightSnapshot{Position: pos, Forward: sim.Vec3{X: 1}}
}

func newCamera(snap sim.FlightSnapshot) (*sim.CameraController, *fixedSource) {
	src := &fixedSource{snap: snap}
	c := sim.NewCameraController(src, sim.DefaultCameraConfig(), zerolog.Nop())
	return c, src
}

func TestCameraStartsBehindAirplane(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	if c.Mode() != sim.ModeChase {
		t.Fatalf("default mode should be chase, got %q", c.Mode())
	}
	pose := c.Pose()
	if !vecNear(pose.Position, sim.Vec3{X: -15, Y: 15}, 1e-9) {
		t.Fatalf("expected chase spot (-15,15,0), got %v", pose.Position)
	}
	if !vecNear(pose.LookAt, sim.Vec3{X: 8, Y: 10}, 1e-9) {
		t.Fatalf("expected look-ahead point (8,10,0), got %v", pose.LookAt)
	}
}

func TestCameraInactiveDoesNotMove(t *testing.T) {
	c, src := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	before := c.Pose()
	src.snap.Position = sim.Vec3{X: 100, Y: 10}
	c.Update(tick)
	if c.Pose() != before {
		t.Fatalf("inactive camera should not update")
	}
}

func TestCameraChaseSmoothing(t *testing.T) {
	c, src := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	c.Activate()
	src.snap.Position = sim.Vec3{X: 10, Y: 10}
	start := c.Pose().Position
	c.Update(tick)

	target := c.TargetPosition()
	if !vecNear(target, sim.Vec3{X: -5, Y: 15}, 1e-9) {
		t.Fatalf("chase target got %v", target)
	}
	want := start.Lerp(target, 0.05)
	if !vecNear(c.Pose().Position, want, 1e-9) {
		t.Fatalf("expected 5%% step to %v, got %v", want, c.Pose().Position)
	}
}

func TestCameraChaseRespectsMinHeight(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: -10}))
	if y := c.TargetPosition().Y; y != 2 {
		t.Fatalf("camera must stay at or above min height 2, got %v", y)
	}
}

func TestCameraSetMode(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	var changes [][2]string
	c.OnModeChange = func(from, to string) { changes = append(changes, [2]string{from, to}) }

	if c.SetMode("sideways") {
		t.Fatalf("unknown mode should be rejected")
	}
	if c.Mode() != sim.ModeChase || len(changes) != 0 {
		t.Fatalf("rejected switch must not change anything")
	}

	if !c.SetMode(sim.ModeCockpit) {
		t.Fatalf("cockpit should be accepted")
	}
	c.SetMode(sim.ModeCockpit)
	if len(changes) != 1 || changes[0] != [2]string{sim.ModeChase, sim.ModeCockpit} {
		t.Fatalf("expected one chase->cockpit change, got %v", changes)
	}

	names := c.ModeNames()
	want := []string{"chase", "cockpit", "dynamic", "free", "orbit"}
	if len(names) != len(want) {
		t.Fatalf("mode names got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("mode names got %v", names)
		}
	}
}

func TestCameraHandleKey(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))

	for code, mode := range sim.ModeKeys {
		if !c.HandleKey(code) || c.Mode() != mode {
			t.Fatalf("%v should select %s, got %s", code, mode, c.Mode())
		}
	}

	c.HandleKey(sim.KeyEqual)
	if !near(c.TargetZoom(), 0.75, 1e-12) {
		t.Fatalf("zoom in should lower target zoom, got %v", c.TargetZoom())
	}
	c.HandleKey(sim.KeyMinus)
	c.HandleKey(sim.KeyMinus)
	if !near(c.TargetZoom(), 1.25, 1e-12) {
		t.Fatalf("zoom out should raise target zoom, got %v", c.TargetZoom())
	}
	c.HandleKey(sim.KeyDigit0)
	if c.TargetZoom() != 1 {
		t.Fatalf("reset zoom got %v", c.TargetZoom())
	}
	if c.HandleKey(sim.KeyW) {
		t.Fatalf("flight keys are not camera keys")
	}
}

func TestCameraZoomClampsAndEases(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	c.SetTargetZoom(10)
	if c.TargetZoom() != 3 {
		t.Fatalf("target zoom should clamp to 3, got %v", c.TargetZoom())
	}
	c.SetTargetZoom(0)
	if c.TargetZoom() != 0.5 {
		t.Fatalf("target zoom should clamp to 0.5, got %v", c.TargetZoom())
	}

	c.UpdateZoom(0.1)
	if !near(c.Zoom(), 0.75, 1e-12) {
		t.Fatalf("zoom should move halfway at dt=0.1, got %v", c.Zoom())
	}
	c.UpdateZoom(1)
	if c.Zoom() != 0.5 {
		t.Fatalf("large dt should land on target, got %v", c.Zoom())
	}

	c.SetZoom(5)
	if c.Zoom() != 3 || c.TargetZoom() != 3 {
		t.Fatalf("SetZoom should clamp and sync target")
	}
}

func TestCameraCockpitMirrorsAttitude(t *testing.T) {
	rot := sim.Vec3{X: 0.4, Y: 0.2, Z: 0.1}
	snap := sim.FlightSnapshot{
		Position: sim.Vec3{X: 3, Y: 20, Z: -4},
		Rotation: rot,
		Forward:  sim.Vec3{X: 1}.ApplyEuler(rot),
	}
	c, _ := newCamera(snap)
	c.Activate()
	c.SetMode(sim.ModeCockpit)
	c.Update(tick)

	pose := c.Pose()
	eye := snap.Position.Add(sim.Vec3{Y: 0.5})
	if !vecNear(pose.Position, eye, 1e-9) {
		t.Fatalf("cockpit eye got %v want %v", pose.Position, eye)
	}
	if !vecNear(pose.LookAt, eye.Add(snap.Forward.Mul(10)), 1e-9) {
		t.Fatalf("cockpit should look along the nose, got %v", pose.LookAt)
	}
	if pose.Roll != rot.X {
		t.Fatalf("cockpit roll should mirror aircraft roll, got %v", pose.Roll)
	}
	if !vecNear(pose.Up, sim.Vec3{Y: 1}.ApplyEuler(rot), 1e-9) {
		t.Fatalf("cockpit up should follow attitude, got %v", pose.Up)
	}

	c.SetMode(sim.ModeChase)
	if p := c.Pose(); p.Roll != 0 || p.Up != (sim.Vec3{Y: 1}) {
		t.Fatalf("leaving cockpit should level the camera, got %+v", p)
	}
}

func TestCameraOrbit(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	c.Activate()
	c.SetMode(sim.ModeOrbit)
	c.Update(1)

	if !near(c.OrbitAngle(), 0.5, 1e-12) {
		t.Fatalf("orbit angle got %v", c.OrbitAngle())
	}
	want := sim.Vec3{X: math.Cos(0.5) * 20, Y: 15, Z: math.Sin(0.5) * 20}
	if !vecNear(c.Pose().Position, want, 1e-9) {
		t.Fatalf("orbit position got %v want %v", c.Pose().Position, want)
	}
	if c.Pose().LookAt != (sim.Vec3{Y: 10}) {
		t.Fatalf("orbit should look at the airplane")
	}

	c.Deactivate()
	if c.OrbitAngle() != 0 {
		t.Fatalf("deactivate should clear the orbit angle")
	}
}

func TestCameraFreeFallsBackToChase(t *testing.T) {
	c, src := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	c.Activate()
	c.SetMode(sim.ModeFree)

	c.SetPosition(sim.Vec3{X: -20, Y: 20})
	c.Update(tick)
	if c.Mode() != sim.ModeFree || c.Pose().Position != (sim.Vec3{X: -20, Y: 20}) {
		t.Fatalf("free camera should hold still near the airplane")
	}

	src.snap.Position = sim.Vec3{X: 100, Y: 10}
	c.Update(tick)
	if c.Mode() != sim.ModeChase {
		t.Fatalf("free camera should switch to chase when far away, got %s", c.Mode())
	}
}

func TestCameraDynamicPullsBackWithSpeed(t *testing.T) {
	place := func(speed float64) sim.Vec3 {
		snap := levelSnapshot(sim.Vec3{Y: 10})
		snap.Speed = speed
		snap.Velocity = sim.Vec3{X: speed}
		snap.Altitude = 10
		c, _ := newCamera(snap)
		c.Activate()
		c.SetMode(sim.ModeDynamic)
		c.Update(tick)
		return c.TargetPosition()
	}

	slow := place(0)
	fast := place(40)
	if !vecNear(slow, sim.Vec3{X: -15, Y: 16}, 1e-9) {
		t.Fatalf("dynamic at rest got %v", slow)
	}
	if !vecNear(fast, sim.Vec3{X: -24, Y: 16}, 1e-9) {
		t.Fatalf("dynamic at speed got %v", fast)
	}
}

func TestCameraAvoidCollisions(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	from := sim.Vec3{Y: 10}

	target := sim.Vec3{X: -15, Y: 15}
	if got := c.AvoidCollisions(target, from); got != target {
		t.Fatalf("no obstacles should leave the target alone, got %v", got)
	}

	c.SetObstacles([]sim.AABB{{Min: sim.Vec3{X: -10, Z: -2}, Max: sim.Vec3{X: -6, Y: 20, Z: 2}}})
	if got := c.AvoidCollisions(target, from); !vecNear(got, sim.Vec3{X: -15, Y: 20}, 1e-9) {
		t.Fatalf("blocked view should lift the camera by 5, got %v", got)
	}

	c.SetObstacles([]sim.AABB{{Min: sim.Vec3{X: -20, Z: -2}, Max: sim.Vec3{X: -10, Y: 20, Z: 2}}})
	got := c.AvoidCollisions(sim.Vec3{X: -15, Y: 18}, from)
	if !vecNear(got, sim.Vec3{X: -15, Y: 23, Z: 5}, 1e-9) {
		t.Fatalf("lifted point over a roof should also shift sideways, got %v", got)
	}

	c.SetObstacles([]sim.AABB{{Min: sim.Vec3{X: -10, Z: 50}, Max: sim.Vec3{X: -6, Y: 20, Z: 60}}})
	if got := c.AvoidCollisions(target, from); got != target {
		t.Fatalf("obstacles off the line of sight are ignored, got %v", got)
	}
}

func TestCameraAdjustmentsAndReset(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	c.SetMode(sim.ModeOrbit)

	c.AdjustDistance(100)
	c.AdjustHeight(-100)
	c.AdjustOrbitRadius(-100)
	cfg := c.Config()
	if cfg.FollowDistance != 50 || cfg.FollowHeight != -5 || cfg.OrbitRadius != 10 {
		t.Fatalf("adjustments should clamp, got %+v", cfg)
	}

	c.ResetSettings()
	def := sim.DefaultCameraConfig()
	cfg = c.Config()
	if cfg.FollowDistance != def.FollowDistance || cfg.FollowHeight != def.FollowHeight || cfg.OrbitRadius != def.OrbitRadius {
		t.Fatalf("reset should restore defaults, got %+v", cfg)
	}
	if c.Mode() != sim.ModeChase {
		t.Fatalf("reset should return to chase, got %s", c.Mode())
	}
}

func TestCameraDisposeAndSettings(t *testing.T) {
	c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
	c.UpdateDynamicSettings(sim.DynamicSettings{SpeedBasedDistance: false, AltitudeBasedHeight: true})
	if c.Info().DynamicSettings.SpeedBasedDistance {
		t.Fatalf("dynamic settings should be stored")
	}

	c.SetObstacles([]sim.AABB{{Max: sim.Vec3{X: 1, Y: 1, Z: 1}}})
	c.Activate()
	c.Dispose()
	if c.Active() || len(c.Obstacles()) != 0 {
		t.Fatalf("dispose should deactivate and drop obstacles")
	}
}

func TestCameraChaseTargetScalesWithZoom(t *testing.T) {
	for _, tc := range []struct {
		zoom float64
		want sim.Vec3
	}{
		{0.5, sim.Vec3{X: -7.5, Y: 12.5}},
		{1, sim.Vec3{X: -15, Y: 15}},
		{3, sim.Vec3{X: -45, Y: 25}},
	} {
		c, _ := newCamera(levelSnapshot(sim.Vec3{Y: 10}))
		c.SetZoom(tc.zoom)
		c.Activate()
		c.Update(tick)
		if got := c.TargetPosition(); !vecNear(got, tc.want, 1e-9) {
			t.Fatalf("zoom %v: chase target got %v want %v", tc.zoom, got, tc.want)
		}
	}
}
