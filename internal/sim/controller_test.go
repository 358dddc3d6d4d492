package sim_test

import (
	"testing"

	sim "city-flight-simulator/internal/sim"

	"github.com/rs/zerolog"
)

type fakeTarget struct {
	axes        sim.ControlAxes
	pushes      int
	grounded    bool
	groundBrake []float64
	airBrake    []float64
	resets      []sim.Vec3
}

func (f *fakeTarget) SetControls(a sim.ControlAxes)   { f.axes = a; f.pushes++ }
func (f *fakeTarget) IsGrounded() bool                { return f.grounded }
func (f *fakeTarget) ApplyGroundBrake(factor float64) { f.groundBrake = append(f.groundBrake, factor) }
func (f *fakeTarget) ApplyAirBrake(factor float64)    { f.airBrake = append(f.airBrake, factor) }
func (f *fakeTarget) Reset(pos *sim.Vec3)             { f.resets = append(f.resets, *pos) }

func newController() (*sim.Controller, *fakeTarget) {
	target := &fakeTarget{}
	c := sim.NewController(target, sim.DefaultControllerConfig(), zerolog.Nop())
	c.Activate()
	return c, target
}

func tickN(c *sim.Controller, n int, dt float64) {
	for i := 0; i < n; i++ {
		c.Tick(dt)
	}
}

func TestControllerInactiveIgnoresInput(t *testing.T) {
	target := &fakeTarget{}
	c := sim.NewController(target, sim.DefaultControllerConfig(), zerolog.Nop())

	c.SetKeyState(sim.KeyW, true)
	c.SetKeyState(sim.KeyR, true)
	c.Tick(tick)

	if target.pushes != 0 || len(target.resets) != 0 {
		t.Fatalf("inactive controller must not drive the target")
	}
	if held := c.Status().HeldKeys; len(held) != 0 {
		t.Fatalf("inactive controller must not record keys, got %v", held)
	}
}

func TestControllerThrottle(t *testing.T) {
	c, target := newController()

	c.SetKeyState(sim.KeyW, true)
	tickN(c, 10, tick)
	if !near(c.Axes().Throttle, 0.2, 1e-9) {
		t.Fatalf("expected throttle 0.2, got %v", c.Axes().Throttle)
	}
	if target.axes != c.Axes() || target.pushes != 10 {
		t.Fatalf("axes should be pushed every tick")
	}

	tickN(c, 100, tick)
	if c.Axes().Throttle != 1 {
		t.Fatalf("throttle should cap at 1, got %v", c.Axes().Throttle)
	}

	c.SetKeyState(sim.KeyW, false)
	c.SetKeyState(sim.KeyS, true)
	tickN(c, 100, tick)
	if c.Axes().Throttle != 0 {
		t.Fatalf("throttle down should reach 0, got %v", c.Axes().Throttle)
	}
}

func TestControllerIdleThrottleDecaysToFloor(t *testing.T) {
	c, _ := newController()

	c.Tick(tick)
	if !near(c.Axes().Throttle, 0.1, 1e-12) {
		t.Fatalf("idle throttle should sit at the floor, got %v", c.Axes().Throttle)
	}

	c.SetKeyState(sim.KeyW, true)
	tickN(c, 20, tick)
	c.SetKeyState(sim.KeyW, false)
	before := c.Axes().Throttle
	c.Tick(tick)
	if !near(before-c.Axes().Throttle, 0.01, 1e-9) {
		t.Fatalf("idle decay should be half a step, got %v", before-c.Axes().Throttle)
	}
	tickN(c, 200, tick)
	if !near(c.Axes().Throttle, 0.1, 1e-12) {
		t.Fatalf("idle decay should stop at 0.1, got %v", c.Axes().Throttle)
	}
}

func TestControllerBoost(t *testing.T) {
	c, _ := newController()
	c.SetKeyState(sim.KeyW, true)
	c.SetKeyState(sim.KeyShiftLeft, true)
	c.Tick(tick)
	if !near(c.Axes().Throttle, 0.024, 1e-12) {
		t.Fatalf("boost should multiply by 1.2, got %v", c.Axes().Throttle)
	}
	tickN(c, 200, tick)
	if c.Axes().Throttle != 1 {
		t.Fatalf("boost must not exceed 1, got %v", c.Axes().Throttle)
	}
}

func TestControllerPitchRampsAndReturns(t *testing.T) {
	c, _ := newController()
	const dt = 0.1

	// ArrowDown pulls the nose up
	c.SetKeyState(sim.KeyArrowDown, true)
	c.Tick(dt)
	first := c.Axes().Pitch
	if first <= 0 || first > 0.04 {
		t.Fatalf("first ramped step should be small and positive, got %v", first)
	}
	if r := c.Status().PitchRamp; !near(r, dt/1.5, 1e-9) {
		t.Fatalf("pitch ramp progress got %v", r)
	}

	tickN(c, 100, dt)
	if !near(c.Axes().Pitch, 1, 1e-9) {
		t.Fatalf("pitch should reach max 1, got %v", c.Axes().Pitch)
	}

	c.SetKeyState(sim.KeyArrowDown, false)
	c.Tick(dt)
	if !near(c.Axes().Pitch, 0.92, 1e-9) {
		t.Fatalf("pitch should return by 0.08, got %v", c.Axes().Pitch)
	}
	if c.Status().PitchRamp != 0 {
		t.Fatalf("ramp timer should reset on release")
	}
	tickN(c, 20, dt)
	if c.Axes().Pitch != 0 {
		t.Fatalf("pitch should settle at 0, got %v", c.Axes().Pitch)
	}
}

func TestControllerPitchDownWinsWhenBothHeld(t *testing.T) {
	c, _ := newController()
	c.SetKeyState(sim.KeyArrowUp, true)
	c.SetKeyState(sim.KeyArrowDown, true)
	tickN(c, 5, 0.1)
	if c.Axes().Pitch >= 0 {
		t.Fatalf("nose-down should win, got %v", c.Axes().Pitch)
	}
}

func TestControllerRollClampedToUnit(t *testing.T) {
	c, _ := newController()
	c.SetKeyState(sim.KeyArrowLeft, true)
	tickN(c, 200, 0.1)
	if c.Axes().Roll != -1 {
		t.Fatalf("roll should clamp at -1, got %v", c.Axes().Roll)
	}
	c.SetKeyState(sim.KeyArrowLeft, false)
	c.SetKeyState(sim.KeyArrowRight, true)
	tickN(c, 200, 0.1)
	if c.Axes().Roll != 1 {
		t.Fatalf("roll should clamp at 1, got %v", c.Axes().Roll)
	}
}

func TestControllerYaw(t *testing.T) {
	c, _ := newController()
	c.SetKeyState(sim.KeyA, true)
	tickN(c, 10, tick)
	if !near(c.Axes().Yaw, 0.3, 1e-9) {
		t.Fatalf("yaw left should be positive 0.3, got %v", c.Axes().Yaw)
	}
	c.SetKeyState(sim.KeyA, false)
	c.Tick(tick)
	if !near(c.Axes().Yaw, 0.27, 1e-9) {
		t.Fatalf("yaw should return by 0.03, got %v", c.Axes().Yaw)
	}
	c.SetKeyState(sim.KeyD, true)
	tickN(c, 100, tick)
	if c.Axes().Yaw != -1 {
		t.Fatalf("yaw right should clamp at -1, got %v", c.Axes().Yaw)
	}
}

func TestControllerBrake(t *testing.T) {
	c, target := newController()
	c.SetKeyState(sim.KeySpace, true)

	c.Tick(tick)
	if len(target.airBrake) != 1 || target.airBrake[0] != 1.5 {
		t.Fatalf("airborne brake should scale drag by 1.5, got %v", target.airBrake)
	}

	target.grounded = true
	c.Tick(tick)
	if len(target.groundBrake) != 1 || target.groundBrake[0] != 0.95 {
		t.Fatalf("ground brake should scale velocity by 0.95, got %v", target.groundBrake)
	}
}

func TestControllerResetKey(t *testing.T) {
	c, target := newController()
	c.SetKeyState(sim.KeyW, true)
	c.SetKeyState(sim.KeyArrowDown, true)
	tickN(c, 10, 0.1)

	c.SetKeyState(sim.KeyR, true)
	if len(target.resets) != 1 || target.resets[0] != (sim.Vec3{Y: 10}) {
		t.Fatalf("reset should go to (0,10,0), got %v", target.resets)
	}
	if c.Axes() != (sim.ControlAxes{}) {
		t.Fatalf("reset should zero the axes, got %+v", c.Axes())
	}
	if c.Status().PitchRamp != 0 {
		t.Fatalf("reset should clear ramp timers")
	}

	c.SetKeyState(sim.KeyR, false)
	if len(target.resets) != 1 {
		t.Fatalf("release must not reset again")
	}
}

func TestControllerDeactivateClearsState(t *testing.T) {
	c, _ := newController()
	c.SetKeyState(sim.KeyW, true)
	c.SetKeyState(sim.KeyA, true)
	tickN(c, 5, tick)

	if held := c.Status().HeldKeys; len(held) != 2 || held[0] != "KeyA" || held[1] != "KeyW" {
		t.Fatalf("expected sorted held keys, got %v", held)
	}

	c.Deactivate()
	st := c.Status()
	if st.Active || st.Axes != (sim.ControlAxes{}) || len(st.HeldKeys) != 0 {
		t.Fatalf("deactivate should clear everything, got %+v", st)
	}

	c.Activate()
	c.Tick(tick)
	if !near(c.Axes().Throttle, 0.1, 1e-12) {
		t.Fatalf("keys held before deactivation must be forgotten, got %v", c.Axes().Throttle)
	}
}
