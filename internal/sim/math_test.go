package sim_test

import (
	"math"
	"testing"

	sim "city-flight-simulator/internal/sim"
)

func TestVec3Ops(t *testing.T) {
	a := sim.Vec3{X: 1, Y: 2, Z: 3}
	b := sim.Vec3{X: -3, Y: 0, Z: 5}
	if got := a.Add(b); got != (sim.Vec3{X: -2, Y: 2, Z: 8}) {
		t.Fatalf("Add got %v", got)
	}
	if got := a.Sub(b); got != (sim.Vec3{X: 4, Y: 2, Z: -2}) {
		t.Fatalf("Sub got %v", got)
	}
	if got := a.Mul(2); got != (sim.Vec3{X: 2, Y: 4, Z: 6}) {
		t.Fatalf("Mul got %v", got)
	}
	if a.Dot(b) != (1*-3 + 2*0 + 3*5) {
		t.Fatalf("Dot mismatch")
	}
	if got := (sim.Vec3{X: 1}).Cross(sim.Vec3{Y: 1}); got != (sim.Vec3{Z: 1}) {
		t.Fatalf("Cross got %v", got)
	}
	n := a.Normalize()
	if n.Length() < 0.99 || n.Length() > 1.01 {
		t.Fatalf("Normalize length ~1, got %v", n.Length())
	}
	if got := (sim.Vec3{X: 1e-12}).NormalizeSafe(1e-9); got != (sim.Vec3{}) {
		t.Fatalf("NormalizeSafe should zero tiny vectors, got %v", got)
	}
	if got := (sim.Vec3{}).Lerp(sim.Vec3{X: 10, Y: -4}, 0.25); got != (sim.Vec3{X: 2.5, Y: -1}) {
		t.Fatalf("Lerp got %v", got)
	}
	if (sim.Vec3{X: math.NaN()}).IsFinite() || !a.IsFinite() {
		t.Fatalf("IsFinite mismatch")
	}
}

func TestApplyEulerAxes(t *testing.T) {
	fwd := sim.Vec3{X: 1}

	// Positive yaw turns the nose from east toward north (-Z).
	if got := fwd.ApplyEuler(sim.Vec3{Y: math.Pi / 2}); !vecNear(got, sim.Vec3{Z: -1}, 1e-9) {
		t.Fatalf("yaw +90° forward got %v", got)
	}
	// Positive pitch raises the nose.
	if got := fwd.ApplyEuler(sim.Vec3{Z: math.Pi / 2}); !vecNear(got, sim.Vec3{Y: 1}, 1e-9) {
		t.Fatalf("pitch +90° forward got %v", got)
	}
	// Roll leaves the nose alone and tilts the up vector.
	if got := fwd.ApplyEuler(sim.Vec3{X: 0.7}); !vecNear(got, fwd, 1e-9) {
		t.Fatalf("roll moved forward vector: %v", got)
	}
	if got := (sim.Vec3{Y: 1}).ApplyEuler(sim.Vec3{X: math.Pi / 2}); !vecNear(got, sim.Vec3{Z: 1}, 1e-9) {
		t.Fatalf("roll +90° up got %v", got)
	}
}

func TestEulerMat4MatchesApplyEuler(t *testing.T) {
	rot := sim.Vec3{X: 0.3, Y: -1.1, Z: 0.4}
	v := sim.Vec3{X: 1, Y: 2, Z: -3}
	want := v.ApplyEuler(rot)
	if got := sim.EulerMat4(rot).MulDirection(v); !vecNear(got, want, 1e-9) {
		t.Fatalf("EulerMat4 got %v want %v", got, want)
	}
}

func TestMat4(t *testing.T) {
	tr := sim.TranslationMat4(sim.Vec3{X: 1, Y: 2, Z: 3})
	if got := sim.IdentityMat4().Mul(tr); got != tr {
		t.Fatalf("identity * T should be T")
	}
	if got := tr.MulPoint(sim.Vec3{X: 1}); got != (sim.Vec3{X: 2, Y: 2, Z: 3}) {
		t.Fatalf("MulPoint got %v", got)
	}
	if got := tr.MulDirection(sim.Vec3{X: 1}); got != (sim.Vec3{X: 1}) {
		t.Fatalf("MulDirection should ignore translation, got %v", got)
	}
	if got := sim.ScaleMat4(2, 3, 4).MulPoint(sim.Vec3{X: 1, Y: 1, Z: 1}); got != (sim.Vec3{X: 2, Y: 3, Z: 4}) {
		t.Fatalf("ScaleMat4 got %v", got)
	}

	eye := sim.Vec3{X: 5, Y: 5, Z: 5}
	view := sim.LookAtMat4(eye, sim.Vec3{}, sim.Vec3{Y: 1})
	if got := view.MulPoint(eye); !vecNear(got, sim.Vec3{}, 1e-9) {
		t.Fatalf("LookAt should move eye to origin, got %v", got)
	}
	// looking straight down with a parallel up vector must not degenerate
	down := sim.LookAtMat4(sim.Vec3{Y: 10}, sim.Vec3{}, sim.Vec3{Y: 1})
	for i, v := range down {
		if math.IsNaN(v) {
			t.Fatalf("LookAt produced NaN at %d", i)
		}
	}

	near, far := 0.1, 1000.0
	proj := sim.PerspectiveMat4(75, 16.0/9.0, near, far)
	if z := proj.MulPoint(sim.Vec3{Z: -near}).Z; math.Abs(z+1) > 1e-9 {
		t.Fatalf("near plane should map to -1, got %v", z)
	}
	if z := proj.MulPoint(sim.Vec3{Z: -far}).Z; math.Abs(z-1) > 1e-6 {
		t.Fatalf("far plane should map to 1, got %v", z)
	}
}

func TestClampAndAngles(t *testing.T) {
	if sim.Clamp(5, 0, 1) != 1 || sim.Clamp(-5, 0, 1) != 0 || sim.Clamp(0.5, 0, 1) != 0.5 {
		t.Fatalf("Clamp mismatch")
	}
	if math.Abs(sim.DegToRad(180)-math.Pi) > 1e-12 || math.Abs(sim.RadToDeg(math.Pi/2)-90) > 1e-12 {
		t.Fatalf("angle conversion mismatch")
	}
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func vecNear(a, b sim.Vec3, eps float64) bool {
	return near(a.X, b.X, eps) && near(a.Y, b.Y, eps) && near(a.Z, b.Z, eps)
}
