package sim_test

import (
	"testing"

	sim "city-flight-simulator/internal/sim"
)

func TestAABBBasics(t *testing.T) {
	b := sim.BoxAround(sim.Vec3{X: 1, Y: 2, Z: 3}, sim.Vec3{X: 2, Y: 4, Z: 6})
	if b.Min != (sim.Vec3{X: 0, Y: 0, Z: 0}) || b.Max != (sim.Vec3{X: 2, Y: 4, Z: 6}) {
		t.Fatalf("BoxAround got %+v", b)
	}
	if b.Center() != (sim.Vec3{X: 1, Y: 2, Z: 3}) || b.Size() != (sim.Vec3{X: 2, Y: 4, Z: 6}) {
		t.Fatalf("Center/Size mismatch")
	}
	if !b.ContainsPoint(sim.Vec3{X: 1, Y: 1, Z: 1}) || b.ContainsPoint(sim.Vec3{X: 3}) {
		t.Fatalf("ContainsPoint mismatch")
	}

	touching := sim.AABB{Min: sim.Vec3{X: 2}, Max: sim.Vec3{X: 3, Y: 1, Z: 1}}
	apart := sim.AABB{Min: sim.Vec3{X: 2.1}, Max: sim.Vec3{X: 3, Y: 1, Z: 1}}
	if !b.Intersects(touching) {
		t.Fatalf("touching boxes should intersect")
	}
	if b.Intersects(apart) {
		t.Fatalf("separated boxes should not intersect")
	}
}

func TestRayIntersect(t *testing.T) {
	b := sim.AABB{Min: sim.Vec3{X: 5, Y: -1, Z: -1}, Max: sim.Vec3{X: 7, Y: 1, Z: 1}}

	if d, ok := b.RayIntersect(sim.Vec3{}, sim.Vec3{X: 1}); !ok || !near(d, 5, 1e-12) {
		t.Fatalf("expected hit at 5, got %v %v", d, ok)
	}
	if d, ok := b.RayIntersect(sim.Vec3{X: 6}, sim.Vec3{X: 1}); !ok || d != 0 {
		t.Fatalf("ray from inside should hit at 0, got %v %v", d, ok)
	}
	if _, ok := b.RayIntersect(sim.Vec3{}, sim.Vec3{X: -1}); ok {
		t.Fatalf("box behind the ray should miss")
	}
	if _, ok := b.RayIntersect(sim.Vec3{}, sim.Vec3{Y: 1}); ok {
		t.Fatalf("parallel ray outside slab should miss")
	}
}

func TestRaycastNearestWithinRange(t *testing.T) {
	boxes := []sim.AABB{
		{Min: sim.Vec3{X: 10, Y: -1, Z: -1}, Max: sim.Vec3{X: 12, Y: 1, Z: 1}},
		{Min: sim.Vec3{X: 5, Y: -1, Z: -1}, Max: sim.Vec3{X: 7, Y: 1, Z: 1}},
	}
	if d, ok := sim.Raycast(sim.Vec3{}, sim.Vec3{X: 3}, 20, boxes); !ok || !near(d, 5, 1e-12) {
		t.Fatalf("expected nearest hit at 5, got %v %v", d, ok)
	}
	if _, ok := sim.Raycast(sim.Vec3{}, sim.Vec3{X: 1}, 4, boxes); ok {
		t.Fatalf("hits beyond maxDist should be ignored")
	}
	if _, ok := sim.Raycast(sim.Vec3{}, sim.Vec3{}, 100, boxes); ok {
		t.Fatalf("zero direction should never hit")
	}
}

func TestSurfaceHeight(t *testing.T) {
	boxes := []sim.AABB{
		{Min: sim.Vec3{X: -5, Y: 0, Z: -5}, Max: sim.Vec3{X: 5, Y: 20, Z: 5}},
		{Min: sim.Vec3{X: -2, Y: 0, Z: -2}, Max: sim.Vec3{X: 2, Y: 8, Z: 2}},
	}
	if h := sim.SurfaceHeight(boxes, sim.Vec3{Y: 25}); h != 20 {
		t.Fatalf("above both roofs expected 20, got %v", h)
	}
	if h := sim.SurfaceHeight(boxes, sim.Vec3{Y: 10}); h != 8 {
		t.Fatalf("between roofs expected 8, got %v", h)
	}
	if h := sim.SurfaceHeight(boxes, sim.Vec3{X: 10, Y: 25}); h != 0 {
		t.Fatalf("open ground expected 0, got %v", h)
	}
}
