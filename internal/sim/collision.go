package sim

import "math"

// AABB is an axis-aligned box used for buildings, the airplane hull and
// camera obstacles.
type AABB struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// BoxAround builds a box of the given full size centered on c.
func BoxAround(c, size Vec3) AABB {
	h := size.Mul(0.5)
	return AABB{Min: c.Sub(h), Max: c.Add(h)}
}

func (b AABB) Center() Vec3 { return b.Min.Add(b.Max).Mul(0.5) }
func (b AABB) Size() Vec3   { return b.Max.Sub(b.Min) }

func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// RayIntersect returns the distance along dir (unit length) at which the ray
// from origin enters the box. A ray starting inside the box hits at 0.
func (b AABB) RayIntersect(origin, dir Vec3) (float64, bool) {
	tmin := 0.0
	tmax := math.Inf(1)

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / d[i]
		t1 := (lo[i] - o[i]) * inv
		t2 := (hi[i] - o[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// Raycast returns the nearest hit distance within maxDist against boxes.
func Raycast(origin, dir Vec3, maxDist float64, boxes []AABB) (float64, bool) {
	dir = dir.NormalizeSafe(1e-9)
	if dir == (Vec3{}) {
		return 0, false
	}
	best := math.Inf(1)
	hit := false
	for _, b := range boxes {
		if t, ok := b.RayIntersect(origin, dir); ok && t <= maxDist && t < best {
			best = t
			hit = true
		}
	}
	return best, hit
}

// SurfaceHeight is the highest roof at or below p whose footprint contains
// p in the XZ plane, or 0 over open ground.
func SurfaceHeight(boxes []AABB, p Vec3) float64 {
	h := 0.0
	for _, b := range boxes {
		if p.X < b.Min.X || p.X > b.Max.X || p.Z < b.Min.Z || p.Z > b.Max.Z {
			continue
		}
		if b.Max.Y <= p.Y && b.Max.Y > h {
			h = b.Max.Y
		}
	}
	return h
}
