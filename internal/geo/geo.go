package geo

import (
	"errors"
	"math"

	"city-flight-simulator/internal/sim"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// The simulator world is a flat local frame: +X east, +Y up, -Z north.
// Positions are anchored to a WGS84 origin with an equirectangular
// projection, which is accurate enough over a few kilometers of city.
// Stored geometry is always EPSG:3857 so sqlite can keep it as WKB.

const earthRadius = 6378137.0

// ErrInvalidOrigin is returned when the origin is outside WGS84 bounds.
var ErrInvalidOrigin = errors.New("invalid geographic origin")

// Origin is the WGS84 location of the local (0, 0, 0).
type Origin struct {
	Lon float64
	Lat float64
}

// NewOrigin validates lon/lat and returns the origin.
func NewOrigin(lon, lat float64) (Origin, error) {
	o := Origin{Lon: lon, Lat: lat}
	if err := o.Validate(); err != nil {
		return Origin{}, err
	}
	return o, nil
}

func (o Origin) Validate() error {
	if math.IsNaN(o.Lon) || math.IsNaN(o.Lat) {
		return ErrInvalidOrigin
	}
	// web mercator is undefined at the poles
	if o.Lon < -180 || o.Lon > 180 || o.Lat <= -85.06 || o.Lat >= 85.06 {
		return ErrInvalidOrigin
	}
	return nil
}

// ToWGS84 converts a local position to longitude, latitude and altitude.
func (o Origin) ToWGS84(p sim.Vec3) (lon, lat, alt float64) {
	latRad := o.Lat * math.Pi / 180
	lat = o.Lat - (p.Z/earthRadius)*180/math.Pi
	lon = o.Lon + (p.X/(earthRadius*math.Cos(latRad)))*180/math.Pi
	return lon, lat, p.Y
}

// FromWGS84 is the inverse of ToWGS84.
func (o Origin) FromWGS84(lon, lat, alt float64) sim.Vec3 {
	latRad := o.Lat * math.Pi / 180
	return sim.Vec3{
		X: (lon - o.Lon) * math.Pi / 180 * earthRadius * math.Cos(latRad),
		Y: alt,
		Z: -(lat - o.Lat) * math.Pi / 180 * earthRadius,
	}
}

// To3857 projects a local position to web mercator meters.
func (o Origin) To3857(p sim.Vec3) (x, y, z float64) {
	lon, lat, alt := o.ToWGS84(p)
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(lon, lat, 0)
	return x, y, alt
}

// PointFromLocal returns the local position as an EPSG:3857 XYZ point.
func (o Origin) PointFromLocal(p sim.Vec3) geom.Point {
	x, y, z := o.To3857(p)
	return geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Z:    z,
			Type: geom.CoordinatesType(geom.DimXYZ),
		},
	)
}

// TrackLineString builds a 3857 line string from a flight path. Fewer than two
// positions give an empty line string.
func (o Origin) TrackLineString(path []sim.Vec3) geom.LineString {
	if len(path) < 2 {
		return geom.LineString{}
	}
	coords := make([]float64, 0, len(path)*3)
	for _, p := range path {
		x, y, z := o.To3857(p)
		coords = append(coords, x, y, z)
	}
	seq := geom.NewSequence(coords, geom.DimXYZ)
	return geom.NewLineString(seq)
}

// LocalFromPoint reverses PointFromLocal using the 3857 to 4326 transform.
func (o Origin) LocalFromPoint(pt geom.Point) (sim.Vec3, bool) {
	c, ok := pt.Coordinates()
	if !ok {
		return sim.Vec3{}, false
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(3857, 4326)
	lon, lat, _ := f(c.XY.X, c.XY.Y, 0)
	return o.FromWGS84(lon, lat, c.Z), true
}
