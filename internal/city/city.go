package city

import (
	"errors"
	"fmt"
	"os"

	"city-flight-simulator/internal/sim"

	"gopkg.in/yaml.v3"
)

// ErrEmptyLayout is returned for a layout without buildings.
var ErrEmptyLayout = errors.New("layout has no buildings")

var (
	rowZ    = []float64{20, -20, 60}
	columnX = []float64{20, 35, 50, -20, -35, -50, 65, -65, 80}
	palette = []uint32{0x8B4513, 0x708090, 0x2F4F4F, 0x696969, 0x4682B4, 0x556B2F}
)

const (
	footprint  = 10.0
	baseHeight = 12.0
	floorStep  = 6.0
)

// Building is an axis-aligned box standing on the ground, centered on X/Z.
type Building struct {
	X      float64 `yaml:"x"`
	Z      float64 `yaml:"z"`
	Width  float64 `yaml:"width"`
	Depth  float64 `yaml:"depth"`
	Height float64 `yaml:"height"`
	Color  uint32  `yaml:"color"`
}

// Box returns the building's collision box.
func (b Building) Box() sim.AABB {
	return sim.AABB{
		Min: sim.Vec3{X: b.X - b.Width/2, Y: 0, Z: b.Z - b.Depth/2},
		Max: sim.Vec3{X: b.X + b.Width/2, Y: b.Height, Z: b.Z + b.Depth/2},
	}
}

// Layout is the YAML document read by LoadLayout.
//
//	buildings:
//	  - {x: 20, z: 20, width: 10, depth: 10, height: 18, color: 0x708090}
type Layout struct {
	Buildings []Building `yaml:"buildings"`
}

type City struct {
	Buildings []Building
}

// Generate builds the default downtown: three rows of nine buildings.
func Generate() *City {
	c := &City{Buildings: make([]Building, 0, len(rowZ)*len(columnX))}
	i := 0
	for _, z := range rowZ {
		for _, x := range columnX {
			c.Buildings = append(c.Buildings, Building{
				X:      x,
				Z:      z,
				Width:  footprint,
				Depth:  footprint,
				Height: baseHeight + float64((i*7)%5)*floorStep,
				Color:  palette[i%len(palette)],
			})
			i++
		}
	}
	return c
}

// LoadLayout reads a YAML layout from path.
func LoadLayout(path string) (*City, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLayout(b)
}

// ParseLayout parses and validates a YAML layout.
func ParseLayout(b []byte) (*City, error) {
	var l Layout
	if err := yaml.Unmarshal(b, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(l.Buildings) == 0 {
		return nil, ErrEmptyLayout
	}
	for i, bd := range l.Buildings {
		if bd.Width <= 0 || bd.Depth <= 0 || bd.Height <= 0 {
			return nil, fmt.Errorf("buildings[%d]: width, depth and height must be positive", i)
		}
	}
	return &City{Buildings: l.Buildings}, nil
}

// Obstacles returns one box per building, in building order.
func (c *City) Obstacles() []sim.AABB {
	boxes := make([]sim.AABB, len(c.Buildings))
	for i, b := range c.Buildings {
		boxes[i] = b.Box()
	}
	return boxes
}

// Colors returns one 0xRRGGBB color per building, in building order.
func (c *City) Colors() []uint32 {
	colors := make([]uint32, len(c.Buildings))
	for i, b := range c.Buildings {
		colors[i] = b.Color
	}
	return colors
}

// GroundHeightAt returns the roof height of the tallest building covering
// (x, z), or 0 over open ground.
func (c *City) GroundHeightAt(x, z float64) float64 {
	h := 0.0
	for _, b := range c.Buildings {
		box := b.Box()
		if x >= box.Min.X && x <= box.Max.X && z >= box.Min.Z && z <= box.Max.Z && box.Max.Y > h {
			h = box.Max.Y
		}
	}
	return h
}

// Extent returns the box enclosing every building.
func (c *City) Extent() sim.AABB {
	if len(c.Buildings) == 0 {
		return sim.AABB{}
	}
	ext := c.Buildings[0].Box()
	for _, b := range c.Buildings[1:] {
		box := b.Box()
		ext.Min = sim.Vec3{X: min(ext.Min.X, box.Min.X), Y: min(ext.Min.Y, box.Min.Y), Z: min(ext.Min.Z, box.Min.Z)}
		ext.Max = sim.Vec3{X: max(ext.Max.X, box.Max.X), Y: max(ext.Max.Y, box.Max.Y), Z: max(ext.Max.Z, box.Max.Z)}
	}
	return ext
}
