package sim

import (
	"math"
	"sort"

	"github.com/rs/zerolog"
)

// Controllable is anything the CameraManager can switch between.
type Controllable interface {
	Activate()
	Deactivate()
	Update(dt float64)
	Dispose()
}

// CameraManager owns a set of named camera controllers and runs the one in
// use. Only the current controller is active.
type CameraManager struct {
	controllers map[string]Controllable
	current     Controllable
	currentName string
	log         zerolog.Logger
}

func NewCameraManager(log zerolog.Logger) *CameraManager {
	return &CameraManager{
		controllers: make(map[string]Controllable),
		log:         log,
	}
}

func (m *CameraManager) Add(name string, c Controllable) *CameraManager {
	m.controllers[name] = c
	return m
}

// Remove deactivates (if current) and disposes the named controller.
func (m *CameraManager) Remove(name string) *CameraManager {
	c, ok := m.controllers[name]
	if !ok {
		return m
	}
	if m.current == c {
		c.Deactivate()
		m.current = nil
		m.currentName = ""
	}
	c.Dispose()
	delete(m.controllers, name)
	return m
}

func (m *CameraManager) Switch(name string) bool {
	next, ok := m.controllers[name]
	if !ok {
		m.log.Warn().Str("controller", name).Msg("camera controller not found")
		return false
	}
	if m.current != nil {
		m.current.Deactivate()
	}
	m.current = next
	m.currentName = name
	next.Activate()
	m.log.Debug().Str("controller", name).Msg("camera controller switched")
	return true
}

func (m *CameraManager) Update(dt float64) {
	if m.current != nil {
		m.current.Update(dt)
	}
}

func (m *CameraManager) Current() Controllable { return m.current }
func (m *CameraManager) CurrentName() string   { return m.currentName }

func (m *CameraManager) Get(name string) (Controllable, bool) {
	c, ok := m.controllers[name]
	return c, ok
}

func (m *CameraManager) Names() []string {
	names := make([]string, 0, len(m.controllers))
	for name := range m.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispose deactivates the current controller and disposes all of them.
func (m *CameraManager) Dispose() {
	if m.current != nil {
		m.current.Deactivate()
	}
	for _, c := range m.controllers {
		c.Dispose()
	}
	m.controllers = make(map[string]Controllable)
	m.current = nil
	m.currentName = ""
}

type OrbitViewConfig struct {
	Radius        float64
	Speed         float64
	BaseHeight    float64
	VerticalRange float64
	VerticalSpeed float64
}

func DefaultOrbitViewConfig() OrbitViewConfig {
	return OrbitViewConfig{
		Radius:        70,
		Speed:         0.3,
		BaseHeight:    30,
		VerticalRange: 10,
		VerticalSpeed: 0.2,
	}
}

// OrbitViewController slowly circles the city origin. It is shown before
// the flight starts.
type OrbitViewController struct {
	cfg    OrbitViewConfig
	time   float64
	active bool
	pose   CameraPose
}

func NewOrbitViewController(cfg OrbitViewConfig) *OrbitViewController {
	o := &OrbitViewController{cfg: cfg}
	o.place()
	return o
}

func (o *OrbitViewController) Activate()    { o.active = true }
func (o *OrbitViewController) Deactivate()  { o.active = false }
func (o *OrbitViewController) Dispose()     { o.active = false }
func (o *OrbitViewController) Active() bool { return o.active }

func (o *OrbitViewController) Update(dt float64) {
	if !o.active {
		return
	}
	o.time += dt
	o.place()
}

func (o *OrbitViewController) place() {
	a := o.time * o.cfg.Speed
	o.pose = CameraPose{
		Position: Vec3{
			X: math.Cos(a) * o.cfg.Radius,
			Y: o.cfg.BaseHeight + math.Sin(o.time*o.cfg.VerticalSpeed)*o.cfg.VerticalRange,
			Z: math.Sin(a) * o.cfg.Radius,
		},
		Up:   worldUp,
		Mode: "overview",
		Zoom: 1,
	}
}

func (o *OrbitViewController) Pose() CameraPose { return o.pose }
