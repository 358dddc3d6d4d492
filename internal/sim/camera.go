package sim

import (
	"math"

	"github.com/rs/zerolog"
)

const (
	ModeChase   = "chase"
	ModeCockpit = "cockpit"
	ModeOrbit   = "orbit"
	ModeFree    = "free"
	ModeDynamic = "dynamic"
)

// ModeKeys maps the number row onto camera modes.
var ModeKeys = map[KeyCode]string{
	KeyDigit1: ModeChase,
	KeyDigit2: ModeCockpit,
	KeyDigit3: ModeOrbit,
	KeyDigit4: ModeFree,
	KeyDigit5: ModeDynamic,
}

type CameraConfig struct {
	FollowDistance             float64 `mapstructure:"followDistance"`
	FollowHeight               float64 `mapstructure:"followHeight"`
	LookAhead                  float64 `mapstructure:"lookAhead"`
	SmoothingFactor            float64 `mapstructure:"smoothingFactor"`
	VerticalSmoothing          float64 `mapstructure:"verticalSmoothing"`
	AutoSwitchDistance         float64 `mapstructure:"autoSwitchDistance"`
	MinHeight                  float64 `mapstructure:"minHeight"`
	MaxHeight                  float64 `mapstructure:"maxHeight"`
	ZoomMin                    float64 `mapstructure:"zoomMin"`
	ZoomMax                    float64 `mapstructure:"zoomMax"`
	CollisionAvoidanceDistance float64 `mapstructure:"collisionAvoidanceDistance"`
	OrbitRadius                float64 `mapstructure:"orbitRadius"`
	OrbitSpeed                 float64 `mapstructure:"orbitSpeed"`
	CockpitOffset              Vec3    `mapstructure:"cockpitOffset"`
}

func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FollowDistance:             15,
		FollowHeight:               5,
		LookAhead:                  8,
		SmoothingFactor:            0.05,
		VerticalSmoothing:          0.03,
		AutoSwitchDistance:         50,
		MinHeight:                  2,
		MaxHeight:                  100,
		ZoomMin:                    0.5,
		ZoomMax:                    3.0,
		CollisionAvoidanceDistance: 5,
		OrbitRadius:                20,
		OrbitSpeed:                 0.5,
		CockpitOffset:              Vec3{0, 0.5, 0},
	}
}

// DynamicSettings toggles the adaptive parts of the dynamic mode.
type DynamicSettings struct {
	SpeedBasedDistance  bool `json:"speedBasedDistance"`
	AltitudeBasedHeight bool `json:"altitudeBasedHeight"`
}

// CameraPose is what a renderer needs to build a view matrix.
type CameraPose struct {
	Position Vec3
	LookAt   Vec3
	Up       Vec3
	Roll     float64
	Mode     string
	Zoom     float64
}

type CameraInfo struct {
	Mode            string
	Position        Vec3
	LookAt          Vec3
	Zoom            float64
	TargetZoom      float64
	FollowDistance  float64
	FollowHeight    float64
	OrbitRadius     float64
	DynamicSettings DynamicSettings
}

// FlightSource supplies the snapshot the camera follows.
type FlightSource interface {
	FlightData() FlightSnapshot
}

const (
	zoomRate         = 5.0
	zoomKeyStep      = 0.25
	cockpitLookAhead = 10.0
	dynamicSpeedRef  = 40.0
	dynamicSpeedGain = 0.6
	dynamicAltGain   = 0.1
	dynamicTurnGain  = 10.0
	adaptiveSpeedRef = 80.0
	distanceMin      = 5.0
	distanceMax      = 50.0
	heightMin        = -5.0
	heightMax        = 20.0
	orbitRadiusMin   = 10.0
	orbitRadiusMax   = 100.0
)

var worldUp = Vec3{0, 1, 0}

// CameraController places the camera each tick according to the active
// mode. It never writes flight state.
type CameraController struct {
	cfg      CameraConfig
	defaults CameraConfig
	source   FlightSource
	modes    *ModeManager
	log      zerolog.Logger

	position       Vec3
	lookAt         Vec3
	up             Vec3
	roll           float64
	targetPosition Vec3
	targetLookAt   Vec3

	zoom       float64
	targetZoom float64
	orbitAngle float64
	dynamic    DynamicSettings
	obstacles  []AABB
	active     bool

	// OnModeChange fires after a successful mode switch. Optional.
	OnModeChange func(from, to string)
}

func NewCameraController(source FlightSource, cfg CameraConfig, log zerolog.Logger) *CameraController {
	c := &CameraController{
		cfg:        cfg,
		defaults:   cfg,
		source:     source,
		log:        log,
		up:         worldUp,
		zoom:       1.0,
		targetZoom: 1.0,
		dynamic:    DynamicSettings{SpeedBasedDistance: true, AltitudeBasedHeight: true},
	}
	c.modes = NewModeManager(log)
	c.modes.Register(&chaseMode{c: c})
	c.modes.Register(&cockpitMode{c: c})
	c.modes.Register(&orbitMode{c: c})
	c.modes.Register(&freeMode{c: c})
	c.modes.Register(&dynamicMode{c: c})
	c.modes.Switch(ModeChase)

	if source != nil {
		snap := source.FlightData()
		c.position, c.lookAt = c.chaseTarget(snap, c.cfg.FollowDistance, c.cfg.FollowHeight)
		c.targetPosition, c.targetLookAt = c.position, c.lookAt
	}
	return c
}

func (c *CameraController) Activate() {
	c.active = true
}

// Deactivate stops updates and clears the orbit accumulator.
func (c *CameraController) Deactivate() {
	c.active = false
	c.orbitAngle = 0
}

func (c *CameraController) Active() bool { return c.active }

// Dispose releases the obstacle list and deactivates the controller.
func (c *CameraController) Dispose() {
	c.Deactivate()
	c.obstacles = nil
}

// Update advances zoom and the active mode. It is a no-op while inactive
// or without a flight source.
func (c *CameraController) Update(dt float64) {
	if !c.active || c.source == nil {
		return
	}
	snap := c.source.FlightData()
	c.UpdateZoom(dt)
	if mode := c.modes.Current(); mode != nil {
		mode.Update(snap, dt)
	}
}

// SetMode switches to a named mode. Unknown names are rejected.
func (c *CameraController) SetMode(name string) bool {
	from := c.modes.CurrentName()
	if !c.modes.Switch(name) {
		return false
	}
	if from != name && c.OnModeChange != nil {
		c.OnModeChange(from, name)
	}
	return true
}

func (c *CameraController) Mode() string        { return c.modes.CurrentName() }
func (c *CameraController) ModeNames() []string { return c.modes.Names() }

// HandleKey applies camera keys and reports whether the key was consumed.
func (c *CameraController) HandleKey(code KeyCode) bool {
	if name, ok := ModeKeys[code]; ok {
		c.SetMode(name)
		return true
	}
	switch code {
	case KeyEqual:
		c.AdjustZoom(-zoomKeyStep)
	case KeyMinus:
		c.AdjustZoom(zoomKeyStep)
	case KeyDigit0:
		c.ResetZoom()
	default:
		return false
	}
	return true
}

func (c *CameraController) Zoom() float64       { return c.zoom }
func (c *CameraController) TargetZoom() float64 { return c.targetZoom }

func (c *CameraController) SetTargetZoom(z float64) {
	c.targetZoom = Clamp(z, c.cfg.ZoomMin, c.cfg.ZoomMax)
}

func (c *CameraController) AdjustZoom(delta float64) { c.SetTargetZoom(c.targetZoom + delta) }
func (c *CameraController) ResetZoom()               { c.targetZoom = 1.0 }

// SetZoom forces the zoom level without smoothing.
func (c *CameraController) SetZoom(z float64) {
	c.zoom = Clamp(z, c.cfg.ZoomMin, c.cfg.ZoomMax)
	c.targetZoom = c.zoom
}

// UpdateZoom eases the zoom level toward the target.
func (c *CameraController) UpdateZoom(dt float64) {
	t := math.Min(1, zoomRate*dt)
	c.zoom += (c.targetZoom - c.zoom) * t
}

func (c *CameraController) Pose() CameraPose {
	return CameraPose{
		Position: c.position,
		LookAt:   c.lookAt,
		Up:       c.up,
		Roll:     c.roll,
		Mode:     c.Mode(),
		Zoom:     c.zoom,
	}
}

// TargetPosition is where smoothing is heading in chase and dynamic modes.
func (c *CameraController) TargetPosition() Vec3 { return c.targetPosition }

// SetPosition moves the camera directly, e.g. for the free mode.
func (c *CameraController) SetPosition(p Vec3) { c.position = p }

func (c *CameraController) SetObstacles(boxes []AABB) {
	c.obstacles = append(c.obstacles[:0], boxes...)
}

func (c *CameraController) Obstacles() []AABB { return c.obstacles }

func (c *CameraController) AdjustDistance(delta float64) {
	c.cfg.FollowDistance = Clamp(c.cfg.FollowDistance+delta, distanceMin, distanceMax)
}

func (c *CameraController) AdjustHeight(delta float64) {
	c.cfg.FollowHeight = Clamp(c.cfg.FollowHeight+delta, heightMin, heightMax)
}

func (c *CameraController) AdjustOrbitRadius(delta float64) {
	c.cfg.OrbitRadius = Clamp(c.cfg.OrbitRadius+delta, orbitRadiusMin, orbitRadiusMax)
}

func (c *CameraController) Config() CameraConfig { return c.cfg }

func (c *CameraController) DynamicSettings() DynamicSettings { return c.dynamic }

func (c *CameraController) UpdateDynamicSettings(s DynamicSettings) { c.dynamic = s }

func (c *CameraController) OrbitAngle() float64 { return c.orbitAngle }

func (c *CameraController) Info() CameraInfo {
	return CameraInfo{
		Mode:            c.Mode(),
		Position:        c.position,
		LookAt:          c.lookAt,
		Zoom:            c.zoom,
		TargetZoom:      c.targetZoom,
		FollowDistance:  c.cfg.FollowDistance,
		FollowHeight:    c.cfg.FollowHeight,
		OrbitRadius:     c.cfg.OrbitRadius,
		DynamicSettings: c.dynamic,
	}
}

// ResetSettings restores distance, height and orbit defaults and returns to
// the chase mode.
func (c *CameraController) ResetSettings() {
	c.cfg.FollowDistance = c.defaults.FollowDistance
	c.cfg.FollowHeight = c.defaults.FollowHeight
	c.cfg.OrbitRadius = c.defaults.OrbitRadius
	c.orbitAngle = 0
	c.SetMode(ModeChase)
}

// followFrame returns the forward, backward, right and camera-up axes for a
// snapshot. A degenerate forward vector falls back to world X.
func followFrame(snap FlightSnapshot) (forward, backward, right, up Vec3) {
	forward = snap.Forward.NormalizeSafe(1e-9)
	if forward == (Vec3{}) {
		forward = Vec3{1, 0, 0}
	}
	backward = forward.Mul(-1)
	right = worldUp.Cross(backward).NormalizeSafe(1e-9)
	if right == (Vec3{}) {
		right = Vec3{0, 0, 1}
	}
	up = backward.Cross(right).Normalize()
	return forward, backward, right, up
}

// chaseTarget returns the unsmoothed chase position and look-at point.
func (c *CameraController) chaseTarget(snap FlightSnapshot, distance, height float64) (Vec3, Vec3) {
	forward, backward, _, up := followFrame(snap)
	pos := snap.Position.
		Add(backward.Mul(distance * c.zoom)).
		Add(up.Mul(height * c.zoom))
	pos.Y = math.Max(pos.Y, c.cfg.MinHeight)
	look := snap.Position.Add(forward.Mul(c.cfg.LookAhead))
	return pos, look
}

// AvoidCollisions nudges a candidate camera position clear of obstacles
// between it and from. Obstacles hit before the candidate, or within the
// avoidance distance past it, push the camera up by that distance; if the
// raised point still sits on an obstacle it is also shifted sideways.
func (c *CameraController) AvoidCollisions(target, from Vec3) Vec3 {
	if len(c.obstacles) == 0 {
		return target
	}
	d := c.cfg.CollisionAvoidanceDistance
	dir := target.Sub(from)
	dist := dir.Length()
	if dist < 1e-9 {
		return target
	}

	if _, hit := Raycast(from, dir, dist+d, c.obstacles); !hit {
		return target
	}

	safe := target
	safe.Y += d

	if _, blocked := Raycast(safe, Vec3{0, -1, 0}, d, c.obstacles); blocked {
		side := worldUp.Cross(dir.Mul(1 / dist)).NormalizeSafe(1e-9)
		if side == (Vec3{}) {
			side = Vec3{1, 0, 0}
		}
		safe = safe.Add(side.Mul(d))
	}
	return safe
}
