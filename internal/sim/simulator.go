package sim

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	CameraFlight   = "flight"
	CameraOverview = "overview"
)

// Options configures a Simulator. Zero rates fall back to 120 Hz and five
// steps per frame.
type Options struct {
	Physics          PhysicsConfig
	Controller       ControllerConfig
	Camera           CameraConfig
	Overview         OrbitViewConfig
	UPS              int
	MaxStepsPerFrame int
	// SampleEvery is the number of ticks between sink samples. Zero
	// disables sampling.
	SampleEvery int
	Buildings   []AABB
	Logger      zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Physics:          DefaultPhysicsConfig(),
		Controller:       DefaultControllerConfig(),
		Camera:           DefaultCameraConfig(),
		Overview:         DefaultOrbitViewConfig(),
		UPS:              120,
		MaxStepsPerFrame: 5,
		SampleEvery:      12,
		Logger:           zerolog.Nop(),
	}
}

// Simulator owns one airplane flying through a set of box buildings and the
// cameras that watch it. All methods are safe for concurrent use.
type Simulator struct {
	mu sync.RWMutex

	airplane  *Airplane
	debugger  *Debugger
	camera    *CameraController
	overview  *OrbitViewController
	cameras   *CameraManager
	buildings []AABB
	sinks     []Sink

	fixed       time.Duration
	maxSteps    int
	sampleEvery int
	acc         time.Duration
	elapsed     time.Duration
	ticks       uint64
	started     bool

	log zerolog.Logger
}

func NewSimulator(opts Options) *Simulator {
	if opts.UPS <= 0 {
		opts.UPS = 120
	}
	if opts.MaxStepsPerFrame <= 0 {
		opts.MaxStepsPerFrame = 5
	}

	s := &Simulator{
		fixed:       time.Second / time.Duration(opts.UPS),
		maxSteps:    opts.MaxStepsPerFrame,
		sampleEvery: opts.SampleEvery,
		buildings:   append([]AABB(nil), opts.Buildings...),
		log:         opts.Logger,
	}

	s.airplane = NewAirplane(opts.Physics, opts.Controller, s.log)
	s.airplane.OnBuildingCollision = func(i int) {
		s.emit(EventBuildingCollision, map[string]any{"building": i})
	}
	s.debugger = NewDebugger(s.airplane, s.log)

	s.camera = NewCameraController(s.airplane, opts.Camera, s.log)
	s.camera.SetObstacles(s.buildings)
	s.camera.OnModeChange = func(from, to string) {
		s.emit(EventCameraMode, map[string]any{"from": from, "to": to})
	}
	s.overview = NewOrbitViewController(opts.Overview)

	s.cameras = NewCameraManager(s.log)
	s.cameras.Add(CameraFlight, s.camera).Add(CameraOverview, s.overview)
	s.cameras.Switch(CameraOverview)

	s.log.Info().
		Int("ups", opts.UPS).
		Int("buildings", len(s.buildings)).
		Msg("simulator created")
	return s
}

// AddSink registers a consumer for samples and events. Sinks are called
// with the simulator lock held and must not call back into it.
func (s *Simulator) AddSink(k Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, k)
}

// StartFlight hands the view to the flight camera and enables the controls.
func (s *Simulator) StartFlight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startFlight()
}

func (s *Simulator) startFlight() {
	if s.started {
		return
	}
	s.started = true
	s.cameras.Switch(CameraFlight)
	s.airplane.EnableControls()
	s.log.Info().Msg("flight started")
}

// ShowOverview returns to the orbiting overview camera with controls off.
func (s *Simulator) ShowOverview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.airplane.DisableControls()
	s.cameras.Switch(CameraOverview)
}

func (s *Simulator) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// HandleKey routes one key edge. The debugger toggle and, while debugging,
// the debugger keys come first. Before the flight starts only Enter is
// honored. Otherwise camera keys are tried before the flight controls.
func (s *Simulator) HandleKey(code KeyCode, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code == KeyF {
		if pressed {
			on := s.debugger.Toggle()
			if !on && !s.started {
				s.airplane.DisableControls()
			}
			s.emit(EventDebugMode, map[string]any{"active": on})
		}
		return
	}
	if s.debugger.Active() {
		if pressed {
			s.debugger.HandleKey(code)
		}
		return
	}
	if !s.started {
		if pressed && code == KeyEnter {
			s.startFlight()
		}
		return
	}
	if pressed && s.camera.HandleKey(code) {
		return
	}
	s.airplane.Controller.SetKeyState(code, pressed)
}

// Step advances the world by one tick of dt seconds.
func (s *Simulator) Step(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step(dt)
}

func (s *Simulator) step(dt float64) {
	s.airplane.Update(dt)
	s.airplane.Physics.SetGroundHeight(SurfaceHeight(s.buildings, s.airplane.Physics.Position))
	if !s.debugger.Active() {
		s.airplane.CheckBuildingCollision(s.buildings)
	}
	s.cameras.Update(dt)

	s.elapsed += time.Duration(dt * float64(time.Second))
	s.ticks++
	s.flushPhysicsEvents()

	if s.sampleEvery > 0 && s.ticks%uint64(s.sampleEvery) == 0 && len(s.sinks) > 0 {
		snap := s.airplane.FlightData()
		mode := s.cameraModeLocked()
		for _, k := range s.sinks {
			k.OnSample(s.elapsed, snap, mode)
		}
	}
}

// Advance feeds one frame of wall time into the fixed-step accumulator and
// runs as many ticks as fit, up to the per-frame cap. It returns the
// interpolation factor for rendering.
func (s *Simulator) Advance(frame time.Duration) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clamp to avoid spiral-of-death on stalls
	if frame > time.Second/4 {
		frame = time.Second / 4
	}
	s.acc += frame

	steps := 0
	for s.acc >= s.fixed && steps < s.maxSteps {
		s.step(s.fixed.Seconds())
		s.acc -= s.fixed
		steps++
	}
	return Clamp(float64(s.acc)/float64(s.fixed), 0, 1)
}

// RunHeadless executes fixed-step ticks without a window. before, when set,
// runs ahead of every tick with the simulated time so far. A positive dur
// bounds simulated time; a positive steps bounds the tick count.
func (s *Simulator) RunHeadless(steps int, dur time.Duration, before func(elapsed time.Duration)) int {
	performed := 0
	for {
		if steps > 0 && performed >= steps {
			break
		}
		if dur > 0 && s.Elapsed() >= dur {
			break
		}
		if steps <= 0 && dur <= 0 {
			break
		}
		if before != nil {
			before(s.Elapsed())
		}
		s.Step(s.fixed.Seconds())
		performed++
	}
	return performed
}

func (s *Simulator) flushPhysicsEvents() {
	for _, kind := range s.airplane.Physics.DrainEvents() {
		s.emit(kind, nil)
	}
}

// emit must be called with the lock held.
func (s *Simulator) emit(kind EventKind, detail map[string]any) {
	if kind != EventCameraMode {
		s.log.Debug().Str("event", string(kind)).Dur("elapsed", s.elapsed).Msg("flight event")
	}
	if len(s.sinks) == 0 {
		return
	}
	ev := FlightEvent{
		Kind:     kind,
		Elapsed:  s.elapsed,
		Snapshot: s.airplane.FlightData(),
		Detail:   detail,
	}
	for _, k := range s.sinks {
		k.OnEvent(ev)
	}
}

func (s *Simulator) Snapshot() FlightSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.airplane.FlightData()
}

// CameraPose returns the pose of whichever camera is in use.
func (s *Simulator) CameraPose() CameraPose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cameras.CurrentName() == CameraOverview {
		return s.overview.Pose()
	}
	return s.camera.Pose()
}

func (s *Simulator) CameraMode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cameraModeLocked()
}

func (s *Simulator) cameraModeLocked() string {
	if s.cameras.CurrentName() == CameraOverview {
		return CameraOverview
	}
	return s.camera.Mode()
}

// AirplaneModel is the interpolated model matrix of the airplane hull.
func (s *Simulator) AirplaneModel(alpha float64) Mat4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.airplane.ModelMatrix(alpha)
}

func (s *Simulator) Buildings() []AABB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AABB(nil), s.buildings...)
}

func (s *Simulator) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsed
}

func (s *Simulator) Ticks() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}

func (s *Simulator) Controls() ControlStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.airplane.Controller.Status()
}

func (s *Simulator) DebugInfo() DebugInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debugger.Info()
}

func (s *Simulator) CameraInfo() CameraInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera.Info()
}

// Do runs f with exclusive access to the airplane and flight camera, for
// callers that need several mutations to happen atomically.
func (s *Simulator) Do(f func(a *Airplane, c *CameraController)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.airplane, s.camera)
}

// Telemetry formats a one-line status summary.
func (s *Simulator) Telemetry() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.airplane.FlightData()
	status := "GROUND"
	switch {
	case s.debugger.Active():
		status = "DEBUG"
	case snap.IsFlying:
		status = "FLYING"
	case !snap.IsOnGround:
		status = "AIRBORNE"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TELEMETRY | %s | CAM: %s | Alt: %.1fm | Speed: %.1fm/s | Throttle: %.0f%% | Heading: %.0f°",
		status, strings.ToUpper(s.cameraModeLocked()), snap.Altitude, snap.Speed,
		snap.Throttle*100, RadToDeg(snap.Heading))

	if s.airplane.Physics.IsStalled() && !snap.IsOnGround {
		b.WriteString(" | ⚠ STALL")
	}
	if snap.Speed > s.airplane.Physics.Config().MaxSpeed*0.9 {
		b.WriteString(" | ⚠ MAX SPEED")
	}
	return b.String()
}
