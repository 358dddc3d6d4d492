package sim

import "time"

type EventKind string

const (
	EventCrash             EventKind = "crash"
	EventLanding           EventKind = "landing"
	EventTakeoff           EventKind = "takeoff"
	EventReset             EventKind = "reset"
	EventBuildingCollision EventKind = "building_collision"
	EventCameraMode        EventKind = "camera_mode"
	EventDebugMode         EventKind = "debug_mode"
)

// FlightSnapshot is a copy of the airplane state taken at one instant.
// Consumers never see the live Physics fields.
type FlightSnapshot struct {
	Position   Vec3    `json:"position"`
	Velocity   Vec3    `json:"velocity"`
	Rotation   Vec3    `json:"rotation"`
	Forward    Vec3    `json:"forward"`
	Speed      float64 `json:"speed"`
	Altitude   float64 `json:"altitude"`
	Heading    float64 `json:"heading"`
	IsFlying   bool    `json:"isFlying"`
	IsOnGround bool    `json:"isOnGround"`
	Throttle   float64 `json:"throttle"`
	Fuel       float64 `json:"fuel"`
}

type FlightEvent struct {
	Kind     EventKind
	Elapsed  time.Duration
	Snapshot FlightSnapshot
	Detail   map[string]any
}

// Sink receives simulation output. Implementations must not block the
// caller for long; buffer and process elsewhere.
type Sink interface {
	OnSample(elapsed time.Duration, snap FlightSnapshot, cameraMode string)
	OnEvent(ev FlightEvent)
}
