package recorder

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every table the recorder migrates.
var DatabaseModels = []interface{}{
	&FlightSession{},
	&FlightSample{},
	&FlightEvent{},
}

// FlightSession is one recorded flight, from StartSession to EndSession.
type FlightSession struct {
	gorm.Model
	UUID      string         `json:"uuid" gorm:"size:36;uniqueIndex"`
	Name      string         `json:"name" gorm:"size:200"`
	Config    datatypes.JSON `json:"config"`
	OriginLon float64        `json:"originLon"`
	OriginLat float64        `json:"originLat"`
	StartedAt time.Time      `json:"startedAt"`
	EndedAt   sql.NullTime   `json:"endedAt"`
}

func (*FlightSession) TableName() string {
	return "flight_sessions"
}

// FlightSample is a periodic airplane state. Position is EPSG:3857, the
// Local fields keep the simulator frame for replay.
type FlightSample struct {
	ID         uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID  uint       `json:"sessionId" gorm:"index:idx_sample_session_id"`
	ElapsedMs  int64      `json:"elapsedMs" gorm:"index:idx_sample_elapsed"`
	Position   geom.Point `json:"position"`
	LocalX     float64    `json:"localX"`
	LocalY     float64    `json:"localY"`
	LocalZ     float64    `json:"localZ"`
	Speed      float64    `json:"speed"`
	Altitude   float64    `json:"altitude"`
	Heading    float64    `json:"heading"`
	Pitch      float64    `json:"pitch"`
	Roll       float64    `json:"roll"`
	Throttle   float64    `json:"throttle"`
	IsFlying   bool       `json:"isFlying" gorm:"default:false"`
	IsOnGround bool       `json:"isOnGround" gorm:"default:false"`
	CameraMode string     `json:"cameraMode" gorm:"size:16"`
}

func (*FlightSample) TableName() string {
	return "flight_samples"
}

// FlightEvent is a discrete flight event such as a crash or a landing.
type FlightEvent struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID uint           `json:"sessionId" gorm:"index:idx_event_session_id"`
	ElapsedMs int64          `json:"elapsedMs"`
	Kind      string         `json:"kind" gorm:"size:32;index:idx_event_kind"`
	Position  geom.Point     `json:"position"`
	Data      datatypes.JSON `json:"data"`
}

func (*FlightEvent) TableName() string {
	return "flight_events"
}
