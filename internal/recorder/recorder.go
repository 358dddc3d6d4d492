package recorder

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"city-flight-simulator/internal/geo"
	"city-flight-simulator/internal/sim"

	"github.com/google/uuid"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNoSession = errors.New("no active flight session")

const (
	queueSize     = 4096
	batchSize     = 256
	flushInterval = 500 * time.Millisecond
)

type queued struct {
	sample *FlightSample
	event  *FlightEvent
}

// Recorder persists flight sessions. It is a sim.Sink: OnSample and
// OnEvent only enqueue, a background goroutine writes in batches.
type Recorder struct {
	db     *gorm.DB
	origin geo.Origin
	log    zerolog.Logger

	mu      sync.Mutex
	session *FlightSession
	queue   chan queued
	done    chan struct{}
	closed  bool
	dropped int
}

var _ sim.Sink = (*Recorder)(nil)

func New(db *gorm.DB, origin geo.Origin, log zerolog.Logger) *Recorder {
	return &Recorder{db: db, origin: origin, log: log}
}

// StartSession creates a session row and starts the background writer.
// cfg is stored as JSON alongside the session.
func (r *Recorder) StartSession(name string, cfg any) (*FlightSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		return nil, fmt.Errorf("session %s already active", r.session.UUID)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding session config: %w", err)
	}
	s := &FlightSession{
		UUID:      uuid.NewString(),
		Name:      name,
		Config:    datatypes.JSON(raw),
		OriginLon: r.origin.Lon,
		OriginLat: r.origin.Lat,
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.Create(s).Error; err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	r.session = s
	r.closed = false
	r.dropped = 0
	r.queue = make(chan queued, queueSize)
	r.done = make(chan struct{})
	go r.run(r.queue, r.done)

	r.log.Info().Str("session", s.UUID).Str("name", name).Msg("flight recording started")
	return s, nil
}

// Session returns the active session, or nil.
func (r *Recorder) Session() *FlightSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *Recorder) sampleRow(sessionID uint, elapsed time.Duration, snap sim.FlightSnapshot, mode string) *FlightSample {
	return &FlightSample{
		SessionID:  sessionID,
		ElapsedMs:  elapsed.Milliseconds(),
		Position:   r.origin.PointFromLocal(snap.Position),
		LocalX:     snap.Position.X,
		LocalY:     snap.Position.Y,
		LocalZ:     snap.Position.Z,
		Speed:      snap.Speed,
		Altitude:   snap.Altitude,
		Heading:    snap.Heading,
		Pitch:      snap.Rotation.Z,
		Roll:       snap.Rotation.X,
		Throttle:   snap.Throttle,
		IsFlying:   snap.IsFlying,
		IsOnGround: snap.IsOnGround,
		CameraMode: mode,
	}
}

func (r *Recorder) eventRow(sessionID uint, ev sim.FlightEvent) (*FlightEvent, error) {
	data := datatypes.JSON("{}")
	if len(ev.Detail) > 0 {
		raw, err := json.Marshal(ev.Detail)
		if err != nil {
			return nil, fmt.Errorf("encoding event detail: %w", err)
		}
		data = datatypes.JSON(raw)
	}
	return &FlightEvent{
		SessionID: sessionID,
		ElapsedMs: ev.Elapsed.Milliseconds(),
		Kind:      string(ev.Kind),
		Position:  r.origin.PointFromLocal(ev.Snapshot.Position),
		Data:      data,
	}, nil
}

// RecordSample writes one sample synchronously.
func (r *Recorder) RecordSample(elapsed time.Duration, snap sim.FlightSnapshot, mode string) error {
	s := r.Session()
	if s == nil {
		return ErrNoSession
	}
	if err := r.db.Create(r.sampleRow(s.ID, elapsed, snap, mode)).Error; err != nil {
		return fmt.Errorf("writing sample: %w", err)
	}
	return nil
}

// RecordEvent writes one event synchronously.
func (r *Recorder) RecordEvent(ev sim.FlightEvent) error {
	s := r.Session()
	if s == nil {
		return ErrNoSession
	}
	row, err := r.eventRow(s.ID, ev)
	if err != nil {
		return err
	}
	if err := r.db.Create(row).Error; err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

func (r *Recorder) enqueue(q queued) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil || r.closed {
		return
	}
	select {
	case r.queue <- q:
	default:
		r.dropped++
		if r.dropped == 1 || r.dropped%1000 == 0 {
			r.log.Warn().Int("dropped", r.dropped).Msg("recorder queue full, dropping")
		}
	}
}

func (r *Recorder) OnSample(elapsed time.Duration, snap sim.FlightSnapshot, cameraMode string) {
	s := r.Session()
	if s == nil {
		return
	}
	r.enqueue(queued{sample: r.sampleRow(s.ID, elapsed, snap, cameraMode)})
}

func (r *Recorder) OnEvent(ev sim.FlightEvent) {
	s := r.Session()
	if s == nil {
		return
	}
	row, err := r.eventRow(s.ID, ev)
	if err != nil {
		r.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("dropping event")
		return
	}
	r.enqueue(queued{event: row})
}

func (r *Recorder) run(queue <-chan queued, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	samples := make([]*FlightSample, 0, batchSize)
	flush := func() {
		if len(samples) == 0 {
			return
		}
		if err := r.db.CreateInBatches(samples, batchSize).Error; err != nil {
			r.log.Error().Err(err).Int("count", len(samples)).Msg("failed to write samples")
		}
		samples = samples[:0]
	}

	for {
		select {
		case q, ok := <-queue:
			if !ok {
				flush()
				return
			}
			if q.sample != nil {
				samples = append(samples, q.sample)
				if len(samples) >= batchSize {
					flush()
				}
			}
			if q.event != nil {
				// keep samples ahead of the event they precede
				flush()
				if err := r.db.Create(q.event).Error; err != nil {
					r.log.Error().Err(err).Str("kind", q.event.Kind).Msg("failed to write event")
				}
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Close drains the queue, then ends the session.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.session == nil {
		r.mu.Unlock()
		return nil
	}
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	done := r.done
	r.mu.Unlock()

	<-done
	return r.EndSession()
}

// EndSession stamps the end time on the active session and detaches it.
// Queued writes still in flight are left to Close.
func (r *Recorder) EndSession() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return ErrNoSession
	}
	end := sql.NullTime{Time: time.Now().UTC(), Valid: true}
	if err := r.db.Model(r.session).Update("ended_at", end).Error; err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	r.session.EndedAt = end
	r.log.Info().Str("session", r.session.UUID).Int("dropped", r.dropped).Msg("flight recording ended")
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.session = nil
	return nil
}

// Sessions lists recorded sessions, newest first.
func (r *Recorder) Sessions() ([]FlightSession, error) {
	var out []FlightSession
	if err := r.db.Order("id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return out, nil
}

// Samples returns a session's samples in time order.
func (r *Recorder) Samples(sessionID uint) ([]FlightSample, error) {
	var out []FlightSample
	err := r.db.Where("session_id = ?", sessionID).Order("elapsed_ms asc, id asc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	return out, nil
}

// Events returns a session's events in time order.
func (r *Recorder) Events(sessionID uint) ([]FlightEvent, error) {
	var out []FlightEvent
	err := r.db.Where("session_id = ?", sessionID).Order("elapsed_ms asc, id asc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	return out, nil
}

// Track returns the session's flight path as an EPSG:3857 line string.
func (r *Recorder) Track(sessionID uint) (geom.LineString, error) {
	samples, err := r.Samples(sessionID)
	if err != nil {
		return geom.LineString{}, err
	}
	path := make([]sim.Vec3, len(samples))
	for i, s := range samples {
		path[i] = sim.Vec3{X: s.LocalX, Y: s.LocalY, Z: s.LocalZ}
	}
	return r.origin.TrackLineString(path), nil
}
