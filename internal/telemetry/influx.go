package telemetry

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"city-flight-simulator/internal/sim"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

const (
	MeasurementFlight = "flight"
	MeasurementEvent  = "flight_event"
)

// Manager writes flight telemetry to InfluxDB, or to a gzip line protocol
// file when the server cannot be reached.
type Manager struct {
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	URL          string
	Token        string
	Org          string
	Bucket       string
	BackupPath   string
	Logger       zerolog.Logger

	mu         sync.Mutex
	backupFile *os.File
}

var _ sim.Sink = (*Manager)(nil)

func NewManager(url, token, org, bucket, backupPath string, log zerolog.Logger) *Manager {
	return &Manager{
		IsValid:    false,
		URL:        url,
		Token:      token,
		Org:        org,
		Bucket:     bucket,
		BackupPath: backupPath,
		Logger:     log,
	}
}

// Connect pings the server. On failure the backup file is opened instead
// and Connect still succeeds.
func (m *Manager) Connect(ctx context.Context) error {
	m.Client = influxdb2.NewClientWithOptions(
		m.URL,
		m.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		if m.BackupWriter == nil {
			m.Logger.Info().Str("backupPath", m.BackupPath).
				Msg("Failed to initialize InfluxDB client, writing to backup file")

			file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("error creating backup file: %w", err)
			}
			m.backupFile = file
			m.BackupWriter = gzip.NewWriter(file)
		}
		m.Logger.Warn().Msg("InfluxDB client failed to initialize, using backup writer")
		return nil
	}

	m.IsValid = true
	m.Writer = m.Client.WriteAPI(m.Org, m.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())

	m.Logger.Info().Str("bucket", m.Bucket).Msg("InfluxDB client initialized")
	return nil
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// SnapshotPoint builds the "flight" measurement for one snapshot.
func SnapshotPoint(snap sim.FlightSnapshot, mode string, ts time.Time) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementFlight)
	p.AddTag("mode", mode)
	p.AddTag("flying", fmt.Sprintf("%t", snap.IsFlying))
	p.AddField("x", snap.Position.X)
	p.AddField("y", snap.Position.Y)
	p.AddField("z", snap.Position.Z)
	p.AddField("speed", snap.Speed)
	p.AddField("altitude", snap.Altitude)
	p.AddField("heading", snap.Heading)
	p.AddField("throttle", snap.Throttle)
	p.SetTime(ts)
	p.SortTags()
	p.SortFields()
	return p
}

func eventPoint(ev sim.FlightEvent, ts time.Time) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementEvent)
	p.AddTag("kind", string(ev.Kind))
	p.AddField("elapsed_ms", ev.Elapsed.Milliseconds())
	p.AddField("x", ev.Snapshot.Position.X)
	p.AddField("y", ev.Snapshot.Position.Y)
	p.AddField("z", ev.Snapshot.Position.Z)
	p.AddField("speed", ev.Snapshot.Speed)
	p.SetTime(ts)
	p.SortFields()
	return p
}

func (m *Manager) WriteSnapshot(snap sim.FlightSnapshot, mode string) error {
	return m.WritePoint(SnapshotPoint(snap, mode, time.Now()))
}

func (m *Manager) OnSample(_ time.Duration, snap sim.FlightSnapshot, cameraMode string) {
	if err := m.WriteSnapshot(snap, cameraMode); err != nil {
		m.Logger.Error().Err(err).Msg("failed to write flight sample")
	}
}

func (m *Manager) OnEvent(ev sim.FlightEvent) {
	if err := m.WritePoint(eventPoint(ev, time.Now())); err != nil {
		m.Logger.Error().Err(err).Str("kind", string(ev.Kind)).Msg("failed to write flight event")
	}
}

// Close flushes pending writes and closes the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return nil
	}
	err := m.BackupWriter.Close()
	m.BackupWriter = nil
	if cerr := m.backupFile.Close(); err == nil {
		err = cerr
	}
	return err
}
