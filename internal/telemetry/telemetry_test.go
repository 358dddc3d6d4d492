package telemetry

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"city-flight-simulator/internal/sim"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func readGzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	b, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(b)
}

func TestSnapshotPoint(t *testing.T) {
	snap := sim.FlightSnapshot{
		Position: sim.Vec3{X: 1, Y: 2, Z: 3},
		Speed:    15,
		Altitude: 2,
		Heading:  0.5,
		Throttle: 0.75,
		IsFlying: true,
	}
	p := SnapshotPoint(snap, "chase", time.Unix(0, 42))
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)

	assert.True(t, strings.HasPrefix(line, "flight,flying=true,mode=chase "), line)
	for _, field := range []string{"x=1", "y=2", "z=3", "speed=15", "altitude=2", "heading=0.5", "throttle=0.75"} {
		assert.Contains(t, line, field)
	}
	assert.True(t, strings.HasSuffix(strings.TrimSpace(line), " 42"), line)
}

func TestManager_FallsBackToBackupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.lp.gz")
	m := NewManager("http://127.0.0.1:1", "token", "org", "flight_data", path, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	m.OnSample(time.Second, sim.FlightSnapshot{Speed: 12}, "orbit")
	m.OnEvent(sim.FlightEvent{Kind: sim.EventCrash, Elapsed: 2 * time.Second})
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	out := readGzip(t, path)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "flight,flying=false,mode=orbit "))
	assert.True(t, strings.HasPrefix(lines[1], "flight_event,kind=crash "))
	assert.Contains(t, lines[1], "elapsed_ms=2000i")
}

func TestManager_WritePointWithoutConnect(t *testing.T) {
	m := NewManager("", "", "", "", "", zerolog.Nop())
	assert.Error(t, m.WriteSnapshot(sim.FlightSnapshot{}, "chase"))
	assert.NoError(t, m.Close())
}

func TestMetrics_CountsEvents(t *testing.T) {
	mt, err := NewMetrics(noop.NewMeterProvider().Meter("test"), 120)
	require.NoError(t, err)

	mt.OnEvent(sim.FlightEvent{Kind: sim.EventCrash})
	mt.OnEvent(sim.FlightEvent{Kind: sim.EventLanding})
	mt.OnEvent(sim.FlightEvent{Kind: sim.EventLanding})
	mt.OnEvent(sim.FlightEvent{Kind: sim.EventCameraMode, Detail: map[string]any{"from": "chase", "to": "orbit"}})
	mt.OnEvent(sim.FlightEvent{Kind: sim.EventReset})
	mt.OnSample(100*time.Millisecond, sim.FlightSnapshot{}, "orbit")
	mt.OnSample(200*time.Millisecond, sim.FlightSnapshot{}, "orbit")

	assert.Equal(t, Counts{Crashes: 1, Landings: 2, Switches: 1, Samples: 2}, mt.Counts())
}

func TestMetrics_GlobalMeter(t *testing.T) {
	mt, err := NewMetrics(nil, 60)
	require.NoError(t, err)

	s := sim.NewSimulator(sim.DefaultOptions())
	s.AddSink(mt)
	s.StartFlight()
	s.HandleKey(sim.KeyDigit3, true)
	s.HandleKey(sim.KeyDigit3, false)
	s.RunHeadless(24, 0, nil)

	c := mt.Counts()
	assert.Equal(t, int64(1), c.Switches)
	assert.Equal(t, int64(2), c.Samples)
}
