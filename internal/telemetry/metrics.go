package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"city-flight-simulator/internal/sim"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts flight events on otel instruments. It is a sim.Sink.
type Metrics struct {
	crashes  metric.Int64Counter
	landings metric.Int64Counter
	switches metric.Int64Counter
	ticks    metric.Int64Counter

	counts struct {
		crashes, landings, switches, samples atomic.Int64
	}
	lastElapsed atomic.Int64
	ups         int
}

var _ sim.Sink = (*Metrics)(nil)

// Counts is a plain copy of what Metrics has observed.
type Counts struct {
	Crashes  int64
	Landings int64
	Switches int64
	Samples  int64
}

// NewMetrics creates the counters on m, or on the global meter provider
// when m is nil. ups converts sample intervals to tick counts.
func NewMetrics(m metric.Meter, ups int) (*Metrics, error) {
	if m == nil {
		m = meter()
	}
	var err error
	mt := &Metrics{ups: ups}

	mt.crashes, err = m.Int64Counter(
		"flight.crashes",
		metric.WithDescription("Airplane crashes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating crashes counter: %w", err)
	}

	mt.landings, err = m.Int64Counter(
		"flight.landings",
		metric.WithDescription("Airplane landings"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating landings counter: %w", err)
	}

	mt.switches, err = m.Int64Counter(
		"flight.camera.switches",
		metric.WithDescription("Camera mode switches"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating camera switches counter: %w", err)
	}

	mt.ticks, err = m.Int64Counter(
		"flight.ticks",
		metric.WithDescription("Simulation ticks observed between samples"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	return mt, nil
}

func (mt *Metrics) OnSample(elapsed time.Duration, _ sim.FlightSnapshot, cameraMode string) {
	mt.counts.samples.Add(1)
	prev := time.Duration(mt.lastElapsed.Swap(int64(elapsed)))
	if mt.ups <= 0 || elapsed <= prev {
		return
	}
	n := int64((elapsed - prev).Seconds()*float64(mt.ups) + 0.5)
	mt.ticks.Add(context.Background(), n, metric.WithAttributes(attribute.String("mode", cameraMode)))
}

func (mt *Metrics) OnEvent(ev sim.FlightEvent) {
	ctx := context.Background()
	switch ev.Kind {
	case sim.EventCrash:
		mt.counts.crashes.Add(1)
		mt.crashes.Add(ctx, 1)
	case sim.EventLanding:
		mt.counts.landings.Add(1)
		mt.landings.Add(ctx, 1)
	case sim.EventCameraMode:
		to, _ := ev.Detail["to"].(string)
		mt.counts.switches.Add(1)
		mt.switches.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", to)))
	}
}

func (mt *Metrics) Counts() Counts {
	return Counts{
		Crashes:  mt.counts.crashes.Load(),
		Landings: mt.counts.landings.Load(),
		Switches: mt.counts.switches.Load(),
		Samples:  mt.counts.samples.Load(),
	}
}
