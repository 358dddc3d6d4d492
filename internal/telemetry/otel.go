package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "city-flight-simulator/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
