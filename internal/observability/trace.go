package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "finitefield.org/travel-web"

// Tracer returns the package tracer. Spans are dropped unless a provider is installed.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
