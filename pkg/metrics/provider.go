package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitProvider wires a Prometheus-backed OpenTelemetry MeterProvider as
// the process-wide default and returns the Metrics instruments built on
// top of it plus a shutdown func to flush/close on exit, grounded on
// MrWong99-glyphoxa's internal/observe.InitProvider (metrics half only;
// this service has no tracing component to wire).
func InitProvider() (*Metrics, func(context.Context) error, error) {
	promExp, err := promexporter.New()
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExp))
	otel.SetMeterProvider(mp)

	m, err := New(mp)
	if err != nil {
		return nil, nil, err
	}
	return m, mp.Shutdown, nil
}

// Handler returns the HTTP handler serving the Prometheus scrape
// endpoint for whatever instruments InitProvider's exporter registered
// against the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
