// Package metrics defines the OpenTelemetry metric instruments this
// service records and a package-level default instance, grounded on
// MrWong99-glyphoxa's internal/observe package: an OTel Meter for
// instrument creation, a Prometheus exporter bridge (see provider.go) so
// the same instruments are scrapable over HTTP, and a lazily-built
// DefaultMetrics()-style singleton so call sites don't need a constructor
// parameter threaded through every layer.
package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/aivox/dialoguecore"

// latencyBuckets (seconds) covers the same decade-spanning range
// glyphoxa's observe package uses for its voice-pipeline histograms.
var latencyBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds every OpenTelemetry instrument this service records.
// All fields are safe for concurrent use; the underlying OTel types
// handle their own synchronization.
type Metrics struct {
	// ActiveSessions tracks the number of currently bound device/app
	// sessions (pkg/session.Registry.Add/Remove).
	ActiveSessions metric.Int64UpDownCounter

	// SessionEvents counts session lifecycle transitions by type
	// (e.g. "bound", "closed").
	SessionEvents metric.Int64Counter

	// SpeechSegmentDuration tracks the duration of each VAD-captured
	// speech segment (pkg/dialogue.Controller.onSpeechEnd).
	SpeechSegmentDuration metric.Float64Histogram

	// TTSDuration tracks text-to-speech synthesis latency per sentence
	// (pkg/synth.Synthesizer.synthesizeAndDeliver), by provider.
	TTSDuration metric.Float64Histogram

	// TTSRetries counts TTS synthesis retry attempts by provider.
	TTSRetries metric.Int64Counter

	// ProviderErrors counts provider errors by provider and kind
	// (e.g. "tts", "stt", "generator").
	ProviderErrors metric.Int64Counter
}

// New creates a fully initialized Metrics using the given MeterProvider.
// Returns an error if any instrument creation fails.
func New(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{}
	var err error

	if met.ActiveSessions, err = m.Int64UpDownCounter("dialoguecore.active_sessions",
		metric.WithDescription("Number of currently bound device/app sessions."),
	); err != nil {
		return nil, err
	}
	if met.SessionEvents, err = m.Int64Counter("dialoguecore.session_events_total",
		metric.WithDescription("Session lifecycle events by type."),
	); err != nil {
		return nil, err
	}
	if met.SpeechSegmentDuration, err = m.Float64Histogram("dialoguecore.vad.speech_segment.duration",
		metric.WithDescription("Duration of each VAD-captured speech segment."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSDuration, err = m.Float64Histogram("dialoguecore.tts.duration",
		metric.WithDescription("Latency of text-to-speech synthesis per sentence."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TTSRetries, err = m.Int64Counter("dialoguecore.tts.retries_total",
		metric.WithDescription("Total TTS synthesis retry attempts by provider."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("dialoguecore.provider.errors_total",
		metric.WithDescription("Provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the package-level Metrics instance, creating it on
// first call from otel.GetMeterProvider(). Call InitProvider before the
// first Default() (or any Record* call) so the global provider is
// already backed by the Prometheus bridge; otherwise instruments are
// created against OTel's no-op provider and observations are discarded.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = New(otel.GetMeterProvider())
		if err != nil {
			panic("metrics: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for attribute.String to reduce verbosity
// at call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordSessionBound increments the active-session gauge and counts a
// "bound" session event. A nil receiver is a no-op, so callers in tests
// that never call InitProvider can leave metrics unset.
func (m *Metrics) RecordSessionBound(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, 1)
	m.SessionEvents.Add(ctx, 1, metric.WithAttributes(Attr("event", "bound")))
}

// RecordSessionClosed decrements the active-session gauge and counts a
// "closed" session event.
func (m *Metrics) RecordSessionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, -1)
	m.SessionEvents.Add(ctx, 1, metric.WithAttributes(Attr("event", "closed")))
}

// RecordSpeechSegment records the duration of one VAD-captured speech
// segment (SpeechStart to SpeechEnd).
func (m *Metrics) RecordSpeechSegment(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.SpeechSegmentDuration.Record(ctx, d.Seconds())
}

// RecordTTSDuration records one sentence's text-to-speech synthesis
// latency for the given provider.
func (m *Metrics) RecordTTSDuration(ctx context.Context, provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.TTSDuration.Record(ctx, d.Seconds(), metric.WithAttributes(Attr("provider", provider)))
}

// RecordTTSRetry counts one TTS synthesis retry attempt for provider.
func (m *Metrics) RecordTTSRetry(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.TTSRetries.Add(ctx, 1, metric.WithAttributes(Attr("provider", provider)))
}

// RecordProviderError counts one provider error of kind ("tts", "stt",
// "generator") for provider.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	if m == nil {
		return
	}
	m.ProviderErrors.Add(ctx, 1, metric.WithAttributes(Attr("provider", provider), Attr("kind", kind)))
}
