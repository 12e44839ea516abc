package metrics

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection, the same pattern
// MrWong99-glyphoxa/internal/observe/metrics_test.go uses to avoid
// cross-test pollution on the global OTel provider.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := New(mp)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNew_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestRecordSessionBoundAndClosed(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSessionBound(ctx)
	m.RecordSessionBound(ctx)
	m.RecordSessionClosed(ctx)

	rm := collect(t, reader)

	met := findMetric(rm, "dialoguecore.active_sessions")
	if met == nil {
		t.Fatal("active_sessions metric not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("active_sessions is not an int64 sum: %T", met.Data)
	}
	if len(sum.DataPoints) == 0 || sum.DataPoints[0].Value != 1 {
		t.Fatalf("active_sessions = %+v, want 1", sum.DataPoints)
	}

	events := findMetric(rm, "dialoguecore.session_events_total")
	if events == nil {
		t.Fatal("session_events_total metric not found")
	}
}

func TestRecordSpeechSegmentHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSpeechSegment(ctx, 250*time.Millisecond)
	m.RecordSpeechSegment(ctx, 500*time.Millisecond)

	rm := collect(t, reader)
	met := findMetric(rm, "dialoguecore.vad.speech_segment.duration")
	if met == nil {
		t.Fatal("speech_segment.duration metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("speech_segment.duration is not a histogram: %T", met.Data)
	}
	if len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 2 {
		t.Fatalf("sample count = %+v, want 2", hist.DataPoints)
	}
}

func TestRecordTTSDurationAndRetryAndProviderError(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTTSDuration(ctx, "doubao_tts_v2", 120*time.Millisecond)
	m.RecordTTSRetry(ctx, "doubao_tts_v2")
	m.RecordProviderError(ctx, "doubao_tts_v2", "tts")

	rm := collect(t, reader)

	if met := findMetric(rm, "dialoguecore.tts.duration"); met == nil {
		t.Error("tts.duration metric not found")
	}
	if met := findMetric(rm, "dialoguecore.tts.retries_total"); met == nil {
		t.Error("tts.retries_total metric not found")
	}
	if met := findMetric(rm, "dialoguecore.provider.errors_total"); met == nil {
		t.Error("provider.errors_total metric not found")
	}
}

func TestNilMetricsRecordIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordSessionBound(ctx)
	m.RecordSessionClosed(ctx)
	m.RecordSpeechSegment(ctx, time.Second)
	m.RecordTTSDuration(ctx, "x", time.Second)
	m.RecordTTSRetry(ctx, "x")
	m.RecordProviderError(ctx, "x", "tts")
}
