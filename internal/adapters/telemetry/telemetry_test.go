package telemetry_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/ptree/internal/adapters/telemetry"
	"go.trai.ch/ptree/internal/core/domain"
	"go.trai.ch/ptree/internal/core/ports"
	"go.trai.ch/ptree/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newRecordingTracer(t *testing.T) (*telemetry.OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return telemetry.NewOTelTracer(tp, "test"), rec
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestOTelTracer_Start(t *testing.T) {
	tracer, rec := newRecordingTracer(t)

	_, span := tracer.Start(t.Context(), "walk", ports.WithAttribute("target", "/data"))
	span.SetAttribute("threads", 8)
	span.SetAttribute("bytes", int64(1024))
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("forced", true)
	span.SetAttribute("skip", []string{".git"})
	span.SetAttribute("ttl", time.Minute)
	span.SetAttribute("mode", domain.ModeIncremental)
	span.SetAttribute("other", struct{ A int }{A: 1})
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "walk", ended[0].Name())

	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "/data", attrs["target"])
	assert.Equal(t, "8", attrs["threads"])
	assert.Equal(t, "1024", attrs["bytes"])
	assert.Equal(t, "0.5", attrs["ratio"])
	assert.Equal(t, "true", attrs["forced"])
	assert.Equal(t, `[".git"]`, attrs["skip"])
	assert.Equal(t, "1m0s", attrs["ttl"])
	assert.Equal(t, "incremental scan", attrs["mode"])
	assert.Equal(t, "{1}", attrs["other"])
}

func TestOTelSpan_RecordError(t *testing.T) {
	tracer, rec := newRecordingTracer(t)

	_, span := tracer.Start(t.Context(), "cache.save")
	span.RecordError(nil)
	span.RecordError(errors.New("disk full"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "disk full", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}

func TestOTelTracer_NestedSpans(t *testing.T) {
	tracer, rec := newRecordingTracer(t)

	ctx, parent := tracer.Start(t.Context(), "scan")
	_, child := tracer.Start(ctx, "walk")
	child.End()
	parent.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestBridge_OnEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	var logged []string
	mockLogger.EXPECT().Debug(gomock.Any()).Do(func(msg string) {
		logged = append(logged, msg)
	}).Times(2)

	tp := telemetry.NewProvider(telemetry.NewBridge(mockLogger))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	tracer := telemetry.NewOTelTracer(tp, "test")

	_, span := tracer.Start(t.Context(), "walk", ports.WithAttribute("target", "/data"))
	span.End()

	_, span = tracer.Start(t.Context(), "cache.load")
	span.RecordError(errors.New("bad header"))
	span.End()

	require.Len(t, logged, 2)
	assert.Contains(t, logged[0], "walk took ")
	assert.Contains(t, logged[0], "target=/data")
	assert.Contains(t, logged[1], "cache.load took ")
	assert.Contains(t, logged[1], `error="bad header"`)
}

func TestBridge_NilLogger(t *testing.T) {
	tp := telemetry.NewProvider(telemetry.NewBridge(nil))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	_, span := telemetry.NewOTelTracer(tp, "test").Start(t.Context(), "walk")
	assert.NotPanics(t, span.End)
}

func TestBridge_FlushAndShutdown(t *testing.T) {
	b := telemetry.NewBridge(nil)
	assert.NoError(t, b.ForceFlush(t.Context()))
	assert.NoError(t, b.Shutdown(t.Context()))
}
