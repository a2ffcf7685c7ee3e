package tracing

import (
	"context"
	"testing"

	"github.com/kanellos-me/console/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_InactiveRegistersNothing(t *testing.T) {
	before := otel.GetTracerProvider()

	testCases := map[string]config.TracingConfig{
		"no endpoint": {Enabled: true, ServiceName: "console"},
		"disabled":    {Enabled: false, Endpoint: "http://localhost:4318", ServiceName: "console"},
	}
	for name, cfg := range testCases {
		t.Run(name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), cfg, "test")
			require.NoError(t, err)
			assert.Same(t, before, otel.GetTracerProvider())

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			assert.NoError(t, shutdown(ctx))
		})
	}
}

func TestSetup_ActiveInstallsProvider(t *testing.T) {
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	// TEST-NET-1 so nothing is exported.
	cfg := config.TracingConfig{Enabled: true, Endpoint: "http://192.0.2.1:4318", ServiceName: "console"}
	shutdown, err := Setup(context.Background(), cfg, "test")
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)
	assert.Equal(t, propagation.TraceContext{}.Fields(), otel.GetTextMapPropagator().Fields())
	assert.NoError(t, shutdown(context.Background()))
}

func TestInstall(t *testing.T) {
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	Install(tp)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	span.End()
	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, "op", recorder.Ended()[0].Name())
}
