package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/KirkDiggler/rpg-battle/internal/telemetry"
)

type TelemetryTestSuite struct {
	suite.Suite
}

func TestTelemetrySuite(t *testing.T) {
	suite.Run(t, new(TelemetryTestSuite))
}

func (s *TelemetryTestSuite) TearDownTest() {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
}

func (s *TelemetryTestSuite) TestDisabledIsNoop() {
	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{})
	s.Require().NoError(err)
	s.Require().NoError(shutdown(context.Background()))

	_, span := telemetry.Tracer("test").Start(context.Background(), "noop")
	defer span.End()
	s.False(span.SpanContext().IsValid())
}

func (s *TelemetryTestSuite) TestTracerUsesGlobalProvider() {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	_, span := telemetry.Tracer("engine").Start(context.Background(), "phase")
	span.End()

	ended := recorder.Ended()
	s.Require().Len(ended, 1)
	s.Equal("phase", ended[0].Name())
	s.Equal("rpg-battle/engine", ended[0].InstrumentationScope().Name)
}

func (s *TelemetryTestSuite) TestEnabledInstallsProvider() {
	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:  true,
		Endpoint: "http://127.0.0.1:4318/v1/traces",
	})
	s.Require().NoError(err)

	_, span := telemetry.Tracer("test").Start(context.Background(), "exported")
	s.True(span.SpanContext().IsValid())
	span.End()

	// nothing listens on the endpoint, so the flush is cut short
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
