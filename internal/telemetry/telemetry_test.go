package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := Start(context.Background(), "pipeline.analyze_region", attribute.String("place", "Самара"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "pipeline.analyze_region" {
		t.Errorf("unexpected span name %q", spans[0].Name())
	}

	found := false
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "place" && kv.Value.AsString() == "Самара" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected place attribute, got %v", spans[0].Attributes())
	}
}
