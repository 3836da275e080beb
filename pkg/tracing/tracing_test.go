package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInit_NoExporter(t *testing.T) {
	ctx := context.Background()

	tp, err := Init(ctx, "purchase-service-test", "", "")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer tp.Shutdown(ctx)

	_, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()

	if !span.SpanContext().IsValid() {
		t.Error("expected a recording span with a valid context")
	}
}

func TestInit_UnknownExporter(t *testing.T) {
	if _, err := Init(context.Background(), "svc", "zipkin", ""); err == nil {
		t.Error("expected error for unknown exporter")
	}
}
