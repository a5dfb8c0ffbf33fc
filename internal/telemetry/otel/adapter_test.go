package otel

import (
	"context"
	"testing"
	"time"

	sdklog "go.opentelemetry.io/otel/sdk/log"

	"session-auth-service/internal/telemetry"
)

func TestNewEventEmitterNilProvider(t *testing.T) {
	em := NewEventEmitter(nil)
	if em == nil {
		t.Fatal("expected a no-op emitter, got nil")
	}
	if err := em.Emit(context.Background(), &telemetry.Event{EventType: "login"}); err != nil {
		t.Fatalf("Emit on no-op emitter: %v", err)
	}
}

func TestOtelEmitterEmit(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	em := NewEventEmitter(provider)
	err := em.Emit(context.Background(), &telemetry.Event{
		UserID:    42,
		SessionID: "sess-abc",
		EventType: "http_request",
		Source:    "server",
		Metadata:  []byte(`{"path":"/health"}`),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if err := em.Emit(context.Background(), nil); err != nil {
		t.Fatalf("Emit nil event: %v", err)
	}
}
