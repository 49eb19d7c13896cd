package instrumentation

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSpanHelpersNilSafe(t *testing.T) {
	// All helpers must tolerate a nil span.
	RecordError(nil, errors.New("boom"))
	SetSpanSuccess(nil)
	SetSpanAttributes(nil, attribute.String("key", "value"))
	AddIdentityAttributes(nil, "user-1", "team-1")
	AddHTTPAttributes(nil, "GET", "/mcp", 200)
}

func TestSpanHelpersOnNoopSpan(t *testing.T) {
	inst, err := New(Config{Enabled: true, ServiceName: "test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := inst.Tracer("auth").Start(t.Context(), "validate")
	defer span.End()

	RecordError(span, errors.New("boom"))
	SetSpanSuccess(span)
	AddIdentityAttributes(span, "user-1", "")
	AddHTTPAttributes(span, "POST", "/oauth/callback", 302)
}
