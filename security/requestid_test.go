package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()

	if a == b {
		t.Error("GenerateRequestID() returned identical IDs")
	}
	if len(a) != 22 {
		t.Errorf("GenerateRequestID() length = %d, want 22", len(a))
	}
	if !requestIDPattern.MatchString(a) {
		t.Errorf("generated ID %q does not match its own validation pattern", a)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q, want empty", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		inbound      string
		wantInbound  bool
	}{
		{name: "valid inbound ID propagated", inbound: "upstream-id-42", wantInbound: true},
		{name: "missing ID replaced", inbound: ""},
		{name: "injection attempt replaced", inbound: "evil\r\nSet-Cookie: x=y"},
		{name: "overlong ID replaced", inbound: strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				r.Header.Set(RequestIDHeader, tt.inbound)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if seen == "" {
				t.Fatal("handler saw no request ID in context")
			}
			if tt.wantInbound && seen != tt.inbound {
				t.Errorf("context ID = %q, want inbound %q", seen, tt.inbound)
			}
			if !tt.wantInbound && seen == tt.inbound {
				t.Error("invalid inbound ID was propagated")
			}
			if got := w.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header = %q, want %q", got, seen)
			}
		})
	}
}
