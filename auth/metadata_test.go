package auth

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewMiroMetadata(t *testing.T) {
	baseURL := "https://miro-mcp.fly-agile.com"
	m := NewMiroMetadata(baseURL)

	if m.Resource != baseURL {
		t.Errorf("Resource = %q, want %q", m.Resource, baseURL)
	}
	if len(m.AuthorizationServers) != 1 || m.AuthorizationServers[0] != "https://miro.com" {
		t.Errorf("AuthorizationServers = %v, want [https://miro.com]", m.AuthorizationServers)
	}
	if len(m.ScopesSupported) == 0 {
		t.Error("ScopesSupported is empty")
	}
	if m.IntrospectionEndpoint == "" {
		t.Error("IntrospectionEndpoint is empty")
	}
}

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProtectedResourceMetadata)
		wantErr bool
	}{
		{
			name:   "valid document",
			mutate: func(*ProtectedResourceMetadata) {},
		},
		{
			name:    "empty resource",
			mutate:  func(m *ProtectedResourceMetadata) { m.Resource = "" },
			wantErr: true,
		},
		{
			name:    "no authorization servers",
			mutate:  func(m *ProtectedResourceMetadata) { m.AuthorizationServers = nil },
			wantErr: true,
		},
		{
			name:    "resource not a URL",
			mutate:  func(m *ProtectedResourceMetadata) { m.Resource = "not-a-url" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMiroMetadata("https://miro-mcp.fly-agile.com")
			tt.mutate(m)
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMetadataSerialization(t *testing.T) {
	m := NewMiroMetadata("https://miro-mcp.fly-agile.com")

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	body := string(data)
	for _, want := range []string{`"resource"`, `"authorization_servers"`, "https://miro.com"} {
		if !strings.Contains(body, want) {
			t.Errorf("serialized metadata missing %s: %s", want, body)
		}
	}
	// Empty optional fields are omitted entirely
	if strings.Contains(body, "revocation_endpoint") {
		t.Errorf("empty revocation_endpoint should be omitted: %s", body)
	}
}
