package security

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if len(key) != KeySize {
		t.Errorf("GenerateKey() returned key of length %d, want %d", len(key), KeySize)
	}

	key2, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if bytes.Equal(key, key2) {
		t.Error("GenerateKey() returned identical keys")
	}
}

func TestNewSealer(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "valid 32-byte key", key: make([]byte, 32)},
		{name: "nil key", key: nil, wantErr: true},
		{name: "16-byte key", key: make([]byte, 16), wantErr: true},
		{name: "64-byte key", key: make([]byte, 64), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSealer(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSealer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	key, _ := GenerateKey()
	s, err := NewSealer(key)
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "json payload", plaintext: []byte(`{"csrf_token":"abc","pkce_verifier":"def"}`)},
		{name: "empty payload", plaintext: []byte{}},
		{name: "binary payload", plaintext: []byte{0, 1, 2, 255, 254}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := s.Seal(tt.plaintext)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}

			opened, err := s.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(opened, tt.plaintext) {
				t.Errorf("Open() = %v, want %v", opened, tt.plaintext)
			}
		})
	}
}

func TestSealProducesCookieSafeOutput(t *testing.T) {
	key, _ := GenerateKey()
	s, _ := NewSealer(key)

	sealed, err := s.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if _, err := base64.RawURLEncoding.DecodeString(sealed); err != nil {
		t.Errorf("sealed value is not raw base64url: %v", err)
	}
}

func TestOpenRejectsTampering(t *testing.T) {
	key, _ := GenerateKey()
	s, _ := NewSealer(key)

	sealed, err := s.Seal([]byte(`{"csrf_token":"abc"}`))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		t.Fatalf("decode sealed value: %v", err)
	}

	// Flipping any single byte must fail authentication
	for i := range raw {
		tampered := append([]byte(nil), raw...)
		tampered[i] ^= 0x01
		if _, err := s.Open(base64.RawURLEncoding.EncodeToString(tampered)); err == nil {
			t.Fatalf("Open() accepted value with byte %d flipped", i)
		}
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	key, _ := GenerateKey()
	s, _ := NewSealer(key)

	tests := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "!!!not-base64!!!"},
		{name: "too short", input: base64.RawURLEncoding.EncodeToString([]byte("ab"))},
		{name: "empty", input: ""},
		{name: "random bytes", input: base64.RawURLEncoding.EncodeToString(make([]byte, 48))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Open(tt.input); err == nil {
				t.Error("Open() accepted garbage input")
			}
		})
	}
}

func TestOpenRejectsWrongKey(t *testing.T) {
	key1, _ := GenerateKey()
	key2, _ := GenerateKey()
	s1, _ := NewSealer(key1)
	s2, _ := NewSealer(key2)

	sealed, err := s1.Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if _, err := s2.Open(sealed); err == nil {
		t.Error("Open() succeeded with the wrong key")
	}
}

func TestDeriveKey(t *testing.T) {
	master, _ := GenerateKey()

	stateKey, err := DeriveKey(master, "oauth-state-cookie")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	tokenKey, err := DeriveKey(master, "oauth-token-cookie")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if bytes.Equal(stateKey, tokenKey) {
		t.Error("DeriveKey() returned the same key for different purposes")
	}
	if bytes.Equal(stateKey, master) {
		t.Error("DeriveKey() returned the master key unchanged")
	}

	// Derivation is deterministic
	again, err := DeriveKey(master, "oauth-state-cookie")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if !bytes.Equal(stateKey, again) {
		t.Error("DeriveKey() is not deterministic")
	}
}

func TestDeriveKeyRejectsShortMaster(t *testing.T) {
	if _, err := DeriveKey(make([]byte, 16), "purpose"); err == nil {
		t.Error("DeriveKey() accepted a short master key")
	}
}

func TestKeyBase64RoundTrip(t *testing.T) {
	key, _ := GenerateKey()

	decoded, err := KeyFromBase64(KeyToBase64(key))
	if err != nil {
		t.Fatalf("KeyFromBase64() error = %v", err)
	}
	if !bytes.Equal(decoded, key) {
		t.Error("base64 round trip changed the key")
	}

	if _, err := KeyFromBase64("tooshort"); err == nil {
		t.Error("KeyFromBase64() accepted a short key")
	}
	if _, err := KeyFromBase64("!!!"); err == nil {
		t.Error("KeyFromBase64() accepted invalid base64")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	a := GenerateRandomToken()
	b := GenerateRandomToken()

	if a == b {
		t.Error("GenerateRandomToken() returned identical values")
	}
	if _, err := base64.RawURLEncoding.DecodeString(a); err != nil {
		t.Errorf("token is not raw base64url: %v", err)
	}
}
