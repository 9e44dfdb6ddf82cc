package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/Alijeyrad/drivingschool_backend/config"
)

func TestHash(t *testing.T) {
	h := NewHasher(FastParams())

	hash, err := h.Hash("correcthorsebatterystaple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash() format invalid, got %s", hash)
	}
	if parts := strings.Split(hash, "$"); len(parts) != 6 {
		t.Errorf("Hash() expected 6 parts, got %d", len(parts))
	}
}

func TestVerify(t *testing.T) {
	h := NewHasher(FastParams())
	hash, err := h.Hash("Test1234!")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		wantErr  error
	}{
		{"correct password", hash, "Test1234!", nil},
		{"wrong password", hash, "test1234!", ErrMismatch},
		{"garbage hash", "not-a-hash", "Test1234!", ErrInvalidHash},
		{"wrong algorithm", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA", "x", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.hash, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if !Match(hash, "Test1234!") {
		t.Error("Match() = false for correct password")
	}
}

func TestNeedsRehash(t *testing.T) {
	fast := NewHasher(FastParams())
	hash, _ := fast.Hash("pw")

	if fast.NeedsRehash(hash) {
		t.Error("same params should not need rehash")
	}
	if !NewHasher(DefaultParams()).NeedsRehash(hash) {
		t.Error("different params should need rehash")
	}
	if !fast.NeedsRehash("broken") {
		t.Error("invalid hash should need rehash")
	}
}

func TestFromCentralConfig(t *testing.T) {
	p := FromCentralConfig(config.PasswordConfig{})
	if *p != *DefaultParams() {
		t.Errorf("zero config should give defaults, got %+v", p)
	}

	low := FromCentralConfig(config.PasswordConfig{LowMemoryMode: true})
	if low.Memory != 32*1024 || low.Iterations != DefaultParams().Iterations+1 {
		t.Errorf("low memory mode not applied: %+v", low)
	}
}
