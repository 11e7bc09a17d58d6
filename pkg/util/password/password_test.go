package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/udelar-dtx/dtx_backend/config"
)

// fastParams keeps the suite quick.
var fastParams = &Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashFormat(t *testing.T) {
	hash, err := NewHasher(fastParams).Hash("4821")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash() format invalid, got %s", hash)
	}
	if !strings.Contains(hash, "m=8192,t=1,p=1") {
		t.Errorf("Hash() params not encoded: %s", hash)
	}
	if parts := strings.Split(hash, "$"); len(parts) != 6 {
		t.Errorf("Hash() expected 6 parts, got %d", len(parts))
	}
}

func TestVerify(t *testing.T) {
	hash, err := HashWithParams("4821", fastParams)
	if err != nil {
		t.Fatalf("HashWithParams() error = %v", err)
	}

	tests := []struct {
		name    string
		hash    string
		secret  string
		wantErr error
	}{
		{"correct pin", hash, "4821", nil},
		{"wrong pin", hash, "4822", ErrMismatch},
		{"empty pin", hash, "", ErrMismatch},
		{"empty hash", "", "4821", ErrInvalidHash},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=3,p=2$c29tZXNhbHQ$c29tZWhhc2g", "4821", ErrInvalidHash},
		{"malformed params", "$argon2id$v=19$invalid$c29tZXNhbHQ$c29tZWhhc2g", "4821", ErrInvalidHash},
		{"other version", "$argon2id$v=16$m=65536,t=3,p=2$c29tZXNhbHQ$c29tZWhhc2g", "4821", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(tt.hash, tt.secret); !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashUniqueness(t *testing.T) {
	h := NewHasher(fastParams)
	hash1, _ := h.Hash("0000")
	hash2, _ := h.Hash("0000")

	if hash1 == hash2 {
		t.Error("Hash() should salt every hash")
	}
	if Verify(hash1, "0000") != nil || Verify(hash2, "0000") != nil {
		t.Error("both hashes should verify")
	}
}

func TestVerifyMissingAlwaysFails(t *testing.T) {
	h := NewHasher(fastParams)
	if err := h.VerifyMissing("dtx-missing-account"); !errors.Is(err, ErrMismatch) {
		t.Errorf("VerifyMissing() = %v, want ErrMismatch", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	h := NewHasher(fastParams)

	current, _ := h.Hash("1234")
	if h.NeedsRehash(current) {
		t.Error("NeedsRehash() should be false for current params")
	}

	old, _ := HashWithParams("1234", &Params{Memory: 4 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if !h.NeedsRehash(old) {
		t.Error("NeedsRehash() should be true for other params")
	}
	if !h.NeedsRehash("garbage") {
		t.Error("NeedsRehash() should be true for unreadable hashes")
	}
}

func TestNewHasherFallsBackToDefaults(t *testing.T) {
	h := NewHasher(&Params{})
	if *h.params != *DefaultParams() {
		t.Errorf("params = %+v, want defaults", *h.params)
	}
}

func TestFromCentralConfig(t *testing.T) {
	tests := []struct {
		name string
		in   config.PasswordConfig
		want Params
	}{
		{"zero uses defaults", config.PasswordConfig{}, *DefaultParams()},
		{"overrides", config.PasswordConfig{MemoryKiB: 16384, Iterations: 2, Parallelism: 1, SaltLength: 8, KeyLength: 16},
			Params{Memory: 16384, Iterations: 2, Parallelism: 1, SaltLength: 8, KeyLength: 16}},
		{"low memory caps and compensates", config.PasswordConfig{LowMemoryMode: true},
			Params{Memory: 32 * 1024, Iterations: 4, Parallelism: 2, SaltLength: 16, KeyLength: 32}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := *FromCentralConfig(tt.in); got != tt.want {
				t.Errorf("FromCentralConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func BenchmarkVerify(b *testing.B) {
	hash, _ := Hash("benchmarkpin")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Verify(hash, "benchmarkpin")
	}
}
