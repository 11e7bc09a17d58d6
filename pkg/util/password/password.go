// Package password hashes patient PINs and the staff password with Argon2id
// and stores them in PHC string format.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash         = errors.New("invalid password hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	ErrMismatch            = errors.New("password does not match")
)

// Params defines the Argon2id parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32 // bytes
	KeyLength   uint32 // bytes
}

// DefaultParams follows the OWASP recommendation for Argon2id.
func DefaultParams() *Params {
	return &Params{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes secrets with fixed parameters.
type Hasher struct {
	params *Params

	dummyOnce sync.Once
	dummy     string
}

func NewHasher(p *Params) *Hasher {
	if p == nil || p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 || p.SaltLength == 0 || p.KeyLength == 0 {
		p = DefaultParams()
	}
	return &Hasher{params: p}
}

// Hash generates an Argon2id hash with default parameters.
func Hash(secret string) (string, error) {
	return HashWithParams(secret, DefaultParams())
}

func (h *Hasher) Hash(secret string) (string, error) {
	return HashWithParams(secret, h.params)
}

// HashWithParams encodes the hash as $argon2id$v=19$m=..,t=..,p=..$<salt>$<key>.
func HashWithParams(secret string, p *Params) (string, error) {
	if p == nil {
		p = DefaultParams()
	}
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	d := digest{params: *p, salt: salt}
	d.key = d.derive(secret)
	return d.String(), nil
}

// Verify returns nil on match, ErrMismatch otherwise, or a format error.
func Verify(hash, secret string) error {
	d, err := parseDigest(hash)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(d.key, d.derive(secret)) != 1 {
		return ErrMismatch
	}
	return nil
}

// VerifyMissing spends the same work as a real Verify and always fails. Used
// when the account does not exist so response time does not reveal it.
func (h *Hasher) VerifyMissing(secret string) error {
	h.dummyOnce.Do(func() {
		h.dummy, _ = h.Hash("dtx-missing-account")
	})
	_ = Verify(h.dummy, secret)
	return ErrMismatch
}

// NeedsRehash reports whether hash was made with other parameters than h.
// Patient PINs are rehashed on the next successful login.
func (h *Hasher) NeedsRehash(hash string) bool {
	d, err := parseDigest(hash)
	if err != nil {
		return true
	}
	p := d.params
	return p.Memory != h.params.Memory ||
		p.Iterations != h.params.Iterations ||
		p.Parallelism != h.params.Parallelism ||
		p.KeyLength != h.params.KeyLength
}

// digest is one decoded PHC string.
type digest struct {
	params Params
	salt   []byte
	key    []byte
}

func (d digest) derive(secret string) []byte {
	p := d.params
	return argon2.IDKey([]byte(secret), d.salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
}

func (d digest) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, d.params.Memory, d.params.Iterations, d.params.Parallelism,
		enc.EncodeToString(d.salt), enc.EncodeToString(d.key))
}

func parseDigest(s string) (digest, error) {
	var d digest
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return d, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return d, ErrInvalidHash
	}
	if version != argon2.Version {
		return d, ErrIncompatibleVersion
	}

	p := &d.params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return d, ErrInvalidHash
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return d, ErrInvalidHash
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return d, ErrInvalidHash
	}
	p.SaltLength = uint32(len(d.salt))
	p.KeyLength = uint32(len(d.key))
	return d, nil
}
