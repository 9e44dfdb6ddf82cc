// Package password stores account passwords as Argon2id hashes in PHC
// string form, so parameters can be raised without invalidating
// existing hashes.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidHash         = errors.New("password: malformed argon2id hash")
	ErrIncompatibleVersion = errors.New("password: unsupported argon2 version")
	ErrMismatch            = errors.New("password: mismatch")
)

const phcID = "argon2id"

var b64 = base64.RawStdEncoding

type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func (p Params) key(plain string, salt []byte) []byte {
	return argon2.IDKey([]byte(plain), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
}

func (p Params) sameCost(o Params) bool {
	return p.Memory == o.Memory && p.Iterations == o.Iterations &&
		p.Parallelism == o.Parallelism && p.KeyLength == o.KeyLength
}

// DefaultParams follows the OWASP Argon2id baseline.
func DefaultParams() *Params {
	return &Params{Memory: 64 * 1024, Iterations: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32}
}

// FastParams are cheap parameters for tests.
func FastParams() *Params {
	return &Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
}

// phc is a decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type phc struct {
	params Params
	salt   []byte
	key    []byte
}

func (h phc) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcID, argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

func parsePHC(s string) (phc, error) {
	var out phc
	f := strings.Split(s, "$")
	if len(f) != 6 || f[0] != "" || f[1] != phcID {
		return out, ErrInvalidHash
	}

	var v int
	if _, err := fmt.Sscanf(f[2], "v=%d", &v); err != nil {
		return out, ErrInvalidHash
	}
	if v != argon2.Version {
		return out, ErrIncompatibleVersion
	}
	p := &out.params
	if _, err := fmt.Sscanf(f[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return out, ErrInvalidHash
	}

	var err error
	if out.salt, err = b64.DecodeString(f[4]); err != nil {
		return out, ErrInvalidHash
	}
	if out.key, err = b64.DecodeString(f[5]); err != nil || len(out.key) == 0 {
		return out, ErrInvalidHash
	}
	p.SaltLength = uint32(len(out.salt))
	p.KeyLength = uint32(len(out.key))
	return out, nil
}

type Hasher struct {
	params Params
}

// NewHasher uses DefaultParams when p is nil.
func NewHasher(p *Params) *Hasher {
	if p == nil {
		p = DefaultParams()
	}
	return &Hasher{params: *p}
}

func (h *Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("password: read salt: %w", err)
	}
	return phc{params: h.params, salt: salt, key: h.params.key(plain, salt)}.String(), nil
}

// NeedsRehash is true when the stored hash was made with different cost
// parameters, or cannot be parsed at all. Login upgrades such hashes.
func (h *Hasher) NeedsRehash(stored string) bool {
	parsed, err := parsePHC(stored)
	return err != nil || !parsed.params.sameCost(h.params)
}

// Verify checks plain against stored using the parameters recorded in
// the hash itself.
func Verify(stored, plain string) error {
	parsed, err := parsePHC(stored)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(parsed.key, parsed.params.key(plain, parsed.salt)) != 1 {
		return ErrMismatch
	}
	return nil
}

func Match(stored, plain string) bool { return Verify(stored, plain) == nil }
