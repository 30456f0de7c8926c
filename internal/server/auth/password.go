package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SchemeSHA256 = "sha256"
	SchemePBKDF2 = "pbkdf2"

	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32
)

// PasswordHasher derives the stored password hash. Implementations are
// deterministic: the hash is also the lookup key used on login, so changing
// a user's email without rehashing breaks their login.
type PasswordHasher interface {
	Hash(email, password string) string
}

// SHA256Hasher computes hex(sha256(email + password + secret)).
type SHA256Hasher struct {
	secret string
}

func NewSHA256Hasher(secret string) *SHA256Hasher {
	return &SHA256Hasher{secret: secret}
}

func (h *SHA256Hasher) Hash(email, password string) string {
	sum := sha256.Sum256([]byte(email + password + h.secret))
	return hex.EncodeToString(sum[:])
}

// PBKDF2Hasher stretches the password with PBKDF2-SHA256, salted with
// email + secret.
type PBKDF2Hasher struct {
	secret     string
	iterations int
}

func NewPBKDF2Hasher(secret string) *PBKDF2Hasher {
	return &PBKDF2Hasher{secret: secret, iterations: pbkdf2Iterations}
}

func (h *PBKDF2Hasher) Hash(email, password string) string {
	key := pbkdf2.Key([]byte(password), []byte(email+h.secret), h.iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// NewPasswordHasher returns the hasher for scheme.
func NewPasswordHasher(scheme, secret string) (PasswordHasher, error) {
	switch scheme {
	case SchemeSHA256, "":
		return NewSHA256Hasher(secret), nil
	case SchemePBKDF2:
		return NewPBKDF2Hasher(secret), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}
