// Package auth implements the credential, token, and session machinery:
// password hashing, signed-token issuance and verification, cookie-bound
// sessions, and the middleware gate that protects routes.
package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt with a fixed cost. Each call salts
// independently, so two hashes of the same input differ. There is no
// way to recover the input from a digest.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given work factor.
// A cost outside bcrypt's valid range falls back to the default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash digests a raw password.
func (h *PasswordHasher) Hash(raw string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether raw matches digest. bcrypt compares in
// constant time, so the result does not leak match length.
func (h *PasswordHasher) Verify(raw, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw)) == nil
}
