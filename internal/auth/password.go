// ABOUTME: Password hashing and verification using bcrypt
// ABOUTME: Uses constant-time dummy comparison to avoid leaking account existence

package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash used for constant-time comparison when the
// account does not exist, so login timing does not reveal valid usernames.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DummyCompare performs a bcrypt comparison against a fixed hash.
// Called on login for unknown usernames to maintain constant timing.
func DummyCompare(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
