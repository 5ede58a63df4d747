package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SHA256Hex is the deterministic, unsalted digest stored for API keys and
// license keys. Unsalted on purpose: validation looks the digest up by exact
// match, so the presented secret must always map to the same value.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding (para
// session token hashes en DB).
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewID returns a v4 UUID. All entity ids in the store are UUIDs.
func NewID() string {
	return uuid.NewString()
}
