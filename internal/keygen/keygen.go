// Package keygen produces the two secret formats Keywarden issues. The raw
// secret is returned exactly once at creation time; only its SHA-256 digest
// is persisted.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
)

// Prefix identifies keywarden API keys; it lets clients and log scrubbers
// recognize the secret without knowing its digest.
const Prefix = "KW"

var apiKeyPattern = regexp.MustCompile(`^` + Prefix + `_[a-z0-9]+_[a-f0-9]{32}_[a-f0-9]{8}$`)

// APIKey returns a new raw key `KW_<ts36>_<hex32>_<hex8>` and its digest.
func APIKey() (key, digest string, err error) {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random, err := randHex(16)
	if err != nil {
		return "", "", err
	}
	check, err := randHex(4)
	if err != nil {
		return "", "", err
	}
	key = fmt.Sprintf("%s_%s_%s_%s", Prefix, ts, random, check)
	return key, tokens.SHA256Hex(key), nil
}

// ValidAPIKeyFormat pre-checks the shape before any digest lookup, so
// garbage input never reaches the store.
func ValidAPIKeyFormat(key string) bool {
	return len(key) >= 40 && len(key) <= 128 && apiKeyPattern.MatchString(key)
}

// LicenseKey returns a new raw license key `XXXXXXXX-XXXXXXXX-XXXXXXXX-XXXXXXXX`
// (four groups of uppercase hex) and its digest.
func LicenseKey() (key, digest string, err error) {
	parts := make([]string, 4)
	for i := range parts {
		h, err := randHex(4)
		if err != nil {
			return "", "", err
		}
		parts[i] = strings.ToUpper(h)
	}
	key = strings.Join(parts, "-")
	return key, tokens.SHA256Hex(key), nil
}

// ValidLicenseKeyFormat bounds length only; licenses issued by older
// deployments may carry other shapes.
func ValidLicenseKeyFormat(key string) bool {
	return len(key) >= 20 && len(key) <= 128
}

func randHex(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
