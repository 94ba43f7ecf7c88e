package review

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the sha256 hex digest of the exact content
// string. Used to detect whether skill content changed since the last
// review.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
