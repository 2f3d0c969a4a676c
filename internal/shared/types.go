package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a prefixed, collision-resistant identifier such as
// "rule_3f9a...". Prefixes keep ids self-describing in logs and payloads.
func NewID(prefix string) string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return prefix + hex.EncodeToString(b)
}
