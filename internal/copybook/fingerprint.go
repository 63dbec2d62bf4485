// File path: internal/copybook/fingerprint.go
package copybook

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// fingerprint derives a stable hash from the spliced entries. Comments,
// sequence numbers, and layout differences are already stripped, so two
// copies of the same record definition hash identically even when their
// formatting differs.
func fingerprint(sentences []sentence) string {
	hasher := sha256.New()
	write := func(parts ...string) {
		for _, part := range parts {
			if part == "" {
				continue
			}
			_, _ = hasher.Write([]byte(part))
			_, _ = hasher.Write([]byte{0})
		}
	}
	for _, s := range sentences {
		write(strings.ToUpper(strings.Join(strings.Fields(s.text), " ")))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
