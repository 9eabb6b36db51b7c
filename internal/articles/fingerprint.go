package articles

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Fingerprint computes the deduplication key for an article: a SHA-256
// digest over the normalized URL, the title and the published timestamp.
// The timestamp is rendered in UTC RFC3339 so the digest does not depend
// on the zone the source reported.
func Fingerprint(normalizedURL, title string, publishedAt time.Time) string {
	signature := normalizedURL + title + publishedAt.UTC().Format(time.RFC3339)
	sum := sha256.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:])
}
