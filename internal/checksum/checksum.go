// Package checksum computes the content digests used to detect deck changes.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the lowercase hex SHA-256 digest of data. The digest doubles
// as the If-Match token for optimistic concurrency on deck updates.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
