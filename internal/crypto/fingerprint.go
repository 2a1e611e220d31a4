package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 digest of an exported public key.
// The same value is shown to users for out-of-band verification and
// stored by the trust store as the pinned fingerprint.
func Fingerprint(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:])
}
