package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"strings"

	"enchat/internal/util/memzero"
)

const (
	// SessionKeySize is the AES-256 key length in bytes.
	SessionKeySize = 32

	// EnvelopeDelimiter separates the IV from the ciphertext in an
	// encrypted payload. '-' is not part of the standard base64
	// alphabet, so the split is unambiguous.
	EnvelopeDelimiter = "-"
)

// SessionCipher encrypts and decrypts chat payloads with an ephemeral
// symmetric key. One instance lives exactly as long as one paired session.
//
// Every ciphertext uses a fresh random IV: ResetIV must be called before
// each Encrypt, and Encrypt consumes the IV so that reuse is impossible.
// The Seal/Open helpers produce and parse the self-describing
// base64(iv) '-' base64(ciphertext) envelope carried on the wire.
type SessionCipher struct {
	key  []byte
	aead cipher.AEAD
	iv   []byte
}

// NewSessionCipher returns a cipher with no key loaded.
func NewSessionCipher() *SessionCipher { return &SessionCipher{} }

// GenerateKey creates a fresh session key, installs it, and returns it so
// the caller can wrap it for the peer.
func (c *SessionCipher) GenerateKey() ([]byte, error) {
	key := make([]byte, SessionKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := c.LoadKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// LoadKey installs a previously negotiated session key.
func (c *SessionCipher) LoadKey(key []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return ErrInvalidKeyEncoding
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	c.key = append([]byte(nil), key...)
	c.aead = aead
	c.iv = nil
	return nil
}

// HasKey reports whether a session key is installed.
func (c *SessionCipher) HasKey() bool { return c.aead != nil }

// ResetIV generates a fresh random IV for the next Encrypt and returns it.
func (c *SessionCipher) ResetIV() ([]byte, error) {
	if c.aead == nil {
		return nil, ErrNoKeyLoaded
	}
	iv := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	c.iv = iv
	return iv, nil
}

// Encrypt encrypts plaintext under the current IV and returns base64
// ciphertext. The IV is consumed; a new ResetIV is required before the
// next call.
func (c *SessionCipher) Encrypt(plaintext string) (string, error) {
	if c.aead == nil {
		return "", ErrNoKeyLoaded
	}
	if strings.TrimSpace(plaintext) == "" {
		return "", ErrEmptyPlaintext
	}
	if c.iv == nil {
		return "", ErrNoIV
	}
	ct := c.aead.Seal(nil, c.iv, []byte(plaintext), nil)
	c.iv = nil
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt decrypts base64 ciphertext under the given base64 IV.
func (c *SessionCipher) Decrypt(ciphertext, iv string) (string, error) {
	if c.aead == nil {
		return "", ErrNoKeyLoaded
	}
	rawIV, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(rawIV) != c.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}
	rawCT, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	plain, err := c.aead.Open(nil, rawIV, rawCT, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// Seal encrypts plaintext under a fresh IV and returns the wire envelope
// iv '-' ciphertext, both halves base64.
func (c *SessionCipher) Seal(plaintext string) (string, error) {
	iv, err := c.ResetIV()
	if err != nil {
		return "", err
	}
	ct, err := c.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(iv) + EnvelopeDelimiter + ct, nil
}

// Open splits a wire envelope into IV and ciphertext and decrypts it.
func (c *SessionCipher) Open(envelope string) (string, error) {
	iv, ct, found := strings.Cut(envelope, EnvelopeDelimiter)
	if !found || iv == "" || ct == "" {
		return "", ErrInvalidCiphertext
	}
	return c.Decrypt(ct, iv)
}

// Wipe zeroes the session key. The cipher is unusable afterwards.
func (c *SessionCipher) Wipe() {
	memzero.Zero(c.key)
	c.key = nil
	c.aead = nil
	c.iv = nil
}
