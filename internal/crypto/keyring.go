package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const (
	// MinKeySize is the smallest RSA modulus we accept. Anything shorter
	// cannot wrap a session key under OAEP-SHA256 with a safe margin.
	MinKeySize = 2048

	// DefaultKeySize is used when the caller does not ask for a
	// specific size.
	DefaultKeySize = 4096

	publicPEMType  = "PUBLIC KEY"
	privatePEMType = "PRIVATE KEY"
)

// KeyRing holds one RSA identity: always a public key, and a private half
// only for the local party. Peer keys are imported public-only.
type KeyRing struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// NewKeyRing returns an empty key ring. Generate or import a key before use.
func NewKeyRing() *KeyRing { return &KeyRing{} }

// Generate creates a fresh keypair of the given size in bits.
func (k *KeyRing) Generate(bits int) error {
	if bits < MinKeySize {
		return fmt.Errorf("%w: %d bits (min %d)", ErrCryptoInit, bits, MinKeySize)
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoInit, err)
	}
	k.private = priv
	k.public = &priv.PublicKey
	return nil
}

// ExportPublic serializes the public key as a PKIX PEM block.
func (k *KeyRing) ExportPublic() ([]byte, error) {
	if k.public == nil {
		return nil, ErrNoKeyLoaded
	}
	der, err := x509.MarshalPKIXPublicKey(k.public)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: publicPEMType, Bytes: der}), nil
}

// ExportPrivate serializes the private key as a PKCS#8 PEM block.
func (k *KeyRing) ExportPrivate() ([]byte, error) {
	if k.private == nil {
		return nil, ErrNoKeyLoaded
	}
	der, err := x509.MarshalPKCS8PrivateKey(k.private)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: privatePEMType, Bytes: der}), nil
}

// ImportPublic loads a PKIX PEM public key, replacing any held public key.
func (k *KeyRing) ImportPublic(data []byte) error {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicPEMType {
		return ErrInvalidKeyEncoding
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return ErrInvalidKeyEncoding
	}
	k.public = pub
	return nil
}

// ImportPrivate loads a PKCS#8 PEM private key, replacing both halves.
func (k *KeyRing) ImportPrivate(data []byte) error {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != privatePEMType {
		return ErrInvalidKeyEncoding
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return ErrInvalidKeyEncoding
	}
	k.private = priv
	k.public = &priv.PublicKey
	return nil
}

// Wrap encrypts a session key under the held public key with OAEP-SHA256.
func (k *KeyRing) Wrap(sessionKey []byte) ([]byte, error) {
	if k.public == nil {
		return nil, ErrNoKeyLoaded
	}
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, k.public, sessionKey, nil)
}

// Unwrap decrypts a wrapped session key with the held private key.
func (k *KeyRing) Unwrap(wrapped []byte) ([]byte, error) {
	if k.private == nil {
		return nil, ErrNoKeyLoaded
	}
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, k.private, wrapped, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return key, nil
}

// Sign produces a PSS-SHA256 signature over data with the private key.
func (k *KeyRing) Sign(data []byte) ([]byte, error) {
	if k.private == nil {
		return nil, ErrNoKeyLoaded
	}
	digest := sha256.Sum256(data)
	return rsa.SignPSS(rand.Reader, k.private, crypto.SHA256, digest[:], nil)
}

// Verify checks a PSS-SHA256 signature over data against the public key.
func (k *KeyRing) Verify(data, signature []byte) error {
	if k.public == nil {
		return ErrNoKeyLoaded
	}
	digest := sha256.Sum256(data)
	if err := rsa.VerifyPSS(k.public, crypto.SHA256, digest[:], signature, nil); err != nil {
		return ErrBadSignature
	}
	return nil
}

// Fingerprint returns the fingerprint of the held public key.
func (k *KeyRing) Fingerprint() (string, error) {
	pub, err := k.ExportPublic()
	if err != nil {
		return "", err
	}
	return Fingerprint(pub), nil
}

// HasPrivate reports whether the ring holds a private half.
func (k *KeyRing) HasPrivate() bool { return k.private != nil }
