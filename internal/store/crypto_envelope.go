package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// Current version of the encrypted key blob format.
const keyBlobVersion = 1

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// stored blob has been modified.
var ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted key")

// keyBlob is the JSON structure holding the sealed private key and the
// KDF parameters used to derive its encryption key.
type keyBlob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// sealKey derives a key from passphrase and seals the private key into a
// JSON blob. The nonce is zero: the key is bound to a fresh random salt,
// so it is used exactly once.
func sealKey(passphrase string, raw []byte) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	N, r, p := scryptParamsDefault()
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(keyBlob{V: keyBlobVersion, Salt: salt[:], N: N, R: r, P: p, Cipher: ct})
}

// openKey opens a blob produced by sealKey.
func openKey(passphrase string, blob []byte) ([]byte, error) {
	var b keyBlob
	if err := json.Unmarshal(blob, &b); err != nil {
		return nil, err
	}
	if b.V > keyBlobVersion {
		return nil, fmt.Errorf("store: unsupported key blob version %d", b.V)
	}
	key, err := scrypt.Key([]byte(passphrase), b.Salt, b.N, b.R, b.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	raw, err := aead.Open(nil, nonce[:], b.Cipher, b.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return raw, nil
}
