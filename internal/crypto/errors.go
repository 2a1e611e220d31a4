package crypto

import "errors"

var (
	// ErrCryptoInit is returned when the requested key size is not
	// supported by the underlying primitive.
	ErrCryptoInit = errors.New("crypto: unsupported key size")

	// ErrNoKeyLoaded is returned when an operation needs key material
	// that has not been generated or imported.
	ErrNoKeyLoaded = errors.New("crypto: no key loaded")

	// ErrInvalidKeyEncoding is returned when an imported key blob cannot
	// be parsed.
	ErrInvalidKeyEncoding = errors.New("crypto: invalid key encoding")

	// ErrEmptyPlaintext is returned when encrypting empty or blank input.
	ErrEmptyPlaintext = errors.New("crypto: empty plaintext")

	// ErrInvalidCiphertext is returned when a ciphertext or IV is
	// malformed before any decryption is attempted.
	ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext")

	// ErrDecryptionFailed is returned when authentication fails during
	// decryption. It implies corruption or tampering.
	ErrDecryptionFailed = errors.New("crypto: decryption failed")

	// ErrBadSignature is returned when signature verification fails.
	ErrBadSignature = errors.New("crypto: signature verification failed")

	// ErrNoIV is returned by Encrypt when ResetIV has not been called
	// since the previous encryption. Every ciphertext must use a fresh IV.
	ErrNoIV = errors.New("crypto: no fresh IV, call ResetIV before Encrypt")
)
