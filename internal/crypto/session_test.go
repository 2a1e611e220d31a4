package crypto

import (
	"errors"
	"strings"
	"testing"
)

// newTestCipher returns a SessionCipher with a fresh key installed.
func newTestCipher(t *testing.T) *SessionCipher {
	t.Helper()
	c := NewSessionCipher()
	if _, err := c.GenerateKey(); err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return c
}

func TestSealOpenRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	for _, plaintext := range []string{"hi", "hello there", "多字节 ✓", strings.Repeat("x", 4096)} {
		env, err := c.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal(%q): %v", plaintext, err)
		}
		got, err := c.Open(env)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if got != plaintext {
			t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}
}

func TestOpenAcrossCiphersWithSharedKey(t *testing.T) {
	// Two endpoints holding the same negotiated key must interoperate.
	a := newTestCipher(t)
	b := NewSessionCipher()
	if err := b.LoadKey(a.key); err != nil {
		t.Fatalf("LoadKey: %v", err)
	}

	env, err := a.Seal("hello")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	got, err := b.Open(env)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got %q want %q", got, "hello")
	}
}

func TestResetIVProducesFreshIVs(t *testing.T) {
	c := newTestCipher(t)

	iv1, err := c.ResetIV()
	if err != nil {
		t.Fatalf("ResetIV: %v", err)
	}
	iv2, err := c.ResetIV()
	if err != nil {
		t.Fatalf("ResetIV: %v", err)
	}
	if string(iv1) == string(iv2) {
		t.Fatal("two ResetIV calls produced the same IV")
	}
}

func TestEncryptConsumesIV(t *testing.T) {
	c := newTestCipher(t)

	if _, err := c.ResetIV(); err != nil {
		t.Fatalf("ResetIV: %v", err)
	}
	if _, err := c.Encrypt("once"); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	// A second Encrypt without ResetIV would reuse the IV; it must fail.
	if _, err := c.Encrypt("twice"); !errors.Is(err, ErrNoIV) {
		t.Fatalf("want ErrNoIV, got %v", err)
	}
}

func TestEncryptWithoutKey(t *testing.T) {
	c := NewSessionCipher()
	if _, err := c.Encrypt("hi"); !errors.Is(err, ErrNoKeyLoaded) {
		t.Fatalf("want ErrNoKeyLoaded, got %v", err)
	}
	if _, err := c.ResetIV(); !errors.Is(err, ErrNoKeyLoaded) {
		t.Fatalf("want ErrNoKeyLoaded, got %v", err)
	}
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	c := newTestCipher(t)
	if _, err := c.ResetIV(); err != nil {
		t.Fatalf("ResetIV: %v", err)
	}
	for _, input := range []string{"", "   ", "\t\n"} {
		if _, err := c.Encrypt(input); !errors.Is(err, ErrEmptyPlaintext) {
			t.Fatalf("Encrypt(%q): want ErrEmptyPlaintext, got %v", input, err)
		}
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	c := newTestCipher(t)

	if _, err := c.Decrypt("%%%not-base64%%%", "AAAAAAAAAAAAAAAA"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("want ErrInvalidCiphertext, got %v", err)
	}
	if _, err := c.Decrypt("aGVsbG8=", "c2hvcnQ="); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("short IV: want ErrInvalidCiphertext, got %v", err)
	}
	if _, err := c.Open("no delimiter here"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("bad envelope: want ErrInvalidCiphertext, got %v", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	c := newTestCipher(t)

	env, err := c.Seal("payload")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	// Flip a character in the ciphertext half.
	iv, ct, _ := strings.Cut(env, EnvelopeDelimiter)
	tampered := []byte(ct)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}
	if _, err := c.Open(iv + EnvelopeDelimiter + string(tampered)); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	a := newTestCipher(t)
	b := newTestCipher(t)

	env, err := a.Seal("secret")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := b.Open(env); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed, got %v", err)
	}
}

func TestWipe(t *testing.T) {
	c := newTestCipher(t)

	c.Wipe()
	if c.HasKey() {
		t.Fatal("cipher still has key after Wipe")
	}
	if _, err := c.Encrypt("hi"); !errors.Is(err, ErrNoKeyLoaded) {
		t.Fatalf("want ErrNoKeyLoaded after Wipe, got %v", err)
	}
}
