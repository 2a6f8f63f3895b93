package crypto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testSalt(t *testing.T) []byte {
	t.Helper()
	return []byte("0123456789abcdef")
}

func TestRoundtrip(t *testing.T) {
	c, err := NewCipher("correct horse battery staple", testSalt(t))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	original := `{"access_token":"eyJ.abc","refresh_token":"eyJ.def"}`
	encrypted, err := c.Encrypt(original)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if encrypted == original {
		t.Fatal("encrypted text should differ from plaintext")
	}

	decrypted, err := c.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != original {
		t.Errorf("roundtrip failed: got %q, want %q", decrypted, original)
	}
}

func TestDifferentCiphertexts(t *testing.T) {
	c, err := NewCipher("pass", testSalt(t))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	enc1, _ := c.Encrypt("same input")
	enc2, _ := c.Encrypt("same input")
	if enc1 == enc2 {
		t.Error("two encryptions of the same plaintext should differ (random nonce)")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := DeriveKey("pass", testSalt(t))
	k2 := DeriveKey("pass", testSalt(t))
	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt should derive the same key")
	}
	if len(k1) != 32 {
		t.Errorf("expected 32-byte key, got %d", len(k1))
	}

	k3 := DeriveKey("pass", []byte("fedcba9876543210"))
	if bytes.Equal(k1, k3) {
		t.Error("different salts should derive different keys")
	}
}

func TestWrongPassphrase(t *testing.T) {
	c1, _ := NewCipher("right", testSalt(t))
	c2, _ := NewCipher("wrong", testSalt(t))

	enc, err := c1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := c2.Decrypt(enc); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestNilCipherPassthrough(t *testing.T) {
	var c *Cipher

	text := `{"key":"value"}`
	encrypted, err := c.Encrypt(text)
	if err != nil || encrypted != text {
		t.Errorf("nil Encrypt should return plaintext unchanged, got %q, %v", encrypted, err)
	}
	decrypted, err := c.Decrypt(text)
	if err != nil || decrypted != text {
		t.Errorf("nil Decrypt should return ciphertext unchanged, got %q, %v", decrypted, err)
	}
	if c.Enabled() {
		t.Error("nil cipher should not report enabled")
	}
}

func TestEmptyPassphraseReturnsNil(t *testing.T) {
	c, err := NewCipher("", nil)
	if err != nil {
		t.Fatalf("NewCipher with empty passphrase: %v", err)
	}
	if c != nil {
		t.Error("NewCipher with empty passphrase should return nil")
	}
}

func TestShortSalt(t *testing.T) {
	_, err := NewCipher("pass", []byte("short"))
	if err == nil {
		t.Fatal("expected error for short salt")
	}
	if !strings.Contains(err.Error(), "16 bytes") {
		t.Errorf("error should mention 16 bytes, got: %v", err)
	}
}

func TestNewSalt(t *testing.T) {
	s1, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	s2, _ := NewSalt()
	if len(s1) != SaltSize {
		t.Errorf("expected %d bytes, got %d", SaltSize, len(s1))
	}
	if bytes.Equal(s1, s2) {
		t.Error("salts should be random")
	}
}

func TestDecryptInvalidData(t *testing.T) {
	c, err := NewCipher("pass", testSalt(t))
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	if _, err := c.Decrypt("!!!not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := c.Decrypt("YQ=="); err == nil {
		t.Error("expected error for too-short ciphertext")
	}

	encrypted, _ := c.Encrypt("hello")
	raw, _ := base64.StdEncoding.DecodeString(encrypted)
	raw[len(raw)-1] ^= 0xff
	if _, err := c.Decrypt(base64.StdEncoding.EncodeToString(raw)); err == nil {
		t.Error("expected error for tampered ciphertext")
	}
}
