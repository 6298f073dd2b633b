package encryption_test

import (
	"bytes"
	"strings"
	"testing"

	"shoplist/internal/encryption"
)

func TestAgeEncryptor(t *testing.T) {
	t.Parallel()

	t.Run("round-trips with the right passphrase", func(t *testing.T) {
		e := encryption.NewAgeEncryptor()
		plaintext := []byte("the shopping data")

		var ciphertext bytes.Buffer
		if err := e.Encrypt("secret", bytes.NewReader(plaintext), &ciphertext); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}

		var decrypted bytes.Buffer
		if err := e.Decrypt("secret", bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if !bytes.Equal(decrypted.Bytes(), plaintext) {
			t.Errorf("Decrypt() = %q, want %q", decrypted.Bytes(), plaintext)
		}
	})

	t.Run("ciphertext differs from plaintext", func(t *testing.T) {
		e := encryption.NewAgeEncryptor()

		var ciphertext bytes.Buffer
		if err := e.Encrypt("secret", strings.NewReader("hello world"), &ciphertext); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if bytes.Contains(ciphertext.Bytes(), []byte("hello world")) {
			t.Error("ciphertext contains the plaintext")
		}
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		e := encryption.NewAgeEncryptor()

		var ciphertext bytes.Buffer
		if err := e.Encrypt("right", strings.NewReader("data"), &ciphertext); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}

		var out bytes.Buffer
		if err := e.Decrypt("wrong", bytes.NewReader(ciphertext.Bytes()), &out); err == nil {
			t.Error("Decrypt() with wrong passphrase succeeded")
		}
	})
}
