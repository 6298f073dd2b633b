package encryption

import (
	"fmt"
	"io"

	"filippo.io/age"

	"shoplist/internal/shop"
)

// AgeEncryptor encrypts backup bundles with age's passphrase (scrypt)
// recipients. No key material is ever written to disk; the passphrase is
// supplied per operation.
type AgeEncryptor struct{}

// NewAgeEncryptor creates an AgeEncryptor.
func NewAgeEncryptor() *AgeEncryptor {
	return &AgeEncryptor{}
}

// Encrypt encrypts data read from r and writes age ciphertext to w.
func (e *AgeEncryptor) Encrypt(passphrase string, r io.Reader, w io.Writer) error {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	wc, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("starting encryption: %w", err)
	}
	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Decrypt decrypts age ciphertext read from r and writes plaintext to w.
// A wrong passphrase surfaces as a decryption error.
func (e *AgeEncryptor) Decrypt(passphrase string, r io.Reader, w io.Writer) error {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	plain, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	if _, err := io.Copy(w, plain); err != nil {
		return fmt.Errorf("reading decrypted data: %w", err)
	}
	return nil
}

// Compile-time check that AgeEncryptor implements shop.Encryptor
var _ shop.Encryptor = (*AgeEncryptor)(nil)
