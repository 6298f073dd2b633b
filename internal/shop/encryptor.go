package shop

import "io"

// Encryptor handles passphrase-based encryption of backup bundles. No key
// material is stored on disk; the passphrase is supplied per operation.
type Encryptor interface {
	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(passphrase string, r io.Reader, w io.Writer) error

	// Decrypt decrypts data read from r and writes plaintext to w.
	// Returns an error if the passphrase is incorrect.
	Decrypt(passphrase string, r io.Reader, w io.Writer) error
}
