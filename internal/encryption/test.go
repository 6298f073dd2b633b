package encryption

import (
	"bufio"
	"fmt"
	"io"

	"shoplist/internal/shop"
)

// TestEncryptor is a simple, deterministic encryptor for testing. It
// prepends a header carrying the passphrase during encryption and verifies
// it during decryption, so output clearly differs from plaintext and wrong
// passphrases fail, without any real crypto.
type TestEncryptor struct{}

// NewTestEncryptor creates a TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Encrypt(passphrase string, r io.Reader, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "SHOPENC\x00%s\n", passphrase); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Decrypt(passphrase string, r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	want := fmt.Sprintf("SHOPENC\x00%s\n", passphrase)
	if header != want {
		return fmt.Errorf("incorrect passphrase")
	}
	if _, err := io.Copy(w, br); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

// Compile-time check that TestEncryptor implements shop.Encryptor
var _ shop.Encryptor = (*TestEncryptor)(nil)
