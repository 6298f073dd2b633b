package encryption_test

import (
	"bytes"
	"strings"
	"testing"

	"shoplist/internal/config"
	"shoplist/internal/encryption"
)

func TestTestEncryptor(t *testing.T) {
	t.Parallel()

	t.Run("round-trips with the right passphrase", func(t *testing.T) {
		e := encryption.NewTestEncryptor()

		var out bytes.Buffer
		if err := e.Encrypt("pw", strings.NewReader("payload"), &out); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}

		var plain bytes.Buffer
		if err := e.Decrypt("pw", bytes.NewReader(out.Bytes()), &plain); err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if plain.String() != "payload" {
			t.Errorf("Decrypt() = %q, want %q", plain.String(), "payload")
		}
	})

	t.Run("wrong passphrase fails", func(t *testing.T) {
		e := encryption.NewTestEncryptor()

		var out bytes.Buffer
		e.Encrypt("pw", strings.NewReader("payload"), &out)

		var plain bytes.Buffer
		if err := e.Decrypt("other", bytes.NewReader(out.Bytes()), &plain); err == nil {
			t.Error("Decrypt() with wrong passphrase succeeded")
		}
	})
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ     string
		wantErr bool
	}{
		{typ: ""},
		{typ: "age"},
		{typ: "test"},
		{typ: "rot13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("type "+tt.typ, func(t *testing.T) {
			enc, err := encryption.NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if tt.wantErr {
				if err == nil {
					t.Errorf("NewEncryptorFromConfig(%q) succeeded, want error", tt.typ)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEncryptorFromConfig(%q) error = %v", tt.typ, err)
			}
			if enc == nil {
				t.Errorf("NewEncryptorFromConfig(%q) = nil", tt.typ)
			}
		})
	}
}
