package encryption

import (
	"fmt"

	"shoplist/internal/config"
	"shoplist/internal/shop"
)

// NewEncryptorFromConfig creates an Encryptor based on the encryption
// config type. An empty type defaults to age.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (shop.Encryptor, error) {
	switch cfg.Type {
	case "", "age":
		return NewAgeEncryptor(), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %s", cfg.Type)
	}
}
