// Package share implements the portable .shoplist export file format.
//
// Exported files deliberately carry no price or image data: a shared list
// tells the recipient what to buy, never what the sender paid. Imported
// lists rebuild their price history by being shopped again.
package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"shoplist/internal/model"
)

// Version is the current export file format version. Files claiming a
// higher version are rejected rather than half-parsed.
const Version = 1

// ErrInvalidFormat rejects files that are not valid JSON or are missing
// required fields.
var ErrInvalidFormat = errors.New("invalid export format")

// ErrUnsupportedVersion rejects files written by a newer format version.
var ErrUnsupportedVersion = errors.New("unsupported export version")

// Payload is the on-disk shape of a .shoplist file.
type Payload struct {
	Version    int         `json:"version" validate:"required"`
	ExportedAt int64       `json:"exportedAt"`
	List       PayloadList `json:"list" validate:"required"`
}

// PayloadList carries the shared list. Items must be present, though it may
// be empty.
type PayloadList struct {
	Name  string        `json:"name" validate:"required"`
	Items []PayloadItem `json:"items" validate:"required"`
}

// PayloadItem is one shared list entry: identity only, no prices.
type PayloadItem struct {
	Name         string `json:"name" validate:"required"`
	Brand        string `json:"brand"`
	MasterItemID string `json:"masterItemId" validate:"required"`
	VariantIndex int    `json:"variantIndex" validate:"gte=0"`
}

// Codec serializes and validates .shoplist files.
type Codec struct {
	validate *validator.Validate
}

// NewCodec creates a Codec.
func NewCodec() *Codec {
	return &Codec{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Encode serializes a list for sharing, stripping all price and image data.
func (c *Codec) Encode(list *model.ShoppingList, now time.Time) ([]byte, error) {
	payload := Payload{
		Version:    Version,
		ExportedAt: now.UnixMilli(),
		List: PayloadList{
			Name:  list.Name,
			Items: make([]PayloadItem, 0, len(list.Items)),
		},
	}
	for _, it := range list.Items {
		payload.List.Items = append(payload.List.Items, PayloadItem{
			Name:         it.Name,
			Brand:        it.Brand,
			MasterItemID: it.MasterItemID,
			VariantIndex: it.VariantIndex,
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// Decode parses and validates a .shoplist file. Malformed JSON and missing
// required fields fail with ErrInvalidFormat; a version beyond Version
// fails with ErrUnsupportedVersion. Nothing is written on any failure.
func (c *Codec) Decode(data []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := c.validate.Struct(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if payload.Version > Version {
		return nil, fmt.Errorf("%w: file version %d, supported up to %d",
			ErrUnsupportedVersion, payload.Version, Version)
	}
	return &payload, nil
}
