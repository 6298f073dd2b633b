package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ImageRef identifies a stored image by its blob key
// (e.g. "images/products/1718000000000.jpg"). Empty means no image.
type ImageRef string

// PriceRecord is one observed price for a brand variant. Records are
// append-only: once appended, a record is never mutated except to have its
// SessionID/Receipt fields back-filled exactly once after the originating
// shopping session is finalized.
type PriceRecord struct {
	Price     decimal.Decimal `json:"price"`
	Date      time.Time       `json:"date"`
	SessionID string          `json:"sessionId,omitempty"`
	ListName  string          `json:"listName,omitempty"`
	Receipt   ImageRef        `json:"receiptImage,omitempty"`
}

// BrandVariant is one purchasable option of a MasterItem.
// AveragePrice is derived: it always equals the arithmetic mean of
// PriceHistory prices and is recomputed whenever a record is appended,
// never edited directly.
type BrandVariant struct {
	Brand        string          `json:"brand"`
	DefaultPrice decimal.Decimal `json:"defaultPrice"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	PriceHistory []PriceRecord   `json:"priceHistory"`
	Image        ImageRef        `json:"image,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// MasterItem is a product concept in the catalog. It exclusively owns its
// brand variants; an item always has at least one variant.
type MasterItem struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Variants            []BrandVariant `json:"variants"`
	DefaultVariantIndex int            `json:"defaultVariantIndex"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// Variant returns the variant at index, or nil if out of range.
func (m *MasterItem) Variant(index int) *BrandVariant {
	if index < 0 || index >= len(m.Variants) {
		return nil
	}
	return &m.Variants[index]
}

// ItemKey builds the masterItemId_variantIndex key that identifies a catalog
// variant within a list or session.
func ItemKey(masterItemID string, variantIndex int) string {
	return masterItemID + "_" + strconv.Itoa(variantIndex)
}

// ShoppingListItem is a snapshot of a catalog variant copied onto a list at
// the moment it was added. Catalog edits after that moment do not change it.
type ShoppingListItem struct {
	MasterItemID string          `json:"masterItemId"`
	VariantIndex int             `json:"variantIndex"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	LastPrice    decimal.Decimal `json:"lastPrice"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	PriceAtAdd   decimal.Decimal `json:"priceAtAdd"`
	Image        ImageRef        `json:"image,omitempty"`
	AddedAt      time.Time       `json:"addedAt"`
}

// Key returns the masterItemId_variantIndex key for this item.
func (i *ShoppingListItem) Key() string {
	return ItemKey(i.MasterItemID, i.VariantIndex)
}

// ShoppingList is a named, user-ordered collection of item snapshots.
type ShoppingList struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Items     []ShoppingListItem `json:"items"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// FindItem returns the list item with the given key, or nil.
func (l *ShoppingList) FindItem(key string) *ShoppingListItem {
	for i := range l.Items {
		if l.Items[i].Key() == key {
			return &l.Items[i]
		}
	}
	return nil
}

// ActiveSessionSlot is the single well-known storage key for the active
// session. At most one ActiveSession is persisted at a time, process-wide.
const ActiveSessionSlot = "current"

// ItemState is the per-item checked state within an active session.
type ItemState struct {
	Checked   bool            `json:"checked"`
	Price     decimal.Decimal `json:"price"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// ActiveSession is the single in-progress shopping trip. ListID/ListName are
// back-references, not ownership. Items is a copy of the list's items at
// session start. Every key in Checked corresponds to an item in Items.
type ActiveSession struct {
	ID        string                     `json:"id"`
	ListID    string                     `json:"listId"`
	ListName  string                     `json:"listName"`
	StartTime time.Time                  `json:"startTime"`
	Items     []ShoppingListItem         `json:"items"`
	Checked   map[string]ItemState       `json:"checked"`
	Prices    map[string]decimal.Decimal `json:"prices"`
	Receipt   ImageRef                   `json:"receiptImage,omitempty"`
}

// FindItem returns the session item with the given key, or nil.
func (s *ActiveSession) FindItem(key string) *ShoppingListItem {
	for i := range s.Items {
		if s.Items[i].Key() == key {
			return &s.Items[i]
		}
	}
	return nil
}

// EffectivePrice returns the price currently in effect for an item: the
// edited price when one was recorded this session, else the snapshot's
// last known catalog price.
func (s *ActiveSession) EffectivePrice(item *ShoppingListItem) decimal.Decimal {
	if p, ok := s.Prices[item.Key()]; ok {
		return p
	}
	return item.LastPrice
}

// CanEditPrice reports whether the price of the given key may still be
// edited. Checked items are locked until unchecked.
func (s *ActiveSession) CanEditPrice(key string) bool {
	return !s.Checked[key].Checked
}

// EstimatedTotal sums the effective price of every item on the trip.
func (s *ActiveSession) EstimatedTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range s.Items {
		total = total.Add(s.EffectivePrice(&s.Items[i]))
	}
	return total
}

// ActualTotal sums the recorded price of checked items only.
// Note that actual may exceed estimated: prices can be edited upward
// before an item is checked.
func (s *ActiveSession) ActualTotal() decimal.Decimal {
	total := decimal.Zero
	for _, st := range s.Checked {
		if st.Checked {
			total = total.Add(st.Price)
		}
	}
	return total
}

// SessionItem is the frozen outcome of one list item in a completed trip.
// Unchecked items keep the price that would have applied.
type SessionItem struct {
	MasterItemID string          `json:"masterItemId"`
	VariantIndex int             `json:"variantIndex"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Price        decimal.Decimal `json:"price"`
	Checked      bool            `json:"checked"`
}

// ShoppingSession is the immutable record of a completed shopping trip.
// Total is the user-confirmed amount paid; CalculatedTotal is the sum of
// checked item prices, retained separately so the discrepancy is never lost.
// Items covers every item that was on the list, not only checked ones.
type ShoppingSession struct {
	ID              string          `json:"id"`
	ListID          string          `json:"listId"`
	ListName        string          `json:"listName"`
	Date            time.Time       `json:"date"`
	Total           decimal.Decimal `json:"total"`
	CalculatedTotal decimal.Decimal `json:"calculatedTotal"`
	Receipt         ImageRef        `json:"receiptImage,omitempty"`
	Items           []SessionItem   `json:"items"`
}
