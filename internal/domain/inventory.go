package domain

import (
	"strings"
	"time"
)

type ItemKind string

const (
	ItemKindPlain ItemKind = "item"
	ItemKindCombo ItemKind = "combo"
)

type ItemCategory string

const (
	CategoryFood           ItemCategory = "food"
	CategoryBeverage       ItemCategory = "beverage"
	CategoryMerchandise    ItemCategory = "merchandise"
	CategoryOfficeSupplies ItemCategory = "office-supplies"
	CategoryCombo          ItemCategory = "combo"
)

// categoryAliases maps the client-facing spellings seen in the wild onto one
// canonical category. Applied once at the boundary, never at the store.
var categoryAliases = map[string]ItemCategory{
	"food":            CategoryFood,
	"beverage":        CategoryBeverage,
	"drink":           CategoryBeverage,
	"drinks":          CategoryBeverage,
	"merchandise":     CategoryMerchandise,
	"merch":           CategoryMerchandise,
	"office-supplies": CategoryOfficeSupplies,
	"supplies":        CategoryOfficeSupplies,
	"combo":           CategoryCombo,
}

// NormalizeCategory resolves a client-supplied category string to its
// canonical form. ok is false for unknown categories.
func NormalizeCategory(raw string) (ItemCategory, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// NormalizeSKU uppercases and trims an SKU so uniqueness is case-insensitive.
func NormalizeSKU(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ComboComponent is one bundled piece of a combo item. The referenced item
// must be of kind "item": combos never nest.
type ComboComponent struct {
	ItemID   string
	Quantity int
}

// InventoryItem is a purchasable item. Kind tags the variant: a plain item
// leaves Components and FixedDuration empty, a combo carries the bundled
// component list and may impose a fixed booking duration.
type InventoryItem struct {
	ID                string
	SKU               string
	Name              string
	Category          ItemCategory
	Price             float64
	Quantity          int
	LowStockThreshold int
	Unit              string
	Kind              ItemKind
	Components        []ComboComponent
	FixedDuration     time.Duration
	CreatedAt         time.Time
}

// LowStock is derived on every read, never trusted from storage.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}
