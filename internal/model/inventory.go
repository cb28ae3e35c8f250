package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// InventoryCategory names one JSON column of trainer_inventory
type InventoryCategory string

const (
	CategoryItems     InventoryCategory = "items"
	CategoryBalls     InventoryCategory = "balls"
	CategoryBerries   InventoryCategory = "berries"
	CategoryPastries  InventoryCategory = "pastries"
	CategoryEvolution InventoryCategory = "evolution"
	CategoryEggs      InventoryCategory = "eggs"
	CategoryAntiques  InventoryCategory = "antiques"
	CategoryHeldItems InventoryCategory = "helditems"
	CategorySeals     InventoryCategory = "seals"
	CategoryKeyItems  InventoryCategory = "keyitems"
)

// InventoryCategories lists every category in lookup order
var InventoryCategories = []InventoryCategory{
	CategoryItems,
	CategoryBalls,
	CategoryBerries,
	CategoryPastries,
	CategoryEvolution,
	CategoryEggs,
	CategoryAntiques,
	CategoryHeldItems,
	CategorySeals,
	CategoryKeyItems,
}

// IsValid reports whether c is one of the ten categories
func (c InventoryCategory) IsValid() bool {
	for _, known := range InventoryCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseInventoryCategory accepts a category name in any case
func ParseInventoryCategory(s string) (InventoryCategory, error) {
	c := InventoryCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// ItemBag maps item name to a positive quantity. Keys whose quantity drops
// to zero or below are removed, never stored.
type ItemBag map[string]int

// ResolveKey finds the stored key for name: an exact match first, then the
// first case-insensitive match in sorted key order, else name unchanged.
func (b ItemBag) ResolveKey(name string) string {
	if _, ok := b[name]; ok {
		return name
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

// Quantity returns the held amount of name, 0 when absent
func (b ItemBag) Quantity(name string) int {
	return b[b.ResolveKey(name)]
}

// Has reports whether at least min of name is held
func (b ItemBag) Has(name string, min int) bool {
	if min < 1 {
		min = 1
	}
	return b.Quantity(name) >= min
}

// Add increases name by qty, saturating at math.MaxInt
func (b ItemBag) Add(name string, qty int) {
	key := b.ResolveKey(name)
	total := b[key] + qty
	if qty > 0 && b[key] > math.MaxInt-qty {
		total = math.MaxInt
	}
	b.store(key, total)
}

// Remove decreases name by qty, deleting the key once nothing is left
func (b ItemBag) Remove(name string, qty int) {
	key := b.ResolveKey(name)
	b.store(key, b[key]-qty)
}

// Set replaces the quantity of name; qty <= 0 deletes it
func (b ItemBag) Set(name string, qty int) {
	b.store(b.ResolveKey(name), qty)
}

func (b ItemBag) store(key string, qty int) {
	if qty <= 0 {
		delete(b, key)
		return
	}
	b[key] = qty
}

// Clone returns an independent copy
func (b ItemBag) Clone() ItemBag {
	out := make(ItemBag, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// TrainerInventory is the single inventory row of a trainer
type TrainerInventory struct {
	ID         int                           `json:"id"`
	TrainerID  int                           `json:"trainerId"`
	Categories map[InventoryCategory]ItemBag `json:"categories"`
	CreatedAt  time.Time                     `json:"createdAt"`
	UpdatedAt  time.Time                     `json:"updatedAt"`
}

// Bag returns the bag for a category, never nil
func (inv *TrainerInventory) Bag(c InventoryCategory) ItemBag {
	if inv.Categories == nil {
		inv.Categories = make(map[InventoryCategory]ItemBag, len(InventoryCategories))
	}
	bag, ok := inv.Categories[c]
	if !ok || bag == nil {
		bag = ItemBag{}
		inv.Categories[c] = bag
	}
	return bag
}

// FindItem scans the categories in lookup order and returns the first one
// holding a positive quantity of name.
func (inv *TrainerInventory) FindItem(name string) (*InventoryItem, bool) {
	for _, c := range InventoryCategories {
		bag := inv.Categories[c]
		if bag == nil {
			continue
		}
		key := bag.ResolveKey(name)
		if qty := bag[key]; qty > 0 {
			return &InventoryItem{Category: c, Name: key, Quantity: qty}, true
		}
	}
	return nil, false
}

// InventoryItem locates one item inside an inventory
type InventoryItem struct {
	Category InventoryCategory `json:"category"`
	Name     string            `json:"name"`
	Quantity int               `json:"quantity"`
}

// StarterInventory is seeded into a trainer's inventory on first access.
// The categories it omits start empty.
func StarterInventory() map[InventoryCategory]ItemBag {
	return map[InventoryCategory]ItemBag{
		CategoryItems:    {"Daycare Daypass": 1, "Legacy Leeway": 1},
		CategoryBalls:    {"Poke Ball": 10},
		CategoryBerries:  {"Forget-Me-Not": 2, "Edenwiess": 2},
		CategoryEggs:     {"Standard Egg": 1},
		CategoryKeyItems: {"Mission Mandate": 1},
	}
}

// InventoryCreateInput creates an inventory row. Missing categories start
// empty.
type InventoryCreateInput struct {
	TrainerID  int                           `json:"trainerId"`
	Categories map[InventoryCategory]ItemBag `json:"categories,omitempty"`
}

// Validate checks if the create input is valid
func (in *InventoryCreateInput) Validate() []FieldError {
	var errs []FieldError
	if in.TrainerID <= 0 {
		errs = append(errs, FieldError{Field: "trainerId", Message: "trainerId is required"})
	}
	for c := range in.Categories {
		if !c.IsValid() {
			errs = append(errs, FieldError{Field: "categories", Message: fmt.Sprintf("unknown category %q", c)})
		}
	}
	return errs
}

// InventoryUpdateInput replaces whole categories; categories not present
// are left alone
type InventoryUpdateInput struct {
	Categories map[InventoryCategory]ItemBag `json:"categories,omitempty"`
}

// ItemDelta is one entry of a batch add
type ItemDelta struct {
	Category InventoryCategory `json:"category"`
	Name     string            `json:"name"`
	Quantity int               `json:"quantity"`
}
