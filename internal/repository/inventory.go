package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

// InventoryRepository manages the single inventory row of each trainer.
// Every category is its own JSON column; a mutation reads the category,
// changes it in memory and writes the whole column back. Two callers
// changing the same category of the same trainer at once can lose an
// update.
type InventoryRepository struct {
	table
}

var _ Repository[model.TrainerInventory, model.InventoryCreateInput, model.InventoryUpdateInput] = (*InventoryRepository)(nil)

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db database.Querier) *InventoryRepository {
	return &InventoryRepository{table{db: db, name: "trainer_inventory"}}
}

// FindByID retrieves an inventory row by ID
func (r *InventoryRepository) FindByID(ctx context.Context, id int) (*model.TrainerInventory, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return parseInventory(row), nil
}

// FindByTrainerID retrieves a trainer's inventory, or nil if none exists yet
func (r *InventoryRepository) FindByTrainerID(ctx context.Context, trainerID int) (*model.TrainerInventory, error) {
	row, err := r.db.QueryOne(ctx, `SELECT * FROM trainer_inventory WHERE trainer_id = $1`, trainerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return parseInventory(row), nil
}

// FindOrCreate returns the trainer's inventory, creating it with the
// starter items on first access
func (r *InventoryRepository) FindOrCreate(ctx context.Context, trainerID int) (*model.TrainerInventory, error) {
	inv, err := r.FindByTrainerID(ctx, trainerID)
	if err != nil || inv != nil {
		return inv, err
	}

	q, args, err := insertInventorySQL(trainerID, model.StarterInventory(), true)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.Execute(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}

	inv, err = r.FindByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: inventory of trainer %d", ErrCreateFailed, trainerID)
	}
	return inv, nil
}

// Create creates an inventory row with the given categories
func (r *InventoryRepository) Create(ctx context.Context, in *model.InventoryCreateInput) (*model.TrainerInventory, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return nil, err
	}
	q, args, err := insertInventorySQL(in.TrainerID, in.Categories, false)
	if err != nil {
		return nil, err
	}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update replaces the given categories wholesale
func (r *InventoryRepository) Update(ctx context.Context, id int, in *model.InventoryUpdateInput) (*model.TrainerInventory, error) {
	p, err := inventoryPatch(in)
	if err != nil {
		return nil, err
	}
	return update(ctx, r.table, id, p, true, r.FindByID)
}

// GetCategory returns one category of a trainer's inventory
func (r *InventoryRepository) GetCategory(ctx context.Context, trainerID int, category model.InventoryCategory) (model.ItemBag, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, category)
	}
	inv, err := r.FindOrCreate(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return inv.Bag(category).Clone(), nil
}

// AddItem adds qty of an item, reusing the stored spelling of its name
func (r *InventoryRepository) AddItem(ctx context.Context, trainerID int, category model.InventoryCategory, name string, qty int) (model.ItemBag, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidQuantity, qty)
	}
	return r.mutate(ctx, trainerID, category, func(b model.ItemBag) { b.Add(name, qty) })
}

// RemoveItem takes qty of an item away. Taking more than is held removes
// the item.
func (r *InventoryRepository) RemoveItem(ctx context.Context, trainerID int, category model.InventoryCategory, name string, qty int) (model.ItemBag, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidQuantity, qty)
	}
	return r.mutate(ctx, trainerID, category, func(b model.ItemBag) { b.Remove(name, qty) })
}

// SetItemQuantity overwrites the quantity of an item; qty <= 0 removes it
func (r *InventoryRepository) SetItemQuantity(ctx context.Context, trainerID int, category model.InventoryCategory, name string, qty int) (model.ItemBag, error) {
	return r.mutate(ctx, trainerID, category, func(b model.ItemBag) { b.Set(name, qty) })
}

// AddItems applies several additions; each touched category is written once
func (r *InventoryRepository) AddItems(ctx context.Context, trainerID int, items []model.ItemDelta) (*model.TrainerInventory, error) {
	for _, it := range items {
		if !it.Category.IsValid() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, it.Category)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: %d of %s", model.ErrInvalidQuantity, it.Quantity, it.Name)
		}
	}

	inv, err := r.FindOrCreate(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	touched := make(map[model.InventoryCategory]bool)
	for _, it := range items {
		inv.Bag(it.Category).Add(it.Name, it.Quantity)
		touched[it.Category] = true
	}
	for _, c := range model.InventoryCategories {
		if touched[c] {
			if err := r.writeCategory(ctx, trainerID, c, inv.Bag(c)); err != nil {
				return nil, err
			}
		}
	}
	return inv, nil
}

// HasItem reports whether at least min of an item is held
func (r *InventoryRepository) HasItem(ctx context.Context, trainerID int, category model.InventoryCategory, name string, min int) (bool, error) {
	bag, err := r.GetCategory(ctx, trainerID, category)
	if err != nil {
		return false, err
	}
	return bag.Has(name, min), nil
}

// GetItemQuantity returns the held amount of an item, 0 when absent
func (r *InventoryRepository) GetItemQuantity(ctx context.Context, trainerID int, category model.InventoryCategory, name string) (int, error) {
	bag, err := r.GetCategory(ctx, trainerID, category)
	if err != nil {
		return 0, err
	}
	return bag.Quantity(name), nil
}

// GetItemByName finds an item in any category. When an item sits in more
// than one category the first in InventoryCategories order is returned.
func (r *InventoryRepository) GetItemByName(ctx context.Context, trainerID int, name string) (*model.InventoryItem, error) {
	inv, err := r.FindOrCreate(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	item, ok := inv.FindItem(name)
	if !ok {
		return nil, nil
	}
	return item, nil
}

// mutate applies fn to one category and writes the category back
func (r *InventoryRepository) mutate(ctx context.Context, trainerID int, category model.InventoryCategory, fn func(model.ItemBag)) (model.ItemBag, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, category)
	}
	inv, err := r.FindOrCreate(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	bag := inv.Bag(category).Clone()
	fn(bag)
	if err := r.writeCategory(ctx, trainerID, category, bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// writeCategory rewrites the whole JSON value of one category column. The
// column name comes from the closed category set.
func (r *InventoryRepository) writeCategory(ctx context.Context, trainerID int, category model.InventoryCategory, bag model.ItemBag) error {
	data, err := toJSON(bag)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", category, err)
	}
	q := fmt.Sprintf(`UPDATE trainer_inventory SET %s = $1, updated_at = NOW() WHERE trainer_id = $2`, string(category))
	n, err := r.db.Execute(ctx, q, data, trainerID)
	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	if n == 0 {
		return notFound("inventory of trainer", trainerID)
	}
	return nil
}

// insertInventorySQL renders the insert for a new inventory row. With
// ignoreConflict a concurrent first access keeps the other caller's row.
func insertInventorySQL(trainerID int, categories map[model.InventoryCategory]model.ItemBag, ignoreConflict bool) (string, []interface{}, error) {
	columns := []string{"trainer_id"}
	ph := []string{"$1"}
	args := []interface{}{trainerID}
	for _, c := range model.InventoryCategories {
		bag := categories[c]
		if bag == nil {
			bag = model.ItemBag{}
		}
		data, err := toJSON(bag)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode %s: %w", c, err)
		}
		columns = append(columns, string(c))
		args = append(args, data)
		ph = append(ph, fmt.Sprintf("$%d", len(args)))
	}

	q := fmt.Sprintf("INSERT INTO trainer_inventory (%s) VALUES (%s)", strings.Join(columns, ", "), strings.Join(ph, ", "))
	if ignoreConflict {
		q += " ON CONFLICT (trainer_id) DO NOTHING"
	}
	return q + " RETURNING id", args, nil
}

func inventoryPatch(in *model.InventoryUpdateInput) (*query.Patch, error) {
	p := &query.Patch{}
	if in == nil {
		return p, nil
	}
	for c := range in.Categories {
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidCategory, c)
		}
	}
	for _, c := range model.InventoryCategories {
		bag, ok := in.Categories[c]
		if !ok {
			continue
		}
		if bag == nil {
			bag = model.ItemBag{}
		}
		if err := p.SetJSON(string(c), bag); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var inventoryJSON = func() map[string]jsonKind {
	m := make(map[string]jsonKind, len(model.InventoryCategories))
	for _, c := range model.InventoryCategories {
		m[string(c)] = jsonObject
	}
	return m
}()

func parseInventory(raw database.Row) *model.TrainerInventory {
	row := normalizeRow(raw, inventoryJSON)
	inv := &model.TrainerInventory{
		ID:         getInt(row, "id"),
		TrainerID:  getInt(row, "trainer_id"),
		Categories: make(map[model.InventoryCategory]model.ItemBag, len(model.InventoryCategories)),
		CreatedAt:  getTimeValue(row, "created_at"),
		UpdatedAt:  getTimeValue(row, "updated_at"),
	}
	for _, c := range model.InventoryCategories {
		inv.Categories[c] = getItemBag(row, string(c))
	}
	return inv
}
