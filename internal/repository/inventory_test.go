package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/testing/fakedb"
)

const inventorySelect = "FROM trainer_inventory WHERE trainer_id"

// inventoryRow builds a stored row with the given category JSON; other
// categories hold an empty object
func inventoryRow(trainerID int, categories map[string]string) database.Row {
	row := database.Row{"id": int64(1), "trainer_id": int64(trainerID)}
	for _, c := range model.InventoryCategories {
		row[string(c)] = "{}"
	}
	for c, v := range categories {
		row[c] = v
	}
	return row
}

// writtenBag decodes the JSON written by the single category UPDATE
func writtenBag(t *testing.T, db *fakedb.DB, column string) model.ItemBag {
	t.Helper()
	calls := db.CallsMatching("UPDATE trainer_inventory SET " + column + " = $1")
	require.Len(t, calls, 1)
	var bag model.ItemBag
	require.NoError(t, json.Unmarshal([]byte(calls[0].Args[0].(string)), &bag))
	return bag
}

// ============================================================================
// Quantity Tests
// ============================================================================

func TestAddItem_ResolvesCaseInsensitiveKey(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, map[string]string{"balls": `{"Poke Ball": 5}`})))
	db.On("UPDATE trainer_inventory", fakedb.Affected(1))
	repo := NewInventoryRepository(db)

	bag, err := repo.AddItem(context.Background(), 7, model.CategoryBalls, "poke ball", 3)
	require.NoError(t, err)

	assert.Equal(t, model.ItemBag{"Poke Ball": 8}, bag)
	assert.Equal(t, model.ItemBag{"Poke Ball": 8}, writtenBag(t, db, "balls"))
	assert.Equal(t, 7, db.LastCall().Args[1])
}

func TestAddItem_NewItemKeepsCallerCasing(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, nil)))
	db.On("UPDATE trainer_inventory", fakedb.Affected(1))

	bag, err := NewInventoryRepository(db).AddItem(context.Background(), 7, model.CategoryBerries, "Oran BERRY", 2)
	require.NoError(t, err)
	assert.Equal(t, model.ItemBag{"Oran BERRY": 2}, bag)
}

func TestRemoveItem_DeletesKeyInsteadOfGoingNegative(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, map[string]string{"berries": `{"Berry": 2, "Razz": 1}`})))
	db.On("UPDATE trainer_inventory", fakedb.Affected(1))

	bag, err := NewInventoryRepository(db).RemoveItem(context.Background(), 7, model.CategoryBerries, "Berry", 10)
	require.NoError(t, err)

	assert.Equal(t, model.ItemBag{"Razz": 1}, bag)
	written := writtenBag(t, db, "berries")
	_, present := written["Berry"]
	assert.False(t, present)
}

func TestSetItemQuantity_NonPositiveDeletes(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, map[string]string{"items": `{"Potion": 4}`})))
	db.On("UPDATE trainer_inventory", fakedb.Affected(1))

	bag, err := NewInventoryRepository(db).SetItemQuantity(context.Background(), 7, model.CategoryItems, "POTION", 0)
	require.NoError(t, err)
	assert.Empty(t, bag)
	assert.Equal(t, model.ItemBag{}, writtenBag(t, db, "items"))
}

func TestMutations_RejectBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := fakedb.New()
	repo := NewInventoryRepository(db)

	_, err := repo.AddItem(ctx, 7, "snacks", "Cookie", 1)
	assert.ErrorIs(t, err, model.ErrInvalidCategory)

	_, err = repo.RemoveItem(ctx, 7, model.CategoryItems, "Potion", 0)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = repo.GetItemQuantity(ctx, 7, "Balls!", "Poke Ball")
	assert.ErrorIs(t, err, model.ErrInvalidCategory)

	assert.Empty(t, db.Calls())
}

// ============================================================================
// Lifecycle Tests
// ============================================================================

func TestFindOrCreate_SeedsStarterSetOnce(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.Once(inventorySelect, fakedb.Rows())
	db.On("INSERT INTO trainer_inventory", fakedb.Rows(database.Row{"id": int64(1)}))
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, map[string]string{"balls": `{"Poke Ball": 10}`})))
	repo := NewInventoryRepository(db)

	inv, err := repo.FindOrCreate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Bag(model.CategoryBalls).Quantity("Poke Ball"))

	inserts := db.CallsMatching("INSERT INTO trainer_inventory")
	require.Len(t, inserts, 1)
	assert.Contains(t, inserts[0].Query, "ON CONFLICT (trainer_id) DO NOTHING")
	require.Len(t, inserts[0].Args, 11)

	var balls model.ItemBag
	require.NoError(t, json.Unmarshal([]byte(inserts[0].Args[2].(string)), &balls))
	assert.Equal(t, model.ItemBag{"Poke Ball": 10}, balls)
	assert.Equal(t, "{}", inserts[0].Args[4], "pastries start empty")

	_, err = repo.FindOrCreate(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, db.CallsMatching("INSERT INTO trainer_inventory"), 1)
}

func TestFindOrCreate_RowMissingAfterInsert(t *testing.T) {
	t.Parallel()

	_, err := NewInventoryRepository(fakedb.New()).FindOrCreate(context.Background(), 7)
	assert.ErrorIs(t, err, ErrCreateFailed)
}

func TestGetItemByName_FirstCategoryWins(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, map[string]string{
		"items":    `{"Rare Candy": 0}`,
		"antiques": `{"Rare Candy": 2}`,
		"keyitems": `{"rare candy": 9}`,
	})))

	item, err := NewInventoryRepository(db).GetItemByName(context.Background(), 7, "RARE CANDY")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, model.CategoryAntiques, item.Category)
	assert.Equal(t, "Rare Candy", item.Name)
	assert.Equal(t, 2, item.Quantity)
}

func TestGetItemByName_Absent(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, nil)))

	item, err := NewInventoryRepository(db).GetItemByName(context.Background(), 7, "Master Ball")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestHasItem(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, map[string]string{"eggs": `{"Standard Egg": 2}`})))
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	ok, err := repo.HasItem(ctx, 7, model.CategoryEggs, "standard egg", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasItem(ctx, 7, model.CategoryEggs, "Standard Egg", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddItems_WritesEachCategoryOnce(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On(inventorySelect, fakedb.Rows(inventoryRow(7, map[string]string{"balls": `{"Poke Ball": 1}`})))
	db.On("UPDATE trainer_inventory", fakedb.Affected(1))

	inv, err := NewInventoryRepository(db).AddItems(context.Background(), 7, []model.ItemDelta{
		{Category: model.CategoryBalls, Name: "poke ball", Quantity: 2},
		{Category: model.CategoryBalls, Name: "Great Ball", Quantity: 1},
		{Category: model.CategoryBerries, Name: "Razz", Quantity: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ItemBag{"Poke Ball": 3, "Great Ball": 1}, inv.Bag(model.CategoryBalls))
	assert.Len(t, db.CallsMatching("UPDATE trainer_inventory"), 2)
	assert.Equal(t, model.ItemBag{"Razz": 4}, writtenBag(t, db, "berries"))
}

func TestInventoryUpdate_RejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	_, err := NewInventoryRepository(db).Update(context.Background(), 1, &model.InventoryUpdateInput{
		Categories: map[model.InventoryCategory]model.ItemBag{"snacks": {"Cookie": 1}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidCategory)
	assert.Empty(t, db.Calls())
}

func TestParseInventory_MalformedCategoriesAreEmpty(t *testing.T) {
	t.Parallel()

	inv := parseInventory(inventoryRow(7, map[string]string{
		"items":   "[object Object]",
		"balls":   "",
		"berries": `{"Oran": "2"}`,
	}))

	require.Len(t, inv.Categories, len(model.InventoryCategories))
	assert.Empty(t, inv.Categories[model.CategoryItems])
	assert.Empty(t, inv.Categories[model.CategoryBalls])
	assert.Equal(t, model.ItemBag{"Oran": 2}, inv.Categories[model.CategoryBerries])
}
