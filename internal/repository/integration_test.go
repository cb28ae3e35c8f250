package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/menagerie/internal/jobs"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/repository"
	"github.com/forgo/menagerie/internal/testing/fixtures"
	"github.com/forgo/menagerie/internal/testing/testdb"
)

func TestIntegration_AntiqueUpsertKeepsIdentity(t *testing.T) {
	tdb := testdb.New(t)
	repo := repository.NewAntiqueSettingRepository(tdb.DB)

	rolls := 2
	first, err := repo.Upsert(tdb.Ctx(), &model.AntiqueSettingInput{ItemName: "Old Vase", Category: "pottery", RollCount: &rolls})
	require.NoError(t, err)

	rolls = 5
	second, err := repo.Upsert(tdb.Ctx(), &model.AntiqueSettingInput{ItemName: "Old Vase", Category: "pottery", RollCount: &rolls})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.RollCount)
	assert.Len(t, tdb.MustQuery(`SELECT id FROM antique_settings WHERE item_name = $1`, "Old Vase"), 1)
}

func TestIntegration_BattleLogRetention(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	logs := repository.NewBattleLogRepository(tdb.DB)

	battle := fixtures.BattleID()
	created := f.CreateBattleLogs(t, battle, 12)
	quiet := fixtures.BattleID()
	f.CreateBattleLogs(t, quiet, 3)

	n, err := jobs.NewBattleLogRetentionProcessor(logs, 5, time.Hour).RunOnce(tdb.Ctx())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	count, err := logs.CountByBattleID(tdb.Ctx(), battle)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	kept, err := logs.FindByBattleID(tdb.Ctx(), battle, model.BattleLogQuery{})
	require.NoError(t, err)
	ids := make([]int, 0, len(kept))
	for _, l := range kept {
		ids = append(ids, l.ID)
	}
	for _, l := range created[7:] {
		assert.Contains(t, ids, l.ID, "newest entries survive")
	}

	count, err = logs.CountByBattleID(tdb.Ctx(), quiet)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIntegration_EmptyUpdateLeavesTimestamp(t *testing.T) {
	tdb := testdb.New(t)
	trainer := fixtures.New(tdb.DB).CreateTrainer(t)
	repo := repository.NewTrainerRepository(tdb.DB)

	got, err := repo.Update(tdb.Ctx(), trainer.ID, &model.TrainerUpdateInput{})
	require.NoError(t, err)
	assert.True(t, trainer.UpdatedAt.Equal(got.UpdatedAt))

	name := "Renamed"
	got, err = repo.Update(tdb.Ctx(), trainer.ID, &model.TrainerUpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.False(t, got.UpdatedAt.Before(trainer.UpdatedAt))
}

func TestIntegration_InventoryRoundTrip(t *testing.T) {
	tdb := testdb.New(t)
	trainer := fixtures.New(tdb.DB).CreateTrainer(t)
	repo := repository.NewInventoryRepository(tdb.DB)

	inv, err := repo.FindOrCreate(tdb.Ctx(), trainer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StarterInventory()[model.CategoryBalls], inv.Bag(model.CategoryBalls))

	_, err = repo.AddItem(tdb.Ctx(), trainer.ID, model.CategoryBerries, "Oran Berry", 3)
	require.NoError(t, err)
	_, err = repo.AddItem(tdb.Ctx(), trainer.ID, model.CategoryBerries, "oran berry", 2)
	require.NoError(t, err)
	bag, err := repo.RemoveItem(tdb.Ctx(), trainer.ID, model.CategoryBerries, "ORAN BERRY", 1)
	require.NoError(t, err)
	assert.Equal(t, model.ItemBag{"Oran Berry": 4}, bag)

	item, err := repo.GetItemByName(tdb.Ctx(), trainer.ID, "oran berry")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, model.CategoryBerries, item.Category)
	assert.Equal(t, 4, item.Quantity)
}

func TestIntegration_MonsterBelongsToTrainer(t *testing.T) {
	tdb := testdb.New(t)
	f := fixtures.New(tdb.DB)
	trainer := f.CreateTrainer(t)
	mon := f.CreateMonster(t, trainer, func(o *fixtures.MonsterOpts) {
		o.Moveset = []string{"Thunderbolt", "Quick Attack"}
	})

	got, err := repository.NewMonsterRepository(tdb.DB).FindByID(tdb.Ctx(), mon.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, trainer.Name, got.TrainerName)
	assert.Equal(t, []string{"Thunderbolt", "Quick Attack"}, got.Moveset)
}
