package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/testing/fakedb"
)

func ptr[T any](v T) *T { return &v }

func speciesRepo(t *testing.T, db *fakedb.DB, c model.Catalog) *SpeciesRepository {
	t.Helper()
	repo, err := NewSpeciesRepository(db, c)
	require.NoError(t, err)
	return repo
}

func TestSpeciesCatalogs_CoverEveryCatalog(t *testing.T) {
	t.Parallel()

	for _, c := range model.Catalogs {
		cat, ok := SpeciesCatalogs[c]
		require.True(t, ok, "catalog %s has no layout", c)
		assert.Equal(t, c, cat.Catalog)

		_, hasName := cat.column(model.FieldName)
		assert.True(t, hasName, "%s lacks name", c)
		for _, f := range cat.Filterable {
			_, ok := cat.column(f)
			assert.True(t, ok, "%s filters on unmapped field %s", c, f)
		}
		_, ok = cat.column(cat.DefaultSort)
		assert.True(t, ok, "%s default sort is unmapped", c)
	}

	_, err := NewSpeciesRepository(fakedb.New(), "gundam")
	assert.Error(t, err)
}

func TestSpeciesFindAll_FiltersUsePhysicalColumns(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("COUNT(*)", fakedb.Rows(database.Row{"total": int64(1)}))
	db.On("SELECT * FROM pokemon_monsters", fakedb.Rows(database.Row{
		"id": int64(6), "name": "Charizard", "ndex": int64(6), "type_primary": "Fire", "type_secondary": "Flying", "stage": "  ",
	}))
	repo := speciesRepo(t, db, model.CatalogPokemon)

	page, err := repo.FindAll(context.Background(), model.SpeciesQuery{
		Search: "char",
		Filters: map[model.SpeciesField]string{
			model.FieldTypePrimary: "Fire",
			model.FieldRank:        "Ultimate",
			model.FieldStage:       "",
		},
	})
	require.NoError(t, err)

	count := db.CallsMatching("COUNT(*)")
	require.Len(t, count, 1)
	assert.Equal(t, "SELECT COUNT(*) AS total FROM pokemon_monsters WHERE name ILIKE $1 AND type_primary ILIKE $2", count[0].Query)
	assert.Equal(t, []interface{}{"%char%", "Fire"}, count[0].Args)

	data := db.CallsMatching("SELECT * FROM pokemon_monsters")
	require.Len(t, data, 1)
	assert.Contains(t, data[0].Query, "ORDER BY ndex ASC, id ASC LIMIT $3 OFFSET $4")

	require.Len(t, page.Data, 1)
	s := page.Data[0]
	assert.Equal(t, model.CatalogPokemon, s.Catalog)
	require.NotNil(t, s.Number)
	assert.Equal(t, 6, *s.Number)
	assert.Equal(t, "Flying", *s.TypeSecondary)
	assert.Nil(t, s.Stage, "blank strings read as absent")
	assert.Nil(t, s.Rank, "pokemon has no rank")
}

func TestSpeciesFindAll_SortByMappedField(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	repo := speciesRepo(t, db, model.CatalogFakemon)

	_, err := repo.FindAll(context.Background(), model.SpeciesQuery{SortBy: "family", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Contains(t, db.LastCall().Query, "ORDER BY category DESC, id ASC")

	_, err = repo.FindAll(context.Background(), model.SpeciesQuery{SortBy: "element"})
	require.NoError(t, err)
	assert.Contains(t, db.LastCall().Query, "ORDER BY number ASC, id ASC", "unsortable fields fall back to the default")
}

func TestSpeciesDistinctValues(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("SELECT DISTINCT", fakedb.Rows(database.Row{"value": "Data"}, database.Row{"value": "Vaccine"}))
	repo := speciesRepo(t, db, model.CatalogDigimon)
	ctx := context.Background()

	values, err := repo.DistinctValues(ctx, model.FieldFamily)
	require.NoError(t, err)
	assert.Equal(t, []string{"Data", "Vaccine"}, values)
	assert.Contains(t, db.LastCall().Query, "SELECT DISTINCT families AS value FROM digimon_monsters")

	_, err = repo.DistinctValues(ctx, model.FieldTribe)
	assert.ErrorIs(t, err, ErrUnsupportedField)

	_, err = speciesRepo(t, db, model.CatalogPals).DistinctValues(ctx, model.FieldNumber)
	assert.ErrorIs(t, err, ErrUnsupportedField)
}

func TestSpeciesCreate_MapsFieldsToColumns(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("INSERT INTO fakemon", fakedb.Rows(database.Row{"id": int64(3)}))
	db.On("FROM fakemon WHERE id", fakedb.Rows(database.Row{"id": int64(3), "name": "Emberpup", "category": "Canine"}))
	repo := speciesRepo(t, db, model.CatalogFakemon)

	s, err := repo.Create(context.Background(), &model.SpeciesInput{
		Name:        ptr("Emberpup"),
		Number:      ptr(3),
		Family:      ptr("Canine"),
		TypePrimary: ptr("Fire"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Canine", *s.Family)

	insert := db.CallsMatching("INSERT INTO fakemon")
	require.Len(t, insert, 1)
	assert.Equal(t, "INSERT INTO fakemon (category, name, number, type1) VALUES ($1, $2, $3, $4) RETURNING id", insert[0].Query)
	assert.Equal(t, []interface{}{"Canine", "Emberpup", 3, "Fire"}, insert[0].Args)
}

func TestSpeciesWrites_RejectUnsupportedFields(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	repo := speciesRepo(t, db, model.CatalogPals)
	ctx := context.Background()

	_, err := repo.Create(ctx, &model.SpeciesInput{Name: ptr("Lamball"), Tribe: ptr("Sheep")})
	assert.ErrorIs(t, err, ErrUnsupportedField)

	_, err = repo.Update(ctx, 1, &model.SpeciesInput{Stage: ptr("Adult")})
	assert.ErrorIs(t, err, ErrUnsupportedField)

	assert.Empty(t, db.Calls())
}

func TestSpeciesBulkCreate_OneTransaction(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.On("INSERT INTO yokai_monsters", fakedb.Affected(1))
	repo := speciesRepo(t, db, model.CatalogYokai)

	n, err := repo.BulkCreate(context.Background(), []*model.SpeciesInput{
		{Name: ptr("Jibanyan"), Tribe: ptr("Charming")},
		{Name: ptr("Whisper"), Rank: ptr("E")},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, db.Begins)
	assert.Equal(t, 1, db.Commits)
	assert.Len(t, db.CallsMatching("INSERT INTO yokai_monsters"), 2)
}

func TestSpeciesBulkCreate_InvalidInputWritesNothing(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	repo := speciesRepo(t, db, model.CatalogYokai)

	_, err := repo.BulkCreate(context.Background(), []*model.SpeciesInput{
		{Name: ptr("Jibanyan")},
		{Tribe: ptr("Charming")},
	})
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, db.Begins)
}

func TestSpeciesBulkCreate_RollsBackOnFailure(t *testing.T) {
	t.Parallel()

	db := fakedb.New()
	db.Once("INSERT INTO yokai_monsters", fakedb.Affected(1))
	db.On("INSERT INTO yokai_monsters", fakedb.Fail(database.ErrDuplicate))
	repo := speciesRepo(t, db, model.CatalogYokai)

	_, err := repo.BulkCreate(context.Background(), []*model.SpeciesInput{
		{Name: ptr("Jibanyan")},
		{Name: ptr("Jibanyan")},
	})
	assert.ErrorIs(t, err, database.ErrDuplicate)
	assert.Equal(t, 0, db.Commits)
	assert.Equal(t, 1, db.Rollbacks)
}
