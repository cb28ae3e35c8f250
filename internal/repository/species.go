package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/query"
)

// SpeciesCatalog describes how one catalog table stores the logical
// species fields. Columns is the closed set of fields the table carries.
type SpeciesCatalog struct {
	Catalog     model.Catalog
	Table       string
	Columns     map[model.SpeciesField]string
	Filterable  []model.SpeciesField
	Sortable    []model.SpeciesField
	DefaultSort model.SpeciesField
}

// column returns the physical column of f, if the catalog has one
func (c SpeciesCatalog) column(f model.SpeciesField) (string, bool) {
	col, ok := c.Columns[f]
	return col, ok
}

func (c SpeciesCatalog) filterable(f model.SpeciesField) bool {
	for _, x := range c.Filterable {
		if x == f {
			return true
		}
	}
	return false
}

func (c SpeciesCatalog) sorter() query.Sort {
	s := query.Sort{Allowed: make(map[string]string, len(c.Sortable)), Default: string(c.DefaultSort)}
	for _, f := range c.Sortable {
		if col, ok := c.column(f); ok {
			s.Allowed[string(f)] = col
		}
	}
	return s
}

// columnsFor builds a field->column map from the common columns plus the
// catalog-specific ones
func columnsFor(extra map[model.SpeciesField]string) map[model.SpeciesField]string {
	m := map[model.SpeciesField]string{
		model.FieldName:     "name",
		model.FieldImageURL: "image_url",
	}
	for f, col := range extra {
		m[f] = col
	}
	return m
}

var evolutionColumns = map[model.SpeciesField]string{
	model.FieldStage:           "stage",
	model.FieldEvolvesFrom:     "evolves_from",
	model.FieldEvolvesTo:       "evolves_to",
	model.FieldBreedingResults: "breeding_results",
}

func merge(ms ...map[model.SpeciesField]string) map[model.SpeciesField]string {
	out := make(map[model.SpeciesField]string)
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// SpeciesCatalogs maps each catalog to its table layout
var SpeciesCatalogs = map[model.Catalog]SpeciesCatalog{
	model.CatalogPokemon: {
		Catalog: model.CatalogPokemon,
		Table:   "pokemon_monsters",
		Columns: columnsFor(merge(evolutionColumns, map[model.SpeciesField]string{
			model.FieldNumber:        "ndex",
			model.FieldTypePrimary:   "type_primary",
			model.FieldTypeSecondary: "type_secondary",
		})),
		Filterable:  []model.SpeciesField{model.FieldTypePrimary, model.FieldTypeSecondary, model.FieldStage},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldNumber, model.FieldTypePrimary},
		DefaultSort: model.FieldNumber,
	},
	model.CatalogDigimon: {
		Catalog: model.CatalogDigimon,
		Table:   "digimon_monsters",
		Columns: columnsFor(map[model.SpeciesField]string{
			model.FieldRank:            "rank",
			model.FieldAttribute:       "attribute",
			model.FieldFamily:          "families",
			model.FieldEvolvesFrom:     "evolves_from",
			model.FieldEvolvesTo:       "evolves_to",
			model.FieldBreedingResults: "breeding_results",
		}),
		Filterable:  []model.SpeciesField{model.FieldRank, model.FieldAttribute, model.FieldFamily},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldRank, model.FieldAttribute},
		DefaultSort: model.FieldName,
	},
	model.CatalogNexomon: {
		Catalog: model.CatalogNexomon,
		Table:   "nexomon_monsters",
		Columns: columnsFor(merge(evolutionColumns, map[model.SpeciesField]string{
			model.FieldNumber:        "nr",
			model.FieldTypePrimary:   "type_primary",
			model.FieldTypeSecondary: "type_secondary",
		})),
		Filterable:  []model.SpeciesField{model.FieldTypePrimary, model.FieldTypeSecondary, model.FieldStage},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldNumber, model.FieldTypePrimary},
		DefaultSort: model.FieldNumber,
	},
	model.CatalogYokai: {
		Catalog: model.CatalogYokai,
		Table:   "yokai_monsters",
		Columns: columnsFor(merge(evolutionColumns, map[model.SpeciesField]string{
			model.FieldTribe:     "tribe",
			model.FieldRank:      "rank",
			model.FieldAttribute: "attribute",
		})),
		Filterable:  []model.SpeciesField{model.FieldTribe, model.FieldRank, model.FieldAttribute, model.FieldStage},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldTribe, model.FieldRank},
		DefaultSort: model.FieldName,
	},
	model.CatalogPals: {
		Catalog: model.CatalogPals,
		Table:   "pals_monsters",
		Columns: columnsFor(map[model.SpeciesField]string{
			model.FieldNumber:  "paldeck_number",
			model.FieldElement: "element",
		}),
		Filterable:  []model.SpeciesField{model.FieldElement},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldNumber, model.FieldElement},
		DefaultSort: model.FieldNumber,
	},
	model.CatalogMonsterHunter: {
		Catalog: model.CatalogMonsterHunter,
		Table:   "monsterhunter_monsters",
		Columns: columnsFor(map[model.SpeciesField]string{
			model.FieldRank:    "rank",
			model.FieldElement: "element",
		}),
		Filterable:  []model.SpeciesField{model.FieldRank, model.FieldElement},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldRank, model.FieldElement},
		DefaultSort: model.FieldName,
	},
	model.CatalogFinalFantasy: {
		Catalog: model.CatalogFinalFantasy,
		Table:   "finalfantasy_monsters",
		Columns: columnsFor(merge(evolutionColumns, map[model.SpeciesField]string{
			model.FieldTypePrimary:   "type_primary",
			model.FieldTypeSecondary: "type_secondary",
			model.FieldElement:       "element",
		})),
		Filterable:  []model.SpeciesField{model.FieldTypePrimary, model.FieldTypeSecondary, model.FieldElement, model.FieldStage},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldTypePrimary, model.FieldElement},
		DefaultSort: model.FieldName,
	},
	model.CatalogFakemon: {
		Catalog: model.CatalogFakemon,
		Table:   "fakemon",
		Columns: columnsFor(merge(evolutionColumns, map[model.SpeciesField]string{
			model.FieldNumber:        "number",
			model.FieldFamily:        "category",
			model.FieldTypePrimary:   "type1",
			model.FieldTypeSecondary: "type2",
			model.FieldAttribute:     "attribute",
		})),
		Filterable:  []model.SpeciesField{model.FieldFamily, model.FieldTypePrimary, model.FieldTypeSecondary, model.FieldAttribute, model.FieldStage},
		Sortable:    []model.SpeciesField{model.FieldName, model.FieldNumber, model.FieldFamily},
		DefaultSort: model.FieldNumber,
	},
}

// SpeciesRepository reads and writes one species catalog
type SpeciesRepository struct {
	table
	db      database.Database
	catalog SpeciesCatalog
}

var _ Repository[model.Species, model.SpeciesInput, model.SpeciesInput] = (*SpeciesRepository)(nil)

// NewSpeciesRepository creates a repository for catalog c
func NewSpeciesRepository(db database.Database, c model.Catalog) (*SpeciesRepository, error) {
	cat, ok := SpeciesCatalogs[c]
	if !ok {
		return nil, fmt.Errorf("unknown species catalog %q", c)
	}
	return &SpeciesRepository{table: table{db: db, name: cat.Table}, db: db, catalog: cat}, nil
}

// Catalog returns the catalog this repository serves
func (r *SpeciesRepository) Catalog() model.Catalog {
	return r.catalog.Catalog
}

// FindAll returns one page of species. Filters on fields the catalog cannot
// filter by are ignored.
func (r *SpeciesRepository) FindAll(ctx context.Context, q model.SpeciesQuery) (*query.Paginated[*model.Species], error) {
	b := query.New()
	if q.Search != "" {
		b.Where("name ILIKE ?", "%"+q.Search+"%")
	}

	fields := make([]string, 0, len(q.Filters))
	for f := range q.Filters {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, name := range fields {
		f := model.SpeciesField(name)
		v := q.Filters[f]
		if v == "" || !r.catalog.filterable(f) {
			continue
		}
		col, _ := r.catalog.column(f)
		b.Where(col+" ILIKE ?", v)
	}

	page := query.NewPage(q.Page, q.Limit)
	orderBy := r.catalog.sorter().Clause(q.SortBy, q.SortOrder) + ", id ASC"
	rows, total, err := r.paginate(ctx, b, r.name, "*", orderBy, page)
	if err != nil {
		return nil, err
	}
	return query.NewPaginated(mapRows(rows, r.parse), total, page), nil
}

// Search returns up to limit species whose name contains term
func (r *SpeciesRepository) Search(ctx context.Context, term string, limit int) ([]*model.Species, error) {
	rows, err := r.rows(ctx, fmt.Sprintf(`SELECT * FROM %s WHERE name ILIKE $1 ORDER BY name ASC LIMIT $2`, r.name),
		"%"+term+"%", positiveLimit(limit))
	if err != nil {
		return nil, err
	}
	return mapRows(rows, r.parse), nil
}

// FindByID retrieves a species by ID
func (r *SpeciesRepository) FindByID(ctx context.Context, id int) (*model.Species, error) {
	row, err := r.row(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return r.parse(row), nil
}

// FindByName retrieves a species by name, ignoring case
func (r *SpeciesRepository) FindByName(ctx context.Context, name string) (*model.Species, error) {
	row, err := r.db.QueryOne(ctx, fmt.Sprintf(`SELECT * FROM %s WHERE LOWER(name) = LOWER($1) ORDER BY id ASC LIMIT 1`, r.name), name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s species: %w", r.catalog.Catalog, err)
	}
	return r.parse(row), nil
}

// FindRandom returns up to count species in random order
func (r *SpeciesRepository) FindRandom(ctx context.Context, count int) ([]*model.Species, error) {
	if count < 1 {
		count = 1
	}
	rows, err := r.rows(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY RANDOM() LIMIT $1`, r.name), count)
	if err != nil {
		return nil, err
	}
	return mapRows(rows, r.parse), nil
}

// DistinctValues lists the distinct non-empty values of a field
func (r *SpeciesRepository) DistinctValues(ctx context.Context, f model.SpeciesField) ([]string, error) {
	col, ok := r.catalog.column(f)
	if !ok || f == model.FieldNumber {
		return nil, fmt.Errorf("%w: %s has no %s", ErrUnsupportedField, r.catalog.Catalog, f)
	}
	rows, err := r.rows(ctx, fmt.Sprintf(
		`SELECT DISTINCT %s AS value FROM %s WHERE %s IS NOT NULL AND %s <> '' ORDER BY value ASC`,
		col, r.name, col, col))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, getString(row, "value"))
	}
	return out, nil
}

// Create inserts a species
func (r *SpeciesRepository) Create(ctx context.Context, in *model.SpeciesInput) (*model.Species, error) {
	q, args, err := r.insert(in)
	if err != nil {
		return nil, err
	}
	return create(ctx, r.table, q, args, r.FindByID)
}

// Update applies the set fields of in. Setting a field the catalog does
// not carry fails with ErrUnsupportedField.
func (r *SpeciesRepository) Update(ctx context.Context, id int, in *model.SpeciesInput) (*model.Species, error) {
	var p query.Patch
	for _, f := range sortedFields(in.Fields()) {
		col, ok := r.catalog.column(f.field)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %s", ErrUnsupportedField, r.catalog.Catalog, f.field)
		}
		p.Set(col, f.value)
	}
	return update(ctx, r.table, id, &p, true, r.FindByID)
}

// BulkCreate inserts every species in one transaction and returns how many
// were written
func (r *SpeciesRepository) BulkCreate(ctx context.Context, inputs []*model.SpeciesInput) (int, error) {
	batch := database.NewAtomicBatch()
	for i, in := range inputs {
		q, args, err := r.insert(in)
		if err != nil {
			return 0, fmt.Errorf("species %d: %w", i, err)
		}
		batch.Add(q, args...)
	}
	if batch.Len() == 0 {
		return 0, nil
	}
	if _, err := batch.Execute(ctx, r.db); err != nil {
		return 0, fmt.Errorf("failed to import %s species: %w", r.catalog.Catalog, err)
	}
	return batch.Len(), nil
}

func (r *SpeciesRepository) insert(in *model.SpeciesInput) (string, []interface{}, error) {
	if err := model.NewValidationError(in.Validate()); err != nil {
		return "", nil, err
	}
	var (
		columns []string
		args    []interface{}
	)
	for _, f := range sortedFields(in.Fields()) {
		col, ok := r.catalog.column(f.field)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s has no %s", ErrUnsupportedField, r.catalog.Catalog, f.field)
		}
		columns = append(columns, col)
		args = append(args, f.value)
	}
	return r.insertSQL(columns), args, nil
}

type fieldValue struct {
	field model.SpeciesField
	value interface{}
}

// sortedFields orders set fields by name so generated SQL is stable
func sortedFields(m map[model.SpeciesField]interface{}) []fieldValue {
	out := make([]fieldValue, 0, len(m))
	for f, v := range m {
		out = append(out, fieldValue{f, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].field < out[j].field })
	return out
}

func (r *SpeciesRepository) parse(row database.Row) *model.Species {
	s := &model.Species{
		ID:        getInt(row, "id"),
		Catalog:   r.catalog.Catalog,
		Name:      getString(row, "name"),
		CreatedAt: getTimeValue(row, "created_at"),
		UpdatedAt: getTimeValue(row, "updated_at"),
	}
	str := func(f model.SpeciesField) *string {
		col, ok := r.catalog.column(f)
		if !ok {
			return nil
		}
		v := getStringPtr(row, col)
		if v != nil && strings.TrimSpace(*v) == "" {
			return nil
		}
		return v
	}
	if col, ok := r.catalog.column(model.FieldNumber); ok {
		s.Number = getIntPtr(row, col)
	}
	s.ImageURL = str(model.FieldImageURL)
	s.Family = str(model.FieldFamily)
	s.Tribe = str(model.FieldTribe)
	s.Rank = str(model.FieldRank)
	s.Element = str(model.FieldElement)
	s.Attribute = str(model.FieldAttribute)
	s.Stage = str(model.FieldStage)
	s.TypePrimary = str(model.FieldTypePrimary)
	s.TypeSecondary = str(model.FieldTypeSecondary)
	s.EvolvesFrom = str(model.FieldEvolvesFrom)
	s.EvolvesTo = str(model.FieldEvolvesTo)
	s.BreedingResults = str(model.FieldBreedingResults)
	return s
}
