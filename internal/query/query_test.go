package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Builder Tests
// ============================================================================

func TestBuilder_Where_NumbersPlaceholdersInBindOrder(t *testing.T) {
	t.Parallel()

	b := New()
	b.Where("name ILIKE ?", "%blaze%")
	b.Where("level BETWEEN ? AND ?", 5, 10)

	assert.Equal(t, "WHERE name ILIKE $1 AND level BETWEEN $2 AND $3", b.WhereClause())
	assert.Equal(t, []interface{}{"%blaze%", 5, 10}, b.Args())
}

func TestBuilder_Arg_ReusesOnePlaceholder(t *testing.T) {
	t.Parallel()

	b := New()
	b.Where("trainer_id = ?", 7)
	p := b.Arg("Fire")
	b.Where("(type1 = " + p + " OR type2 = " + p + ")")

	assert.Equal(t, "WHERE trainer_id = $1 AND (type1 = $2 OR type2 = $2)", b.WhereClause())
	assert.Equal(t, []interface{}{7, "Fire"}, b.Args())
}

func TestBuilder_WhereSet_Combinators(t *testing.T) {
	t.Parallel()

	frag := func(p string) string { return p + " = ANY(common_types)" }

	or := New().WhereSet(Or, []string{"Fire", "Water"}, frag)
	assert.Equal(t, "WHERE ($1 = ANY(common_types) OR $2 = ANY(common_types))", or.WhereClause())

	and := New().WhereSet(And, []string{"Fire", "Water"}, frag)
	assert.Equal(t, "WHERE ($1 = ANY(common_types) AND $2 = ANY(common_types))", and.WhereClause())
	assert.Equal(t, []interface{}{"Fire", "Water"}, and.Args())
}

func TestBuilder_WhereSet_SkipsBlankValues(t *testing.T) {
	t.Parallel()

	b := New().WhereSet(Or, []string{"", "  "}, func(p string) string { return p })

	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.WhereClause())
	assert.Empty(t, b.Args())
}

func TestParseCombinator(t *testing.T) {
	t.Parallel()

	assert.Equal(t, And, ParseCombinator("AND"))
	assert.Equal(t, And, ParseCombinator(" and "))
	assert.Equal(t, Or, ParseCombinator("or"))
	assert.Equal(t, Or, ParseCombinator("xor"))
	assert.Equal(t, Or, ParseCombinator(""))
}

func TestBuilder_List_SharesWhereAndAppendsLimitOffset(t *testing.T) {
	t.Parallel()

	b := New().Where("name ILIKE ?", "%a%")
	page := NewPage(3, 10)
	sort := Sort{Allowed: map[string]string{"name": "name"}, Default: "name"}

	countSQL, countArgs, dataSQL, dataArgs := b.List("abilities", "*", sort.Clause("name", "asc"), page)

	assert.Equal(t, "SELECT COUNT(*) AS total FROM abilities WHERE name ILIKE $1", countSQL)
	assert.Equal(t, []interface{}{"%a%"}, countArgs)
	assert.Equal(t, "SELECT * FROM abilities WHERE name ILIKE $1 ORDER BY name ASC LIMIT $2 OFFSET $3", dataSQL)
	assert.Equal(t, []interface{}{"%a%", 10, 20}, dataArgs)
}

func TestBuilder_List_NoConditions(t *testing.T) {
	t.Parallel()

	countSQL, countArgs, dataSQL, dataArgs := New().List("missions", "*", "", NewPage(0, 0))

	assert.Equal(t, "SELECT COUNT(*) AS total FROM missions", countSQL)
	assert.Empty(t, countArgs)
	assert.Equal(t, "SELECT * FROM missions LIMIT $1 OFFSET $2", dataSQL)
	assert.Equal(t, []interface{}{10, 0}, dataArgs)
}

// ============================================================================
// Sort & Page Tests
// ============================================================================

func TestSort_UnknownFieldFallsBackToDefault(t *testing.T) {
	t.Parallel()

	s := Sort{
		Allowed: map[string]string{"name": "m.name", "level": "m.level"},
		Default: "name",
	}

	assert.Equal(t, "ORDER BY m.level DESC", s.Clause("level", "DESC"))
	assert.Equal(t, "ORDER BY m.name DESC", s.Clause("name; DROP TABLE monsters", "desc"))
	assert.Equal(t, "ORDER BY m.name ASC", s.Clause("", ""))
}

func TestSort_UnknownDirectionIsAscending(t *testing.T) {
	t.Parallel()

	s := Sort{Allowed: map[string]string{"level": "m.level"}, Default: "level"}

	assert.Equal(t, "ORDER BY m.level ASC", s.Clause("level", "sideways; DROP TABLE monsters"))
	assert.Equal(t, "ORDER BY m.level DESC", s.Clause("level", "Desc"))
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Desc, ParseDirection("desc"))
	assert.Equal(t, Desc, ParseDirection("DESC"))
	assert.Equal(t, Asc, ParseDirection("asc"))
	assert.Equal(t, Asc, ParseDirection("sideways"))
}

func TestNewPage_Defaults(t *testing.T) {
	t.Parallel()

	p := NewPage(0, -5)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset())

	p = NewPage(3, 10)
	assert.Equal(t, 20, p.Offset())
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, TotalPages(23, 10))
	assert.Equal(t, 2, TotalPages(20, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestNewPaginated_ThirdPageOfTwentyThree(t *testing.T) {
	t.Parallel()

	page := NewPage(3, 10)
	res := NewPaginated([]int{21, 22, 23}, 23, page)

	assert.Len(t, res.Data, 3)
	assert.Equal(t, 23, res.Total)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 3, res.TotalPages)
}

func TestNewPaginated_NilDataBecomesEmpty(t *testing.T) {
	t.Parallel()

	res := NewPaginated[string](nil, 0, NewPage(1, 10))
	require.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

// ============================================================================
// Patch Tests
// ============================================================================

func TestPatch_SetPtr_SkipsNil(t *testing.T) {
	t.Parallel()

	name := "Blaze"
	var effect *string

	var p Patch
	SetPtr(&p, "name", &name)
	SetPtr(&p, "effect", effect)

	assert.False(t, p.Empty())
	assert.Equal(t, []string{"name"}, p.Columns())
	assert.Equal(t, []interface{}{"Blaze"}, p.Args())
}

func TestPatch_Update_RendersFold(t *testing.T) {
	t.Parallel()

	var p Patch
	p.Set("name", "Blaze").Set("effect", "Burns")

	sql, args := p.Update("abilities", "id", 4, true)

	assert.Equal(t, "UPDATE abilities SET name = $1, effect = $2, updated_at = NOW() WHERE id = $3 RETURNING *", sql)
	assert.Equal(t, []interface{}{"Blaze", "Burns", 4}, args)
}

func TestPatch_Update_WithoutTouch(t *testing.T) {
	t.Parallel()

	var p Patch
	p.Set("thread_name", "Quest")

	sql, _ := p.Update("adventure_threads", "id", 1, false)
	assert.Equal(t, "UPDATE adventure_threads SET thread_name = $1 WHERE id = $2 RETURNING *", sql)
}

func TestPatch_SetJSON(t *testing.T) {
	t.Parallel()

	var p Patch
	require.NoError(t, p.SetJSON("requirements", map[string]interface{}{"level": 5}))
	require.NoError(t, p.SetJSON("reward_config", nil))

	assert.Equal(t, []string{"requirements"}, p.Columns())
	assert.Equal(t, []interface{}{`{"level":5}`}, p.Args())
}

func TestPatch_EmptyByDefault(t *testing.T) {
	t.Parallel()

	var p Patch
	assert.True(t, p.Empty())
}
