package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
)

// ============================================================================
// Row Normalization Tests
// ============================================================================

func TestNormalizeRow_IsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw := database.Row{
		"id":          int64(4),
		"name":        "Blaze",
		"created_at":  now,
		"log_data":    `{"damage": 12, "target": "Pikachu"}`,
		"monster_ids": `[1, 2, 3]`,
	}
	cols := map[string]jsonKind{"log_data": jsonObject, "monster_ids": jsonList}

	once := normalizeRow(raw, cols)
	twice := normalizeRow(once, cols)

	assert.Equal(t, once, twice)
	assert.Equal(t, map[string]interface{}{"damage": float64(12), "target": "Pikachu"}, once["log_data"])
	assert.Equal(t, []interface{}{float64(1), float64(2), float64(3)}, once["monster_ids"])
}

func TestNormalizeRow_CopiesNonJSONFieldsUnchanged(t *testing.T) {
	t.Parallel()

	now := time.Now()
	raw := database.Row{"id": int64(9), "name": "Aqua", "created_at": now, "extra": []string{"x"}}

	out := normalizeRow(raw, map[string]jsonKind{"missing": jsonObject})

	assert.Equal(t, raw, out)
	_, added := out["missing"]
	assert.False(t, added, "absent JSON columns must not be invented")

	out["name"] = "changed"
	assert.Equal(t, "Aqua", raw["name"], "normalizeRow must not alias the input")
}

func TestNormalizeRow_BadJSONYieldsDefaults(t *testing.T) {
	t.Parallel()

	cases := map[string]interface{}{
		"null":        nil,
		"empty":       "",
		"null text":   "null",
		"placeholder": "[object Object]",
		"malformed":   "{not json",
		"wrong shape": `[1, 2]`,
	}

	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			row := normalizeRow(database.Row{"obj": v, "list": v}, map[string]jsonKind{
				"obj":  jsonObject,
				"list": jsonList,
			})
			assert.Equal(t, map[string]interface{}{}, row["obj"])
			if name != "wrong shape" {
				assert.Equal(t, []interface{}{}, row["list"])
			}
		})
	}
}

func TestGetJSONList_WrongShapeObject(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []interface{}{}, getJSONList(database.Row{"l": `{"a": 1}`}, "l"))
	assert.Equal(t, []interface{}{}, getJSONList(database.Row{"l": []byte("[object Object]")}, "l"))
}

// ============================================================================
// Getter Tests
// ============================================================================

func TestGetItemBag_DropsNonPositiveAndNonNumeric(t *testing.T) {
	t.Parallel()

	row := database.Row{"balls": `{"Poke Ball": 5, "Great Ball": 0, "Ultra Ball": -2, "Odd": "many", "Net Ball": "3"}`}

	assert.Equal(t, model.ItemBag{"Poke Ball": 5, "Net Ball": 3}, getItemBag(row, "balls"))
	assert.Equal(t, model.ItemBag{}, getItemBag(database.Row{"balls": "[object Object]"}, "balls"))
}

func TestGetStringSlice_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   interface{}
		want []string
	}{
		{"native", []string{"Fire", "Dark"}, []string{"Fire", "Dark"}},
		{"interfaces", []interface{}{"Fire", 3, "Dark"}, []string{"Fire", "Dark"}},
		{"json", `["Fire","Dark"]`, []string{"Fire", "Dark"}},
		{"pg literal", `{Fire,Dark}`, []string{"Fire", "Dark"}},
		{"pg quoted", `{"Dark Type","a\"b",Fire}`, []string{"Dark Type", `a"b`, "Fire"}},
		{"pg empty", `{}`, []string{}},
		{"pg null element", `{Fire,NULL}`, []string{"Fire"}},
		{"nil", nil, []string{}},
		{"garbage", "Fire", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getStringSlice(database.Row{"v": tt.in}, "v"))
		})
	}
}

func TestToInt(t *testing.T) {
	t.Parallel()

	for _, v := range []interface{}{int64(7), int32(7), 7, float64(7), "7", []byte("7"), "7.0"} {
		n, ok := toInt(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, 7, n, "%T", v)
	}

	_, ok := toInt("seven")
	assert.False(t, ok)
	_, ok = toInt(nil)
	assert.False(t, ok)
}

func TestGetStringPtr_NullVersusEmpty(t *testing.T) {
	t.Parallel()

	row := database.Row{"a": nil, "b": ""}

	assert.Nil(t, getStringPtr(row, "a"))
	require.NotNil(t, getStringPtr(row, "b"))
	assert.Equal(t, "", *getStringPtr(row, "b"))
}

func TestGetTime_ParsesTextAndNative(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row := database.Row{"a": ts, "b": ts.Format(time.RFC3339), "c": "nope"}

	require.NotNil(t, getTime(row, "a"))
	assert.True(t, ts.Equal(*getTime(row, "a")))
	require.NotNil(t, getTime(row, "b"))
	assert.True(t, ts.Equal(*getTime(row, "b")))
	assert.Nil(t, getTime(row, "c"))
	assert.True(t, getTimeValue(row, "missing").IsZero())
}

func TestExtractCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 23, extractCount(database.Row{"total": int64(23)}))
	assert.Equal(t, 4, extractCount(database.Row{"count": "4"}))
	assert.Equal(t, 0, extractCount(nil))
}
