package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
)

// placeholderObject is what a careless String(obj) writes into a JSON column
const placeholderObject = "[object Object]"

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	return errors.Is(err, database.ErrDuplicate)
}

// notFound wraps ErrNotFound with the entity and key that were missing
func notFound(entity string, key interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, key)
}

// toJSON encodes a JSON column value for writing
func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// jsonKind says which empty default a JSON column falls back to
type jsonKind int

const (
	jsonObject jsonKind = iota
	jsonList
)

// normalizeRow returns a copy of row with the listed JSON columns decoded.
// Other columns are copied unchanged. Decoded values pass through, so
// normalizing twice gives the same row.
func normalizeRow(row database.Row, jsonColumns map[string]jsonKind) database.Row {
	out := make(database.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	for col, kind := range jsonColumns {
		if _, ok := out[col]; !ok {
			continue
		}
		switch kind {
		case jsonList:
			out[col] = getJSONList(row, col)
		default:
			out[col] = getJSONMap(row, col)
		}
	}
	return out
}

// decodeJSONText parses a JSON column stored as text. Empty, null, and
// placeholder values report false.
func decodeJSONText(raw string, dst interface{}) bool {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" || s == placeholderObject {
		return false
	}
	return json.Unmarshal([]byte(s), dst) == nil
}

// getJSONMap extracts a JSON object column, never returning nil
func getJSONMap(m database.Row, key string) map[string]interface{} {
	switch v := m[key].(type) {
	case map[string]interface{}:
		return v
	case database.Row:
		return map[string]interface{}(v)
	case string:
		var out map[string]interface{}
		if decodeJSONText(v, &out) && out != nil {
			return out
		}
	case []byte:
		var out map[string]interface{}
		if decodeJSONText(string(v), &out) && out != nil {
			return out
		}
	}
	return map[string]interface{}{}
}

// getJSONList extracts a JSON array column, never returning nil
func getJSONList(m database.Row, key string) []interface{} {
	switch v := m[key].(type) {
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case string:
		var out []interface{}
		if decodeJSONText(v, &out) && out != nil {
			return out
		}
	case []byte:
		var out []interface{}
		if decodeJSONText(string(v), &out) && out != nil {
			return out
		}
	}
	return []interface{}{}
}

// getItemBag extracts an inventory category column. Non-numeric and
// non-positive quantities are dropped.
func getItemBag(m database.Row, key string) model.ItemBag {
	raw := getJSONMap(m, key)
	bag := make(model.ItemBag, len(raw))
	for name, v := range raw {
		if qty, ok := toInt(v); ok && qty > 0 {
			bag[name] = qty
		}
	}
	return bag
}

// getString extracts a string value from a row
func getString(m database.Row, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// getStringPtr extracts a nullable string value from a row
func getStringPtr(m database.Row, key string) *string {
	if m[key] == nil {
		return nil
	}
	s := getString(m, key)
	return &s
}

// toInt converts the numeric representations a driver or JSON decode yields
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case int16:
		return int(n), true
	case uint64:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		return int(math.Round(n)), true
	case float32:
		return int(math.Round(float64(n))), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(math.Round(f)), true
		}
	case []byte:
		return toInt(string(n))
	}
	return 0, false
}

// getInt extracts an int value from a row
func getInt(m database.Row, key string) int {
	n, _ := toInt(m[key])
	return n
}

// getIntPtr extracts a nullable int value from a row
func getIntPtr(m database.Row, key string) *int {
	n, ok := toInt(m[key])
	if !ok {
		return nil
	}
	return &n
}

// getFloat extracts a float value from a row
func getFloat(m database.Row, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// getBool extracts a bool value from a row
func getBool(m database.Row, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case int64:
		return v != 0
	}
	return false
}

// getTime extracts a time value from a row
func getTime(m database.Row, key string) *time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
	}
	return nil
}

// getTimeValue extracts a non-null time value, zero when absent
func getTimeValue(m database.Row, key string) time.Time {
	if t := getTime(m, key); t != nil {
		return *t
	}
	return time.Time{}
}

// getStringSlice extracts a text array column. It accepts native slices, a
// JSON array, or a PostgreSQL array literal such as {Fire,"Dark Type"}.
// The result is never nil.
func getStringSlice(m database.Row, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []byte:
		return parseStringArray(string(v))
	case string:
		return parseStringArray(v)
	}
	return []string{}
}

func parseStringArray(raw string) []string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "[") {
		var out []string
		if decodeJSONText(s, &out) && out != nil {
			return out
		}
		return []string{}
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return parsePGArray(s[1 : len(s)-1])
	}
	return []string{}
}

// parsePGArray splits the body of a one-dimensional PostgreSQL text array
func parsePGArray(body string) []string {
	out := []string{}
	if body == "" {
		return out
	}

	var (
		cur     strings.Builder
		quoted  bool
		escaped bool
		wasQ    bool
	)
	flush := func() {
		v := cur.String()
		if !wasQ && strings.EqualFold(v, "NULL") {
			v = ""
		}
		if wasQ || v != "" {
			out = append(out, v)
		}
		cur.Reset()
		wasQ = false
	}

	for _, r := range body {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
			wasQ = true
		case r == ',' && !quoted:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// getIntSlice extracts a JSON array of integers
func getIntSlice(m database.Row, key string) []int {
	list := getJSONList(m, key)
	out := make([]int, 0, len(list))
	for _, v := range list {
		if n, ok := toInt(v); ok {
			out = append(out, n)
		}
	}
	return out
}

// nonNilStrings returns s, or an empty slice when s is nil
func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// extractCount reads the total column of a COUNT(*) row
func extractCount(row database.Row) int {
	for _, key := range []string{"total", "count"} {
		if _, ok := row[key]; ok {
			return getInt(row, key)
		}
	}
	return 0
}
