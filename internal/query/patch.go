package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Patch collects the columns a partial update will change. Building the
// UPDATE statement is a fold over the present entries; absent fields never
// reach SQL.
type Patch struct {
	columns []string
	args    []interface{}
}

// Set records column = value
func (p *Patch) Set(column string, value interface{}) *Patch {
	p.columns = append(p.columns, column)
	p.args = append(p.args, value)
	return p
}

// SetPtr records column = *v when v is non-nil
func SetPtr[T any](p *Patch, column string, v *T) {
	if v != nil {
		p.Set(column, *v)
	}
}

// SetJSON records column = json(v) when v is non-nil
func (p *Patch) SetJSON(column string, v interface{}) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", column, err)
	}
	p.Set(column, string(data))
	return nil
}

// Empty reports whether no column was set
func (p *Patch) Empty() bool {
	return len(p.columns) == 0
}

// Columns returns the set columns in order
func (p *Patch) Columns() []string {
	out := make([]string, len(p.columns))
	copy(out, p.columns)
	return out
}

// Args returns the values in column order
func (p *Patch) Args() []interface{} {
	out := make([]interface{}, len(p.args))
	copy(out, p.args)
	return out
}

// Assignments renders "a = $k, b = $k+1, ..." starting at placeholder start
func (p *Patch) Assignments(start int) string {
	parts := make([]string, len(p.columns))
	for i, col := range p.columns {
		parts[i] = col + " = $" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ", ")
}

// Update renders "UPDATE table SET ... WHERE idColumn = $n RETURNING *".
// With touch set, updated_at is bumped as well.
func (p *Patch) Update(table, idColumn string, id interface{}, touch bool) (string, []interface{}) {
	set := p.Assignments(1)
	if touch {
		set += ", updated_at = NOW()"
	}
	n := len(p.columns) + 1
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING *", table, set, idColumn, n)
	return q, append(p.Args(), id)
}
