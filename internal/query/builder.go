package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Combinator joins the per-value conditions of a multi-valued filter
type Combinator string

const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

// ParseCombinator maps caller input onto a Combinator. Anything other than
// "and" (case-insensitive) is Or.
func ParseCombinator(s string) Combinator {
	if strings.EqualFold(strings.TrimSpace(s), "and") {
		return And
	}
	return Or
}

// Builder accumulates WHERE conditions and their positional arguments.
// Placeholders are numbered in the order values are bound.
type Builder struct {
	conditions []string
	args       []interface{}
}

// New creates an empty builder
func New() *Builder {
	return &Builder{}
}

// Arg binds v and returns its placeholder ($1, $2, ...). Use it when the
// same value appears more than once in a condition.
func (b *Builder) Arg(v interface{}) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// Where adds a condition. Each "?" in cond is replaced by the placeholder of
// the matching argument.
func (b *Builder) Where(cond string, args ...interface{}) *Builder {
	b.conditions = append(b.conditions, b.bind(cond, args))
	return b
}

// WhereSet adds one condition per value, joined by comb and wrapped in
// parentheses. fragment receives the placeholder for a single value. Empty
// values add nothing.
//
//	b.WhereSet(query.Or, types, func(p string) string { return p + " = ANY(common_types)" })
func (b *Builder) WhereSet(comb Combinator, values []string, fragment func(placeholder string) string) *Builder {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		parts = append(parts, fragment(b.Arg(v)))
	}
	if len(parts) == 0 {
		return b
	}
	if comb != And {
		comb = Or
	}
	b.conditions = append(b.conditions, "("+strings.Join(parts, " "+string(comb)+" ")+")")
	return b
}

// Len reports the number of conditions
func (b *Builder) Len() int {
	return len(b.conditions)
}

// Args returns the bound arguments in placeholder order
func (b *Builder) Args() []interface{} {
	out := make([]interface{}, len(b.args))
	copy(out, b.args)
	return out
}

// WhereClause renders "WHERE a AND b", or "" when there are no conditions
func (b *Builder) WhereClause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conditions, " AND ")
}

// List renders the count and data statements for a paginated read. from is
// a table name or join expression and columns the select list. The data
// statement's arguments are the filter arguments followed by limit and
// offset.
func (b *Builder) List(from, columns, orderBy string, page Page) (countSQL string, countArgs []interface{}, dataSQL string, dataArgs []interface{}) {
	where := b.WhereClause()

	countSQL = strings.TrimSpace(fmt.Sprintf("SELECT COUNT(*) AS total FROM %s %s", from, where))
	countArgs = b.Args()

	n := len(b.args)
	dataSQL = fmt.Sprintf("SELECT %s FROM %s", columns, from)
	if where != "" {
		dataSQL += " " + where
	}
	if orderBy != "" {
		dataSQL += " " + orderBy
	}
	dataSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	dataArgs = append(b.Args(), page.Limit, page.Offset())

	return countSQL, countArgs, dataSQL, dataArgs
}

func (b *Builder) bind(cond string, args []interface{}) string {
	if len(args) == 0 {
		return cond
	}
	var sb strings.Builder
	i := 0
	for _, r := range cond {
		if r == '?' && i < len(args) {
			sb.WriteString(b.Arg(args[i]))
			i++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
