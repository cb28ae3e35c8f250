// Package query builds the parameterized SQL fragments shared by every
// repository: filter conditions, allow-listed ORDER BY clauses, page/limit
// pagination, and the SET list of partial updates.
//
// Values are always bound as positional parameters ($1, $2, ...). The only
// text interpolated into SQL is column and direction tokens taken from a
// closed allow-list owned by the calling repository.
//
// # Filters
//
//	b := query.New()
//	if opts.Search != "" {
//	    b.Where("name ILIKE ?", "%"+opts.Search+"%")
//	}
//	b.WhereSet(query.Or, opts.Types, func(p string) string {
//	    return p + " = ANY(common_types)"
//	})
//
// # Pagination
//
//	page := query.NewPage(opts.Page, opts.Limit) // defaults 1 and 10
//	countSQL, countArgs, dataSQL, dataArgs := b.List("abilities", "*", sort.Clause(opts.SortBy, opts.SortOrder), page)
//
// The count and data statements share one WHERE clause. The result is
// wrapped in Paginated[T], whose TotalPages is ceil(total/limit).
//
// # Partial updates
//
//	var p query.Patch
//	query.SetPtr(&p, "name", in.Name)
//	if p.Empty() {
//	    return r.FindByID(ctx, id)
//	}
//	sql, args := p.Update("abilities", "id", id, true)
package query
