package backend

import "time"

// Op is a row filter operator. Values mirror the REST filter vocabulary so the
// HTTP data source can emit them verbatim.
type Op string

const (
	OpEq       Op = "eq"
	OpNeq      Op = "neq"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpIn       Op = "in"
	OpILike    Op = "ilike"
	OpContains Op = "cs" // array column contains every element of Value
)

// Filter restricts a read or mutation to matching rows.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

func Eq(column string, value any) Filter { return Filter{Column: column, Op: OpEq, Value: value} }

func ILike(column, pattern string) Filter {
	return Filter{Column: column, Op: OpILike, Value: pattern}
}

// Order is one ORDER BY term.
type Order struct {
	Column    string
	Ascending bool
}

// Query describes a single table read. Build it with From and the chained
// helpers; data sources translate it to their own dialect.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	AnyOf   []Filter // OR-ed together, AND-ed with Filters
	Orders  []Order

	Offset int
	Limit  int  // 0 means no limit
	Empty  bool // an empty range: no rows, though Count still reports the total

	Count  bool // also return the exact number of matching rows
	Single bool // exactly one row expected, ErrNotFound otherwise
}

func From(table string) *Query {
	return &Query{Table: table}
}

func (q *Query) Select(columns ...string) *Query {
	q.Columns = append(q.Columns, columns...)
	return q
}

func (q *Query) Where(filters ...Filter) *Query {
	q.Filters = append(q.Filters, filters...)
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	return q.Where(Eq(column, value))
}

func (q *Query) Neq(column string, value any) *Query {
	return q.Where(Filter{Column: column, Op: OpNeq, Value: value})
}

func (q *Query) Gte(column string, value any) *Query {
	if t, ok := value.(time.Time); ok {
		value = t.UTC().Format(time.RFC3339)
	}
	return q.Where(Filter{Column: column, Op: OpGte, Value: value})
}

// Contains keeps rows whose array column holds every element of values.
func (q *Query) Contains(column string, values ...string) *Query {
	return q.Where(Filter{Column: column, Op: OpContains, Value: values})
}

func (q *Query) In(column string, values []string) *Query {
	return q.Where(Filter{Column: column, Op: OpIn, Value: values})
}

// Or adds an OR group, e.g. title ILIKE x OR author ILIKE x.
func (q *Query) Or(filters ...Filter) *Query {
	q.AnyOf = append(q.AnyOf, filters...)
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	q.Orders = append(q.Orders, Order{Column: column, Ascending: ascending})
	return q
}

// Range selects rows from..to inclusive, the way the backend pages results.
func (q *Query) Range(from, to int) *Query {
	if from < 0 {
		from = 0
	}
	q.Offset = from
	if to < from {
		q.Limit = 0
		q.Empty = true
		return q
	}
	q.Limit = to - from + 1
	q.Empty = false
	return q
}

func (q *Query) WithLimit(n int) *Query {
	q.Limit = n
	q.Empty = false
	return q
}

func (q *Query) WithCount() *Query {
	q.Count = true
	return q
}

func (q *Query) ExpectSingle() *Query {
	q.Single = true
	return q
}

// PageRange converts a 1-based page and page size to the inclusive row range
// the backend expects: start=(page-1)*size, end=start+size-1.
func PageRange(page, size int) (from, to int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	from = (page - 1) * size
	return from, from + size - 1
}

// HasMore reports whether rows remain after the given page.
func HasMore(total int64, page, size int) bool {
	return total > int64(page)*int64(size)
}

// TotalPages rounds total/size up.
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return int(pages)
}
