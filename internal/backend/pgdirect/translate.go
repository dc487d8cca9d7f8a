package pgdirect

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"novelhub/internal/backend"
)

func conditions(filters []backend.Filter) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		exprs = append(exprs, condition(f))
	}
	return exprs
}

func condition(f backend.Filter) clause.Expression {
	col := clause.Column{Name: f.Column}
	switch f.Op {
	case backend.OpNeq:
		return clause.Neq{Column: col, Value: f.Value}
	case backend.OpGt:
		return clause.Gt{Column: col, Value: f.Value}
	case backend.OpGte:
		return clause.Gte{Column: col, Value: f.Value}
	case backend.OpLt:
		return clause.Lt{Column: col, Value: f.Value}
	case backend.OpLte:
		return clause.Lte{Column: col, Value: f.Value}
	case backend.OpIn:
		return clause.IN{Column: col, Values: listValues(f.Value)}
	case backend.OpILike:
		return clause.Expr{SQL: "? ILIKE ?", Vars: []any{col, f.Value}}
	case backend.OpContains:
		return clause.Expr{SQL: "? @> ?", Vars: []any{col, pq.Array(stringValues(f.Value))}}
	default:
		return clause.Eq{Column: col, Value: f.Value}
	}
}

func listValues(v any) []any {
	switch vs := v.(type) {
	case []string:
		out := make([]any, len(vs))
		for i, s := range vs {
			out[i] = s
		}
		return out
	case []any:
		return vs
	default:
		return []any{v}
	}
}

func stringValues(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case string:
		return []string{vs}
	default:
		var out []string
		for _, x := range listValues(v) {
			out = append(out, fmt.Sprint(x))
		}
		return out
	}
}

// translateError maps driver errors onto *backend.APIError using the same
// codes and statuses the REST gateway reports, so callers branch once.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &backend.APIError{
			Status:  http.StatusNotAcceptable,
			Code:    backend.CodeNoRows,
			Message: "JSON object requested, multiple (or no) rows returned",
			Details: "The result contains 0 rows",
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &backend.APIError{
			Status:  statusForCode(pgErr.Code),
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
		}
	}
	return err
}

func statusForCode(code string) int {
	switch {
	case code == backend.CodeUniqueViolation, code == "23503":
		return http.StatusConflict
	case code == backend.CodeRLSViolation:
		return http.StatusForbidden
	case code == "42883", code == "42P01":
		return http.StatusNotFound
	case code == "57014":
		return http.StatusInternalServerError
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
