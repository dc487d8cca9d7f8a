package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"novelhub/internal/backend"
)

const objectMediaType = "application/vnd.pgrst.object+json"

func (c *Client) Select(ctx context.Context, q *backend.Query, dest any) (int64, error) {
	params := url.Values{}
	if len(q.Columns) == 0 {
		params.Set("select", "*")
	} else {
		params.Set("select", strings.Join(q.Columns, ","))
	}
	addFilters(params, q.Filters)
	if len(q.AnyOf) > 0 {
		params.Set("or", encodeOr(q.AnyOf))
	}
	if len(q.Orders) > 0 {
		terms := make([]string, 0, len(q.Orders))
		for _, o := range q.Orders {
			dir := "desc"
			if o.Ascending {
				dir = "asc"
			}
			terms = append(terms, o.Column+"."+dir)
		}
		params.Set("order", strings.Join(terms, ","))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	switch {
	case q.Empty:
		params.Set("limit", "0")
	case q.Limit > 0:
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	header := http.Header{}
	if q.Count {
		header.Set("Prefer", "count=exact")
	}
	if q.Single {
		header.Set("Accept", objectMediaType)
	}

	resp, err := c.do(ctx, request{
		operation: "select:" + q.Table,
		method:    http.MethodGet,
		path:      restPrefix + "/" + url.PathEscape(q.Table),
		query:     params,
		header:    header,
	})
	if err != nil {
		return 0, err
	}

	var total int64
	if q.Count {
		total = parseContentRange(resp.Header.Get("Content-Range"))
	}
	if err := decodeJSON(resp, dest); err != nil {
		return 0, err
	}
	return total, nil
}

func (c *Client) Insert(ctx context.Context, table string, values any, dest any) error {
	return c.write(ctx, "insert:"+table, http.MethodPost, table, values, nil, nil, dest)
}

func (c *Client) Upsert(ctx context.Context, table string, values any, onConflict []string, dest any) error {
	params := url.Values{}
	if len(onConflict) > 0 {
		params.Set("on_conflict", strings.Join(onConflict, ","))
	}
	return c.write(ctx, "upsert:"+table, http.MethodPost, table, values, params, []string{"resolution=merge-duplicates"}, dest)
}

func (c *Client) Update(ctx context.Context, table string, patch map[string]any, filters []backend.Filter, dest any) error {
	params := url.Values{}
	addFilters(params, filters)
	return c.write(ctx, "update:"+table, http.MethodPatch, table, patch, params, nil, dest)
}

func (c *Client) Delete(ctx context.Context, table string, filters []backend.Filter) error {
	params := url.Values{}
	addFilters(params, filters)
	return c.write(ctx, "delete:"+table, http.MethodDelete, table, nil, params, nil, nil)
}

func (c *Client) RPC(ctx context.Context, fn string, params map[string]any, dest any) error {
	if params == nil {
		params = map[string]any{}
	}
	body, err := jsonBody(params)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, request{
		operation: "rpc:" + fn,
		method:    http.MethodPost,
		path:      restPrefix + "/rpc/" + url.PathEscape(fn),
		body:      body,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, dest)
}

func (c *Client) write(ctx context.Context, operation, method, table string, values any, params url.Values, prefer []string, dest any) error {
	body, err := jsonBody(values)
	if err != nil {
		return err
	}

	header := http.Header{}
	if dest != nil {
		prefer = append(prefer, "return=representation")
		if !isSlicePointer(dest) {
			header.Set("Accept", objectMediaType)
		}
	} else {
		prefer = append(prefer, "return=minimal")
	}
	header.Set("Prefer", strings.Join(prefer, ","))

	resp, err := c.do(ctx, request{
		operation: operation,
		method:    method,
		path:      restPrefix + "/" + url.PathEscape(table),
		query:     params,
		header:    header,
		body:      body,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, dest)
}

func addFilters(params url.Values, filters []backend.Filter) {
	for _, f := range filters {
		params.Add(f.Column, encodeFilterValue(f))
	}
}

func encodeFilterValue(f backend.Filter) string {
	switch f.Op {
	case backend.OpIn:
		return "in.(" + quoteList(f.Value) + ")"
	case backend.OpContains:
		return "cs.{" + quoteList(f.Value) + "}"
	case backend.OpILike:
		return "ilike." + strings.ReplaceAll(formatValue(f.Value), "%", "*")
	default:
		return string(f.Op) + "." + formatValue(f.Value)
	}
}

// encodeOr renders filters as or=(a.op.v,b.op.v). Values inside the group
// are quoted when they contain the group's reserved characters.
func encodeOr(filters []backend.Filter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		v := encodeFilterValue(f)
		op, val, _ := strings.Cut(v, ".")
		if !strings.HasPrefix(val, "(") && !strings.HasPrefix(val, "{") {
			val = quoteIfReserved(val)
		}
		parts = append(parts, f.Column+"."+op+"."+val)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func quoteList(v any) string {
	var items []string
	switch vs := v.(type) {
	case []string:
		items = vs
	case []any:
		for _, x := range vs {
			items = append(items, formatValue(x))
		}
	default:
		items = []string{formatValue(v)}
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return strings.Join(quoted, ",")
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func quoteIfReserved(s string) string {
	if strings.ContainsAny(s, `,.:()"\{}`) {
		return quote(s)
	}
	return s
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// parseContentRange reads the total from "0-9/42" or "*/0".
func parseContentRange(h string) int64 {
	_, total, ok := strings.Cut(h, "/")
	if !ok || total == "*" {
		return 0
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func isSlicePointer(dest any) bool {
	t := reflect.TypeOf(dest)
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Slice
}
