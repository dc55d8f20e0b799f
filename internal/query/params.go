// Package query implements the shared list contract: query-string filters,
// field selection, sorting and page/limit pagination over a Mongo collection.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// Filter is one parsed condition. Building these explicitly instead of
// rewriting a serialized query string avoids operator keywords matching
// inside literal values.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

type SortKey struct {
	Field string
	Desc  bool
}

type Params struct {
	Filters []Filter
	Select  []string
	Sort    []SortKey
	Page    int
	Limit   int
}

// bracketed keys look like averageCost[lte]
var bracketKey = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_.]*)\[([a-z]+)\]$`)

var fieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

var allowedOps = map[Op]bool{
	OpGt:  true,
	OpGte: true,
	OpLt:  true,
	OpLte: true,
	OpIn:  true,
}

// Parse translates raw query parameters into Params. The reserved names
// select, sort, page and limit are consumed first; everything else becomes a
// filter. Unknown operators and malformed field names are rejected.
func Parse(values url.Values) (Params, error) {
	p := Params{
		Page:  1,
		Limit: DefaultLimit,
		Sort:  []SortKey{{Field: "createdAt", Desc: true}},
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		raw := vals[0]

		switch key {
		case "select":
			for _, f := range strings.Split(raw, ",") {
				f = strings.TrimSpace(f)
				if f == "" {
					continue
				}
				if !fieldName.MatchString(f) {
					return Params{}, fmt.Errorf("invalid select field %q", f)
				}
				p.Select = append(p.Select, f)
			}
			continue

		case "sort":
			keys, err := parseSort(raw)
			if err != nil {
				return Params{}, err
			}
			if len(keys) > 0 {
				p.Sort = keys
			}
			continue

		case "page":
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return Params{}, fmt.Errorf("invalid page %q", raw)
			}
			p.Page = n
			continue

		case "limit":
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return Params{}, fmt.Errorf("invalid limit %q", raw)
			}
			if n > MaxLimit {
				n = MaxLimit
			}
			p.Limit = n
			continue
		}

		f, err := parseFilter(key, raw)
		if err != nil {
			return Params{}, err
		}
		p.Filters = append(p.Filters, f)
	}

	return p, nil
}

func parseFilter(key, raw string) (Filter, error) {
	if m := bracketKey.FindStringSubmatch(key); m != nil {
		op := Op(m[2])
		if !allowedOps[op] {
			return Filter{}, fmt.Errorf("unknown filter operator %q", m[2])
		}

		if op == OpIn {
			parts := strings.Split(raw, ",")
			vals := make([]interface{}, 0, len(parts))
			for _, part := range parts {
				vals = append(vals, coerce(strings.TrimSpace(part)))
			}
			return Filter{Field: m[1], Op: op, Value: vals}, nil
		}

		return Filter{Field: m[1], Op: op, Value: coerce(raw)}, nil
	}

	if !fieldName.MatchString(key) {
		return Filter{}, fmt.Errorf("invalid filter field %q", key)
	}

	return Filter{Field: key, Op: OpEq, Value: coerce(raw)}, nil
}

func parseSort(raw string) ([]SortKey, error) {
	var keys []SortKey

	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		desc := strings.HasPrefix(f, "-")
		f = strings.TrimPrefix(f, "-")

		if !fieldName.MatchString(f) {
			return nil, fmt.Errorf("invalid sort field %q", f)
		}
		keys = append(keys, SortKey{Field: f, Desc: desc})
	}
	return keys, nil
}

// coerce turns a query-string literal into the value that gets compared in
// the database: number, bool, or the string itself.
func coerce(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func (p Params) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// Paginate computes the next/prev descriptors from the total matching count.
func (p Params) Paginate(total int64) Pagination {
	var pg Pagination

	if int64(p.Page*p.Limit) < total {
		pg.Next = &Page{Page: p.Page + 1, Limit: p.Limit}
	}
	if p.Skip() > 0 {
		pg.Prev = &Page{Page: p.Page - 1, Limit: p.Limit}
	}
	return pg
}
