package query_test

import (
	"net/url"
	"testing"

	"github.com/devtrails/campdir/internal/query"
)

func parse(t *testing.T, rawQuery string) query.Params {
	t.Helper()

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("ParseQuery error: %v", err)
	}

	p, err := query.Parse(values)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return p
}

func TestParse_Defaults(t *testing.T) {
	p := parse(t, "")

	if p.Page != 1 {
		t.Fatalf("expected page 1, got %d", p.Page)
	}
	if p.Limit != query.DefaultLimit {
		t.Fatalf("expected limit %d, got %d", query.DefaultLimit, p.Limit)
	}
	if len(p.Sort) != 1 || p.Sort[0].Field != "createdAt" || !p.Sort[0].Desc {
		t.Fatalf("expected default sort -createdAt, got %+v", p.Sort)
	}
}

func TestParse_BracketedFilter(t *testing.T) {
	p := parse(t, "averageCost[lte]=10000")

	if len(p.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(p.Filters))
	}

	f := p.Filters[0]
	if f.Field != "averageCost" || f.Op != query.OpLte {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if v, ok := f.Value.(float64); !ok || v != 10000 {
		t.Fatalf("expected numeric value 10000, got %#v", f.Value)
	}
}

func TestParse_InFilterSplitsValues(t *testing.T) {
	p := parse(t, "careers[in]=Business,UI%2FUX")

	if len(p.Filters) != 1 {
		t.Fatalf("expected 1 filter, got %d", len(p.Filters))
	}

	vals, ok := p.Filters[0].Value.([]interface{})
	if !ok || len(vals) != 2 {
		t.Fatalf("expected 2 in-values, got %#v", p.Filters[0].Value)
	}
	if vals[0] != "Business" || vals[1] != "UI/UX" {
		t.Fatalf("unexpected in-values: %#v", vals)
	}
}

func TestParse_RejectsUnknownOperator(t *testing.T) {
	values := url.Values{"averageCost[regex]": {"x"}}

	if _, err := query.Parse(values); err == nil {
		t.Fatalf("expected error for unknown operator")
	}
}

func TestParse_RejectsMalformedField(t *testing.T) {
	values := url.Values{"$where": {"1"}}

	if _, err := query.Parse(values); err == nil {
		t.Fatalf("expected error for malformed field name")
	}
}

func TestParse_SelectAndSort(t *testing.T) {
	p := parse(t, "select=name,description&sort=-averageCost,name")

	if len(p.Select) != 2 || p.Select[0] != "name" || p.Select[1] != "description" {
		t.Fatalf("unexpected select: %+v", p.Select)
	}

	if len(p.Sort) != 2 {
		t.Fatalf("expected 2 sort keys, got %+v", p.Sort)
	}
	if p.Sort[0].Field != "averageCost" || !p.Sort[0].Desc {
		t.Fatalf("unexpected first sort key: %+v", p.Sort[0])
	}
	if p.Sort[1].Field != "name" || p.Sort[1].Desc {
		t.Fatalf("unexpected second sort key: %+v", p.Sort[1])
	}
}

func TestParse_LimitCapped(t *testing.T) {
	p := parse(t, "limit=500")

	if p.Limit != query.MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", query.MaxLimit, p.Limit)
	}
}

func TestParse_ValueCoercion(t *testing.T) {
	p := parse(t, "housing=true&name=Devworks")

	byField := map[string]interface{}{}
	for _, f := range p.Filters {
		byField[f.Field] = f.Value
	}

	if v, ok := byField["housing"].(bool); !ok || !v {
		t.Fatalf("expected housing coerced to bool true, got %#v", byField["housing"])
	}
	if v, ok := byField["name"].(string); !ok || v != "Devworks" {
		t.Fatalf("expected name kept as string, got %#v", byField["name"])
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantNext *int
		wantPrev *int
	}{
		{name: "middle page", page: 2, limit: 10, total: 25, wantNext: intp(3), wantPrev: intp(1)},
		{name: "first page with more", page: 1, limit: 10, total: 25, wantNext: intp(2)},
		{name: "last page", page: 3, limit: 10, total: 25, wantPrev: intp(2)},
		{name: "single page", page: 1, limit: 25, total: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := query.Params{Page: tt.page, Limit: tt.limit}
			pg := p.Paginate(tt.total)

			if (pg.Next == nil) != (tt.wantNext == nil) {
				t.Fatalf("next mismatch: got %+v", pg.Next)
			}
			if pg.Next != nil && pg.Next.Page != *tt.wantNext {
				t.Fatalf("expected next page %d, got %d", *tt.wantNext, pg.Next.Page)
			}
			if (pg.Prev == nil) != (tt.wantPrev == nil) {
				t.Fatalf("prev mismatch: got %+v", pg.Prev)
			}
			if pg.Prev != nil && pg.Prev.Page != *tt.wantPrev {
				t.Fatalf("expected prev page %d, got %d", *tt.wantPrev, pg.Prev.Page)
			}
		})
	}
}

func intp(n int) *int {
	return &n
}
