package types

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

// sqlBuilder captures generated SQL with ? placeholders for assertions.
type sqlBuilder struct{ strings.Builder }

func (b *sqlBuilder) WriteQuoted(field interface{}) {
	switch v := field.(type) {
	case clause.Column:
		b.WriteString(v.Name)
	default:
		fmt.Fprint(b, v)
	}
}

func (b *sqlBuilder) AddVar(_ clause.Writer, vars ...interface{}) {
	for i := range vars {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
}

func (b *sqlBuilder) AddError(err error) error { return err }

func buildSQL(expr clause.Expression) string {
	var b sqlBuilder
	expr.Build(&b)
	return b.String()
}

func TestCommonFilter_Buildable(t *testing.T) {
	cases := []struct {
		name   string
		filter *CommonFilter
		want   bool
	}{
		{"eq with value", &CommonFilter{Field: "status", Operator: CommonFilterOperatorEq, Values: []any{"completed"}}, true},
		{"eq without values", &CommonFilter{Field: "status", Operator: CommonFilterOperatorEq}, false},
		{"unknown operator", &CommonFilter{Field: "status", Operator: "like", Values: []any{"x"}}, false},
		{"empty operator", &CommonFilter{Field: "status", Values: []any{"x"}}, false},
		{"in with values", &CommonFilter{Field: "status", Operator: CommonFilterOperatorIn, Values: []any{"a", "b"}}, true},
		{"range with bounds", &CommonFilter{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{1, 2}}, true},
		{"range missing upper bound", &CommonFilter{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{1}}, false},
		{"date_range missing upper bound", &CommonFilter{Field: "created_at", Operator: CommonFilterOperatorDateRange, Values: []any{1}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Buildable())
		})
	}
}

func TestCommonFilter_Build(t *testing.T) {
	eq := &CommonFilter{Field: "status", Operator: CommonFilterOperatorEq, Values: []any{"completed"}}
	assert.Equal(t, "status = ?", buildSQL(eq))

	jsonb := &CommonFilter{Field: "extra->>'user_id'", Operator: CommonFilterOperatorEq, Values: []any{"u1"}}
	assert.Equal(t, "extra->>'user_id' = ?", buildSQL(jsonb))

	gte := &CommonFilter{Field: "amount", Operator: CommonFilterOperatorGte, Values: []any{5.0}}
	assert.Equal(t, "amount >= ?", buildSQL(gte))

	in := &CommonFilter{Field: "status", Operator: CommonFilterOperatorIn, Values: []any{"completed", "failed"}}
	assert.Equal(t, "status IN (?,?)", buildSQL(in))

	rng := &CommonFilter{Field: "created_at", Operator: CommonFilterOperatorDateRange, Values: []any{"2026-01-01", "2026-02-01"}}
	rngSQL := buildSQL(rng)
	assert.Contains(t, rngSQL, "created_at >= ?")
	assert.Contains(t, rngSQL, "created_at <= ?")
	assert.Contains(t, rngSQL, " AND ")
}

func TestCommonFilter_Build_MalformedEmitsNothing(t *testing.T) {
	cases := []struct {
		name   string
		filter *CommonFilter
	}{
		{"no values", &CommonFilter{Field: "status", Operator: CommonFilterOperatorEq}},
		{"unknown operator", &CommonFilter{Field: "status", Operator: "like", Values: []any{"x"}}},
		{"range single bound", &CommonFilter{Field: "created_at", Operator: CommonFilterOperatorRange, Values: []any{1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, buildSQL(tc.filter))
		})
	}
}
