package transaction

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cerebra-app/checkout/pkg/types"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

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

func TestFiltersAnd_Empty(t *testing.T) {
	assert.Equal(t, "1=1", buildSQL(filtersAnd{}))
}

func TestFiltersAnd_AllMalformed(t *testing.T) {
	sql := buildSQL(filtersAnd{filters: []*types.CommonFilter{
		{Field: "status", Operator: "like", Values: []any{"x"}},
		{Field: "status", Operator: types.CommonFilterOperatorEq},
	}})
	assert.Equal(t, "1=1", sql)
}

func TestFiltersAnd_DropsMalformedFilters(t *testing.T) {
	// a filter that builds nothing must not leave an empty group in the SQL
	sql := buildSQL(filtersAnd{filters: []*types.CommonFilter{
		{Field: "status", Operator: "like", Values: []any{"x"}},
		{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{"completed"}},
	}})
	assert.Equal(t, "status = ?", sql)
	assert.NotContains(t, sql, "()")
}

func TestFiltersAnd_CombinesWithAnd(t *testing.T) {
	sql := buildSQL(filtersAnd{filters: []*types.CommonFilter{
		{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{"completed"}},
		{Field: "amount", Operator: types.CommonFilterOperatorGte, Values: []any{5.0}},
	}})
	assert.Contains(t, sql, "status = ?")
	assert.Contains(t, sql, "amount >= ?")
	assert.Contains(t, sql, " AND ")
	assert.NotContains(t, sql, "()")
}
