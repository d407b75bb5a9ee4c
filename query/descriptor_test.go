package query_test

import (
	"testing"

	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema/field"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorString(t *testing.T) {
	d := &query.Descriptor{
		Entity: "Trip",
		Where: &query.ScalarFilter{
			Field: "passengers",
			Kind:  field.KindInt,
			Conds: []query.Cond{{Op: query.OpGT, Value: int64(2)}},
		},
		OrderBy: []query.OrderTerm{
			{Path: []string{"customer"}, Field: "name", Direction: query.Asc, Nulls: query.NullsLast},
			{Field: "locations", Direction: query.Desc, Count: true},
		},
		Having: []*query.AggregateFilter{
			{Op: query.Count, Inner: &query.ScalarFilter{Kind: field.KindInt, Conds: []query.Cond{{Op: query.OpGT, Value: int64(1)}}}},
			{Op: query.Avg, Field: "quote_total", Inner: &query.ScalarFilter{Kind: field.KindFloat, Conds: []query.Cond{{Op: query.OpGTE, Value: 100.5}}}},
		},
		Updates: []query.UpdateOp{
			{Field: "passengers", Op: query.Increment, Value: int64(1)},
			{Field: "notes", Op: query.NullableSet},
			{Field: "meta_data", Op: query.Set, Value: query.DbNull},
		},
	}
	assert.Equal(t, `entity: Trip
where: passengers > 2
order: customer.name asc nulls last, count(locations) desc
having: count(*) > 1 && avg(quote_total) >= 100.5
update: passengers += 1, notes = nil, meta_data = DbNull`, d.String())

	d = &query.Descriptor{
		Entity: "Flight",
		Unique: &query.UniqueLookup{
			Key: query.UniqueKey{Name: "id", Fields: []string{"id"}, Values: []any{"f1"}, Primary: true},
			Residual: []query.UniqueKey{{
				Name:     "identifier_token",
				Fields:   []string{"identifier", "token"},
				Values:   []any{"a", int64(2)},
				Compound: true,
			}},
		},
	}
	assert.Equal(t, `entity: Flight
unique: id == "f1" && identifier_token(identifier: "a", token: 2)`, d.String())

	v, ok := d.Unique.Residual[0].Value("token")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)
	_, ok = d.Unique.Key.Value("token")
	assert.False(t, ok)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, `nil`, query.FormatValue(nil))
	assert.Equal(t, `"a\"b"`, query.FormatValue(`a"b`))
	assert.Equal(t, `true`, query.FormatValue(true))
	assert.Equal(t, `0.25`, query.FormatValue(0.25))
	assert.Equal(t, `[1,nil,"x"]`, query.FormatValue([]any{int64(1), nil, "x"}))
	assert.Equal(t, `{"a":[1,2]}`, query.FormatValue(map[string]any{"a": []int{1, 2}}))
	assert.Equal(t, `JsonNull`, query.FormatValue(query.JsonNull))
}
