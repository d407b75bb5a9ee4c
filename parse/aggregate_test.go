package parse_test

import (
	"testing"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateHaving(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	tests := []struct {
		name   string
		entity string
		input  any
		want   []string
	}{
		{"count_all", "Trip", obj{"_count": obj{"_all": obj{"gt": 1}}}, []string{"count(*) > 1"}},
		{"avg", "Trip", obj{"_avg": obj{"quote_total": obj{"gte": 100}}}, []string{"avg(quote_total) >= 100"}},
		{"avg_of_int", "Trip", obj{"_avg": obj{"passengers": obj{"gt": 1.5}}}, []string{"avg(passengers) > 1.5"}},
		{"sum_null", "Trip", obj{"_sum": obj{"passengers": nil}}, []string{"sum(passengers) == nil"}},
		{"max_time", "User", obj{"_max": obj{"created_at": obj{"lt": "2024-06-01T00:00:00Z"}}}, []string{`max(created_at) < "2024-06-01T00:00:00Z"`}},
		{"min_string", "User", obj{"_min": obj{"name": obj{"startsWith": "A"}}}, []string{`has_prefix(min(name), "A")`}},
		{"count_relation", "Trip", obj{"_count": obj{"locations": obj{"gte": 2}}}, []string{"count(locations) >= 2"}},
		{"count_field", "Trip", obj{"_count": obj{"notes": 0}}, []string{"count(notes) == 0"}},
		{
			name:   "sorted",
			entity: "Trip",
			input:  obj{"_sum": obj{"passengers": obj{"gt": 3}}, "_count": obj{"_all": obj{"gt": 1}}},
			want:   []string{"count(*) > 1", "sum(passengers) > 3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs, err := p.AggregateHaving(tt.entity, tt.input)
			require.NoError(t, err)
			got := make([]string, len(fs))
			for i, f := range fs {
				got[i] = f.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateFilter(t *testing.T) {
	p := newParser(t)
	fs, err := p.AggregateHaving("Trip", obj{"_count": obj{"locations": obj{"gt": 1}}, "_avg": obj{"passengers": obj{"gt": 1}}})
	require.NoError(t, err)
	require.Len(t, fs, 2)

	assert.Equal(t, query.Avg, fs[0].Op)
	assert.Equal(t, field.KindFloat, fs[0].Inner.Kind)
	c, ok := fs[0].Inner.Cond(query.OpGT)
	require.True(t, ok)
	assert.Equal(t, float64(1), c.Value)

	assert.Equal(t, query.Count, fs[1].Op)
	assert.True(t, fs[1].Relation)
	assert.Equal(t, "locations", fs[1].Field)
	c, ok = fs[1].Inner.Cond(query.OpGT)
	require.True(t, ok)
	assert.Equal(t, int64(1), c.Value)

	fs, err = p.AggregateHaving("Trip", nil)
	require.NoError(t, err)
	assert.Empty(t, fs)
}

func TestAggregateHavingErrors(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	tests := []struct {
		name    string
		entity  string
		input   any
		wantErr error
		path    string
	}{
		{"avg_string", "User", obj{"_avg": obj{"name": obj{"gt": 1}}}, veloxq.ErrInvalidOperatorForType, "having._avg.name"},
		{"sum_time", "User", obj{"_sum": obj{"created_at": obj{"gt": 1}}}, veloxq.ErrInvalidOperatorForType, "having._sum.created_at"},
		{"min_bool", "User", obj{"_min": obj{"is_customer": true}}, veloxq.ErrInvalidOperatorForType, "having._min.is_customer"},
		{"max_json", "User", obj{"_max": obj{"settings": 1}}, veloxq.ErrInvalidOperatorForType, "having._max.settings"},
		{"count_to_one", "Trip", obj{"_count": obj{"customer": obj{"gt": 1}}}, veloxq.ErrCardinalityMismatch, "having._count.customer"},
		{"count_fraction", "Trip", obj{"_count": obj{"_all": obj{"gt": 1.5}}}, veloxq.ErrInvalidOperatorForType, "having._count._all.gt"},
		{"unknown_aggregate", "Trip", obj{"_median": obj{"passengers": 1}}, veloxq.ErrMalformedInput, "having._median"},
		{"missing_underscore", "Trip", obj{"avg": obj{"passengers": 1}}, veloxq.ErrMalformedInput, "having.avg"},
		{"unknown_field", "Trip", obj{"_avg": obj{"seats": 1}}, veloxq.ErrUnknownField, "having._avg.seats"},
		{"not_object", "Trip", obj{"_count": true}, veloxq.ErrMalformedInput, "having._count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.AggregateHaving(tt.entity, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			var verr *veloxq.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}
