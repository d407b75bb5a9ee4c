package parse_test

import (
	"testing"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"
	"github.com/syssam/veloxq/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereRelation(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "some",
			input: obj{"locations": obj{"some": obj{"name": "Oslo"}}},
			want:  `some(locations, name == "Oslo")`,
		},
		{
			name:  "every_and_none",
			input: obj{"locations": obj{"none": obj{"lat": nil}, "every": obj{"name": "Oslo"}}},
			want:  `(every(locations, name == "Oslo") && none(locations, lat == nil))`,
		},
		{
			name:  "some_empty",
			input: obj{"locations": obj{"some": obj{}}},
			want:  `some(locations)`,
		},
		{
			name:  "to_one_shorthand",
			input: obj{"customer": obj{"email": "ada@example.com"}},
			want:  `is(customer, email == "ada@example.com")`,
		},
		{
			name:  "to_one_is",
			input: obj{"customer": obj{"is": obj{"email": "ada@example.com"}}},
			want:  `is(customer, email == "ada@example.com")`,
		},
		{
			name:  "is_null",
			input: obj{"driver": obj{"is": nil}},
			want:  `is(driver, nil)`,
		},
		{
			name:  "null_shorthand",
			input: obj{"driver": nil},
			want:  `is(driver, nil)`,
		},
		{
			name:  "is_not_null",
			input: obj{"driver": obj{"isNot": nil}},
			want:  `is_not(driver, nil)`,
		},
		{
			name:  "nested",
			input: obj{"customer": obj{"trips": obj{"some": obj{"passengers": obj{"gt": 2}}}}},
			want:  `is(customer, some(trips, passengers > 2))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n, err := p.Where("Trip", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestWhereRelationNode(t *testing.T) {
	p := newParser(t)
	n, err := p.Where("Trip", obj{"locations": obj{"some": obj{"name": "Oslo"}}})
	require.NoError(t, err)
	assert.Equal(t, &query.RelationFilter{
		Relation:   "locations",
		Target:     "Location",
		Quantifier: query.Some,
		Inner: &query.ScalarFilter{
			Field: "name",
			Kind:  field.KindString,
			Conds: []query.Cond{{Op: query.OpEquals, Value: "Oslo"}},
		},
	}, n)
}

func TestWhereRelationErrors(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	tests := []struct {
		name    string
		input   any
		wantErr error
		path    string
	}{
		{
			name:    "is_on_to_many",
			input:   obj{"locations": obj{"is": obj{"name": "Oslo"}}},
			wantErr: veloxq.ErrCardinalityMismatch,
			path:    "where.locations.is",
		},
		{
			name:    "some_on_to_one",
			input:   obj{"customer": obj{"some": obj{}}},
			wantErr: veloxq.ErrCardinalityMismatch,
			path:    "where.customer.some",
		},
		{
			name:    "required_null",
			input:   obj{"customer": obj{"is": nil}},
			wantErr: veloxq.ErrInvalidOperatorForType,
			path:    "where.customer.is",
		},
		{
			name:    "required_null_shorthand",
			input:   obj{"customer": nil},
			wantErr: veloxq.ErrInvalidOperatorForType,
			path:    "where.customer",
		},
		{
			name:    "mixed_keys",
			input:   obj{"customer": obj{"is": obj{}, "name": "Ada"}},
			wantErr: veloxq.ErrMalformedInput,
			path:    "where.customer",
		},
		{
			name:    "to_many_without_quantifier",
			input:   obj{"locations": obj{"name": "Oslo"}},
			wantErr: veloxq.ErrMalformedInput,
			path:    "where.locations",
		},
		{
			name:    "to_many_null",
			input:   obj{"locations": obj{"some": nil}},
			wantErr: veloxq.ErrMalformedInput,
			path:    "where.locations.some",
		},
		{
			name:    "not_object",
			input:   obj{"locations": "Oslo"},
			wantErr: veloxq.ErrMalformedInput,
			path:    "where.locations",
		},
		{
			name:    "nested_path",
			input:   obj{"customer": obj{"is": obj{"trips": obj{"some": obj{"passengers": "many"}}}}},
			wantErr: veloxq.ErrInvalidOperatorForType,
			path:    "where.customer.is.trips.some.passengers",
		},
		{
			name:    "target_unknown_field",
			input:   obj{"locations": obj{"some": obj{"city": "Oslo"}}},
			wantErr: veloxq.ErrUnknownField,
			path:    "where.locations.some.city",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.Where("Trip", tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			var verr *veloxq.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}
