package parse_test

import (
	"testing"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/parse"
	"github.com/syssam/veloxq/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereUniqueSingleField(t *testing.T) {
	p := newParser(t)
	l, err := p.WhereUnique("Flight", obj{"trip_id": "t1"})
	require.NoError(t, err)
	assert.Equal(t, query.UniqueKey{
		Name:   "trip_id",
		Fields: []string{"trip_id"},
		Values: []any{"t1"},
	}, l.Key)
	assert.Empty(t, l.Residual)
	assert.Equal(t, `trip_id == "t1"`, l.String())
}

func TestWhereUniqueCompound(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	for name, input := range map[string]any{
		"nested": obj{"identifier_token": obj{"token": 7, "identifier": "AB"}},
		"flat":   obj{"identifier": "AB", "token": 7.0},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			l, err := p.WhereUnique("Flight", input)
			require.NoError(t, err)
			assert.Equal(t, "identifier_token", l.Key.Name)
			assert.True(t, l.Key.Compound)
			assert.Equal(t, []string{"identifier", "token"}, l.Key.Fields)
			assert.Equal(t, []any{"AB", int64(7)}, l.Key.Values)
			v, ok := l.Key.Value("token")
			require.True(t, ok)
			assert.Equal(t, int64(7), v)
			assert.Equal(t, `identifier_token(identifier: "AB", token: 7)`, l.String())
		})
	}
}

func TestWhereUniquePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    any
		strict   bool
		key      string
		residual []string
		wantErr  error
	}{
		{
			name:     "primary_first",
			input:    obj{"trip_id": "t1", "id": "6BA7B810-9DAD-11D1-80B4-00C04FD430C8"},
			key:      "id",
			residual: []string{"trip_id"},
		},
		{
			name:     "field_before_compound",
			input:    obj{"trip_id": "t1", "identifier": "AB", "token": 7},
			key:      "trip_id",
			residual: []string{"identifier_token"},
		},
		{
			name:     "compounds_in_declaration_order",
			input:    obj{"carrier": "LH", "number": 400, "identifier": "AB", "token": 7},
			key:      "identifier_token",
			residual: []string{"flight_code"},
		},
		{
			name:     "member_completes_other_key",
			input:    obj{"trip_id": "t1", "carrier": "LH"},
			key:      "trip_id",
			residual: []string{"trip_id_carrier"},
		},
		{
			name:    "strict_ambiguous",
			input:   obj{"trip_id": "t1", "identifier": "AB", "token": 7},
			strict:  true,
			wantErr: veloxq.ErrAmbiguousUniqueKey,
		},
		{
			name:     "strict_primary",
			input:    obj{"trip_id": "t1", "id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
			strict:   true,
			key:      "id",
			residual: []string{"trip_id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var opts []parse.Option
			if tt.strict {
				opts = append(opts, parse.WithStrictUnique())
			}
			p := newParser(t, opts...)
			l, err := p.WhereUnique("Flight", tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, l.Key.Name)
			var residual []string
			for _, k := range l.Residual {
				residual = append(residual, k.Name)
			}
			assert.Equal(t, tt.residual, residual)
		})
	}
}

func TestWhereUniquePrimaryCanonical(t *testing.T) {
	p := newParser(t)
	l, err := p.WhereUnique("Flight", obj{"id": "6BA7B810-9DAD-11D1-80B4-00C04FD430C8"})
	require.NoError(t, err)
	assert.True(t, l.Key.Primary)
	assert.Equal(t, []any{"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}, l.Key.Values)
}

func TestWhereUniqueErrors(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	tests := []struct {
		name    string
		entity  string
		input   any
		wantErr error
		path    string
	}{
		{"partial_flat", "Flight", obj{"identifier": "AB"}, veloxq.ErrIncompleteCompoundKey, "unique.identifier"},
		{"partial_nested", "Flight", obj{"identifier_token": obj{"identifier": "AB"}}, veloxq.ErrIncompleteCompoundKey, "unique.identifier_token"},
		{"nested_unknown_member", "Flight", obj{"identifier_token": obj{"identifier": "AB", "seat": 1}}, veloxq.ErrUnknownField, "unique.identifier_token.seat"},
		{"nested_not_object", "Flight", obj{"identifier_token": "AB7"}, veloxq.ErrMalformedInput, "unique.identifier_token"},
		{"not_identifying", "Trip", obj{"passengers": 2}, veloxq.ErrMalformedInput, "unique.passengers"},
		{"extra_field", "Flight", obj{"trip_id": "t1", "number": 400}, veloxq.ErrIncompleteCompoundKey, "unique.number"},
		{"empty", "Trip", obj{}, veloxq.ErrMalformedInput, "unique"},
		{"not_object", "Trip", 7, veloxq.ErrMalformedInput, "unique"},
		{"null_value", "Flight", obj{"trip_id": nil}, veloxq.ErrInvalidOperatorForType, "unique.trip_id"},
		{"wrong_type", "Trip", obj{"id": "seven"}, veloxq.ErrInvalidOperatorForType, "unique.id"},
		{"unknown_field", "Trip", obj{"seat": 1}, veloxq.ErrUnknownField, "unique.seat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.WhereUnique(tt.entity, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			var verr *veloxq.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}
