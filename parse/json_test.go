package parse_test

import (
	"testing"

	"github.com/syssam/veloxq"
	"github.com/syssam/veloxq/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhereJSON(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"json_null_name", obj{"meta_data": "JsonNull"}, `meta_data == JsonNull`},
		{"equals_json_null", obj{"meta_data": obj{"equals": "JsonNull"}}, `meta_data == JsonNull`},
		{"equals_any_null", obj{"meta_data": obj{"equals": "AnyNull"}}, `meta_data == AnyNull`},
		{"null_is_db_null", obj{"meta_data": nil}, `meta_data == DbNull`},
		{"not_db_null", obj{"meta_data": obj{"not": query.DbNull}}, `meta_data != DbNull`},
		{"path_string", obj{"meta_data": obj{"path": "tier", "string_contains": "go"}}, `string_contains(meta_data["tier"], "go")`},
		{"path_list", obj{"meta_data": obj{"path": arr{"a", "b"}, "equals": 1}}, `meta_data["a","b"] == 1`},
		{"array_contains", obj{"settings": obj{"array_contains": arr{"dark"}}}, `array_contains(settings, ["dark"])`},
		{"string_literal", obj{"settings": "dark"}, `settings == "dark"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n, err := p.Where("User", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestWhereJSONNormalizes(t *testing.T) {
	p := newParser(t)
	n, err := p.Where("User", obj{"settings": obj{"equals": obj{"size": 12.0, "ratio": 0.5, "tags": arr{"a", 1}}}})
	require.NoError(t, err)
	jf, ok := n.(*query.JSONFilter)
	require.True(t, ok)
	require.Len(t, jf.Conds, 1)
	assert.Equal(t, map[string]any{
		"size":  int64(12),
		"ratio": 0.5,
		"tags":  []any{"a", int64(1)},
	}, jf.Conds[0].Value)
}

func TestWhereJSONErrors(t *testing.T) {
	t.Parallel()
	p := newParser(t)

	tests := []struct {
		name    string
		input   any
		wantErr error
		path    string
	}{
		{"sentinel_on_required", obj{"settings": "DbNull"}, veloxq.ErrInvalidOperatorForType, "where.settings"},
		{"null_on_required", obj{"settings": obj{"equals": nil}}, veloxq.ErrInvalidOperatorForType, "where.settings.equals"},
		{"string_op_number", obj{"meta_data": obj{"string_contains": 1}}, veloxq.ErrInvalidOperatorForType, "where.meta_data.string_contains"},
		{"array_op_null", obj{"meta_data": obj{"array_contains": nil}}, veloxq.ErrInvalidOperatorForType, "where.meta_data.array_contains"},
		{"path_alone", obj{"meta_data": obj{"path": "tier"}}, veloxq.ErrMalformedInput, "where.meta_data"},
		{"path_number", obj{"meta_data": obj{"path": arr{1}, "equals": 1}}, veloxq.ErrMalformedInput, "where.meta_data.path"},
		{"unknown_operator", obj{"meta_data": obj{"has": "x"}}, veloxq.ErrMalformedInput, "where.meta_data.has"},
		{"empty", obj{"meta_data": obj{}}, veloxq.ErrMalformedInput, "where.meta_data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.Where("User", tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			var verr *veloxq.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.path, verr.Path)
		})
	}
}
