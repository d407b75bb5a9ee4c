package field_test

import (
	"testing"

	"github.com/syssam/veloxq/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	fd := field.String("email_address").
		Unique().
		Comment("login").
		Descriptor()
	assert.Equal(t, "email_address", fd.Name)
	assert.Equal(t, field.KindString, fd.Kind)
	assert.True(t, fd.Unique)
	assert.False(t, fd.ID)
	assert.Equal(t, "login", fd.Comment)
	assert.True(t, fd.Required())
	assert.NoError(t, fd.Err)

	fd = field.String("nickname").Nillable().Descriptor()
	assert.True(t, fd.Nillable)
	assert.False(t, fd.Required())
}

func TestUUID(t *testing.T) {
	fd := field.UUID("id").ID().Default().Descriptor()
	assert.Equal(t, field.KindString, fd.Kind)
	assert.Equal(t, field.FormatUUID, fd.Format)
	assert.True(t, fd.ID)
	assert.True(t, fd.Unique)
	assert.False(t, fd.Required())
	assert.NoError(t, fd.Err)
}

func TestNumeric(t *testing.T) {
	fd := field.Int("passengers").Optional().Descriptor()
	assert.Equal(t, field.KindInt, fd.Kind)
	assert.True(t, fd.Kind.Numeric())
	assert.False(t, fd.Required())

	fd = field.Float("quote_total").Descriptor()
	assert.Equal(t, field.KindFloat, fd.Kind)
	assert.True(t, fd.Kind.Numeric())
	assert.True(t, fd.Kind.Orderable())
}

func TestEnum(t *testing.T) {
	fd := field.Enum("status").Values("pending", "confirmed").Descriptor()
	require.NoError(t, fd.Err)
	assert.Equal(t, []string{"pending", "confirmed"}, fd.Values)
	assert.True(t, fd.HasValue("pending"))
	assert.False(t, fd.HasValue("PENDING"))

	fd = field.Enum("status").Descriptor()
	assert.EqualError(t, fd.Err, `enum field "status" has no values`)
}

func TestBuilderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fd   *field.Descriptor
		err  string
	}{
		{"values_on_string", field.String("name").Values("a").Descriptor(), "values are only valid on enum fields, not string"},
		{"format_on_int", field.Int("count").Format(field.FormatUUID).Descriptor(), "format is only valid on string fields, not int"},
		{"json_id", field.JSON("doc").ID().Descriptor(), "json field cannot be an identifier"},
		{"bool_id", field.Bool("flag").ID().Descriptor(), "bool field cannot be an identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Error(t, tt.fd.Err)
			assert.Contains(t, tt.fd.Err.Error(), tt.err)
		})
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		kind      field.Kind
		name      string
		numeric   bool
		orderable bool
	}{
		{"string", field.KindString, "string", false, true},
		{"Integer", field.KindInt, "int", true, true},
		{"number", field.KindFloat, "float", true, true},
		{"boolean", field.KindBool, "bool", false, false},
		{"timestamp", field.KindTime, "datetime", false, true},
		{"json", field.KindJSON, "json", false, false},
		{"enum", field.KindEnum, "enum", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			k, err := field.ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, k)
			assert.Equal(t, tt.name, k.String())
			assert.Equal(t, tt.numeric, k.Numeric())
			assert.Equal(t, tt.orderable, k.Orderable())
		})
	}

	_, err := field.ParseKind("bytes")
	assert.EqualError(t, err, `unknown field kind "bytes"`)
	assert.Equal(t, "Kind(42)", field.Kind(42).String())
}
