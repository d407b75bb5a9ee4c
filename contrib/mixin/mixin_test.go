package mixin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxq/contrib/mixin"
	"github.com/syssam/veloxq/parse"
	"github.com/syssam/veloxq/registry"
	"github.com/syssam/veloxq/schema"
	"github.com/syssam/veloxq/schema/field"
)

func names(m schema.Mixin) []string {
	var out []string
	for _, f := range m.Fields() {
		out = append(out, f.Descriptor().Name)
	}
	return out
}

func TestMixinFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		mixin schema.Mixin
		want  []string
	}{
		{"schema", mixin.Schema{}, nil},
		{"create_time", mixin.CreateTime{}, []string{"created_at"}},
		{"update_time", mixin.UpdateTime{}, []string{"updated_at"}},
		{"time", mixin.Time{}, []string{"created_at", "updated_at"}},
		{"id", mixin.ID{}, []string{"id"}},
		{"soft_delete", mixin.SoftDelete{}, []string{"deleted_at"}},
		{"tenant_id", mixin.TenantID{}, []string{"tenant_id"}},
		{"time_soft_delete", mixin.TimeSoftDelete{}, []string{"created_at", "updated_at", "deleted_at"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, names(tt.mixin))
		})
	}
}

func TestMixinDescriptors(t *testing.T) {
	t.Parallel()

	t.Run("time_defaults", func(t *testing.T) {
		t.Parallel()
		for _, f := range (mixin.Time{}).Fields() {
			d := f.Descriptor()
			assert.Equal(t, field.KindTime, d.Kind)
			assert.True(t, d.Default, d.Name)
			assert.False(t, d.Required(), d.Name)
		}
	})
	t.Run("id_primary", func(t *testing.T) {
		t.Parallel()
		d := (mixin.ID{}).Fields()[0].Descriptor()
		assert.True(t, d.ID)
		assert.True(t, d.Unique)
		assert.Equal(t, field.FormatUUID, d.Format)
	})
	t.Run("soft_delete_nillable", func(t *testing.T) {
		t.Parallel()
		d := (mixin.SoftDelete{}).Fields()[0].Descriptor()
		assert.True(t, d.Nillable)
		assert.True(t, d.Optional)
	})
	t.Run("tenant_index", func(t *testing.T) {
		t.Parallel()
		idx := (mixin.TenantID{}).Indexes()
		require.Len(t, idx, 1)
		assert.Equal(t, []string{"tenant_id"}, idx[0].Descriptor().Fields)
		assert.False(t, idx[0].Descriptor().Unique)
		d := (mixin.TenantID{}).Fields()[0].Descriptor()
		assert.True(t, d.Required())
	})
}

func TestDefineWithMixins(t *testing.T) {
	t.Parallel()

	reg := registry.MustNew(
		schema.Define("Trip").
			Mixin(mixin.ID{}, mixin.TimeSoftDelete{}, mixin.TenantID{}).
			Fields(field.Int("passengers")).
			Entity(),
	)
	trip, err := reg.Entity("Trip")
	require.NoError(t, err)
	var got []string
	for _, f := range trip.Fields {
		got = append(got, f.Name)
	}
	assert.Equal(t, []string{"id", "created_at", "updated_at", "deleted_at", "tenant_id", "passengers"}, got)
	require.Len(t, trip.Indexes, 1)

	p, err := parse.New(reg)
	require.NoError(t, err)
	where, err := p.Where("Trip", map[string]any{"deleted_at": nil, "tenant_id": "acme"})
	require.NoError(t, err)
	assert.Equal(t, `(deleted_at == nil && tenant_id == "acme")`, where.String())

	ops, err := p.Create("Trip", map[string]any{"tenant_id": "acme", "passengers": 2})
	require.NoError(t, err)
	require.Len(t, ops, 2)
}
