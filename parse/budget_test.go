package parse

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxq"
)

func TestStateBudget(t *testing.T) {
	t.Parallel()
	s := &state{p: &Parser{cfg: &Config{MaxDepth: 2, MaxNodes: 2}}, entity: "Trip"}

	require.NoError(t, s.enter("where"))
	require.NoError(t, s.enter("where.AND[0]"))
	err := s.enter("where.AND[0].OR[0]")
	require.ErrorIs(t, err, veloxq.ErrDepthOrSizeExceeded)
	var verr *veloxq.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Trip", verr.Entity)
	assert.Equal(t, "where.AND[0].OR[0]", verr.Path)

	s.leave()
	s.leave()
	assert.Equal(t, 1, s.depth)
	require.NoError(t, s.enter("where.OR[0]"))

	require.NoError(t, s.node("a"))
	require.NoError(t, s.node("b"))
	assert.ErrorIs(t, s.node("c"), veloxq.ErrDepthOrSizeExceeded)
}

func TestForeignOp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		key  string
		want bool
	}{
		{"string_contains", true},
		{"array_starts_with", true},
		{"path", true},
		{"some", true},
		{"every", true},
		{"none", true},
		{"is", true},
		{"isNot", true},
		{"has", false},
		{"like", false},
		{"increment", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, foreignOp(tt.key))
		})
	}
}

func TestNewMetricsReuse(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()

	first, err := newMetrics(reg)
	require.NoError(t, err)
	second, err := newMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, first.total, second.total)
	assert.Same(t, first.rejections, second.rejections)
	assert.Same(t, first.duration, second.duration)

	other := prometheus.NewRegistry()
	other.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "veloxq_parse_rejections_total",
		Help: "rejections",
	}))
	_, err = newMetrics(other)
	require.Error(t, err)
}
