package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_EveryFamilyHasHelp(t *testing.T) {
	r := NewRegistry()
	r.Requests.WithLabelValues("GET", "/sales", "200").Inc()
	r.RequestDuration.WithLabelValues("GET", "/sales").Observe(0.01)
	r.StorageErrors.WithLabelValues("connection").Inc()

	families, err := r.reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 3)
	for _, mf := range families {
		assert.NotEmpty(t, mf.GetHelp(), mf.GetName())
	}
}
