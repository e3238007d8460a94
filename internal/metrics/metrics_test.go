package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	require.NotNil(t, c)

	c.BytesCopiedTotal.Add(5)
	c.FilesCopiedTotal.Inc()
	c.ActiveTransfers.Set(2)
	c.VolumeEventsTotal.WithLabelValues("mount").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewWithNilRegistererDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil)
	})
}
