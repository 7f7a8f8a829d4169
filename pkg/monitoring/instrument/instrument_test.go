package instrument

import (
	"math"
	"testing"

	"monicore/pkg/monitoring/models"
	"monicore/pkg/monitoring/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	reg := storage.NewRegistry()
	c := NewCounter(reg, "requests")
	c.Inc(map[string]string{"path": "/a"})
	c.Add(2.5, nil)
	c.Add(-1, nil)
	c.Add(math.NaN(), nil)

	got := reg.Query("requests")
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Value)
	assert.Equal(t, "/a", got[0].Labels["path"])
	assert.Equal(t, 2.5, got[1].Value)
	assert.Equal(t, models.KindCounter, got[1].Kind)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestGauge(t *testing.T) {
	reg := storage.NewRegistry()
	g := NewGauge(reg, "conns")
	g.Set(10, nil)
	g.Inc(nil)
	g.Dec(nil)

	got := reg.Query("conns")
	require.Len(t, got, 3)
	assert.Equal(t, []float64{10, 1, -1}, []float64{got[0].Value, got[1].Value, got[2].Value})

	latest, ok := reg.Latest("conns")
	require.True(t, ok)
	assert.Equal(t, -1.0, latest.Value)
	assert.Equal(t, models.KindGauge, latest.Kind)
}

func TestHistogramAndSummary(t *testing.T) {
	reg := storage.NewRegistry()
	NewHistogram(reg, "latency").Observe(0.2, nil)
	NewSummary(reg, "size").Observe(512, nil)

	h, ok := reg.Latest("latency")
	require.True(t, ok)
	assert.Equal(t, models.KindHistogram, h.Kind)

	s, ok := reg.Latest("size")
	require.True(t, ok)
	assert.Equal(t, models.KindSummary, s.Kind)
	assert.Equal(t, 512.0, s.Value)
}

func TestEmptyNameIsNoop(t *testing.T) {
	reg := storage.NewRegistry()
	NewCounter(reg, "").Inc(nil)
	NewGauge(reg, "").Set(1, nil)
	NewHistogram(nil, "x").Observe(1, nil)

	assert.Empty(t, reg.Names())
	assert.Equal(t, int64(0), reg.Dropped())
}
