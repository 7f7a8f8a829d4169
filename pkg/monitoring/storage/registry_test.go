package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"monicore/pkg/monitoring/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(name string, value float64) models.MetricPoint {
	return models.MetricPoint{Name: name, Value: value, Kind: models.KindGauge, Timestamp: time.Unix(int64(value), 0)}
}

func TestRegistry_RecordAndQuery(t *testing.T) {
	r := NewRegistry()
	r.Record(point("cpu", 1))
	r.Record(point("cpu", 2))
	r.Record(point("mem", 3))

	got := r.Query("cpu")
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Value)
	assert.Equal(t, 2.0, got[1].Value)
	assert.Equal(t, []string{"cpu", "mem"}, r.Names())
	assert.Len(t, r.QueryAll(), 3)
}

func TestRegistry_UnknownName(t *testing.T) {
	r := NewRegistry()
	got := r.Query("missing")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, ok := r.Latest("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len("missing"))
}

func TestRegistry_EvictsOldest(t *testing.T) {
	r := NewRegistry(WithSeriesCap(3))
	for i := 1; i <= 5; i++ {
		r.Record(point("x", float64(i)))
	}

	got := r.Query("x")
	require.Len(t, got, 3)
	assert.Equal(t, []float64{3, 4, 5}, []float64{got[0].Value, got[1].Value, got[2].Value})
	assert.Equal(t, 3, r.Len("x"))

	latest, ok := r.Latest("x")
	require.True(t, ok)
	assert.Equal(t, 5.0, latest.Value)
}

func TestRegistry_DefaultCap(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, DefaultSeriesCap, r.Cap())
	for i := 0; i < DefaultSeriesCap+10; i++ {
		r.Record(point("x", float64(i)))
	}
	assert.Equal(t, DefaultSeriesCap, r.Len("x"))
	assert.Equal(t, 10.0, r.Query("x")[0].Value)
}

func TestRegistry_DropsInvalidPoints(t *testing.T) {
	r := NewRegistry()
	r.Record(models.MetricPoint{Value: 1, Kind: models.KindGauge})
	r.Record(models.MetricPoint{Name: "x", Value: 1, Kind: "bogus"})

	assert.Empty(t, r.Names())
	assert.Equal(t, int64(2), r.Dropped())
}

func TestRegistry_StampsZeroTimestamp(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(WithClock(func() time.Time { return now }))
	r.Record(models.MetricPoint{Name: "x", Value: 1, Kind: models.KindCounter})

	got, ok := r.Latest("x")
	require.True(t, ok)
	assert.Equal(t, now, got.Timestamp)
}

func TestRegistry_LabelsAreCopied(t *testing.T) {
	r := NewRegistry()
	labels := map[string]string{"a": "1"}
	r.Record(models.MetricPoint{Name: "x", Value: 1, Kind: models.KindGauge, Labels: labels})
	labels["a"] = "changed"

	got := r.Query("x")
	assert.Equal(t, "1", got[0].Labels["a"])

	got[0].Labels["a"] = "mutated"
	again, _ := r.Latest("x")
	assert.Equal(t, "1", again.Labels["a"])
}

func TestRegistry_ConcurrentWriters(t *testing.T) {
	r := NewRegistry(WithSeriesCap(100))
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				r.Record(point(fmt.Sprintf("s%d", w%3), float64(i)))
				_ = r.Query("s0")
			}
		}(w)
	}
	wg.Wait()

	for _, name := range r.Names() {
		assert.Equal(t, 100, r.Len(name))
	}
}
