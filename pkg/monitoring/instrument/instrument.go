// Package instrument 提供写入注册表的计数器、仪表盘、直方图和摘要
package instrument

import (
	"math"

	"monicore/pkg/monitoring/models"
)

// Recorder 指标写入端，*storage.Registry 满足该接口
type Recorder interface {
	Record(point models.MetricPoint)
}

type base struct {
	name string
	kind models.MetricKind
	rec  Recorder
}

func (b base) write(value float64, labels map[string]string) {
	if b.name == "" || b.rec == nil {
		return
	}
	b.rec.Record(models.MetricPoint{
		Name:   b.name,
		Value:  value,
		Labels: labels,
		Kind:   b.kind,
	})
}

// Counter 计数器，每次调用写一个增量点，不在内部累加
type Counter struct{ base }

func NewCounter(rec Recorder, name string) *Counter {
	return &Counter{base{name: name, kind: models.KindCounter, rec: rec}}
}

// Inc 写入增量 1
func (c *Counter) Inc(labels map[string]string) {
	c.write(1, labels)
}

// Add 写入增量，负数和非有限值被丢弃
func (c *Counter) Add(value float64, labels map[string]string) {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	c.write(value, labels)
}

// Gauge 仪表盘，当前值即最新的点
type Gauge struct{ base }

func NewGauge(rec Recorder, name string) *Gauge {
	return &Gauge{base{name: name, kind: models.KindGauge, rec: rec}}
}

func (g *Gauge) Set(value float64, labels map[string]string) {
	g.write(value, labels)
}

// Inc 写入 +1 的点
func (g *Gauge) Inc(labels map[string]string) {
	g.write(1, labels)
}

// Dec 写入 -1 的点
func (g *Gauge) Dec(labels map[string]string) {
	g.write(-1, labels)
}

// Histogram 每次观测写一个点
type Histogram struct{ base }

func NewHistogram(rec Recorder, name string) *Histogram {
	return &Histogram{base{name: name, kind: models.KindHistogram, rec: rec}}
}

func (h *Histogram) Observe(value float64, labels map[string]string) {
	h.write(value, labels)
}

type Summary struct{ base }

func NewSummary(rec Recorder, name string) *Summary {
	return &Summary{base{name: name, kind: models.KindSummary, rec: rec}}
}

func (s *Summary) Observe(value float64, labels map[string]string) {
	s.write(value, labels)
}
