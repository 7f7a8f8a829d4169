// Package storage 实现进程内的指标注册表，每条序列按上限保留最近的数据点
package storage

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"monicore/pkg/monitoring/models"
)

// DefaultSeriesCap 每条序列默认保留的点数
const DefaultSeriesCap = 1000

// Option 注册表选项
type Option func(*Registry)

// WithSeriesCap 设置每条序列的上限，非正数使用默认值
func WithSeriesCap(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.cap = n
		}
	}
}

// WithClock 替换时钟，测试使用
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// series 固定容量的环形缓冲，写满后覆盖最旧的点
type series struct {
	mu    sync.Mutex
	buf   []models.MetricPoint
	start int
	size  int
}

func newSeries(capacity int) *series {
	return &series{buf: make([]models.MetricPoint, capacity)}
}

func (s *series) append(p models.MetricPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	capacity := len(s.buf)
	if s.size < capacity {
		s.buf[(s.start+s.size)%capacity] = p
		s.size++
		return
	}
	s.buf[s.start] = p
	s.start = (s.start + 1) % capacity
}

func (s *series) snapshot() []models.MetricPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MetricPoint, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = clonePoint(s.buf[(s.start+i)%len(s.buf)])
	}
	return out
}

func (s *series) latest() (models.MetricPoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size == 0 {
		return models.MetricPoint{}, false
	}
	return clonePoint(s.buf[(s.start+s.size-1)%len(s.buf)]), true
}

func (s *series) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Registry 指标注册表，并发安全
type Registry struct {
	mu      sync.RWMutex
	series  map[string]*series
	cap     int
	clock   func() time.Time
	dropped atomic.Int64
}

// NewRegistry 创建注册表
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		series: make(map[string]*series),
		cap:    DefaultSeriesCap,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record 写入一个点。没有名称或类型未知的点直接丢弃
func (r *Registry) Record(point models.MetricPoint) {
	if point.Name == "" || !point.Kind.Valid() {
		r.dropped.Add(1)
		return
	}
	if point.Timestamp.IsZero() {
		point.Timestamp = r.clock()
	}
	point = clonePoint(point)
	r.getOrCreate(point.Name).append(point)
}

func (r *Registry) getOrCreate(name string) *series {
	r.mu.RLock()
	s, ok := r.series[name]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.series[name]; ok {
		return s
	}
	s = newSeries(r.cap)
	r.series[name] = s
	return s
}

func (r *Registry) lookup(name string) *series {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.series[name]
}

// Query 按时间顺序返回一条序列的副本，未知名称返回空切片
func (r *Registry) Query(name string) []models.MetricPoint {
	s := r.lookup(name)
	if s == nil {
		return []models.MetricPoint{}
	}
	return s.snapshot()
}

// QueryAll 返回所有序列的点，序列之间的顺序不保证
func (r *Registry) QueryAll() []models.MetricPoint {
	r.mu.RLock()
	all := make([]*series, 0, len(r.series))
	for _, s := range r.series {
		all = append(all, s)
	}
	r.mu.RUnlock()

	out := make([]models.MetricPoint, 0)
	for _, s := range all {
		out = append(out, s.snapshot()...)
	}
	return out
}

// Latest 返回序列中最新的点
func (r *Registry) Latest(name string) (models.MetricPoint, bool) {
	s := r.lookup(name)
	if s == nil {
		return models.MetricPoint{}, false
	}
	return s.latest()
}

// Names 已有序列的名称，按字典序
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len 序列当前保存的点数
func (r *Registry) Len(name string) int {
	s := r.lookup(name)
	if s == nil {
		return 0
	}
	return s.len()
}

// Cap 每条序列的上限
func (r *Registry) Cap() int {
	return r.cap
}

// Dropped 被丢弃的无效点数量
func (r *Registry) Dropped() int64 {
	return r.dropped.Load()
}

func clonePoint(p models.MetricPoint) models.MetricPoint {
	if p.Labels != nil {
		labels := make(map[string]string, len(p.Labels))
		for k, v := range p.Labels {
			labels[k] = v
		}
		p.Labels = labels
	}
	return p
}
