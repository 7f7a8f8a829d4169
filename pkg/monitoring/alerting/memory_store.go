package alerting

import (
	"context"
	"sort"
	"sync"
	"time"

	"monicore/pkg/monitoring/models"
)

const maxHistoryPageSize = 200

// MemoryStore 内存实现的 AlertStore，未配置数据库时使用
type MemoryStore struct {
	mu      sync.RWMutex
	alerts  map[string]*models.Alert
	history []*models.AlertHistoryEvent
	clock   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alerts: make(map[string]*models.Alert),
		clock:  time.Now,
	}
}

var (
	_ AlertStore    = (*MemoryStore)(nil)
	_ AlertLister   = (*MemoryStore)(nil)
	_ HistoryReader = (*MemoryStore)(nil)
)

func (s *MemoryStore) LoadActiveAlerts(ctx context.Context) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.IsActive {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, errBuilder.NotFound("告警不存在: " + id)
	}
	return a.Clone(), nil
}

func (s *MemoryStore) Insert(ctx context.Context, alert *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[alert.ID]; ok {
		return errBuilder.New("告警ID已存在: "+alert.ID, nil).ValidWithCtx()
	}
	s.alerts[alert.ID] = alert.Clone()
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, update models.AlertUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return errBuilder.NotFound("告警不存在: " + id)
	}
	update.Apply(a)
	a.UpdatedAt = s.clock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[id]; !ok {
		return errBuilder.NotFound("告警不存在: " + id)
	}
	delete(s.alerts, id)
	return nil
}

func (s *MemoryStore) AppendHistory(ctx context.Context, event *models.AlertHistoryEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *event
	s.history = append(s.history, &e)
	return nil
}

// List 按创建时间排序
func (s *MemoryStore) List(ctx context.Context, tenantID string) ([]*models.Alert, error) {
	s.mu.RLock()
	out := make([]*models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if tenantID == "" || a.TenantID == tenantID {
			out = append(out, a.Clone())
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListHistory 最新的在前，pageNum 从 1 开始，每页最多 200 条
func (s *MemoryStore) ListHistory(ctx context.Context, alertID string, pageNum, size int) ([]*models.AlertHistoryEvent, int64, error) {
	s.mu.RLock()
	matched := make([]*models.AlertHistoryEvent, 0)
	for i := len(s.history) - 1; i >= 0; i-- {
		if alertID == "" || s.history[i].AlertID == alertID {
			e := *s.history[i]
			matched = append(matched, &e)
		}
	}
	s.mu.RUnlock()

	total := int64(len(matched))
	if pageNum < 1 {
		pageNum = 1
	}
	if size < 1 {
		size = 20
	}
	if size > maxHistoryPageSize {
		size = maxHistoryPageSize
	}
	// 先比较页数，避免 pageNum 过大时乘法溢出
	if pageNum-1 >= (len(matched)+size-1)/size {
		return []*models.AlertHistoryEvent{}, total, nil
	}
	start := (pageNum - 1) * size
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// DeleteHistoryBefore 删除早于 before 的历史
func (s *MemoryStore) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.history[:0]
	var removed int64
	for _, e := range s.history {
		if e.Timestamp.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.history = kept
	return removed, nil
}
