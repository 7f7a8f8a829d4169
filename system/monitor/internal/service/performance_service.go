package service

import (
	"context"
	"fmt"
	"time"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/core/logger"
	"monicore/pkg/monitoring/models"

	"github.com/go-redis/cache/v9"
)

// Summarizer 性能汇总来源
type Summarizer interface {
	Summarize(tenantID string, windowHours float64) (*models.PerformanceMetrics, error)
}

// PerformanceService 带短期缓存的性能汇总
type PerformanceService struct {
	summarizer Summarizer
	cache      *cache.Cache
	ttl        time.Duration
	log        *logger.Log
	err        *errorc.ErrorBuilder
}

// NewPerformanceService cache 为 nil 或 ttl <= 0 时每次都重新计算
func NewPerformanceService(summarizer Summarizer, c *cache.Cache, ttl time.Duration, log *logger.Log) *PerformanceService {
	return &PerformanceService{
		summarizer: summarizer,
		cache:      c,
		ttl:        ttl,
		log:        log.WithEntryName("PerformanceService"),
		err:        errorc.NewErrorBuilder("PerformanceService"),
	}
}

func (s *PerformanceService) Summarize(ctx context.Context, tenantID string, windowHours float64) (*models.PerformanceMetrics, error) {
	if s.cache == nil || s.ttl <= 0 {
		return s.summarizer.Summarize(tenantID, windowHours)
	}

	var out models.PerformanceMetrics
	err := s.cache.Once(&cache.Item{
		Ctx:   ctx,
		Key:   performanceKey(tenantID, windowHours),
		Value: &out,
		TTL:   s.ttl,
		Do: func(*cache.Item) (interface{}, error) {
			return s.summarizer.Summarize(tenantID, windowHours)
		},
	})
	if err != nil {
		if errorc.IsValid(err) {
			return nil, err
		}
		// 缓存层故障时直接计算
		s.log.WithErr(err).Warn("读取性能汇总缓存失败")
		return s.summarizer.Summarize(tenantID, windowHours)
	}
	return &out, nil
}

func performanceKey(tenantID string, windowHours float64) string {
	return fmt.Sprintf("monitor:performance:%s:%g", tenantID, windowHours)
}
