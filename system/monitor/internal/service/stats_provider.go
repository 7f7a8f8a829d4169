package service

import (
	"context"
	"database/sql"

	"monicore/pkg/core/logger"
	"monicore/pkg/monitoring/models"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// BaseStatsProvider 提供进程级采样
type BaseStatsProvider interface {
	Sample(ctx context.Context) (*models.SystemStats, error)
}

// StatsProvider 在进程采样之上补充数据库连接池和缓存统计
type StatsProvider struct {
	base  BaseStatsProvider
	sqlDB *sql.DB
	rdb   *redis.Client
	cache *cache.Cache
	log   *logger.Log
}

// NewStatsProvider 除 base 外的依赖都可以为 nil，缺失的项保持 0
func NewStatsProvider(base BaseStatsProvider, sqlDB *sql.DB, rdb *redis.Client, c *cache.Cache, log *logger.Log) *StatsProvider {
	return &StatsProvider{
		base:  base,
		sqlDB: sqlDB,
		rdb:   rdb,
		cache: c,
		log:   log.WithEntryName("StatsProvider"),
	}
}

func (p *StatsProvider) Sample(ctx context.Context) (*models.SystemStats, error) {
	stats := &models.SystemStats{}
	if p.base != nil {
		s, err := p.base.Sample(ctx)
		if err != nil {
			p.log.WithErr(err).Warn("进程采样失败")
		} else if s != nil {
			stats = s
		}
	}

	if p.sqlDB != nil {
		db := p.sqlDB.Stats()
		stats.ActiveDBConnections = float64(db.InUse)
		stats.IdleDBConnections = float64(db.Idle)
		stats.OpenDBConnections = float64(db.OpenConnections)
		stats.DBWaitCount = float64(db.WaitCount)
	}

	if p.rdb != nil {
		pool := p.rdb.PoolStats()
		stats.CacheTotalConnections = float64(pool.TotalConns)
		stats.CacheIdleConnections = float64(pool.IdleConns)
	}

	if p.cache != nil {
		if cs := p.cache.Stats(); cs != nil {
			stats.CacheHitRate, stats.CacheMissRate = hitMissRate(cs.Hits, cs.Misses)
		}
	}
	return stats, nil
}

func hitMissRate(hits, misses uint64) (float64, float64) {
	total := hits + misses
	if total == 0 {
		return 0, 0
	}
	return float64(hits) / float64(total), float64(misses) / float64(total)
}
