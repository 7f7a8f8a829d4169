package config

import (
	"strings"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Mode     string `yaml:"mode"` // single | sentinel
	Host     string `yaml:"host"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func InitRDB(redisConfig RedisConfig) *redis.Client {
	if redisConfig.Mode == "" || redisConfig.Mode == "single" {
		return redis.NewClient(&redis.Options{
			Addr:     redisConfig.Host,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		})
	}

	return redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       "mymaster",
		SentinelAddrs:    strings.Split(redisConfig.Host, ","),
		Password:         redisConfig.Password,
		SentinelPassword: redisConfig.Password,
		DB:               redisConfig.DB,
	})
}

// InitCache rdb 为空时只使用进程内 TinyLFU。本地缓存不认单条 TTL，统一用 localTTL
func InitCache(rdb *redis.Client, localTTL time.Duration) *cache.Cache {
	if localTTL <= 0 {
		localTTL = time.Minute
	}
	opts := &cache.Options{
		LocalCache:   cache.NewTinyLFU(1000, localTTL),
		StatsEnabled: true,
	}
	if rdb != nil {
		opts.Redis = rdb
	}
	return cache.New(opts)
}
