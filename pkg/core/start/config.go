package start

import (
	"fmt"
	"net"
	"time"

	"monicore/pkg/core/config"
	"monicore/pkg/core/logger"
	"monicore/pkg/core/security"
	"monicore/pkg/lock"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type Config struct {
	AppName  string               `yaml:"app-name"`
	Env      string               `yaml:"env"`
	Host     string               `yaml:"host"`
	Port     int                  `yaml:"port"`
	Version  string               `yaml:"version"`
	Log      config.LogConfig     `yaml:"log"`
	Jwt      config.JwtConfig     `yaml:"jwt"`
	Redis    config.RedisConfig   `yaml:"redis"`
	Database config.Database      `yaml:"database"`
	Monitor  config.MonitorConfig `yaml:"monitor"`
}

type Configures struct {
	Config    Config
	Logger    *logger.Log
	AdminAuth *security.AdminAuth
}

// ParseConfig 只解析配置，不初始化任何组件
func ParseConfig(file []byte, env string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if cfg.Host == "" {
		cfg.Host, _ = getLocalIP()
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	cfg.Monitor = cfg.Monitor.WithDefaults()
	return cfg, nil
}

func NewConfigures(file []byte, env string) *Configures {
	cfg, err := ParseConfig(file, env)
	if err != nil {
		panic(err)
	}

	c := &Configures{
		Config: cfg,
		Logger: logger.InitLogger(cfg.Log),
	}
	c.AdminAuth = c.EnableAdminAuth()
	return c
}

// getLocalIP 获取本机IP地址（优先获取内网IP）
func getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil && ipnet.IP.IsPrivate() {
			return ipnet.IP.String(), nil
		}
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String(), nil
		}
	}
	return "127.0.0.1", nil
}

func (c *Configures) EnableAdminAuth() *security.AdminAuth {
	expire := c.Config.Jwt.ExpireTime
	if expire <= 0 {
		expire = 1
	}
	return security.NewAdminAuth([]byte(c.Config.Jwt.AdminSecret), time.Duration(expire)*24*time.Hour)
}

// EnableRedis 未启用时返回 nil
func (c *Configures) EnableRedis() *redis.Client {
	if !c.Config.Redis.Enabled {
		return nil
	}
	return config.InitRDB(c.Config.Redis)
}

// EnableCache rdb 为 nil 时只有进程内缓存
func (c *Configures) EnableCache(rdb *redis.Client) *cache.Cache {
	ttl := c.Config.Monitor.PerformanceCacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return config.InitCache(rdb, ttl)
}

// EnableLeaderLock 调度器选主锁，未开启或没有 redis 时返回 nil
func (c *Configures) EnableLeaderLock(rdb *redis.Client) lock.DistributedLock {
	if rdb == nil || !c.Config.Monitor.LeaderLock {
		return nil
	}
	return lock.NewRedisLock(rdb, c.Config.AppName+":scheduler:leader", 30*time.Second)
}

// EnableDB 未配置数据库驱动时返回 nil
func (c *Configures) EnableDB() *gorm.DB {
	if !c.Config.Database.Enabled() {
		return nil
	}
	db, err := config.Open(c.Config.Database)
	if err != nil {
		c.Logger.WithField("database", c.Config.Database.Host).WithErr(err).Panic("连接数据库失败")
	}
	c.Logger.WithField("driver", c.Config.Database.Driver).Info("连接数据库成功")
	return db
}
