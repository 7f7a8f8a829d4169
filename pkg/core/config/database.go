package config

import (
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Database struct {
	// Driver mysql | postgres，为空时不连接数据库，告警定义保存在内存
	Driver       string `yaml:"driver" json:"driver,omitempty"`
	Host         string `yaml:"host" json:"host,omitempty"`
	Port         int64  `yaml:"port" json:"port,omitempty"`
	User         string `yaml:"user" json:"user,omitempty"`
	Password     string `yaml:"password" json:"password,omitempty"`
	DbName       string `yaml:"db-name" json:"db-name,omitempty"`
	MaxIdleConns int    `yaml:"max-idle-conns" json:"max-idle-conns,omitempty"`
	MaxOpenConns int    `yaml:"max-open-conns" json:"max-open-conns,omitempty"`
	LogSQL       bool   `yaml:"log-sql" json:"log-sql,omitempty"`
}

func (d Database) Enabled() bool {
	return d.Driver != ""
}

// Open 按驱动类型建立连接并配置连接池
func Open(database Database) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch database.Driver {
	case "mysql":
		db, err = InitMysql(database)
	case "postgres", "pg":
		db, err = InitPg(database)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", database.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxIdle, maxOpen := database.MaxIdleConns, database.MaxOpenConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	if maxOpen <= 0 {
		maxOpen = 100
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func gormConfig(database Database) *gorm.Config {
	level := gormlogger.Warn
	if database.LogSQL {
		level = gormlogger.Info
	}
	return &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
}

func InitPg(database Database) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		database.Host, database.Port, database.User, database.DbName, database.Password)
	return gorm.Open(postgres.Open(dsn), gormConfig(database))
}

func InitMysql(database Database) (*gorm.DB, error) {
	cfg := mysqldriver.NewConfig()
	cfg.User = database.User
	cfg.Passwd = database.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", database.Host, database.Port)
	cfg.DBName = database.DbName
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	return gorm.Open(mysql.Open(cfg.FormatDSN()), gormConfig(database))
}
