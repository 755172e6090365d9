package meta

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 元数据库配置
type Config struct {
	// Driver: "sqlite" (默认，单机) 或 "postgres" (共享部署)
	Driver string

	// DSN: sqlite 是文件路径 (例如 <dbRoot>/meta.db)，
	// postgres 是标准连接串
	DSN string
}

// DB 封装了 GORM 实例，作为元数据层的入口
type DB struct {
	conn *gorm.DB
}

// NewDB 初始化数据库连接并迁移表结构
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported meta driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// reflog 是旁路记录，SQL 日志静默
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to meta database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 连接池配置 (sqlite 下也无害)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("meta database ping failed: %w", err)
	}

	if err := db.AutoMigrate(&RefLog{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}

	return &DB{conn: db}, nil
}

// NewWithConn 用现成的 GORM 连接初始化 (依赖注入 / 单元测试用)
func NewWithConn(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) GetConn() *gorm.DB {
	return d.conn
}
