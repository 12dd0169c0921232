package kvtree

import (
	"context"
	"fmt"
	"time"

	pkgredis "github.com/ewhamarket/backend/pkg/redis"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported drivers
const (
	DriverRedis  = "redis"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver    string
	URL       string
	Namespace string
	PoolSize  int
}

// Open connects to the configured backend and verifies the connection.
func Open(ctx context.Context, opts Options) (Tree, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryTree(), nil

	case DriverRedis, "":
		client, err := pkgredis.NewClient(ctx, opts.URL, opts.PoolSize)
		if err != nil {
			return nil, err
		}
		return NewRedisTree(client, opts.Namespace), nil

	case DriverMySQL, DriverSQLite:
		var dialector gorm.Dialector
		if opts.Driver == DriverMySQL {
			dsn, err := mysqlDSN(opts.URL)
			if err != nil {
				return nil, err
			}
			dialector = mysql.Open(dsn)
		} else {
			dialector = sqlite.Open(opts.URL)
		}
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
		}
		if sqlDB, err := db.DB(); err == nil && opts.PoolSize > 0 {
			sqlDB.SetMaxOpenConns(opts.PoolSize)
			sqlDB.SetMaxIdleConns(opts.PoolSize / 2)
			sqlDB.SetConnMaxLifetime(time.Hour)
		}
		tree := NewSQLTree(db)
		if err := tree.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate tree_leaves: %w", err)
		}
		return tree, nil

	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
}

// mysqlDSN forces utf8mb4 so Korean titles and keys round-trip
func mysqlDSN(raw string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(raw)
	if err != nil {
		return "", fmt.Errorf("DSN 파싱 실패: %w", err)
	}
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["charset"] = "utf8mb4"
	cfg.Collation = "utf8mb4_bin"
	return cfg.FormatDSN(), nil
}
