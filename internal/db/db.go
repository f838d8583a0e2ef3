package db

import (
	"fmt"

	"geo-news/internal/article"
	"geo-news/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	conn, err := Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	DB = conn
	zap.L().Named("db").Info("database connected and migrated", zap.String("driver", cfg.Database.Driver))
	return nil
}

// Open connects with the named driver and migrates the article tables.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := conn.AutoMigrate(&article.Article{}, &article.ScrapeRun{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}
