package main

import (
	"fmt"
	"os"

	"geo-news/internal/api"
	"geo-news/internal/config"
	"geo-news/internal/db"
	"geo-news/internal/logger"
	redisdb "geo-news/internal/redis"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := db.Init(cfg); err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	rdb := redisdb.NewClient(cfg)
	if rdb == nil {
		log.Info("redis not configured, article cache disabled")
	}

	r := api.SetupRouter(cfg, rdb)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", zap.String("addr", addr), zap.String("subpath", cfg.Server.Subpath))
	if err := r.Run(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
