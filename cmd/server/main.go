package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"collabboard-backend/internal/config"
	"collabboard-backend/internal/database"
	"collabboard-backend/internal/server"
)

func main() {
	// 설정 로드
	cfg := config.Load()

	// 데이터베이스 연결
	db, err := database.ConnectDB()
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		log.Fatalf("❌ Database ping failed: %v", err)
	}
	log.Printf("✅ Database connected successfully")

	// Redis 연결 (커서/프레즌스)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis connection failed: %v (cursors/presence will be degraded)", err)
	} else {
		log.Printf("✅ Redis connected (%s)", cfg.Redis.Addr)
	}
	defer rdb.Close()

	// 서버 생성 및 설정
	srv := server.New(cfg, db, rdb)
	srv.SetupMiddleware()
	srv.SetupRoutes()

	// 서버 시작
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
