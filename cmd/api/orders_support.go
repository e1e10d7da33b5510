package main

import (
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/bestbags/internal/config"
	"github.com/yourusername/bestbags/internal/orders"
)

// setupOrders は注文処理の非同期基盤（Redis状態ストアとAsynqワーカー）を組み立てます。
func setupOrders(cfg *config.Config, pool *pgxpool.Pool) (*orders.Manager, error) {
	opt, err := redis.ParseURL(cfg.QueueRedisURL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(opt)
	ttlMinutes := cfg.OrderStatusExpireMinutes
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	status := orders.NewStatusStore(redisClient, time.Duration(ttlMinutes)*time.Minute)
	store := orders.NewStore(pool)
	manager, err := orders.NewManager(cfg, store, status, log.Default())
	if err != nil {
		return nil, err
	}
	return manager, nil
}
