package database

import (
	"context"
	"time"

	"github.com/chhengkhim/Junior-project-sub002/internal/pkg/config"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// InitRedis 初始化 Redis 连接，未配置地址时返回 nil
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		// 连接池配置，只用于限流计数
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   2,
		DialTimeout:  time.Second * 3,
		ReadTimeout:  time.Millisecond * 500,
		WriteTimeout: time.Millisecond * 500,
		PoolTimeout:  time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "connect redis %s", cfg.Addr)
	}
	return rdb, nil
}
