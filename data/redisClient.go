package data

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

func redisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// NewRedisClient connects to the session store and panics if it is unreachable:
// the bot can't keep purchases or reminder state without it.
func NewRedisClient(cfg *config.Config) *redis.Client {
	opts := redisOptions(cfg)
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	pong, err := rdb.Ping(ctx).Result()
	if err != nil {
		slog.Error("Error while connecting Redis", slog.String("addr", opts.Addr), slog.String("error", err.Error()))
		panic(err)
	}
	slog.Info("Redis connected", slog.String("addr", opts.Addr), slog.String("pong", pong), slog.Int("db", opts.DB))

	return rdb
}
