package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/utils"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisSession keeps per chat dashboard state (purchases, reminder) between updates.
type RedisSession struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisSession(redisClient *redis.Client, cfg *config.Config) *RedisSession {
	return &RedisSession{redis: redisClient, cfg: cfg}
}

func (r *RedisSession) GetSession(ctx context.Context, key string) (model.Session, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetSession start", slog.String("rqID", rqID), slog.String("key", key))

	res, err := r.redis.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return model.Session{}, err
	}

	chatSession := model.Session{}
	err = json.Unmarshal([]byte(res), &chatSession)
	if err != nil {
		slog.Error(
			"can't unmarshall session",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Session{}, fmt.Errorf("can't unmarshall session: %w", err)
	}

	slog.Debug("GetSession finished", slog.String("rqID", rqID))

	return chatSession, nil
}

func (r *RedisSession) SetSession(ctx context.Context, key string, chatSession model.Session) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetSession start", slog.String("rqID", rqID), slog.String("key", key))

	sessionJson, err := json.Marshal(chatSession)
	if err != nil {
		slog.Error("can't marshall session", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.Any("session", chatSession))
		return fmt.Errorf("can't marshall session: %w", err)
	}

	err = r.redis.Set(ctx, keyPrefix+key, sessionJson, r.cfg.SessionExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	slog.Debug("SetSession finished", slog.String("rqID", rqID))

	return nil
}
