package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scenewatch/vision-backend/internal/pipeline"
	"github.com/scenewatch/vision-backend/internal/shared"
)

const statsTTL = 24 * time.Hour

// Store keeps per-session runtime stats in redis so they outlive the session
// object and can be inspected after a stream ends.
type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func key(sessionID string) string {
	return "live_session:" + sessionID
}

// Record satisfies pipeline.StatsSink. Writes are best effort; the caller
// logs failures and moves on.
func (s *Store) Record(ctx context.Context, st pipeline.SessionStats) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key(st.SessionID), data, statsTTL).Err()
}

func (s *Store) Get(ctx context.Context, sessionID string) (*pipeline.SessionStats, error) {
	data, err := s.redis.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var st pipeline.SessionStats
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
