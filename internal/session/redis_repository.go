package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRepository persists wizard state in Redis so a gateway restart
// resumes mid-workflow. State is cleared explicitly by the user, never
// expired.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func sessionKey(projectID, taskID string) string {
	return fmt.Sprintf("qna:session:%s:%s", projectID, taskID)
}

func (r *RedisRepository) Save(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	return r.rdb.Set(ctx, sessionKey(state.ProjectID, state.TaskID), data, 0).Err()
}

func (r *RedisRepository) Load(ctx context.Context, projectID, taskID string) (*State, bool, error) {
	data, err := r.rdb.Get(ctx, sessionKey(projectID, taskID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &state, true, nil
}

func (r *RedisRepository) Delete(ctx context.Context, projectID, taskID string) error {
	return r.rdb.Del(ctx, sessionKey(projectID, taskID)).Err()
}
