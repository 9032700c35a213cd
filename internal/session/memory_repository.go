package session

import (
	"context"
	"encoding/json"

	"github.com/patrickmn/go-cache"
)

// MemoryRepository keeps wizard state in-process. Used for tests and
// dev setups without Redis; state does not survive a restart. Entries
// never expire on their own, mirroring the durable variant.
type MemoryRepository struct {
	cache *cache.Cache
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{cache: cache.New(cache.NoExpiration, 0)}
}

func (r *MemoryRepository) Save(_ context.Context, state *State) error {
	// Stored as JSON so callers can't mutate the persisted copy through
	// shared pointers, same as the Redis round trip.
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	r.cache.Set(sessionKey(state.ProjectID, state.TaskID), data, cache.NoExpiration)
	return nil
}

func (r *MemoryRepository) Load(_ context.Context, projectID, taskID string) (*State, bool, error) {
	x, found := r.cache.Get(sessionKey(projectID, taskID))
	if !found {
		return nil, false, nil
	}
	var state State
	if err := json.Unmarshal(x.([]byte), &state); err != nil {
		return nil, false, err
	}
	return &state, true, nil
}

func (r *MemoryRepository) Delete(_ context.Context, projectID, taskID string) error {
	r.cache.Delete(sessionKey(projectID, taskID))
	return nil
}
