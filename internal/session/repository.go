package session

import "context"

// Repository is the durable key-value contract for wizard state.
// Implementations are namespaced per project/task; there is no
// cross-writer coordination (single active wizard assumed).
type Repository interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, projectID, taskID string) (*State, bool, error)
	Delete(ctx context.Context, projectID, taskID string) error
}
