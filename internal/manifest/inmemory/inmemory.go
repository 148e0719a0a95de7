package inmemory

import (
	"context"
	"sync"

	"github.com/pagebind/pagebind/internal/manifest"
)

type Store struct {
	workspaces map[string][]string
	mu         sync.RWMutex
}

func NewInMemoryManifestStore() manifest.Store {
	return &Store{workspaces: make(map[string][]string)}
}

func (store *Store) Append(_ context.Context, workspaceID string, names []string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	cur, ok := store.workspaces[workspaceID]
	if !ok {
		cur = []string{}
	}
	store.workspaces[workspaceID] = append(cur, names...)
	return nil
}

func (store *Store) Read(_ context.Context, workspaceID string) ([]string, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	cur, ok := store.workspaces[workspaceID]
	if !ok {
		return nil, false, nil
	}
	out := make([]string, len(cur))
	copy(out, cur)
	return out, true, nil
}

func (store *Store) Clear(_ context.Context, workspaceID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.workspaces, workspaceID)
	return nil
}
