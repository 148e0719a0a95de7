package redis_manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pagebind/pagebind/internal/manifest"
	"github.com/redis/go-redis/v9"
)

// Store keeps each workspace manifest as a JSON array under a single
// key with a sliding TTL, so abandoned workspaces age out on their own.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisManifestStore(client *redis.Client, ttl time.Duration) manifest.Store {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(workspaceID string) string {
	return fmt.Sprintf("workspace:%s:images", workspaceID)
}

func (store *Store) Append(ctx context.Context, workspaceID string, names []string) error {
	k := key(workspaceID)
	cur := []string{}
	val, err := store.client.Get(ctx, k).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read manifest %s: %w", workspaceID, err)
	}
	if err == nil {
		if err := json.Unmarshal([]byte(val), &cur); err != nil {
			return fmt.Errorf("decode manifest %s: %w", workspaceID, err)
		}
	}
	cur = append(cur, names...)
	data, _ := json.Marshal(cur)
	if err := store.client.Set(ctx, k, data, store.ttl).Err(); err != nil {
		return fmt.Errorf("write manifest %s: %w", workspaceID, err)
	}
	return nil
}

func (store *Store) Read(ctx context.Context, workspaceID string) ([]string, bool, error) {
	val, err := store.client.Get(ctx, key(workspaceID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read manifest %s: %w", workspaceID, err)
	}
	var names []string
	if err := json.Unmarshal([]byte(val), &names); err != nil {
		return nil, false, fmt.Errorf("decode manifest %s: %w", workspaceID, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, true, nil
}

func (store *Store) Clear(ctx context.Context, workspaceID string) error {
	if err := store.client.Del(ctx, key(workspaceID)).Err(); err != nil {
		return fmt.Errorf("clear manifest %s: %w", workspaceID, err)
	}
	return nil
}
