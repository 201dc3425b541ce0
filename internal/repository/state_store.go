package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	fs "github.com/gta-invest/propertymap/internal/platform/firestore"
)

// State stores persist small JSON blobs (favorites, portfolio, settings)
// under a namespaced key. Load reports false when the key was never saved.

func namespaced(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}

// MemoryStateStore keeps encoded values in process.
type MemoryStateStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{values: map[string][]byte{}}
}

func (s *MemoryStateStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStateStore) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
	return nil
}

// RedisStateStore stores each key as a JSON string.
type RedisStateStore struct {
	client    *goredis.Client
	namespace string
}

func NewRedisStateStore(client *goredis.Client, namespace string) *RedisStateStore {
	return &RedisStateStore{client: client, namespace: namespace}
}

func (s *RedisStateStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.client.Get(ctx, namespaced(s.namespace, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStateStore) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}
	if err := s.client.Set(ctx, namespaced(s.namespace, key), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

type stateDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// FirestoreStateStore keeps one document per key in the user_state collection.
type FirestoreStateStore struct {
	client    *firestore.Client
	namespace string
}

func NewFirestoreStateStore(client *firestore.Client, namespace string) *FirestoreStateStore {
	return &FirestoreStateStore{client: client, namespace: namespace}
}

func (s *FirestoreStateStore) doc(key string) *firestore.DocumentRef {
	return s.client.Collection(fs.StateCollection).Doc(namespaced(s.namespace, key))
}

func (s *FirestoreStateStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	snap, err := s.doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get state %s: %w", key, err)
	}
	var d stateDoc
	if err := snap.DataTo(&d); err != nil {
		return false, fmt.Errorf("decode state doc %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(d.Value), dst); err != nil {
		return false, fmt.Errorf("decode state %s: %w", key, err)
	}
	return true, nil
}

func (s *FirestoreStateStore) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", key, err)
	}
	if _, err := s.doc(key).Set(ctx, stateDoc{Value: string(raw), UpdatedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("save state %s: %w", key, err)
	}
	return nil
}
