package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/example/rideflow/internal/models"
)

// Fixed storage keys, shared by every persister.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var ErrCorrupt = errors.New("persisted session is corrupt")

// Persister stores the session so it survives a restart. Load reports
// ok=false when nothing is stored.
type Persister interface {
	Load(ctx context.Context) (models.Session, bool, error)
	Save(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// FilePersister keeps the session in a small JSON document with the keys
// "token" and "user".
type FilePersister struct {
	Path string
}

func (f FilePersister) Load(ctx context.Context) (models.Session, bool, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, err
	}
	var s models.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return models.Session{}, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return s, true, nil
}

func (f FilePersister) Save(ctx context.Context, s models.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (f FilePersister) Clear(ctx context.Context) error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisPersister stores token and user under <prefix>token and <prefix>user,
// written and removed in one transaction so the two never diverge.
type RedisPersister struct {
	client *redis.Client
	prefix string
}

func NewRedisPersister(client *redis.Client, prefix string) *RedisPersister {
	return &RedisPersister{client: client, prefix: prefix}
}

func (r *RedisPersister) key(k string) string { return r.prefix + k }

func (r *RedisPersister) Load(ctx context.Context) (models.Session, bool, error) {
	vals, err := r.client.MGet(ctx, r.key(KeyToken), r.key(KeyUser)).Result()
	if err != nil {
		return models.Session{}, false, err
	}
	token, _ := vals[0].(string)
	user, _ := vals[1].(string)
	if token == "" || user == "" {
		return models.Session{}, false, nil
	}
	var id models.Identity
	if err := json.Unmarshal([]byte(user), &id); err != nil {
		return models.Session{}, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return models.Session{Identity: id, Token: token}, true, nil
}

func (r *RedisPersister) Save(ctx context.Context, s models.Session) error {
	user, err := json.Marshal(s.Identity)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(KeyToken), s.Token, 0)
		p.Set(ctx, r.key(KeyUser), user, 0)
		return nil
	})
	return err
}

func (r *RedisPersister) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key(KeyToken), r.key(KeyUser)).Err()
}

// MemoryPersister keeps the session for the life of the process only.
type MemoryPersister struct {
	mu sync.Mutex
	s  *models.Session
}

func (m *MemoryPersister) Load(ctx context.Context) (models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return models.Session{}, false, nil
	}
	return *m.s, true, nil
}

func (m *MemoryPersister) Save(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	m.s = &s
	m.mu.Unlock()
	return nil
}

func (m *MemoryPersister) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.s = nil
	m.mu.Unlock()
	return nil
}
