// Package cache is a disk-backed key/value store with a fixed TTL.
// Entries are JSON files named by the MD5 hash of the key, each carrying
// the write timestamp alongside the payload.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type entry struct {
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type Store struct {
	dir string
	ttl time.Duration
	mu  sync.Mutex
	now func() time.Time
}

func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}, nil
}

func (s *Store) path(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

// Get unmarshals the cached payload into v. It returns false when the
// entry is absent, expired, or unreadable.
func (s *Store) Get(key string, v any) bool {
	s.mu.Lock()
	data, err := os.ReadFile(s.path(key))
	s.mu.Unlock()
	if err != nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	if s.now().Unix()-e.Timestamp > int64(s.ttl.Seconds()) {
		return false
	}
	return json.Unmarshal(e.Payload, v) == nil
}

func (s *Store) Set(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(entry{
		Timestamp: s.now().Unix(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
