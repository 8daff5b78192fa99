// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/VictoriaMetrics/fastcache"
)

// FastCacheConfig holds fastcache configuration
type FastCacheConfig struct {
	MaxBytes int    // Maximum bytes for fastcache, default 32MB
	Path     string // snapshot directory, empty keeps the cache in memory only
}

// FastCache is a KV over VictoriaMetrics fastcache. When a snapshot path is
// configured every write is persisted with SaveToFile, and the cache is
// restored from it on start.
type FastCache struct {
	mu    sync.Mutex
	cache *fastcache.Cache
	path  string
}

const defaultFastCacheMaxBytes = 32 * 1024 * 1024

// NewFastCache creates a FastCache, loading the snapshot at conf.Path if any.
func NewFastCache(conf FastCacheConfig) (*FastCache, error) {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultFastCacheMaxBytes
	}

	fc := &FastCache{path: conf.Path}
	if conf.Path == "" {
		fc.cache = fastcache.New(maxBytes)
		return fc, nil
	}

	if err := os.MkdirAll(conf.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create fastcache dir %s: %w", conf.Path, err)
	}
	fc.cache = fastcache.LoadFromFileOrNew(conf.Path, maxBytes)
	return fc, nil
}

// Get returns the value for the given key.
func (fc *FastCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	// 值可能超过 64KB，统一使用 Big 接口
	value := fc.cache.GetBig(nil, []byte(key))
	if len(value) == 0 {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores value under key and persists the snapshot.
func (fc *FastCache) Set(_ context.Context, key string, value []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.cache.SetBig([]byte(key), value)
	return fc.persist()
}

// Del deletes the given keys and persists the snapshot.
func (fc *FastCache) Del(_ context.Context, keys ...string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	for _, key := range keys {
		fc.cache.Del([]byte(key))
	}
	return fc.persist()
}

// Close writes a final snapshot and releases the cache memory.
func (fc *FastCache) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	err := fc.persist()
	fc.cache.Reset()
	return err
}

func (fc *FastCache) persist() error {
	if fc.path == "" {
		return nil
	}
	if err := fc.cache.SaveToFile(fc.path); err != nil {
		return fmt.Errorf("save fastcache snapshot: %w", err)
	}
	return nil
}
