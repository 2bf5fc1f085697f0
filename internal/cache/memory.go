package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// item 包装缓存数据和过期时间
type item struct {
	data      []byte
	expiresAt time.Time
}

// Memory 进程内 LRU 缓存，过期时间由注入的 Clock 判断
type Memory struct {
	lruCache *lru.Cache[string, item]
	clock    Clock
}

func NewMemory(size int, clock Clock) (*Memory, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Memory{lruCache: l, clock: clock}, nil
}

// Get 获取缓存，若不存在或已过期则返回 false
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := m.lruCache.Get(key)
	if !ok {
		return nil, false
	}

	if !m.clock.Now().Before(val.expiresAt) {
		m.lruCache.Remove(key)
		return nil, false
	}
	return val.data, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	data := make([]byte, len(value))
	copy(data, value)
	m.lruCache.Add(key, item{
		data:      data,
		expiresAt: m.clock.Now().Add(ttl),
	})
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.lruCache.Remove(key)
}

func (m *Memory) Clear(_ context.Context) {
	m.lruCache.Purge()
}
