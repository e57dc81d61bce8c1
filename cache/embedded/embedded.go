// Package embedded 提供基于 sturdyc 的进程内缓存后端
//
// sturdyc 的过期时间按客户端（分区）配置，因此按 TTL 划分分区：
// 每个不同的 TTL 对应一个分区，另维护 key -> TTL 的索引用于定位分区。
package embedded

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"

	"goeasy/errors"
	"goeasy/logging"
)

// neverExpire TTL <= 0 的条目所在分区的过期时间
const neverExpire = time.Duration(math.MaxInt64)

// Config 进程内后端配置
type Config struct {
	// Capacity 每个分区的容量
	Capacity int
	// Shards 每个分区的分片数
	Shards int
	// EvictionPercentage 容量满时驱逐的比例
	EvictionPercentage int
	// EvictionInterval 过期条目的后台清理间隔
	EvictionInterval time.Duration
	// Clock 时钟，测试时可替换为 sturdyc.NewTestClock
	Clock sturdyc.Clock
	// Logger 日志
	Logger logging.Logger
}

func (c *Config) applyDefaults() {
	if c.Capacity <= 0 {
		c.Capacity = 10000
	}
	if c.Shards <= 0 {
		c.Shards = 10
	}
	if c.Shards > c.Capacity {
		c.Shards = c.Capacity
	}
	if c.EvictionPercentage <= 0 || c.EvictionPercentage > 100 {
		c.EvictionPercentage = 10
	}
	if c.EvictionInterval <= 0 {
		c.EvictionInterval = time.Minute
	}
	if c.Logger == nil {
		c.Logger = logging.ComponentLogger("cache.embedded")
	}
}

// Backend 进程内缓存后端
type Backend struct {
	cfg Config

	mu      sync.RWMutex
	buckets map[time.Duration]*sturdyc.Client[any]

	// index 记录每个键所在的 TTL 分区
	index *xsync.MapOf[string, time.Duration]

	// writeMu 串行化条件写与计数器
	writeMu sync.Mutex
}

// New 创建进程内后端
func New(cfg Config) *Backend {
	cfg.applyDefaults()
	return &Backend{
		cfg:     cfg,
		buckets: make(map[time.Duration]*sturdyc.Client[any]),
		index:   xsync.NewMapOf[string, time.Duration](),
	}
}

// Name 后端名称
func (b *Backend) Name() string { return "embedded" }

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return neverExpire
	}
	return ttl
}

func (b *Backend) bucket(ttl time.Duration) *sturdyc.Client[any] {
	b.mu.RLock()
	client, ok := b.buckets[ttl]
	b.mu.RUnlock()
	if ok {
		return client
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if client, ok = b.buckets[ttl]; ok {
		return client
	}
	opts := []sturdyc.Option{sturdyc.WithEvictionInterval(b.cfg.EvictionInterval)}
	if b.cfg.Clock != nil {
		opts = append(opts, sturdyc.WithClock(b.cfg.Clock))
	}
	client = sturdyc.New[any](b.cfg.Capacity, b.cfg.Shards, ttl, b.cfg.EvictionPercentage, opts...)
	b.buckets[ttl] = client
	return client
}

func checkSerializable(value any) error {
	if _, err := json.Marshal(value); err != nil {
		return errors.WrapError(err, errors.ErrCodeSerialization, "cache value is not serializable")
	}
	return nil
}

// load 读取键；过期条目会被同时从索引移除
func (b *Backend) load(key string) (any, bool) {
	ttl, ok := b.index.Load(key)
	if !ok {
		return nil, false
	}
	v, ok := b.bucket(ttl).Get(key)
	if !ok {
		// 只有索引仍指向同一分区时才移除，避免误删并发写入的新位置
		b.index.Compute(key, func(old time.Duration, loaded bool) (time.Duration, bool) {
			return old, !loaded || old == ttl
		})
		return nil, false
	}
	return v, true
}

func (b *Backend) store(key string, value any, ttl time.Duration) {
	ttl = normalizeTTL(ttl)
	if old, ok := b.index.Load(key); ok && old != ttl {
		b.bucket(old).Delete(key)
	}
	b.bucket(ttl).Set(key, value)
	b.index.Store(key, ttl)
}

func (b *Backend) write(ctx context.Context, op, key string, value any, ttl time.Duration) error {
	if err := checkSerializable(value); err != nil {
		b.cfg.Logger.Warn(ctx, "rejected cache write",
			logging.String("operation", op),
			logging.String("key", key),
			logging.Error(err),
		)
		return err
	}
	b.store(key, value, ttl)
	return nil
}

// Add 仅当键不存在时写入
func (b *Backend) Add(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if _, ok := b.load(key); ok {
		return false, nil
	}
	if err := b.write(ctx, "add", key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

// Set 无条件写入
func (b *Backend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return b.write(ctx, "set", key, value, ttl)
}

// Replace 仅当键已存在时写入
func (b *Backend) Replace(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if _, ok := b.load(key); !ok {
		return false, nil
	}
	if err := b.write(ctx, "replace", key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

// Remove 删除键，键不存在同样返回 true
func (b *Backend) Remove(_ context.Context, key string) (bool, error) {
	if ttl, ok := b.index.LoadAndDelete(key); ok {
		b.bucket(ttl).Delete(key)
	}
	return true, nil
}

// Get 读取键，不刷新过期时间
func (b *Backend) Get(_ context.Context, key string) (any, bool, error) {
	v, ok := b.load(key)
	return v, ok, nil
}

// IncrBy 计数器；sturdyc 不提供原子计数，所有计数操作共用一把锁。
// 已存在的计数保留在原分区，与远程后端 INCRBY 不改变 TTL 的行为一致。
func (b *Backend) IncrBy(ctx context.Context, key string, delta int64, ttl time.Duration, seed func() int64) (int64, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	var current int64
	if v, ok := b.load(key); ok {
		n, err := toInt64(v)
		if err != nil {
			return 0, errors.Newf(errors.ErrCodeCache, "value of key %q is not a counter", key).
				WithContext("actual", v)
		}
		current = n
		if old, ok := b.index.Load(key); ok {
			ttl = old
		}
	} else {
		current = seed()
	}

	next := current + delta
	b.store(key, next, ttl)
	return next, nil
}

// Clear 删除所有以 prefix 开头的键
func (b *Backend) Clear(ctx context.Context, prefix string) error {
	removed := 0
	b.index.Range(func(key string, ttl time.Duration) bool {
		if strings.HasPrefix(key, prefix) {
			b.index.Delete(key)
			b.bucket(ttl).Delete(key)
			removed++
		}
		return true
	})
	b.cfg.Logger.Debug(ctx, "embedded cache cleared",
		logging.String("prefix", prefix),
		logging.Int("removed", removed),
	)
	return nil
}

// Size 当前索引中的键数量（包含尚未被清理的过期键）
func (b *Backend) Size() int { return b.index.Size() }

// Buckets 当前 TTL 分区数量
func (b *Backend) Buckets() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.buckets)
}

// Close 进程内后端无需释放资源
func (b *Backend) Close() error { return nil }

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, errors.NewError(errors.ErrCodeCache, "counter overflow")
		}
		return int64(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int64(n), nil
		}
	}
	return 0, errors.NewError(errors.ErrCodeCache, "not an integer")
}
