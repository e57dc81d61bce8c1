// Package cache 提供统一的键值缓存门面
//
// 设计原则：
// 1. 单一契约 - add/set/replace/remove/get/计数器/clear 与后端无关
// 2. 后端可插拔 - 进程内（embedded）与远程（networked）两种实现，启动时按配置选定
// 3. 显式注入 - *Cache 由启动代码构造后传递，不使用包级单例
// 4. 键前缀由门面统一添加，后端只看到完整键
package cache

import (
	"context"
	"fmt"
	"time"

	"goeasy/cache/embedded"
	"goeasy/cache/networked"
	"goeasy/errors"
	"goeasy/logging"
)

// Backend 缓存后端契约，键已由门面加上前缀
type Backend interface {
	// Name 后端名称
	Name() string

	// Add 仅当键不存在时写入
	Add(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)

	// Set 无条件写入
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Replace 仅当键已存在时写入
	Replace(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)

	// Remove 删除键，键不存在同样返回 true
	Remove(ctx context.Context, key string) (bool, error)

	// Get 读取，不存在或已过期返回 false
	Get(ctx context.Context, key string) (any, bool, error)

	// IncrBy 原子地增加 delta；键不存在时先用 seed 初始化
	IncrBy(ctx context.Context, key string, delta int64, ttl time.Duration, seed func() int64) (int64, error)

	// Clear 删除所有以 prefix 开头的键
	Clear(ctx context.Context, prefix string) error

	// Close 释放资源
	Close() error
}

// Cache 缓存门面
type Cache struct {
	backend Backend
	prefix  string
	ttl     time.Duration
	logger  logging.Logger
	metrics *Metrics
}

// Option 门面构造选项
type Option func(*Cache)

// WithLogger 指定日志
func WithLogger(l logging.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics 启用 prometheus 指标
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New 按配置选择后端并构造门面，后端在进程生命周期内不再切换
func New(cfg Config, opts ...Option) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	typ, _ := ParseType(string(cfg.Type))

	// 后端与门面共用 WithLogger 指定的日志
	resolved := &Cache{}
	for _, opt := range opts {
		opt(resolved)
	}
	backendLogger := func(name string) logging.Logger {
		if resolved.logger == nil {
			return nil
		}
		return resolved.logger.WithFields(logging.String("backend", name))
	}

	var (
		backend Backend
		err     error
	)
	switch typ {
	case TypeNetworked:
		backend, err = networked.New(networked.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.Database,
			Logger:   backendLogger(string(TypeNetworked)),
		})
	default:
		backend = embedded.New(embedded.Config{
			Capacity: cfg.Capacity,
			Logger:   backendLogger(string(TypeEmbedded)),
		})
	}
	if err != nil {
		return nil, err
	}

	return NewWithBackend(backend, cfg.Prefix, cfg.TimeToLive, opts...), nil
}

// NewWithBackend 使用已构造的后端创建门面
func NewWithBackend(backend Backend, prefix string, defaultTTL time.Duration, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		prefix:  prefix,
		ttl:     defaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.ComponentLogger("cache").WithFields(logging.String("backend", backend.Name()))
	}
	return c
}

// WriteOption 写操作选项
type WriteOption func(*writeOptions)

type writeOptions struct {
	ttl    time.Duration
	hasTTL bool
}

// WithTTL 为本次写入指定 TTL；未指定时使用门面默认 TTL
func WithTTL(ttl time.Duration) WriteOption {
	return func(o *writeOptions) {
		o.ttl = ttl
		o.hasTTL = true
	}
}

func (c *Cache) resolveTTL(opts []WriteOption) time.Duration {
	wo := writeOptions{}
	for _, opt := range opts {
		opt(&wo)
	}
	if !wo.hasTTL {
		return c.ttl
	}
	return wo.ttl
}

func (c *Cache) key(key string) string { return c.prefix + key }

// Add 仅当键不存在时写入，已存在返回 false
func (c *Cache) Add(ctx context.Context, key string, value any, opts ...WriteOption) (bool, error) {
	ok, err := c.backend.Add(ctx, c.key(key), value, c.resolveTTL(opts))
	if err != nil {
		c.observeError("add")
		return false, errors.WrapCacheError(ctx, err, "add", key)
	}
	return ok, nil
}

// Set 无条件写入
func (c *Cache) Set(ctx context.Context, key string, value any, opts ...WriteOption) error {
	if err := c.backend.Set(ctx, c.key(key), value, c.resolveTTL(opts)); err != nil {
		c.observeError("set")
		return errors.WrapCacheError(ctx, err, "set", key)
	}
	return nil
}

// Replace 仅当键已存在时写入
func (c *Cache) Replace(ctx context.Context, key string, value any, opts ...WriteOption) (bool, error) {
	ok, err := c.backend.Replace(ctx, c.key(key), value, c.resolveTTL(opts))
	if err != nil {
		c.observeError("replace")
		return false, errors.WrapCacheError(ctx, err, "replace", key)
	}
	return ok, nil
}

// Remove 删除键（幂等）
func (c *Cache) Remove(ctx context.Context, key string) (bool, error) {
	ok, err := c.backend.Remove(ctx, c.key(key))
	if err != nil {
		c.observeError("remove")
		return false, errors.WrapCacheError(ctx, err, "remove", key)
	}
	return ok, nil
}

// Get 读取原始值
func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	v, ok, err := c.backend.Get(ctx, c.key(key))
	if err != nil {
		c.observeError("get")
		return nil, false, errors.WrapCacheError(ctx, err, "get", key)
	}
	c.observeLookup(ok)
	return v, ok, nil
}

// IncrementAndGet 增加计数；键不存在时先用 supplier 的返回值初始化
func (c *Cache) IncrementAndGet(ctx context.Context, key string, by int64, supplier func() int64, opts ...WriteOption) (int64, error) {
	return c.incr(ctx, "increment", key, by, supplier, opts)
}

// DecrementAndGet 减少计数；键不存在时先用 supplier 的返回值初始化
func (c *Cache) DecrementAndGet(ctx context.Context, key string, by int64, supplier func() int64, opts ...WriteOption) (int64, error) {
	return c.incr(ctx, "decrement", key, -by, supplier, opts)
}

func (c *Cache) incr(ctx context.Context, op, key string, delta int64, supplier func() int64, opts []WriteOption) (int64, error) {
	if supplier == nil {
		supplier = func() int64 { return 0 }
	}
	n, err := c.backend.IncrBy(ctx, c.key(key), delta, c.resolveTTL(opts), supplier)
	if err != nil {
		c.observeError(op)
		return 0, errors.WrapCacheError(ctx, err, op, key)
	}
	return n, nil
}

// Clear 删除本门面前缀下的全部键
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.backend.Clear(ctx, c.prefix); err != nil {
		c.observeError("clear")
		return errors.WrapCacheError(ctx, err, "clear", c.prefix+"*")
	}
	c.logger.Info(ctx, "cache cleared", logging.String("prefix", c.prefix))
	return nil
}

// Close 关闭后端
func (c *Cache) Close() error { return c.backend.Close() }

// Prefix 返回键前缀
func (c *Cache) Prefix() string { return c.prefix }

// DefaultTTL 返回默认 TTL
func (c *Cache) DefaultTTL() time.Duration { return c.ttl }

// BackendName 返回后端名称
func (c *Cache) BackendName() string { return c.backend.Name() }

func (c *Cache) observeLookup(hit bool) {
	if c.metrics != nil {
		c.metrics.observeLookup(c.backend.Name(), hit)
	}
}

func (c *Cache) observeError(op string) {
	if c.metrics != nil {
		c.metrics.observeError(c.backend.Name(), op)
	}
}
