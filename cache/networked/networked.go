// Package networked 提供基于 redis 的远程缓存后端
package networked

import (
	"context"
	stdErrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"goeasy/errors"
	"goeasy/logging"
)

// client 抽象后端使用到的 redis 命令，便于替换实现
type client interface {
	redis.Scripter
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	SetXX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Close() error
}

// incrIfExists 仅当键存在时 INCRBY，否则返回 nil
var incrIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return redis.call('INCRBY', KEYS[1], ARGV[1])
end
return false
`)

const (
	maxSeedAttempts = 3
	scanBatch       = 500
)

// Config 远程后端配置
type Config struct {
	// Client 可选：复用外部创建的客户端，此时 Close 不关闭它
	Client redis.UniversalClient

	Addr     string
	Username string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger logging.Logger
}

// Backend 远程缓存后端
type Backend struct {
	client client
	owned  bool
	logger logging.Logger
}

// New 创建远程后端并检查连通性
func New(cfg Config) (*Backend, error) {
	var (
		c     client = cfg.Client
		owned bool
	)
	if cfg.Client == nil {
		if cfg.Addr == "" {
			return nil, errors.NewError(errors.ErrCodeConfiguration, "redis address is required")
		}
		c = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
		owned = true
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.ComponentLogger("cache.networked")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		if owned {
			_ = c.Close()
		}
		return nil, errors.WrapError(err, errors.ErrCodeCache, "cannot connect to redis")
	}

	return &Backend{client: c, owned: owned, logger: logger}, nil
}

// Name 后端名称
func (b *Backend) Name() string { return "networked" }

func checkTTL(key string, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.Newf(errors.ErrCodeInvalidInput, "ttl for key %q must be positive, got %s", key, ttl)
	}
	return nil
}

// Add SET NX EX
func (b *Backend) Add(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := checkTTL(key, ttl); err != nil {
		return false, err
	}
	payload, err := encode(value)
	if err != nil {
		return false, err
	}
	return b.client.SetNX(ctx, key, payload, ttl).Result()
}

// Set SET EX
func (b *Backend) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := checkTTL(key, ttl); err != nil {
		return err
	}
	payload, err := encode(value)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, key, payload, ttl).Err()
}

// Replace SET XX EX
func (b *Backend) Replace(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := checkTTL(key, ttl); err != nil {
		return false, err
	}
	payload, err := encode(value)
	if err != nil {
		return false, err
	}
	return b.client.SetXX(ctx, key, payload, ttl).Result()
}

// Remove DEL；键不存在同样返回 true
func (b *Backend) Remove(ctx context.Context, key string) (bool, error) {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Get GET；redis.Nil 与空负载都视为未命中
func (b *Backend) Get(ctx context.Context, key string) (any, bool, error) {
	payload, err := b.client.Get(ctx, key).Bytes()
	if stdErrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return decode(payload)
}

// IncrBy 先尝试对已存在的键 INCRBY；不存在时用 seed 以 SET NX EX 初始化后重试。
// 并发首次使用时先写入者的初值生效，每次调用 seed 至多执行一次。
func (b *Backend) IncrBy(ctx context.Context, key string, delta int64, ttl time.Duration, seed func() int64) (int64, error) {
	if err := checkTTL(key, ttl); err != nil {
		return 0, err
	}

	var (
		seedValue int64
		seeded    bool
	)
	for attempt := 0; attempt < maxSeedAttempts; attempt++ {
		n, err := incrIfExists.Run(ctx, b.client, []string{key}, delta).Int64()
		if err == nil {
			return n, nil
		}
		if !stdErrors.Is(err, redis.Nil) {
			return 0, err
		}

		if !seeded {
			seedValue = seed()
			seeded = true
		}
		won, err := b.client.SetNX(ctx, key, strconv.FormatInt(seedValue, 10), ttl).Result()
		if err != nil {
			return 0, err
		}
		if !won {
			b.logger.Debug(ctx, "counter seeded concurrently", logging.String("key", key))
		}
	}
	return 0, errors.Newf(errors.ErrCodeCache, "counter %q vanished while seeding", key)
}

// Clear 以 SCAN MATCH prefix* 分批删除
func (b *Backend) Clear(ctx context.Context, prefix string) error {
	match := escapeGlob(prefix) + "*"
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := b.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			n, err := b.client.Del(ctx, keys...).Result()
			if err != nil {
				return err
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	b.logger.Debug(ctx, "networked cache cleared",
		logging.String("match", match),
		logging.Int64("removed", removed),
	)
	return nil
}

// Close 仅关闭自己创建的客户端
func (b *Backend) Close() error {
	if b.owned {
		return b.client.Close()
	}
	return nil
}

func escapeGlob(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
