package networked

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeasy/errors"
	"goeasy/logging"
)

func newTestBackend(t *testing.T) (*Backend, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	b, err := New(Config{Addr: s.Addr(), Logger: logging.NewNoopLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, s
}

// TestNew_Unreachable 连接失败返回缓存错误
func TestNew_Unreachable(t *testing.T) {
	_, err := New(Config{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeCache))

	_, err = New(Config{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))
}

// TestNew_SharedClient 外部客户端不会被 Close 关闭
func TestNew_SharedClient(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	b, err := New(Config{Client: rdb})
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.NoError(t, rdb.Ping(context.Background()).Err())
}

// TestBackend_SetGet 测试读写与 JSON 编码
func TestBackend_SetGet(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "n", 42, time.Minute))
	raw, err := s.Get("n")
	require.NoError(t, err)
	assert.Equal(t, "42", raw)

	v, ok, err := b.Get(ctx, "n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	require.NoError(t, b.Set(ctx, "m", map[string]any{"name": "tom", "age": 3}, time.Minute))
	v, ok, err = b.Get(ctx, "m")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, map[string]any{"name": "tom", "age": int64(3)}, v)

	_, ok, err = b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestBackend_NilValue nil 写入后读取视为未命中
func TestBackend_NilValue(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "nil", nil, time.Minute))
	_, ok, err := b.Get(ctx, "nil")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestBackend_TTLRequired 远程后端不接受非正 TTL
func TestBackend_TTLRequired(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	err := b.Set(ctx, "k", 1, 0)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))
	_, err = b.Add(ctx, "k", 1, -time.Second)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))
	_, err = b.IncrBy(ctx, "k", 1, 0, func() int64 { return 0 })
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))
	assert.False(t, s.Exists("k"))
}

// TestBackend_Expiry 过期后读取不到
func TestBackend_Expiry(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "k", "v", 10*time.Second))
	assert.Equal(t, 10*time.Second, s.TTL("k"))

	s.FastForward(11 * time.Second)
	_, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestBackend_AddReplace SET NX / SET XX 语义
func TestBackend_AddReplace(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	ok, err := b.Replace(ctx, "k", 0, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = b.Add(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Add(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = b.Replace(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	v, _, _ := b.Get(ctx, "k")
	assert.Equal(t, int64(3), v)
}

// TestBackend_Remove 删除幂等
func TestBackend_Remove(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "k", "v", time.Minute))
	ok, err := b.Remove(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, s.Exists("k"))

	ok, err = b.Remove(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestBackend_IncrBy 首次使用 seed 初始化，之后直接 INCRBY
func TestBackend_IncrBy(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	calls := 0
	seed := func() int64 { calls++; return 10 }

	n, err := b.IncrBy(ctx, "c", 5, time.Minute, seed)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)
	assert.Equal(t, time.Minute, s.TTL("c"))

	n, err = b.IncrBy(ctx, "c", 5, time.Minute, seed)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)
	assert.Equal(t, 1, calls)

	n, err = b.IncrBy(ctx, "c", -25, time.Minute, seed)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), n)

	v, ok, err := b.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(-5), v)
}

// TestBackend_IncrByConcurrent 并发首次计数只初始化一次，所有增量都生效
func TestBackend_IncrByConcurrent(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.IncrBy(ctx, "hits", 1, time.Minute, func() int64 { return 10 })
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	raw, err := s.Get("hits")
	require.NoError(t, err)
	assert.Equal(t, "60", raw)
	assert.Equal(t, time.Minute, s.TTL("hits"))
}

// TestBackend_IncrByExisting 对 Set 写入的整数计数
func TestBackend_IncrByExisting(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "c", 100, time.Minute))
	n, err := b.IncrBy(ctx, "c", 1, time.Minute, func() int64 {
		t.Fatal("seed must not be called")
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), n)

	require.NoError(t, b.Set(ctx, "s", "text", time.Minute))
	_, err = b.IncrBy(ctx, "s", 1, time.Minute, func() int64 { return 0 })
	assert.Error(t, err)
}

// TestBackend_Clear 只删除指定前缀的键
func TestBackend_Clear(t *testing.T) {
	b, s := newTestBackend(t)
	ctx := context.Background()

	for _, k := range []string{"a_1", "a_2", "a_3", "b_1"} {
		require.NoError(t, b.Set(ctx, k, k, time.Minute))
	}
	require.NoError(t, s.Set("other", "x"))

	require.NoError(t, b.Clear(ctx, "a_"))
	assert.ElementsMatch(t, []string{"b_1", "other"}, s.Keys())
}

// TestEscapeGlob 前缀中的通配符被转义
func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `easy_`, escapeGlob("easy_"))
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
}
