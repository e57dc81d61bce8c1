package cache

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"goeasy/errors"
)

// Supplier 在缓存未命中时计算值，同时给出该值的 TTL
type Supplier[T any] func(ctx context.Context) (T, time.Duration, error)

// GetAs 读取并转换为 T；类型不匹配返回带键名的转换错误
func GetAs[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := convert[T](key, raw)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// ComputeIfAbsent 命中直接返回；未命中调用 supplier 计算、写入并返回。
// 每次调用 supplier 至多执行一次，不对并发未命中去重。
func ComputeIfAbsent[T any](ctx context.Context, c *Cache, key string, supplier Supplier[T]) (T, error) {
	if v, ok, err := GetAs[T](ctx, c, key); err != nil || ok {
		return v, err
	}
	return compute(ctx, c, key, supplier)
}

// GetList 读取列表，逐个元素转换为 T
func GetList[T any](ctx context.Context, c *Cache, key string) ([]T, bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	list, err := convertList[T](key, raw)
	if err != nil {
		return nil, false, err
	}
	return list, true, nil
}

// ComputeListIfAbsent 列表版本的 ComputeIfAbsent
func ComputeListIfAbsent[T any](ctx context.Context, c *Cache, key string, supplier Supplier[[]T]) ([]T, error) {
	if v, ok, err := GetList[T](ctx, c, key); err != nil || ok {
		return v, err
	}
	return compute(ctx, c, key, supplier)
}

// GetMap 读取映射，逐个键值转换
func GetMap[K comparable, V any](ctx context.Context, c *Cache, key string) (map[K]V, bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	m, err := convertMap[K, V](key, raw)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// ComputeMapIfAbsent 映射版本的 ComputeIfAbsent
func ComputeMapIfAbsent[K comparable, V any](ctx context.Context, c *Cache, key string, supplier Supplier[map[K]V]) (map[K]V, error) {
	if v, ok, err := GetMap[K, V](ctx, c, key); err != nil || ok {
		return v, err
	}
	return compute(ctx, c, key, supplier)
}

func compute[T any](ctx context.Context, c *Cache, key string, supplier Supplier[T]) (T, error) {
	v, ttl, err := supplier(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.Set(ctx, key, v, WithTTL(ttl)); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

func castError(key string, raw any, target string, cause error) error {
	msg := "cannot cast cached value of key \"" + key + "\" to " + target
	if cause != nil {
		return errors.WrapError(cause, errors.ErrCodeCache, msg).
			WithContext("key", key).
			WithContext("actual", actualType(raw))
	}
	return errors.NewError(errors.ErrCodeCache, msg).
		WithContext("key", key).
		WithContext("actual", actualType(raw))
}

func actualType(raw any) string {
	if raw == nil {
		return "nil"
	}
	return reflect.TypeOf(raw).String()
}

// convert 先尝试直接断言；远程后端解码出的通用值再经 JSON 转换到目标类型
func convert[T any](key string, raw any) (T, error) {
	if v, ok := raw.(T); ok {
		return v, nil
	}
	var out T
	if raw == nil {
		return out, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return out, castError(key, raw, typeName[T](), err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, castError(key, raw, typeName[T](), err)
	}
	return out, nil
}

func convertList[T any](key string, raw any) ([]T, error) {
	if v, ok := raw.([]T); ok {
		return v, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, castError(key, raw, "[]"+typeName[T](), nil)
	}
	out := make([]T, rv.Len())
	for i := range out {
		v, err := convert[T](key, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func convertMap[K comparable, V any](key string, raw any) (map[K]V, error) {
	if v, ok := raw.(map[K]V); ok {
		return v, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map {
		return nil, castError(key, raw, "map["+typeName[K]()+"]"+typeName[V](), nil)
	}
	out := make(map[K]V, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := convertKey[K](key, iter.Key().Interface())
		if err != nil {
			return nil, err
		}
		v, err := convert[V](key, iter.Value().Interface())
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// convertKey JSON 对象的键总是字符串，数值型键需要从字符串内容解析
func convertKey[K comparable](key string, raw any) (K, error) {
	k, err := convert[K](key, raw)
	if err == nil {
		return k, nil
	}
	if s, ok := raw.(string); ok {
		var out K
		if json.Unmarshal([]byte(s), &out) == nil {
			return out, nil
		}
	}
	return k, err
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	return t.String()
}
