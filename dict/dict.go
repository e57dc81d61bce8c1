// Package dict 提供字典（码表）定义与基于缓存的查询。
//
// 字典元素在首次查询时整体写入缓存，键为 "dict_" 加字典名。
// 元素文本以 "@" 开头时视为消息键，读取时按请求语言翻译。
package dict

import (
	"context"
	"strings"
	"time"

	"goeasy/cache"
	"goeasy/errors"
	"goeasy/i18n"
	"goeasy/logging"
)

// KeyPrefix 字典缓存键前缀
const KeyPrefix = "dict_"

// Element 字典元素
type Element[V comparable] struct {
	Value V      `json:"value"`
	Text  string `json:"text"`
	Code  string `json:"code,omitempty"`
}

// Localize 返回文本已翻译的副本
func (e Element[V]) Localize(ctx context.Context) Element[V] {
	if key, ok := strings.CutPrefix(e.Text, "@"); ok {
		e.Text = i18n.T(ctx, key)
	}
	return e
}

// Type 字典类型，元素保持定义顺序
type Type[V comparable] struct {
	name     string
	elements []Element[V]
}

// NewType 定义字典类型；名称为空或元素值重复时 panic，字典应在包初始化时定义
func NewType[V comparable](name string, elements ...Element[V]) *Type[V] {
	if name == "" {
		panic("dict: empty type name")
	}
	seen := make(map[V]struct{}, len(elements))
	for _, e := range elements {
		if _, dup := seen[e.Value]; dup {
			panic("dict: duplicate element value in " + name)
		}
		seen[e.Value] = struct{}{}
	}
	return &Type[V]{name: name, elements: elements}
}

// Name 字典名
func (t *Type[V]) Name() string { return t.name }

// Key 缓存键（不含缓存门面前缀）
func (t *Type[V]) Key() string { return KeyPrefix + t.name }

// Elements 读取全部元素，未缓存时由定义构建并写入缓存
func (t *Type[V]) Elements(ctx context.Context, c *cache.Cache) (map[V]Element[V], error) {
	if c == nil {
		return nil, errors.NewError(errors.ErrCodeConfiguration, "dict requires a cache")
	}
	return cache.ComputeMapIfAbsent[V, Element[V]](ctx, c, t.Key(), func(ctx context.Context) (map[V]Element[V], time.Duration, error) {
		logger := logging.ComponentLogger("dict")
		logger.Info(ctx, "caching dict", logging.String("type", t.name), logging.Int("elements", len(t.elements)))
		m := make(map[V]Element[V], len(t.elements))
		for _, e := range t.elements {
			m[e.Value] = e
		}
		return m, c.DefaultTTL(), nil
	})
}

// List 按定义顺序返回已翻译的元素
func (t *Type[V]) List(ctx context.Context, c *cache.Cache) ([]Element[V], error) {
	m, err := t.Elements(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]Element[V], 0, len(m))
	for _, def := range t.elements {
		if e, ok := m[def.Value]; ok {
			out = append(out, e.Localize(ctx))
		}
	}
	return out, nil
}

// Get 按值查询元素
func (t *Type[V]) Get(ctx context.Context, c *cache.Cache, value V) (Element[V], bool, error) {
	m, err := t.Elements(ctx, c)
	if err != nil {
		return Element[V]{}, false, err
	}
	e, ok := m[value]
	if !ok {
		return Element[V]{}, false, nil
	}
	return e.Localize(ctx), true, nil
}

// GetText 按值查询文本，不存在时返回空串
func (t *Type[V]) GetText(ctx context.Context, c *cache.Cache, value V) (string, error) {
	e, _, err := t.Get(ctx, c, value)
	return e.Text, err
}

// GetCode 按值查询代码，不存在时返回空串
func (t *Type[V]) GetCode(ctx context.Context, c *cache.Cache, value V) (string, error) {
	e, _, err := t.Get(ctx, c, value)
	return e.Code, err
}

// FromText 按翻译后的文本反查元素，多个匹配时取定义顺序中的第一个
func (t *Type[V]) FromText(ctx context.Context, c *cache.Cache, text string) (Element[V], bool, error) {
	list, err := t.List(ctx, c)
	if err != nil {
		return Element[V]{}, false, err
	}
	for _, e := range list {
		if e.Text == text {
			return e, true, nil
		}
	}
	return Element[V]{}, false, nil
}

const (
	BoolFalse = "00"
	BoolTrue  = "10"
)

// Bool 布尔字典
var Bool = NewType("bool",
	Element[string]{Value: BoolFalse, Text: "@dict.bool.false"},
	Element[string]{Value: BoolTrue, Text: "@dict.bool.true"},
)
