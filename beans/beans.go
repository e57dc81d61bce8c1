// Package beans 按字段名在结构体之间复制值
package beans

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"goeasy/errors"
)

// Option 复制选项
type Option func(*options)

type options struct {
	skipNil bool
	trim    bool
	exclude map[string]bool
}

// SkipNil 源字段为 nil 指针时不覆盖目标字段
func SkipNil() Option { return func(o *options) { o.skipNil = true } }

// TrimStrings 复制字符串时去除首尾空白
func TrimStrings() Option { return func(o *options) { o.trim = true } }

// Exclude 排除指定字段名
func Exclude(names ...string) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[string]bool, len(names))
		}
		for _, n := range names {
			o.exclude[n] = true
		}
	}
}

// Copy 将 src 中同名字段复制到 dst
//
// dst 必须是结构体指针，src 可以是结构体或结构体指针。字段类型相同，
// 或者一侧为另一侧的指针时才会复制，其余同名字段忽略。嵌入结构体的字段
// 按提升后的名字参与匹配，外层字段优先。
func Copy(dst, src any, opts ...Option) error {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() || dv.Elem().Kind() != reflect.Struct {
		return errors.Newf(errors.ErrCodeUnsupportedType, "copy destination must be a non-nil struct pointer, got %T", dst)
	}
	sv := reflect.ValueOf(src)
	for sv.Kind() == reflect.Ptr {
		if sv.IsNil() {
			return errors.NewError(errors.ErrCodeInvalidInput, "copy source is nil")
		}
		sv = sv.Elem()
	}
	if sv.Kind() != reflect.Struct {
		return errors.Newf(errors.ErrCodeUnsupportedType, "copy source must be a struct, got %T", src)
	}

	dv = dv.Elem()
	srcFields := fieldsOf(sv.Type())
	for name, dIndex := range fieldsOf(dv.Type()) {
		if o.exclude[name] {
			continue
		}
		sIndex, ok := srcFields[name]
		if !ok {
			continue
		}
		assign(dv.FieldByIndex(dIndex), sv.FieldByIndex(sIndex), o)
	}
	return nil
}

func assign(dst, src reflect.Value, o *options) {
	dt, st := dst.Type(), src.Type()
	switch {
	case st == dt:
		if o.skipNil && isNil(src) {
			return
		}
		dst.Set(trimmed(src, o))
	case st.Kind() == reflect.Ptr && st.Elem() == dt:
		if src.IsNil() {
			if !o.skipNil {
				dst.Set(reflect.Zero(dt))
			}
			return
		}
		dst.Set(trimmed(src.Elem(), o))
	case dt.Kind() == reflect.Ptr && dt.Elem() == st:
		p := reflect.New(st)
		p.Elem().Set(trimmed(src, o))
		dst.Set(p)
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func trimmed(v reflect.Value, o *options) reflect.Value {
	if !o.trim {
		return v
	}
	switch {
	case v.Kind() == reflect.String:
		return reflect.ValueOf(strings.TrimSpace(v.String())).Convert(v.Type())
	case v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.String:
		p := reflect.New(v.Type().Elem())
		p.Elem().Set(trimmed(v.Elem(), o))
		return p
	}
	return v
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	fieldCache sync.Map // reflect.Type -> map[string][]int
)

// fieldsOf 返回可导出字段名到索引路径的映射
func fieldsOf(t reflect.Type) map[string][]int {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string][]int)
	}
	fields := make(map[string][]int)
	collect(t, nil, fields)
	fieldCache.Store(t, fields)
	return fields
}

func collect(t reflect.Type, prefix []int, out map[string][]int) {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Type != timeType {
			embedded = append(embedded, f)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = append(append([]int(nil), prefix...), i)
		}
	}
	for _, f := range embedded {
		collect(f.Type, append(append([]int(nil), prefix...), f.Index...), out)
	}
}
