package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"goeasy/errors"
)

// Path 实体上可过滤的属性：属性名、列名以及类型化的取值函数
type Path[T any] interface {
	Property() string
	Column() string
}

// translatable 可翻译为断言的路径；包外实现的 Path 不满足该接口
type translatable[T any] interface {
	Path[T]
	predicate(c Criterion) (Predicate[T], error)
}

// StringPath 字符串属性
type StringPath[T any] struct {
	property string
	column   string
	get      func(*T) *string
}

// String 声明字符串属性；get 返回 nil 表示空值
func String[T any](property, column string, get func(*T) *string) *StringPath[T] {
	return &StringPath[T]{property: property, column: column, get: get}
}

func (p *StringPath[T]) Property() string { return p.property }
func (p *StringPath[T]) Column() string   { return p.column }

func (p *StringPath[T]) value(entity *T) (string, bool) {
	v := p.get(entity)
	if v == nil {
		return "", false
	}
	return *v, true
}

func (p *StringPath[T]) present(entity *T) bool { return p.get(entity) != nil }

func (p *StringPath[T]) predicate(c Criterion) (Predicate[T], error) {
	switch c.Operation {
	case OpEq, OpNe:
		return &comparison[T, string]{column: p.column, op: c.Operation, value: c.Value, get: p.value}, nil
	case OpLike:
		return newLike(p.column, c.Value, false, false, p.value), nil
	case OpNotLike:
		return newLike(p.column, c.Value, true, false, p.value), nil
	case OpContains:
		return newLike(p.column, "%"+escapeLike(c.Value)+"%", false, true, p.value), nil
	case OpStartsWith:
		return newLike(p.column, escapeLike(c.Value)+"%", false, true, p.value), nil
	case OpEndsWith:
		return newLike(p.column, "%"+escapeLike(c.Value), false, true, p.value), nil
	case OpIsNull:
		return &nullCheck[T]{column: p.column, isNull: true, present: p.present}, nil
	case OpNotNull:
		return &nullCheck[T]{column: p.column, isNull: false, present: p.present}, nil
	}
	return nil, nil
}

// Integer 数值属性支持的类型
type Integer interface {
	~int32 | ~int64
}

// NumberPath 整数属性
type NumberPath[T any, N Integer] struct {
	property string
	column   string
	get      func(*T) *N
}

// Number 声明整数属性；get 返回 nil 表示空值
func Number[T any, N Integer](property, column string, get func(*T) *N) *NumberPath[T, N] {
	return &NumberPath[T, N]{property: property, column: column, get: get}
}

// Int32 声明 32 位整数属性
func Int32[T any](property, column string, get func(*T) *int32) *NumberPath[T, int32] {
	return Number(property, column, get)
}

// Int64 声明 64 位整数属性
func Int64[T any](property, column string, get func(*T) *int64) *NumberPath[T, int64] {
	return Number(property, column, get)
}

func (p *NumberPath[T, N]) Property() string { return p.property }
func (p *NumberPath[T, N]) Column() string   { return p.column }

func (p *NumberPath[T, N]) value(entity *T) (N, bool) {
	v := p.get(entity)
	if v == nil {
		var zero N
		return zero, false
	}
	return *v, true
}

func (p *NumberPath[T, N]) predicate(c Criterion) (Predicate[T], error) {
	if _, ok := comparators[c.Operation]; !ok {
		return nil, nil
	}
	if strings.TrimSpace(c.Value) == "" {
		return nil, errors.Newf(errors.ErrCodeInvalidInput,
			"operation %s on property %q requires a value", c.Operation, p.property)
	}
	n, err := p.parse(c.Value)
	if err != nil {
		return nil, err
	}
	return &comparison[T, N]{column: p.column, op: c.Operation, value: n, get: p.value}, nil
}

func (p *NumberPath[T, N]) parse(value string) (N, error) {
	var zero N
	var bits int
	switch kind := reflect.TypeOf(zero).Kind(); kind {
	case reflect.Int32:
		bits = 32
	case reflect.Int64:
		bits = 64
	default:
		return zero, errors.Newf(errors.ErrCodeUnsupportedType, "unsupported numeric type %s", kind)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, bits)
	if err != nil {
		return zero, errors.WrapError(err, errors.ErrCodeParse,
			fmt.Sprintf("cannot parse %q as %T for property %q", value, zero, p.property))
	}
	return N(n), nil
}

// PathRegistry 单个实体类型的可过滤属性表，构建后不可变
type PathRegistry[T any] struct {
	paths map[string]Path[T]
	order []string
}

// NewPathRegistry 构建属性表；属性名重复或列名不是合法标识符时 panic
func NewPathRegistry[T any](paths ...Path[T]) *PathRegistry[T] {
	r := &PathRegistry[T]{paths: make(map[string]Path[T], len(paths))}
	for _, p := range paths {
		if p == nil {
			continue
		}
		if _, dup := r.paths[p.Property()]; dup {
			panic("query: duplicate property " + p.Property())
		}
		if !IsIdentifier(p.Column()) {
			panic("query: unsafe column name " + p.Column())
		}
		r.paths[p.Property()] = p
		r.order = append(r.order, p.Property())
	}
	return r
}

// Lookup 按属性名查找路径
func (r *PathRegistry[T]) Lookup(property string) (Path[T], bool) {
	p, ok := r.paths[property]
	return p, ok
}

// Properties 按注册顺序返回属性名
func (r *PathRegistry[T]) Properties() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Column 属性对应的列名；未注册的属性原样返回
func (r *PathRegistry[T]) Column(property string) string {
	if p, ok := r.paths[property]; ok {
		return p.Column()
	}
	return property
}

// IsIdentifier 判断是否为安全的 SQL 标识符（可带 . 限定）
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			ch := part[i]
			letter := ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
			if i == 0 && !letter {
				return false
			}
			if !letter && !(ch >= '0' && ch <= '9') {
				return false
			}
		}
	}
	return true
}
