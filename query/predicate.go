package query

import (
	"cmp"
	"regexp"
	"strings"
)

// Predicate 断言树：Eval 在内存中对实体求值，ToSQL 渲染为使用 ? 占位符的 WHERE 片段
type Predicate[T any] interface {
	Eval(entity *T) bool
	ToSQL() (string, []any)
}

// conjunction AND 组合；没有子断言时恒为真且不渲染任何条件
type conjunction[T any] struct {
	parts []Predicate[T]
}

// And 以 AND 组合断言，nil 被忽略
func And[T any](parts ...Predicate[T]) Predicate[T] {
	c := &conjunction[T]{}
	for _, p := range parts {
		if p == nil {
			continue
		}
		if inner, ok := p.(*conjunction[T]); ok {
			c.parts = append(c.parts, inner.parts...)
			continue
		}
		c.parts = append(c.parts, p)
	}
	return c
}

func (c *conjunction[T]) Eval(entity *T) bool {
	for _, p := range c.parts {
		if !p.Eval(entity) {
			return false
		}
	}
	return true
}

func (c *conjunction[T]) ToSQL() (string, []any) {
	if len(c.parts) == 0 {
		return "", nil
	}
	exprs := make([]string, 0, len(c.parts))
	var args []any
	for _, p := range c.parts {
		expr, a := p.ToSQL()
		if expr == "" {
			continue
		}
		exprs = append(exprs, expr)
		args = append(args, a...)
	}
	return strings.Join(exprs, " AND "), args
}

// Len 子断言数量
func (c *conjunction[T]) Len() int { return len(c.parts) }

// IsEmpty 断言是否不包含任何条件
func IsEmpty[T any](p Predicate[T]) bool {
	if p == nil {
		return true
	}
	c, ok := p.(*conjunction[T])
	return ok && len(c.parts) == 0
}

var comparators = map[Operation]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpGt:  ">",
	OpGoe: ">=",
	OpLt:  "<",
	OpLoe: "<=",
}

// comparison 比较断言；字段为空时按 SQL 三值逻辑不匹配
type comparison[T any, V cmp.Ordered] struct {
	column string
	op     Operation
	value  V
	get    func(*T) (V, bool)
}

func (c *comparison[T, V]) Eval(entity *T) bool {
	v, ok := c.get(entity)
	if !ok {
		return false
	}
	r := cmp.Compare(v, c.value)
	switch c.op {
	case OpEq:
		return r == 0
	case OpNe:
		return r != 0
	case OpGt:
		return r > 0
	case OpGoe:
		return r >= 0
	case OpLt:
		return r < 0
	case OpLoe:
		return r <= 0
	}
	return false
}

func (c *comparison[T, V]) ToSQL() (string, []any) {
	return c.column + " " + comparators[c.op] + " ?", []any{c.value}
}

// nullCheck IS NULL / IS NOT NULL
type nullCheck[T any] struct {
	column  string
	isNull  bool
	present func(*T) bool
}

func (n *nullCheck[T]) Eval(entity *T) bool {
	return n.present(entity) != n.isNull
}

func (n *nullCheck[T]) ToSQL() (string, []any) {
	if n.isNull {
		return n.column + " IS NULL", nil
	}
	return n.column + " IS NOT NULL", nil
}

// likeMatch SQL LIKE：% 匹配任意长度，_ 匹配单个字符，\ 转义。
// fold 为 true 时忽略大小写。
type likeMatch[T any] struct {
	column  string
	pattern string
	negate  bool
	fold    bool
	re      *regexp.Regexp
	get     func(*T) (string, bool)
}

func newLike[T any](column, pattern string, negate, fold bool, get func(*T) (string, bool)) *likeMatch[T] {
	if fold {
		pattern = strings.ToLower(pattern)
	}
	return &likeMatch[T]{
		column:  column,
		pattern: pattern,
		negate:  negate,
		fold:    fold,
		re:      likeToRegexp(pattern, fold),
		get:     get,
	}
}

func (l *likeMatch[T]) Eval(entity *T) bool {
	v, ok := l.get(entity)
	if !ok {
		return false
	}
	return l.re.MatchString(v) != l.negate
}

func (l *likeMatch[T]) ToSQL() (string, []any) {
	col := l.column
	if l.fold {
		col = "LOWER(" + col + ")"
	}
	op := " LIKE "
	if l.negate {
		op = " NOT LIKE "
	}
	return col + op + `? ESCAPE '\'`, []any{l.pattern}
}

func likeToRegexp(pattern string, fold bool) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("(?s)")
	if fold {
		sb.WriteString("(?i)")
	}
	sb.WriteString("^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			sb.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			sb.WriteString(".*")
		case r == '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	if escaped {
		sb.WriteString(regexp.QuoteMeta(`\`))
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

// escapeLike 转义值中的通配符，使其按字面匹配
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
