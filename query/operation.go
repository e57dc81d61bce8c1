// Package query 将通用的字符串过滤条件翻译为类型化的断言与排序
//
// 设计原则：
// 1. 显式注册 - 每个实体类型通过 PathRegistry 声明可过滤的属性，不做运行时反射发现
// 2. 容忍脏输入 - 未知属性、与路径类型不匹配的操作静默忽略
// 3. 断言可求值也可渲染 - 同一棵断言树既能在内存中 Eval，也能渲染为参数化 SQL
package query

import "strings"

// Operation 过滤操作
type Operation string

const (
	OpEq         Operation = "eq"
	OpNe         Operation = "ne"
	OpIsNull     Operation = "is_null"
	OpNotNull    Operation = "not_null"
	OpGt         Operation = "gt"
	OpGoe        Operation = "goe"
	OpLt         Operation = "lt"
	OpLoe        Operation = "loe"
	OpLike       Operation = "like"
	OpNotLike    Operation = "not_like"
	OpContains   Operation = "contains"
	OpStartsWith Operation = "starts_with"
	OpEndsWith   Operation = "ends_with"
)

var operations = map[Operation]struct{}{
	OpEq: {}, OpNe: {}, OpIsNull: {}, OpNotNull: {},
	OpGt: {}, OpGoe: {}, OpLt: {}, OpLoe: {},
	OpLike: {}, OpNotLike: {}, OpContains: {}, OpStartsWith: {}, OpEndsWith: {},
}

// ParseOperation 解析操作名，大小写不敏感
func ParseOperation(s string) (Operation, bool) {
	op := Operation(strings.ToLower(strings.TrimSpace(s)))
	_, ok := operations[op]
	return op, ok
}

// IsNullCheck 空值判断类操作在值为空时仍然有意义
func (o Operation) IsNullCheck() bool {
	return o == OpIsNull || o == OpNotNull
}
