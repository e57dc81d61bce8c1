package query

import (
	"goeasy/errors"
)

// Translate 将查询请求翻译为断言与排序。
//
// 未注册的属性、与路径类型不匹配的操作被忽略；
// 包外实现的 Path、数值解析失败、数值操作缺少值时整个翻译失败。
func Translate[T any](req *QueryRequest, registry *PathRegistry[T]) (Predicate[T], Sort, error) {
	if req == nil {
		return And[T](), ByID(), nil
	}
	pred, err := TranslateCriteria(req.Criteria, registry)
	if err != nil {
		return nil, Sort{}, err
	}
	return pred, req.Sort(), nil
}

// TranslateCriteria 仅翻译过滤条件
func TranslateCriteria[T any](criteria []Criterion, registry *PathRegistry[T]) (Predicate[T], error) {
	parts := make([]Predicate[T], 0, len(criteria))
	for _, c := range criteria {
		if registry == nil {
			break
		}
		path, ok := registry.Lookup(c.Property)
		if !ok {
			continue
		}
		tp, ok := path.(translatable[T])
		if !ok {
			return nil, errors.Newf(errors.ErrCodeUnsupportedType,
				"unsupported path type %T for property %q", path, c.Property)
		}
		p, err := tp.predicate(c)
		if err != nil {
			return nil, err
		}
		if p != nil {
			parts = append(parts, p)
		}
	}
	return And(parts...), nil
}
