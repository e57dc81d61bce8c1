package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"goeasy/errors"
)

// 保留的请求参数名
const (
	ParamOrder = "_order"
	ParamPage  = "_page"
	ParamSize  = "_size"
)

// ParseValues 从请求参数解析查询请求。
//
// 以 _ 开头的参数保留给排序与分页；其余参数 "prop" 或 "prop:op" 各产生一个条件，
// 操作默认为 eq。值为空且不是空值判断的条件、未知操作名的条件被丢弃。
func ParseValues(values url.Values) *QueryRequest {
	req := &QueryRequest{Order: values.Get(ParamOrder)}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.HasPrefix(key, "_") {
			continue
		}
		property, name, hasOp := strings.Cut(key, ":")
		if property == "" {
			continue
		}
		op := OpEq
		if hasOp {
			parsed, ok := ParseOperation(name)
			if !ok {
				continue
			}
			op = parsed
		}
		value := values.Get(key)
		if value == "" && !op.IsNullCheck() {
			continue
		}
		req.Criteria = append(req.Criteria, Criterion{Property: property, Operation: op, Value: value})
	}
	return req
}

// ParsePageValues 解析分页查询请求；_page / _size 不是整数时返回 INVALID_INPUT
func ParsePageValues(values url.Values) (*PageQueryRequest, error) {
	req := &PageQueryRequest{QueryRequest: *ParseValues(values), Size: DefaultPageSize}

	if s := values.Get(ParamPage); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidInput, "invalid %s %q", ParamPage, s)
		}
		req.Page = max(n, 0)
	}
	if s := values.Get(ParamSize); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidInput, "invalid %s %q", ParamSize, s)
		}
		if n > 0 {
			req.Size = n
		}
	}
	p := req.Pageable()
	req.Page, req.Size = p.Page, p.Size
	return req, nil
}
