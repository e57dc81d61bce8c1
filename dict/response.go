package dict

import "goeasy/http/response"

// ElementResponse 字典元素响应，元素不存在时只带 value
type ElementResponse[V comparable] struct {
	response.DataResponse
	Value V      `json:"value"`
	Text  string `json:"text,omitempty"`
	Code  string `json:"code,omitempty"`
}

// NewElementResponse 创建字典元素响应，elem 应已翻译
func NewElementResponse[V comparable](value V, elem *Element[V], internal bool) *ElementResponse[V] {
	r := &ElementResponse[V]{Value: value}
	r.Header = &response.Header{Code: response.OK}
	if elem != nil {
		r.Text = elem.Text
		r.Code = elem.Code
	}
	r.Internal(internal)
	return r
}
