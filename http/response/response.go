package response

import (
	"context"
	"net/http"

	"goeasy/beans"
	"goeasy/i18n"
)

// Header 响应头
type Header struct {
	Code Code `json:"code"`
	// Message 为空时按 Code 的消息键翻译
	Message string `json:"message,omitempty"`
}

// IEnvelope 带响应头的响应体
type IEnvelope interface {
	GetHeader() *Header
	SetHeader(h *Header)
}

// Response 基础响应
type Response struct {
	Header *Header `json:"header,omitempty"`
}

// New 创建指定代码的响应
func New(code Code) *Response {
	return &Response{Header: &Header{Code: code}}
}

// NewWithMessage 创建带消息的响应
func NewWithMessage(code Code, message string) *Response {
	return &Response{Header: &Header{Code: code, Message: message}}
}

func (r *Response) GetHeader() *Header  { return r.Header }
func (r *Response) SetHeader(h *Header) { r.Header = h }

// DataResponse 单条数据响应
type DataResponse struct {
	Response
	ID int64 `json:"id"`
}

// Internal 为 true 时去掉响应头，用于列表项
func (r *DataResponse) Internal(internal bool) {
	if internal {
		r.Header = nil
	}
}

// SimpleResponse 包装任意数据
type SimpleResponse[T any] struct {
	DataResponse
	Data T `json:"data"`
}

// NewSimple 创建简单响应
func NewSimple[T any](data T) *SimpleResponse[T] {
	r := &SimpleResponse[T]{Data: data}
	r.Header = &Header{Code: OK}
	return r
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	Response
	Content []T  `json:"content"`
	Empty   bool `json:"empty"`
}

// NewList 创建列表响应
func NewList[T any](content []T) *ListResponse[T] {
	if content == nil {
		content = []T{}
	}
	return &ListResponse[T]{
		Response: Response{Header: &Header{Code: OK}},
		Content:  content,
		Empty:    len(content) == 0,
	}
}

// PageResponse 分页响应，页号从 0 开始
type PageResponse[T any] struct {
	ListResponse[T]
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
}

// NewPage 创建分页响应
func NewPage[T any](content []T, number, size int, totalElements int64) *PageResponse[T] {
	totalPages := 0
	if size > 0 && totalElements >= 0 {
		totalPages = int((totalElements + int64(size) - 1) / int64(size))
	}
	return &PageResponse[T]{
		ListResponse:     *NewList(content),
		Size:             size,
		Number:           number,
		TotalElements:    totalElements,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		First:            number == 0,
		Last:             number == totalPages-1,
	}
}

// Build 创建 R 并按字段名从 bean 复制值
//
// R 一般嵌入 DataResponse；internal 为 true 时不带响应头。
func Build[R any](bean any, internal bool) (*R, error) {
	r := new(R)
	if err := beans.Copy(r, bean); err != nil {
		return nil, err
	}
	if env, ok := any(r).(IEnvelope); ok {
		if internal {
			env.SetHeader(nil)
		} else {
			env.SetHeader(&Header{Code: OK})
		}
	}
	return r, nil
}

// Prepare 翻译未设置的响应头消息并返回 HTTP 状态码
func Prepare(ctx context.Context, body IEnvelope) int {
	h := body.GetHeader()
	if h == nil {
		return http.StatusOK
	}
	if h.Message == "" {
		h.Message = i18n.T(ctx, h.Code.Key())
	}
	if h.Code.StatusCode > 0 {
		return h.Code.StatusCode
	}
	return http.StatusOK
}
