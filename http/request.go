// Package http 提供简化的 HTTP 接口，遵循接口隔离原则
package http

import (
	"net/http"
	"net/url"
)

// IRequestReader 请求读取接口 - 只负责读取请求数据
type IRequestReader interface {
	GetMethod() string
	GetPath() string
	GetHeader(key string) string
	GetQuery(key string) string
	GetParam(key string) string
	GetQueryParams() url.Values
	GetCookie(name string) string

	// GetBody 返回请求体，可重复读取
	GetBody() ([]byte, error)
	GetRequest() *http.Request

	ClientIP() string
	UserAgent() string
}

// IRequestBinder 请求绑定接口 - 只负责数据绑定
type IRequestBinder interface {
	BindJSON(obj any) error
}

// 预定义存储键（供实现与调用方共享）
const (
	// RouteKey 命中的路由模板，例如 GET /users/:id
	RouteKey = "route"
	// ResponseWrittenKey 响应已写出标记
	ResponseWrittenKey = "response_written"
)
