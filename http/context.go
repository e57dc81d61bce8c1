package http

import (
	"context"
	"net/http"
)

// IResponseWriter 响应写入接口 - 只负责写入响应
type IResponseWriter interface {
	SetStatus(code int)
	SetHeader(key, value string)
	SetCookie(cookie *http.Cookie)

	JSON(code int, obj any) error
	String(code int, text string) error
	Data(code int, contentType string, data []byte) error

	// Status 返回已设置的状态码，未设置时为 200
	Status() int
	// Written 响应是否已写出
	Written() bool
}

// IContextStorage 上下文存储接口 - 只负责键值存储
type IContextStorage interface {
	Set(key string, value any)
	Get(key string) (any, bool)
	MustGet(key string) any
}

// IFlowControl 流程控制接口 - 只负责请求流程控制
type IFlowControl interface {
	Abort()
	AbortWithStatusJSON(code int, jsonObj any)
	IsAborted() bool
}

// IHttpContext 组合接口 - 通过组合而非继承
type IHttpContext interface {
	IRequestReader
	IRequestBinder
	IResponseWriter
	IContextStorage
	IFlowControl

	// Context 返回请求级 context，中间件通过 SetContext 向下游传递值
	Context() context.Context
	SetContext(ctx context.Context)

	GetRaw() any
}

// HttpHandler 处理器函数类型
type HttpHandler func(ctx IHttpContext) error
