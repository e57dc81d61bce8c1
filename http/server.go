package http

import (
	"context"
	"net/http"
)

// IHttpServer HTTP 服务器接口
type IHttpServer interface {
	GET(path string, handler HttpHandler) IHttpServer
	POST(path string, handler HttpHandler) IHttpServer
	PUT(path string, handler HttpHandler) IHttpServer
	DELETE(path string, handler HttpHandler) IHttpServer
	PATCH(path string, handler HttpHandler) IHttpServer

	Group(prefix string) IRouteGroup
	Use(middleware ...Middleware) IHttpServer

	// Handler 返回组装完成的 http.Handler，首次调用后路由表即冻结
	Handler() http.Handler

	Start(addr string) error
	Stop(ctx context.Context) error
}

// Middleware 定义 HTTP 中间件签名
type Middleware func(ctx IHttpContext, next func() error) error

// IRouteGroup 定义路由组接口
type IRouteGroup interface {
	GET(path string, handler HttpHandler, middleware ...Middleware) IRouteGroup
	POST(path string, handler HttpHandler, middleware ...Middleware) IRouteGroup
	PUT(path string, handler HttpHandler, middleware ...Middleware) IRouteGroup
	DELETE(path string, handler HttpHandler, middleware ...Middleware) IRouteGroup
	PATCH(path string, handler HttpHandler, middleware ...Middleware) IRouteGroup

	Group(prefix string) IRouteGroup
	Use(middleware ...Middleware) IRouteGroup
}
