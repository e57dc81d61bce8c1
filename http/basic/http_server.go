package basic

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"goeasy/errors"
	httpx "goeasy/http"
	"goeasy/http/response"
	"goeasy/logging"
)

// HttpServer 基于 chi 的 IHttpServer 实现
type HttpServer struct {
	config      httpx.WebConfig
	server      *http.Server
	routes      []*route
	middlewares []httpx.Middleware
	mu          sync.RWMutex
	once        sync.Once
	handler     http.Handler
	stopped     bool
	logger      logging.Logger
}

type route struct {
	method      string
	pattern     string
	handler     httpx.HttpHandler
	group       *RouteGroup
	middlewares []httpx.Middleware
}

// NewHTTPServer 创建服务器
func NewHTTPServer(config httpx.WebConfig) *HttpServer {
	return &HttpServer{
		config:      config,
		routes:      make([]*route, 0),
		middlewares: make([]httpx.Middleware, 0),
		logger:      logging.ComponentLogger("http"),
	}
}

func (s *HttpServer) GET(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodGet, path, handler, nil, nil)
}
func (s *HttpServer) POST(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPost, path, handler, nil, nil)
}
func (s *HttpServer) PUT(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPut, path, handler, nil, nil)
}
func (s *HttpServer) DELETE(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodDelete, path, handler, nil, nil)
}
func (s *HttpServer) PATCH(path string, handler httpx.HttpHandler) httpx.IHttpServer {
	return s.addRoute(http.MethodPatch, path, handler, nil, nil)
}

func (s *HttpServer) addRoute(method, path string, handler httpx.HttpHandler, group *RouteGroup, middlewares []httpx.Middleware) *HttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler != nil {
		panic("basic: route " + method + " " + path + " registered after the handler was built")
	}
	s.routes = append(s.routes, &route{
		method:      method,
		pattern:     path,
		handler:     handler,
		group:       group,
		middlewares: middlewares,
	})
	return s
}

// Group 路由分组
func (s *HttpServer) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{prefix: prefix, server: s}
}

// Use 全局中间件
func (s *HttpServer) Use(middleware ...httpx.Middleware) httpx.IHttpServer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, middleware...)
	return s
}

// Handler 组装 chi 路由，首次调用后不再接受新的路由与中间件
func (s *HttpServer) Handler() http.Handler {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.handler = s.build()
	})
	return s.handler
}

func (s *HttpServer) build() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	if s.config.CORS.Enabled {
		r.Use(cors.New(corsOptions(s.config.CORS)).Handler)
	}

	global := append([]httpx.Middleware(nil), s.middlewares...)
	for _, rt := range s.routes {
		r.Method(rt.method, convertPathPattern(rt.pattern), s.createHandler(rt, global))
	}
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		ctx := NewHttpContext(w, req)
		_ = response.Send(ctx, response.New(response.NotFound))
	})
	return r
}

func corsOptions(cfg httpx.CORSConfig) cors.Options {
	return cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{httpx.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	}
}

// requestID 读取或生成请求 ID，写回响应头并注入日志字段
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := httpx.ExtractRequestID(r)
		w.Header().Set(httpx.HeaderRequestID, id)
		ctx := httpx.WithRequestID(r.Context(), id)
		ctx = logging.WithContextFields(ctx, logging.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start 启动监听，addr 为空时使用配置地址；正常关闭时返回 nil
func (s *HttpServer) Start(addr string) error {
	if addr == "" {
		addr = s.config.Addr()
	}
	handler := s.Handler()
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	srv := s.server
	s.mu.Unlock()

	s.logger.Info(context.Background(), "http server listening", logging.String("addr", addr), logging.Bool("tls", s.config.TLSEnabled))
	var err error
	if s.config.TLSEnabled {
		err = srv.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
		return errors.WrapError(err, errors.ErrCodeServiceUnavailable, "http server stopped unexpectedly")
	}
	return nil
}

// Stop 优雅关闭；在 Start 之前调用时 Start 直接返回
func (s *HttpServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// 将 :id 转为 {id}
func convertPathPattern(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			parts[i] = "{" + p[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

func (s *HttpServer) createHandler(r *route, global []httpx.Middleware) http.HandlerFunc {
	// 组装中间件链：全局 -> 分组 -> 路由级
	middlewares := append([]httpx.Middleware{}, global...)
	if r.group != nil {
		middlewares = append(middlewares, r.group.middlewares...)
	}
	middlewares = append(middlewares, r.middlewares...)
	routeKey := r.method + " " + r.pattern
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := NewHttpContext(w, req)
		ctx.Set(httpx.RouteKey, routeKey)
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error(ctx.Context(), "panic recovered", logging.String("route", routeKey), logging.Any("panic", p))
				_ = response.SendError(ctx, errors.Newf(errors.ErrCodeInternal, "panic: %v", p))
			}
		}()
		if err := executeMiddlewareChain(ctx, middlewares, r.handler); err != nil {
			_ = response.SendError(ctx, err)
		}
	}
}

func executeMiddlewareChain(ctx httpx.IHttpContext, middlewares []httpx.Middleware, handler httpx.HttpHandler) error {
	if len(middlewares) == 0 {
		return handler(ctx)
	}
	return middlewares[0](ctx, func() error {
		if ctx.IsAborted() {
			return nil
		}
		return executeMiddlewareChain(ctx, middlewares[1:], handler)
	})
}

// RouteGroup 实现 IRouteGroup
type RouteGroup struct {
	prefix      string
	server      *HttpServer
	middlewares []httpx.Middleware
}

func (g *RouteGroup) GET(path string, h httpx.HttpHandler, mw ...httpx.Middleware) httpx.IRouteGroup {
	return g.add(http.MethodGet, path, h, mw)
}
func (g *RouteGroup) POST(path string, h httpx.HttpHandler, mw ...httpx.Middleware) httpx.IRouteGroup {
	return g.add(http.MethodPost, path, h, mw)
}
func (g *RouteGroup) PUT(path string, h httpx.HttpHandler, mw ...httpx.Middleware) httpx.IRouteGroup {
	return g.add(http.MethodPut, path, h, mw)
}
func (g *RouteGroup) DELETE(path string, h httpx.HttpHandler, mw ...httpx.Middleware) httpx.IRouteGroup {
	return g.add(http.MethodDelete, path, h, mw)
}
func (g *RouteGroup) PATCH(path string, h httpx.HttpHandler, mw ...httpx.Middleware) httpx.IRouteGroup {
	return g.add(http.MethodPatch, path, h, mw)
}

// Group 子分组继承当前分组的中间件
func (g *RouteGroup) Group(prefix string) httpx.IRouteGroup {
	return &RouteGroup{
		prefix:      g.prefix + prefix,
		server:      g.server,
		middlewares: append([]httpx.Middleware(nil), g.middlewares...),
	}
}

func (g *RouteGroup) Use(mw ...httpx.Middleware) httpx.IRouteGroup {
	g.middlewares = append(g.middlewares, mw...)
	return g
}

func (g *RouteGroup) add(method, path string, h httpx.HttpHandler, mw []httpx.Middleware) httpx.IRouteGroup {
	g.server.addRoute(method, g.prefix+path, h, g, mw)
	return g
}
