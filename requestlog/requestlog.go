// Package requestlog 记录写操作请求的参数、状态与异常
package requestlog

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	httpx "goeasy/http"
	"goeasy/http/response"
	"goeasy/logging"
)

// Config 请求日志配置
type Config struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// Methods 默认记录的 HTTP 方法
	Methods []string `json:"methods" yaml:"methods" mapstructure:"methods"`
}

// DefaultConfig 默认记录 POST、PUT、DELETE
func DefaultConfig() Config {
	return Config{Methods: []string{"POST", "PUT", "DELETE"}}
}

// Entry 请求开始时的记录
type Entry struct {
	Begin   time.Time
	URI     string
	Handler string
	Method  string
	Params  string
}

// Processor 请求日志处理器
type Processor interface {
	// OnPre 请求处理前调用，返回值原样传给 OnPost
	OnPre(ctx context.Context, entry Entry) any
	OnPost(ctx context.Context, pre any, end time.Time, statusCode int, exception string)
}

// LogProcessor 写入结构化日志的默认处理器
type LogProcessor struct {
	logger logging.Logger
}

// NewLogProcessor 创建默认处理器
func NewLogProcessor() *LogProcessor {
	return &LogProcessor{logger: logging.ComponentLogger("requestlog")}
}

func (p *LogProcessor) OnPre(ctx context.Context, entry Entry) any {
	p.logger.Info(ctx, "request begin",
		logging.String("uri", entry.URI),
		logging.String("handler", entry.Handler),
		logging.String("method", entry.Method),
		logging.String("params", entry.Params))
	return entry
}

func (p *LogProcessor) OnPost(ctx context.Context, pre any, end time.Time, statusCode int, exception string) {
	fields := []logging.Field{logging.Int("status", statusCode)}
	if entry, ok := pre.(Entry); ok {
		fields = append(fields, logging.Duration("elapsed", end.Sub(entry.Begin)))
	}
	if exception != "" {
		fields = append(fields, logging.String("exception", exception))
	}
	p.logger.Info(ctx, "request end", fields...)
}

type rule struct {
	record  bool
	ignores []string
}

// RouteOption 路由级记录选项
type RouteOption func(*rule)

// Ignores 从参数中移除的点分路径，数组会逐项处理
func Ignores(paths ...string) RouteOption {
	return func(r *rule) { r.ignores = append(r.ignores, paths...) }
}

// RequestLog 请求日志中间件
type RequestLog struct {
	methods   map[string]bool
	processor Processor
	rules     sync.Map // "METHOD pattern" -> *rule
	now       func() time.Time
}

// New 创建请求日志，processor 为空时使用 LogProcessor
func New(cfg Config, processor Processor) *RequestLog {
	if processor == nil {
		processor = NewLogProcessor()
	}
	methods := make(map[string]bool, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(m)] = true
	}
	return &RequestLog{methods: methods, processor: processor, now: time.Now}
}

// Record 强制记录指定路由
func (l *RequestLog) Record(method, pattern string, opts ...RouteOption) {
	r := &rule{record: true}
	for _, opt := range opts {
		opt(r)
	}
	l.rules.Store(method+" "+pattern, r)
}

// Skip 不记录指定路由
func (l *RequestLog) Skip(method, pattern string) {
	l.rules.Store(method+" "+pattern, &rule{record: false})
}

func (l *RequestLog) lookup(c httpx.IHttpContext) (*rule, string) {
	v, ok := c.Get(httpx.RouteKey)
	if !ok {
		return nil, ""
	}
	key, _ := v.(string)
	if r, ok := l.rules.Load(key); ok {
		return r.(*rule), key
	}
	return nil, key
}

// Middleware 返回中间件
func (l *RequestLog) Middleware() httpx.Middleware {
	return func(c httpx.IHttpContext, next func() error) error {
		begin := l.now()
		r, handler := l.lookup(c)
		if r != nil && !r.record || r == nil && !l.methods[c.GetMethod()] {
			return next()
		}

		var ignores []string
		if r != nil {
			ignores = r.ignores
		}
		ctx := c.Context()
		pre := l.processor.OnPre(ctx, Entry{
			Begin:   begin,
			URI:     c.GetPath(),
			Handler: handler,
			Method:  c.GetMethod(),
			Params:  params(c, ignores),
		})

		err := next()
		status, exception := c.Status(), ""
		if err != nil {
			status = response.FromError(err).Header.Code.StatusCode
			exception = err.Error()
		}
		l.processor.OnPost(c.Context(), pre, l.now(), status, exception)
		return err
	}
}

// params 以 JSON 描述查询参数、路径参数与请求体
func params(c httpx.IHttpContext, ignores []string) string {
	doc := make(map[string]any, 2)
	if q := c.GetQueryParams(); len(q) > 0 {
		query := make(map[string]any, len(q))
		for k, v := range q {
			if len(v) == 1 {
				query[k] = v[0]
			} else {
				query[k] = v
			}
		}
		doc["query"] = query
	}
	if body, err := c.GetBody(); err == nil && len(body) > 0 {
		var parsed any
		if json.Unmarshal(body, &parsed) == nil {
			doc["body"] = parsed
		} else {
			doc["body"] = string(body)
		}
	}

	var node any = doc
	for _, ignore := range ignores {
		removeIgnore(node, ignore)
	}
	data, err := json.Marshal(node)
	if err != nil {
		return ""
	}
	return string(data)
}

func removeIgnore(node any, path string) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			removeIgnore(item, path)
		}
	case map[string]any:
		key, rest, nested := strings.Cut(path, ".")
		if !nested {
			delete(v, key)
			return
		}
		if child, ok := v[key]; ok {
			removeIgnore(child, rest)
		}
	}
}
