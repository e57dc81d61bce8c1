// Package auth 提供基于令牌的请求授权与当前用户传递
package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"goeasy/domain/entity"
	"goeasy/logging"
)

const (
	HeaderAuthorization = "Authorization"
	TokenBearer         = "Bearer"
)

// Check 的结果码，正数为用户编号
const (
	Expired int64 = -1
	Invalid int64 = -2
	Ignored int64 = -99
)

// Config 授权配置
type Config struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	// IgnoreURIs 免检路径，以 /** 结尾时按前缀匹配
	IgnoreURIs []string `json:"ignore_uris" yaml:"ignore_uris" mapstructure:"ignore-uris"`
}

// ITokenChecker 令牌签发与校验
type ITokenChecker interface {
	// CheckToken 返回用户编号，过期返回 Expired，其余失败返回 Invalid
	CheckToken(token string) int64
}

// IFilter 令牌通过校验后的附加检查
type IFilter interface {
	Check(token string, id int64) bool
}

// FilterFunc 函数形式的 IFilter
type FilterFunc func(token string, id int64) bool

func (f FilterFunc) Check(token string, id int64) bool { return f(token, id) }

// Authorizer 请求授权检查
type Authorizer struct {
	production bool
	ignoreURIs []string
	filters    []IFilter
	checker    ITokenChecker
	routes     sync.Map // 免检路由 "METHOD pattern" -> struct{}
	logger     logging.Logger
}

// New 创建授权检查器；非生产环境允许不带 Bearer 前缀的令牌
func New(checker ITokenChecker, production bool, ignoreURIs []string, filters ...IFilter) *Authorizer {
	return &Authorizer{
		production: production,
		ignoreURIs: append([]string(nil), ignoreURIs...),
		filters:    filters,
		checker:    checker,
		logger:     logging.ComponentLogger("auth"),
	}
}

// IgnoreRoute 将路由标记为免检，pattern 与注册路由时一致
func (a *Authorizer) IgnoreRoute(method, pattern string) {
	a.routes.Store(method+" "+pattern, struct{}{})
}

func (a *Authorizer) routeIgnored(route string) bool {
	_, ok := a.routes.Load(route)
	return ok
}

// Check 检查请求，返回用户编号或结果码
func (a *Authorizer) Check(r *http.Request) int64 {
	if a.ignoreURI(r.URL.Path) {
		return Ignored
	}

	token := r.Header.Get(HeaderAuthorization)
	if token == "" || (!strings.HasPrefix(token, TokenBearer) && a.production) {
		return Invalid
	}
	if strings.HasPrefix(token, TokenBearer) {
		token = strings.TrimSpace(token[len(TokenBearer):])
	}

	result := a.checker.CheckToken(token)
	if result > 0 {
		for _, f := range a.filters {
			if !f.Check(token, result) {
				return Invalid
			}
		}
	}
	return result
}

func (a *Authorizer) ignoreURI(path string) bool {
	for _, uri := range a.ignoreURIs {
		if strings.HasSuffix(uri, "/**") {
			if strings.HasPrefix(path, strings.TrimSuffix(uri, "/**")) {
				return true
			}
		} else if uri == path {
			return true
		}
	}
	return false
}

type userIDContextKey struct{}

// WithUserID 在 context 中设置当前用户
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, id)
}

// UserID 返回当前用户，未登录时为 entity.Anonymous
func UserID(ctx context.Context) int64 {
	if ctx == nil {
		return entity.Anonymous
	}
	if id, ok := ctx.Value(userIDContextKey{}).(int64); ok {
		return id
	}
	return entity.Anonymous
}
