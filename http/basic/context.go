package basic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"goeasy/errors"
	httpx "goeasy/http"
)

// HttpContext 基于 net/http 的 IHttpContext 实现
type HttpContext struct {
	request  *http.Request
	writer   http.ResponseWriter
	params   map[string]string
	ctx      context.Context
	status   int
	written  bool
	aborted  bool
	values   map[string]any
	body     []byte
	bodyRead bool
}

// NewHttpContext 创建请求上下文
func NewHttpContext(w http.ResponseWriter, r *http.Request) *HttpContext {
	return &HttpContext{
		request: r,
		writer:  w,
		params:  make(map[string]string),
		ctx:     r.Context(),
		status:  http.StatusOK,
		values:  make(map[string]any),
	}
}

func (c *HttpContext) GetMethod() string           { return c.request.Method }
func (c *HttpContext) GetPath() string             { return c.request.URL.Path }
func (c *HttpContext) GetQuery(key string) string  { return c.request.URL.Query().Get(key) }
func (c *HttpContext) GetHeader(key string) string { return c.request.Header.Get(key) }
func (c *HttpContext) GetQueryParams() url.Values  { return c.request.URL.Query() }
func (c *HttpContext) GetRequest() *http.Request   { return c.request }
func (c *HttpContext) UserAgent() string           { return c.request.UserAgent() }

// GetParam 读取路径参数
func (c *HttpContext) GetParam(key string) string {
	if v, ok := c.params[key]; ok {
		return v
	}
	return chi.URLParam(c.request, key)
}

// SetParam 手动设置路径参数
func (c *HttpContext) SetParam(key, value string) { c.params[key] = value }

func (c *HttpContext) GetCookie(name string) string {
	cookie, err := c.request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ClientIP 返回客户端地址，RealIP 中间件已按代理头改写 RemoteAddr
func (c *HttpContext) ClientIP() string {
	host, _, err := net.SplitHostPort(c.request.RemoteAddr)
	if err != nil {
		return c.request.RemoteAddr
	}
	return host
}

// GetBody 读取并缓存请求体
func (c *HttpContext) GetBody() ([]byte, error) {
	if c.bodyRead {
		return c.body, nil
	}
	c.bodyRead = true
	if c.request.Body == nil || c.request.Body == http.NoBody {
		return nil, nil
	}
	defer c.request.Body.Close()
	body, err := io.ReadAll(c.request.Body)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeInvalidInput, "failed to read request body")
	}
	c.body = body
	c.request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func (c *HttpContext) BindJSON(obj any) error {
	body, err := c.GetBody()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.NewError(errors.ErrCodeInvalidInput, "request body is empty")
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return errors.WrapError(err, errors.ErrCodeInvalidInput, "failed to parse JSON")
	}
	return nil
}

func (c *HttpContext) SetStatus(code int)            { c.status = code }
func (c *HttpContext) SetHeader(key, value string)   { c.writer.Header().Set(key, value) }
func (c *HttpContext) SetCookie(cookie *http.Cookie) { http.SetCookie(c.writer, cookie) }
func (c *HttpContext) Status() int                   { return c.status }
func (c *HttpContext) Written() bool                 { return c.written }

func (c *HttpContext) JSON(code int, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeSerialization, "failed to serialize JSON")
	}
	return c.Data(code, "application/json; charset=utf-8", data)
}

func (c *HttpContext) String(code int, text string) error {
	return c.Data(code, "text/plain; charset=utf-8", []byte(text))
}

func (c *HttpContext) Data(code int, contentType string, data []byte) error {
	if c.written {
		return errors.NewError(errors.ErrCodeInternal, "response already written")
	}
	c.SetHeader("Content-Type", contentType)
	c.SetStatus(code)
	c.writer.WriteHeader(c.status)
	c.written = true
	c.values[httpx.ResponseWrittenKey] = true
	_, err := c.writer.Write(data)
	return err
}

func (c *HttpContext) Context() context.Context       { return c.ctx }
func (c *HttpContext) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *HttpContext) Set(key string, value any)  { c.values[key] = value }
func (c *HttpContext) Get(key string) (any, bool) { v, ok := c.values[key]; return v, ok }
func (c *HttpContext) MustGet(key string) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	panic("Key \"" + key + "\" does not exist")
}

func (c *HttpContext) Abort() { c.aborted = true }
func (c *HttpContext) AbortWithStatusJSON(code int, jsonObj any) {
	_ = c.JSON(code, jsonObj)
	c.Abort()
}
func (c *HttpContext) IsAborted() bool { return c.aborted }

func (c *HttpContext) GetRaw() any {
	return map[string]any{"request": c.request, "response": c.writer}
}
