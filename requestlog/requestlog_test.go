package requestlog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goeasy/errors"
	httpx "goeasy/http"
	"goeasy/http/basic"
)

type record struct {
	entry     Entry
	status    int
	exception string
}

type recorder struct {
	mu      sync.Mutex
	records []record
}

func (r *recorder) OnPre(ctx context.Context, entry Entry) any {
	return &record{entry: entry}
}

func (r *recorder) OnPost(ctx context.Context, pre any, end time.Time, statusCode int, exception string) {
	rec := pre.(*record)
	rec.status = statusCode
	rec.exception = exception
	r.mu.Lock()
	r.records = append(r.records, *rec)
	r.mu.Unlock()
}

func setup(t *testing.T) (*recorder, *RequestLog, *basic.HttpServer) {
	t.Helper()
	rec := &recorder{}
	l := New(DefaultConfig(), rec)
	srv := basic.NewHTTPServer(httpx.DefaultWebConfig())
	srv.Use(l.Middleware())
	return rec, l, srv
}

func do(srv *basic.HttpServer, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

// TestRequestLog_Methods 测试按方法记录
func TestRequestLog_Methods(t *testing.T) {
	rec, _, srv := setup(t)
	srv.GET("/users", func(c httpx.IHttpContext) error { return c.String(http.StatusOK, "ok") })
	srv.POST("/users", func(c httpx.IHttpContext) error {
		var body map[string]any
		if err := c.BindJSON(&body); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, body)
	})

	do(srv, http.MethodGet, "/users", "")
	w := do(srv, http.MethodPost, "/users?tag=a", `{"name":"bob"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, rec.records, 1)
	r := rec.records[0]
	assert.Equal(t, "/users", r.entry.URI)
	assert.Equal(t, "POST /users", r.entry.Handler)
	assert.Equal(t, http.MethodPost, r.entry.Method)
	assert.JSONEq(t, `{"query":{"tag":"a"},"body":{"name":"bob"}}`, r.entry.Params)
	assert.Equal(t, http.StatusCreated, r.status)
	assert.Empty(t, r.exception)
}

// TestRequestLog_Rules 测试路由级记录与跳过
func TestRequestLog_Rules(t *testing.T) {
	rec, l, srv := setup(t)
	ok := func(c httpx.IHttpContext) error { return c.String(http.StatusOK, "ok") }
	srv.GET("/reports/:id", ok)
	srv.PUT("/health", ok)
	srv.POST("/login", ok)
	l.Record(http.MethodGet, "/reports/:id")
	l.Skip(http.MethodPut, "/health")
	l.Record(http.MethodPost, "/login", Ignores("body.password", "body.devices.secret"))

	do(srv, http.MethodGet, "/reports/9", "")
	do(srv, http.MethodPut, "/health", "")
	do(srv, http.MethodPost, "/login",
		`{"user":"a","password":"p","devices":[{"id":1,"secret":"x"},{"id":2,"secret":"y"}]}`)

	require.Len(t, rec.records, 2)
	assert.Equal(t, "GET /reports/:id", rec.records[0].entry.Handler)
	assert.Equal(t, "{}", rec.records[0].entry.Params)
	assert.JSONEq(t, `{"body":{"user":"a","devices":[{"id":1},{"id":2}]}}`, rec.records[1].entry.Params)
}

// TestRequestLog_Error 测试异常状态
func TestRequestLog_Error(t *testing.T) {
	rec, _, srv := setup(t)
	srv.DELETE("/users/:id", func(c httpx.IHttpContext) error {
		return errors.NewError(errors.ErrCodeNotFound, "user not found")
	})

	w := do(srv, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Len(t, rec.records, 1)
	assert.Equal(t, http.StatusNotFound, rec.records[0].status)
	assert.Contains(t, rec.records[0].exception, "user not found")
}

// TestLogProcessor 测试默认处理器
func TestLogProcessor(t *testing.T) {
	p := NewLogProcessor()
	begin := time.Now()
	pre := p.OnPre(context.Background(), Entry{Begin: begin, URI: "/x"})
	assert.Equal(t, begin, pre.(Entry).Begin)
	p.OnPost(context.Background(), pre, begin.Add(time.Second), 200, "")
}
