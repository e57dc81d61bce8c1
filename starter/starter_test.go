package starter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"goeasy/config"
	dbcore "goeasy/data/db"
	"goeasy/domain/entity"
	"goeasy/errors"
	"goeasy/http/response"
	"goeasy/logging"
	"goeasy/query"
	"goeasy/requestlog"
)

type note struct {
	entity.Model
	Title string `db:"title" validate:"required"`
}

type noteRequest struct {
	Title *string `json:"title"`
}

type noteResponse struct {
	response.DataResponse
	Title string `json:"title"`
}

type captured struct {
	mu      sync.Mutex
	entries []requestlog.Entry
}

func (c *captured) OnPre(ctx context.Context, entry requestlog.Entry) any {
	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()
	return nil
}

func (c *captured) OnPost(ctx context.Context, pre any, end time.Time, statusCode int, exception string) {
}

func testProps() *config.Properties {
	p := config.Default()
	p.Production = false
	p.Secret = "test-secret"
	p.Database = dbcore.DBConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1}
	p.Web.Host = "127.0.0.1"
	p.Web.Port = 0
	p.RequestLog.Enabled = true
	return p
}

var messages = fstest.MapFS{
	"messages.yaml": {Data: []byte("note.create.success: created\n")},
}

func do(s *Starter, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	s.Server().Handler().ServeHTTP(w, req)
	return w
}

// TestStarter_Wiring 测试组件组装与授权
func TestStarter_Wiring(t *testing.T) {
	logs := &captured{}
	s, err := New(testProps(),
		WithLogger(logging.NewNoopLogger()),
		WithMessages(messages),
		WithRequestLogProcessor(logs))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, "embedded", s.Cache().BackendName())
	require.NotNil(t, s.Database())
	_, err = s.Database().Exec(context.Background(), `CREATE TABLE note (
		id INTEGER PRIMARY KEY, creator INTEGER, create_time DATETIME,
		updater INTEGER, update_time DATETIME, is_deleted TEXT,
		deleter INTEGER, delete_time DATETIME, title TEXT)`)
	require.NoError(t, err)

	paths := query.NewPathRegistry[note](query.String[note]("title", "title", func(n *note) *string { return &n.Title }))
	svc, err := Resource[note, *note, noteRequest, noteResponse](s, "/api/notes", "note", paths)
	require.NoError(t, err)

	w := do(s, http.MethodGet, "/i18n/messages", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "created")

	w = do(s, http.MethodGet, "/api/notes/find/list", "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "A000403")

	token, err := s.Tokens().Token(5, time.Hour)
	require.NoError(t, err)
	w = do(s, http.MethodPost, "/api/notes/create", `{"title":"hello"}`, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"message":"created"`)

	// 非生产模式接受不带前缀的令牌
	w = do(s, http.MethodGet, "/api/notes/find/list?title=hello", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	items, err := svc.FindAll(context.Background(), nil, query.ByID())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].Creator)

	logs.mu.Lock()
	defer logs.mu.Unlock()
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "POST /api/notes/create", logs.entries[0].Handler)
}

// TestStarter_Config 测试配置错误
func TestStarter_Config(t *testing.T) {
	p := testProps()
	p.Secret = ""
	_, err := New(p, WithLogger(logging.NewNoopLogger()), WithMessages(messages))
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))

	p = testProps()
	p.Database = dbcore.DBConfig{}
	p.Authorize.Enabled = false
	p.CacheMetrics = true
	s, err := New(p, WithLogger(logging.NewNoopLogger()), WithMessages(messages),
		WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	assert.Nil(t, s.Database())
	_, err = Resource[note, *note, noteRequest, noteResponse](s, "/api/notes", "note", nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeConfiguration))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

// TestStarter_Run 测试启动与优雅退出
func TestStarter_Run(t *testing.T) {
	s, err := New(testProps(), WithLogger(logging.NewNoopLogger()), WithMessages(messages),
		WithShutdownTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.NoError(t, s.Run(ctx))
}
