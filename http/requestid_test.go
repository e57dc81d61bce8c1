package http

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWithRequestID 测试设置请求 ID
func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

// TestGetRequestID_NotExists 测试获取不存在的请求 ID
func TestGetRequestID_NotExists(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetRequestID(nil))
}

// TestGenerateRequestID 测试生成请求 ID
func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
	assert.Len(t, id1, 36)
}

// TestExtractRequestID 测试从请求头提取
func TestExtractRequestID(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(HeaderRequestID, "from-header")
	assert.Equal(t, "from-header", ExtractRequestID(r))

	r = httptest.NewRequest("GET", "/", nil)
	assert.Len(t, ExtractRequestID(r), 36)
	assert.Len(t, ExtractRequestID(nil), 36)
}

// TestWebConfig_Addr 测试监听地址
func TestWebConfig_Addr(t *testing.T) {
	cfg := DefaultWebConfig()
	assert.Equal(t, ":8080", cfg.Addr())

	cfg.Host = "127.0.0.1"
	cfg.Port = 9000
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, []string{"http://localhost"}, DefaultWebConfig().CORS.AllowedOrigins)
}
