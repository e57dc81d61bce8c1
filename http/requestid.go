package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// WithRequestID 在 context 中设置请求 ID
//
// 示例:
//
//	ctx := httpx.WithRequestID(ctx, "req-123")
//	id := httpx.GetRequestID(ctx) // "req-123"
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// GetRequestID 从 context 中获取请求 ID，不存在时返回空字符串
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateRequestID 生成新的请求 ID
func GenerateRequestID() string {
	return uuid.NewString()
}

// ExtractRequestID 从请求头提取请求 ID，缺失时生成新的
func ExtractRequestID(r *http.Request) string {
	if r != nil {
		if id := r.Header.Get(HeaderRequestID); id != "" {
			return id
		}
	}
	return GenerateRequestID()
}
