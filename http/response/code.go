// Package response 定义统一的响应信封与错误到响应码的映射
package response

import "net/http"

// Code 响应代码
type Code struct {
	Code    string `json:"code"`
	Success bool   `json:"success"`
	// StatusCode 对应的 HTTP 状态码
	StatusCode int `json:"-"`
	// MessageKey 消息键，为空时为 response.<code>
	MessageKey string `json:"-"`
}

// NewCode 创建响应代码
func NewCode(code string, statusCode int, success bool) Code {
	return Code{Code: code, Success: success, StatusCode: statusCode}
}

// WithMessageKey 返回使用指定消息键的副本
func (c Code) WithMessageKey(key string) Code {
	c.MessageKey = key
	return c
}

// Key 返回消息键
func (c Code) Key() string {
	if c.MessageKey == "" {
		return "response." + c.Code
	}
	return c.MessageKey
}

// 预定义响应代码
var (
	OK                  = NewCode("A000200", http.StatusOK, true)
	Accepted            = NewCode("A000202", http.StatusAccepted, true)
	BadRequest          = NewCode("A000400", http.StatusBadRequest, false)
	Unauthorized        = NewCode("A000401", http.StatusUnauthorized, false)
	Forbidden           = NewCode("A000403", http.StatusForbidden, false)
	NotFound            = NewCode("A000404", http.StatusNotFound, false)
	Conflict            = NewCode("A000409", http.StatusConflict, false)
	InternalServerError = NewCode("A000500", http.StatusInternalServerError, false)
)
