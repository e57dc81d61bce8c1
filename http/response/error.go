package response

import (
	stdErrors "errors"
	"fmt"
	"net/http"

	"goeasy/errors"
	httpx "goeasy/http"
	"goeasy/i18n"
	"goeasy/logging"
)

// CodeError 携带响应代码的错误，处理器返回后按该代码响应
type CodeError struct {
	Code Code
	Args []any
}

// NewCodeError 创建响应代码错误，args 用于翻译消息
func NewCodeError(code Code, args ...any) *CodeError {
	return &CodeError{Code: code, Args: args}
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("response code: %s, %s", e.Code.Code, e.Code.Key())
}

// FromError 将错误映射为响应
//
// 输入类错误（参数、校验、解析、类型）保留错误消息，其余使用响应码的翻译消息。
func FromError(err error) *Response {
	var codeErr *CodeError
	if stdErrors.As(err, &codeErr) {
		return New(codeErr.Code)
	}

	err = errors.Normalize(err)
	switch {
	case errors.IsNotFound(err):
		return New(NotFound)
	case errors.IsErrorCode(err, errors.ErrCodeUnauthorized):
		return New(Unauthorized)
	case errors.IsErrorCode(err, errors.ErrCodeForbidden):
		return New(Forbidden)
	case errors.IsDuplicate(err):
		return New(Conflict)
	case errors.IsBadRequest(err):
		var appErr errors.IError
		if stdErrors.As(err, &appErr) {
			return NewWithMessage(BadRequest, appErr.Message())
		}
		return New(BadRequest)
	}
	return New(InternalServerError)
}

// Send 写出响应，状态码取自响应头
func Send(c httpx.IHttpContext, body IEnvelope) error {
	status := Prepare(c.Context(), body)
	return c.JSON(status, body)
}

// SendError 记录错误并写出对应的错误响应，响应已写出时直接返回
func SendError(c httpx.IHttpContext, err error) error {
	if c.Written() {
		return nil
	}

	resp := FromError(err)
	code := resp.Header.Code
	fields := []logging.Field{
		logging.String("method", c.GetMethod()),
		logging.String("path", c.GetPath()),
		logging.String("code", code.Code),
		logging.Error(err),
	}
	logger := logging.ComponentLogger("response")
	if code.StatusCode >= http.StatusInternalServerError {
		logger.Error(c.Context(), "request failed", fields...)
	} else {
		logger.Warn(c.Context(), "request rejected", fields...)
	}

	var codeErr *CodeError
	if stdErrors.As(err, &codeErr) && len(codeErr.Args) > 0 {
		resp.Header.Message = i18n.T(c.Context(), code.Key(), codeErr.Args...)
	}
	return Send(c, resp)
}
