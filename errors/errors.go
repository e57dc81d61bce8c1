// Package errors 定义带错误码的应用错误，供各层判定与 HTTP 响应映射。
package errors

import (
	stdErrors "errors"
	"fmt"
	"maps"
)

// ErrorCode 错误代码类型
type ErrorCode string

const (
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeDuplicate 唯一约束冲突
	ErrCodeDuplicate ErrorCode = "DUPLICATE_ERROR"

	// 查询条件转换
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
	ErrCodeParse           ErrorCode = "PARSE_ERROR"

	// 基础设施
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"
	ErrCodeCache         ErrorCode = "CACHE_ERROR"
	ErrCodeSerialization ErrorCode = "SERIALIZATION_ERROR"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

// IError 错误接口
type IError interface {
	error

	Code() ErrorCode
	Message() string
	Cause() error
	// Details 附加信息，如校验失败的字段、缓存键
	Details() map[string]any

	WithDetails(details map[string]any) IError
	WithContext(key string, value any) IError
}

// AppError 应用错误实现，值不可变，With* 返回副本
type AppError struct {
	code    ErrorCode
	message string
	cause   error
	details map[string]any
}

// NewError 创建新错误
func NewError(code ErrorCode, message string) IError {
	return &AppError{code: code, message: message}
}

// Newf 创建带格式化消息的错误
func Newf(code ErrorCode, format string, args ...any) IError {
	return &AppError{code: code, message: fmt.Sprintf(format, args...)}
}

// WrapError 包装错误，err 为 nil 时返回 nil
func WrapError(err error, code ErrorCode, message string) IError {
	if err == nil {
		return nil
	}
	return &AppError{code: code, message: message, cause: err}
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *AppError) Code() ErrorCode { return e.code }
func (e *AppError) Message() string { return e.message }
func (e *AppError) Cause() error    { return e.cause }
func (e *AppError) Unwrap() error   { return e.cause }

// Details 返回详情的副本
func (e *AppError) Details() map[string]any {
	out := make(map[string]any, len(e.details))
	maps.Copy(out, e.details)
	return out
}

// Is 错误码相同的 AppError 视为同一类错误
func (e *AppError) Is(target error) bool {
	var other *AppError
	if stdErrors.As(target, &other) {
		return e.code == other.code
	}
	return false
}

func (e *AppError) WithDetails(details map[string]any) IError {
	c := e.clone()
	maps.Copy(c.details, details)
	return c
}

func (e *AppError) WithContext(key string, value any) IError {
	c := e.clone()
	c.details[key] = value
	return c
}

func (e *AppError) clone() *AppError {
	c := *e
	c.details = e.Details()
	return &c
}

// IsNotFound 是否为未找到错误
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrCodeNotFound)
}

// IsValidation 是否为校验错误
func IsValidation(err error) bool {
	return IsErrorCode(err, ErrCodeValidation)
}

// IsDuplicate 是否为唯一约束冲突
func IsDuplicate(err error) bool {
	return IsErrorCode(err, ErrCodeDuplicate)
}

// IsBadRequest 判断错误是否由调用方输入引起（参数、校验、解析、类型不支持）
func IsBadRequest(err error) bool {
	switch GetErrorCode(err) {
	case ErrCodeInvalidInput, ErrCodeValidation, ErrCodeParse, ErrCodeUnsupportedType:
		return true
	}
	return false
}

// IsErrorCode 错误链上最近的 AppError 是否为指定错误码
func IsErrorCode(err error, code ErrorCode) bool {
	return err != nil && GetErrorCode(err) == code
}

// GetErrorCode 获取错误码；nil 返回空串，非 AppError 视为内部错误
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code
	}
	return ErrCodeInternal
}
