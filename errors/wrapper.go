package errors

import (
	"context"
	"fmt"

	"goeasy/logging"
)

// wrapWithLog 包装错误并以 Warn 级别记录
func wrapWithLog(ctx context.Context, err error, code ErrorCode, msg string, fields ...logging.Field) error {
	all := append([]logging.Field{
		logging.Error(err),
		logging.String("error_code", string(code)),
	}, fields...)
	logging.ComponentLogger("errors").Warn(ctx, msg, all...)
	return WrapError(err, code, msg)
}

// WrapDbError 包装数据库错误。未找到与唯一约束冲突保留各自的错误码，
// 其余记录日志后归为 DATABASE_ERROR
func WrapDbError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	err = Normalize(err)
	switch GetErrorCode(err) {
	case ErrCodeNotFound:
		return WrapError(err, ErrCodeNotFound, operation)
	case ErrCodeDuplicate:
		return WrapError(err, ErrCodeDuplicate, operation)
	}

	return wrapWithLog(ctx, err, ErrCodeDatabase,
		fmt.Sprintf("database operation failed: %s", operation),
		logging.String("operation", operation),
	)
}

// WrapCacheError 包装缓存后端错误，已带错误码的错误原样返回
func WrapCacheError(ctx context.Context, err error, operation, key string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(IError); ok {
		return err
	}
	return wrapWithLog(ctx, err, ErrCodeCache,
		fmt.Sprintf("cache operation failed: %s", operation),
		logging.String("operation", operation),
		logging.String("key", key),
	)
}
