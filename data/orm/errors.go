package orm

import "goeasy/errors"

var (
	// ErrNotFound First 未命中任何记录
	ErrNotFound = errors.NewError(errors.ErrCodeNotFound, "record not found")
	// ErrUnsupported 适配器不支持的操作
	ErrUnsupported = errors.NewError(errors.ErrCodeInternal, "operation not supported by orm adapter")
)
