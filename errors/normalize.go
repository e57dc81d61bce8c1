package errors

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"strings"
)

// 各驱动唯一约束冲突的错误文本：sqlite / postgres / mysql
var duplicateMarkers = []string{
	"unique constraint failed",
	"duplicate key value violates unique constraint",
	"duplicate entry",
}

// Normalize 将基础设施层的常见错误规范化为 AppError。
// 已是 AppError 的原样返回，未识别的错误保持原样。
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return err
	}

	switch {
	case stdErrors.Is(err, sql.ErrNoRows):
		return WrapError(err, ErrCodeNotFound, "记录未找到")
	case stdErrors.Is(err, context.DeadlineExceeded):
		return WrapError(err, ErrCodeTimeout, "操作超时")
	case stdErrors.Is(err, context.Canceled):
		return WrapError(err, ErrCodeTimeout, "操作已取消")
	case isDuplicate(err):
		return WrapError(err, ErrCodeDuplicate, "数据重复")
	}

	return err
}

func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
