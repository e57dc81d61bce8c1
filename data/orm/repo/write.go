package repo

import (
	"context"
	"time"

	"goeasy/domain/entity"
	"goeasy/errors"
)

// Insert 批量插入
func (r *Repo[T]) Insert(ctx context.Context, entities ...*T) error {
	if len(entities) == 0 {
		return nil
	}
	items := make([]any, len(entities))
	for i, e := range entities {
		items[i] = e
	}
	if err := r.model.Create(ctx, items...); err != nil {
		return errors.WrapDbError(ctx, err, "insert")
	}
	return nil
}

// Update 按主键写入实体的全部列（创建信息除外），记录不存在时返回 NOT_FOUND
func (r *Repo[T]) Update(ctx context.Context, id int64, e *T) error {
	n, err := r.model.Save(ctx, e, byID(id))
	if err != nil {
		return errors.WrapDbError(ctx, err, "update")
	}
	if n == 0 {
		return errors.Newf(errors.ErrCodeNotFound, "record %d not found", id)
	}
	return nil
}

// UpdateValues 按主键更新指定列
func (r *Repo[T]) UpdateValues(ctx context.Context, id int64, values map[string]any) (bool, error) {
	n, err := r.model.UpdateValues(ctx, values, append(r.filter(nil), byID(id))...)
	if err != nil {
		return false, errors.WrapDbError(ctx, err, "update values")
	}
	return n > 0, nil
}

// LogicalDelete 标记删除，返回是否有记录被标记
func (r *Repo[T]) LogicalDelete(ctx context.Context, id, deleter int64, at time.Time) (bool, error) {
	if !r.soft {
		return false, errors.NewError(errors.ErrCodeInvalidInput, "entity does not support logical delete")
	}
	return r.UpdateValues(ctx, id, map[string]any{
		ColumnIsDeleted: entity.BoolTrue,
		ColumnDeleter:   deleter,
		ColumnDelete:    at,
	})
}

// DeleteByID 物理删除，返回是否有记录被删除
func (r *Repo[T]) DeleteByID(ctx context.Context, id int64) (bool, error) {
	n, err := r.model.Delete(ctx, byID(id))
	if err != nil {
		return false, errors.WrapDbError(ctx, err, "delete")
	}
	return n > 0, nil
}
