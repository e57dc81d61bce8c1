package repo

import (
	"context"

	"goeasy/data/orm"
	"goeasy/errors"
	"goeasy/query"
)

// FindByID 按主键查询，不存在或已逻辑删除时返回 NOT_FOUND
func (r *Repo[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var e T
	opts := append(r.filter(nil), byID(id))
	if err := r.model.First(ctx, &e, opts...); err != nil {
		return nil, errors.WrapDbError(ctx, err, "find by id")
	}
	return &e, nil
}

// FindAll 按谓词与排序查询全部
func (r *Repo[T]) FindAll(ctx context.Context, pred query.Predicate[T], sort query.Sort) ([]T, error) {
	opts := append(r.filter(pred), r.ordering(ctx, sort)...)
	items := make([]T, 0)
	if err := r.model.Find(ctx, &items, opts...); err != nil {
		return nil, errors.WrapDbError(ctx, err, "find all")
	}
	return items, nil
}

// FindPage 分页查询
func (r *Repo[T]) FindPage(ctx context.Context, pred query.Predicate[T], pageable query.Pageable) (*Page[T], error) {
	total, err := r.Count(ctx, pred)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if total > int64(pageable.Offset()) {
		opts := append(r.filter(pred), r.ordering(ctx, pageable.Sort)...)
		opts = append(opts, orm.WithLimit(pageable.Size), orm.WithOffset(pageable.Offset()))
		if err := r.model.Find(ctx, &items, opts...); err != nil {
			return nil, errors.WrapDbError(ctx, err, "find page")
		}
	}
	return NewPage(items, pageable, total), nil
}

// Count 统计符合谓词的记录数
func (r *Repo[T]) Count(ctx context.Context, pred query.Predicate[T]) (int64, error) {
	n, err := r.model.Count(ctx, r.filter(pred)...)
	if err != nil {
		return 0, errors.WrapDbError(ctx, err, "count")
	}
	return n, nil
}

// Exists 是否存在符合谓词的记录
func (r *Repo[T]) Exists(ctx context.Context, pred query.Predicate[T]) (bool, error) {
	n, err := r.Count(ctx, pred)
	return n > 0, err
}
