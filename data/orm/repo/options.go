package repo

import (
	"context"

	dbsql "goeasy/data/db/sql"
	"goeasy/data/orm"
	"goeasy/domain/entity"
	"goeasy/logging"
	"goeasy/query"
)

// filter 组合谓词与逻辑删除条件
func (r *Repo[T]) filter(pred query.Predicate[T]) []orm.QueryOption {
	opts := make([]orm.QueryOption, 0, 2)
	if r.soft {
		opts = append(opts, orm.WithWhere(
			"("+ColumnIsDeleted+" IS NULL OR "+ColumnIsDeleted+" <> ?)", entity.BoolTrue))
	}
	if pred != nil {
		if where, args := pred.ToSQL(); where != "" {
			opts = append(opts, orm.WithWhere(where, args...))
		}
	}
	return opts
}

// ordering 将排序属性映射为列，非法列名丢弃
func (r *Repo[T]) ordering(ctx context.Context, sort query.Sort) []orm.QueryOption {
	opts := make([]orm.QueryOption, 0, len(sort.Orders))
	for _, o := range sort.Orders {
		col := r.column(o.Property)
		if !dbsql.IsSafeIdentifier(col) {
			r.logger.Debug(ctx, "drop unsafe sort property", logging.String("property", o.Property))
			continue
		}
		opts = append(opts, orm.WithOrderBy(col, o.Desc))
	}
	return opts
}

func byID(id int64) orm.QueryOption {
	return orm.WithWhere(ColumnID+" = ?", id)
}
