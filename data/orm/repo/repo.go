// Package repo 提供基于 goeasy/data/orm 的泛型仓储。
//
// 查询条件来自 query.Predicate，排序属性经 query.PathRegistry 映射为列名；
// 实体实现 entity.ISoftDeletable 时，逻辑删除的记录对所有读操作不可见。
package repo

import (
	"goeasy/data/orm"
	"goeasy/domain/entity"
	"goeasy/logging"
	"goeasy/query"
)

// 逻辑删除列
const (
	ColumnID        = "id"
	ColumnIsDeleted = "is_deleted"
	ColumnDeleter   = "deleter"
	ColumnDelete    = "delete_time"
)

// Repo 通用仓储
type Repo[T any] struct {
	orm      orm.IOrm
	meta     *orm.ModelMeta
	model    orm.IModel
	registry *query.PathRegistry[T]
	soft     bool
	logger   logging.Logger
}

// New 创建仓储；registry 可为 nil，此时排序属性直接作为列名
func New[T any](o orm.IOrm, table string, registry *query.PathRegistry[T]) *Repo[T] {
	meta := &orm.ModelMeta{
		Model:      new(T),
		Table:      table,
		PrimaryKey: ColumnID,
		Omit:       []string{"creator", "create_time"},
	}
	_, soft := any(new(T)).(entity.ISoftDeletable)
	return &Repo[T]{
		orm:      o,
		meta:     meta,
		model:    o.Model(meta),
		registry: registry,
		soft:     soft,
		logger:   logging.ComponentLogger("repo").WithFields(logging.String("table", table)),
	}
}

// WithTx 返回绑定到事务会话的仓储副本
func (r *Repo[T]) WithTx(session orm.IOrmSession) *Repo[T] {
	cp := *r
	cp.orm = session
	cp.model = session.Model(r.meta)
	return &cp
}

// Orm 返回绑定的 ORM
func (r *Repo[T]) Orm() orm.IOrm { return r.orm }

// Registry 返回属性注册表
func (r *Repo[T]) Registry() *query.PathRegistry[T] { return r.registry }

// SoftDelete 是否启用逻辑删除过滤
func (r *Repo[T]) SoftDelete() bool { return r.soft }

func (r *Repo[T]) column(property string) string {
	if r.registry == nil {
		return property
	}
	return r.registry.Column(property)
}
