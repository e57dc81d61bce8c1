package orm

import (
	"context"
	"database/sql"

	"goeasy/data/db"
)

// IOrm ORM 适配器入口
type IOrm interface {
	// Model 返回指定模型的操作入口
	Model(meta *ModelMeta) IModel
	// Begin 开启事务会话
	Begin(ctx context.Context) (IOrmSession, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (IOrmSession, error)
	// Database 返回绑定的数据库
	Database() db.IDatabase
}

// IOrmSession 事务会话
type IOrmSession interface {
	IOrm
	Commit() error
	Rollback() error
}

// IModel 模型级别的基础操作
type IModel interface {
	Meta() *ModelMeta

	// First 查询单条，未命中返回 ErrNotFound
	First(ctx context.Context, dest any, opts ...QueryOption) error
	// Find 查询多条到 *[]T
	Find(ctx context.Context, dest any, opts ...QueryOption) error
	Count(ctx context.Context, opts ...QueryOption) (int64, error)

	Create(ctx context.Context, entities ...any) error
	// Save 以实体全部字段更新符合条件的记录，返回影响行数
	Save(ctx context.Context, entity any, opts ...QueryOption) (int64, error)
	// UpdateValues 按列名更新，返回影响行数
	UpdateValues(ctx context.Context, values map[string]any, opts ...QueryOption) (int64, error)
	Delete(ctx context.Context, opts ...QueryOption) (int64, error)
}
