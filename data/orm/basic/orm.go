// Package basic 是基于 goeasy/data/db 与 goeasy/data/db/sql 的轻量 orm.IOrm 实现。
//
// 实体字段通过 `db` 标签映射到列，缺省为字段名的 snake_case；
// 内嵌结构体（如 entity.Model）会被展开。
package basic

import (
	"context"
	"database/sql"
	"reflect"
	"sort"
	"strings"

	dbcore "goeasy/data/db"
	dbsql "goeasy/data/db/sql"
	"goeasy/data/orm"
	"goeasy/errors"
)

// Orm 基于 IDatabase 的 IOrm 实现
type Orm struct {
	db    dbcore.IDatabase
	sql   dbsql.ISql
	metas *metaCache
}

// New 创建 Orm
func New(db dbcore.IDatabase) *Orm {
	return &Orm{db: db, sql: dbsql.New(db), metas: newMetaCache()}
}

// Model 返回模型操作入口，表名为空时从 TableName() 推断
func (o *Orm) Model(meta *orm.ModelMeta) orm.IModel {
	if meta == nil {
		panic("basic.Orm: ModelMeta cannot be nil")
	}
	table := meta.Table
	if table == "" {
		if tn, ok := meta.Model.(interface{ TableName() string }); ok {
			table = tn.TableName()
		}
	}
	if table == "" {
		panic("basic.Orm: table name is empty")
	}
	return &model{orm: o, meta: meta, table: table}
}

func (o *Orm) Begin(ctx context.Context) (orm.IOrmSession, error) {
	return o.BeginTx(ctx, nil)
}

func (o *Orm) BeginTx(ctx context.Context, opts *sql.TxOptions) (orm.IOrmSession, error) {
	tx, err := o.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &session{
		Orm: &Orm{db: tx, sql: dbsql.New(tx), metas: o.metas},
		tx:  tx,
	}, nil
}

func (o *Orm) Database() dbcore.IDatabase { return o.db }

// session 持有事务的 Orm
type session struct {
	*Orm
	tx dbcore.ITransaction
}

func (s *session) Commit() error   { return s.tx.Commit() }
func (s *session) Rollback() error { return s.tx.Rollback() }

type model struct {
	orm   *Orm
	meta  *orm.ModelMeta
	table string
}

func (m *model) Meta() *orm.ModelMeta { return m.meta }

func (m *model) selectBuilder(qo orm.QueryOptions) dbsql.ISelectBuilder {
	b := m.orm.sql.Select(qo.Select...).From(m.table)
	for _, w := range qo.Where {
		b = b.Where(w.Expr, w.Args...)
	}
	if len(qo.OrderBy) > 0 {
		b = b.OrderBy(orderByExpr(qo.OrderBy))
	}
	if qo.Limit > 0 {
		b = b.Limit(qo.Limit)
	}
	if qo.Offset > 0 {
		b = b.Offset(qo.Offset)
	}
	return b
}

func (m *model) First(ctx context.Context, dest any, opts ...orm.QueryOption) error {
	qo := orm.CollectQueryOptions(opts...)
	qo.Limit = 1
	rows, err := m.selectBuilder(qo).Query(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return orm.ErrNotFound
	}
	return m.orm.scan(rows, dest)
}

func (m *model) Find(ctx context.Context, dest any, opts ...orm.QueryOption) error {
	rows, err := m.selectBuilder(orm.CollectQueryOptions(opts...)).Query(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()
	return m.orm.scan(rows, dest)
}

// Count 只使用 Where 条件
func (m *model) Count(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	qo := orm.CollectQueryOptions(opts...)
	b := m.orm.sql.Select("COUNT(*)").From(m.table)
	for _, w := range qo.Where {
		b = b.Where(w.Expr, w.Args...)
	}
	row, err := b.QueryRow(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Create 批量插入，所有实体须为同一类型
func (m *model) Create(ctx context.Context, entities ...any) error {
	if len(entities) == 0 {
		return nil
	}
	sm, err := m.orm.metas.of(entities[0])
	if err != nil {
		return err
	}

	cols := sm.columns(func(f fieldInfo) bool { return !f.auto })
	builder := m.orm.sql.InsertInto(m.table).Columns(cols...)
	for _, e := range entities {
		v, err := structValue(e)
		if err != nil {
			return err
		}
		if v.Type() != sm.typ {
			return errors.Newf(errors.ErrCodeInvalidInput, "cannot insert %s into batch of %s", v.Type(), sm.typ)
		}
		builder = builder.Values(sm.values(v, cols)...)
	}
	_, err = builder.Exec(ctx)
	return err
}

// Save 写入除主键与 Omit 外的全部列
func (m *model) Save(ctx context.Context, entity any, opts ...orm.QueryOption) (int64, error) {
	sm, err := m.orm.metas.of(entity)
	if err != nil {
		return 0, err
	}
	v, err := structValue(entity)
	if err != nil {
		return 0, err
	}

	pk := m.meta.PK()
	cols := sm.columns(func(f fieldInfo) bool {
		return f.column != pk && !m.meta.Omitted(f.column)
	})
	builder := m.orm.sql.Update(m.table)
	for i, val := range sm.values(v, cols) {
		builder = builder.Set(cols[i], val)
	}
	for _, w := range orm.CollectQueryOptions(opts...).Where {
		builder = builder.Where(w.Expr, w.Args...)
	}
	return affected(builder.Exec(ctx))
}

// UpdateValues 列按名称排序后写入，保证生成的 SQL 稳定
func (m *model) UpdateValues(ctx context.Context, values map[string]any, opts ...orm.QueryOption) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	cols := make([]string, 0, len(values))
	for c := range values {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	builder := m.orm.sql.Update(m.table)
	for _, c := range cols {
		builder = builder.Set(c, values[c])
	}
	for _, w := range orm.CollectQueryOptions(opts...).Where {
		builder = builder.Where(w.Expr, w.Args...)
	}
	return affected(builder.Exec(ctx))
}

// Delete 无条件删除由构建器拒绝
func (m *model) Delete(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	builder := m.orm.sql.DeleteFrom(m.table)
	for _, w := range orm.CollectQueryOptions(opts...).Where {
		builder = builder.Where(w.Expr, w.Args...)
	}
	return affected(builder.Exec(ctx))
}

func affected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func orderByExpr(orders []orm.OrderBy) string {
	parts := make([]string, 0, len(orders))
	for _, o := range orders {
		if o.Desc {
			parts = append(parts, o.Column+" DESC")
		} else {
			parts = append(parts, o.Column+" ASC")
		}
	}
	return strings.Join(parts, ", ")
}

func structValue(entity any) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, errors.Newf(errors.ErrCodeInvalidInput, "entity must be struct or *struct, got %T", entity)
	}
	return v, nil
}
