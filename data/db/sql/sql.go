// Package sql 提供基于 core.IDatabase 的轻量 SQL 构建器。
//
// 表名与列名在 Build 时校验并按方言加引号；条件片段由调用方提供，
// 使用 ? 占位符，执行时由数据库实现重绑定。
package sql

import (
	"context"
	"database/sql"
	"strings"

	core "goeasy/data/db"
	"goeasy/data/db/dialect"
	"goeasy/errors"
)

// ISql 统一的 SQL 构建入口
type ISql interface {
	Select(columns ...string) ISelectBuilder
	InsertInto(table string) IInsertBuilder
	Update(table string) IUpdateBuilder
	DeleteFrom(table string) IDeleteBuilder
}

// ISelectBuilder 构建 SELECT 语句
type ISelectBuilder interface {
	From(table string) ISelectBuilder
	Where(cond string, args ...any) ISelectBuilder
	OrderBy(expr string) ISelectBuilder
	Limit(n int) ISelectBuilder
	Offset(n int) ISelectBuilder
	Build() (string, []any, error)
	Query(ctx context.Context) (core.IRows, error)
	QueryRow(ctx context.Context) (core.IRow, error)
}

// IInsertBuilder 构建 INSERT 语句，支持多行
type IInsertBuilder interface {
	Columns(cols ...string) IInsertBuilder
	Values(vals ...any) IInsertBuilder
	Build() (string, []any, error)
	Exec(ctx context.Context) (sql.Result, error)
}

// IUpdateBuilder 构建 UPDATE 语句
type IUpdateBuilder interface {
	Set(column string, val any) IUpdateBuilder
	Where(cond string, args ...any) IUpdateBuilder
	Build() (string, []any, error)
	Exec(ctx context.Context) (sql.Result, error)
}

// IDeleteBuilder 构建 DELETE 语句
type IDeleteBuilder interface {
	Where(cond string, args ...any) IDeleteBuilder
	Build() (string, []any, error)
	Exec(ctx context.Context) (sql.Result, error)
}

type sqlImpl struct {
	db      core.IDatabase
	dialect dialect.Dialect
}

// New 创建 ISql，方言从 db 推断
func New(db core.IDatabase) ISql {
	return &sqlImpl{db: db, dialect: dialect.FromDatabase(db)}
}

func (s *sqlImpl) Select(columns ...string) ISelectBuilder {
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	return &selectBuilder{db: s.db, dialect: s.dialect, cols: columns}
}

func (s *sqlImpl) InsertInto(table string) IInsertBuilder {
	return &insertBuilder{db: s.db, dialect: s.dialect, table: table}
}

func (s *sqlImpl) Update(table string) IUpdateBuilder {
	return &updateBuilder{db: s.db, dialect: s.dialect, table: table}
}

func (s *sqlImpl) DeleteFrom(table string) IDeleteBuilder {
	return &deleteBuilder{db: s.db, dialect: s.dialect, table: table}
}

// conditions 收集 WHERE 片段
type conditions struct {
	exprs []string
	args  []any
}

func (c *conditions) add(cond string, args []any) {
	if cond == "" {
		return
	}
	c.exprs = append(c.exprs, cond)
	c.args = append(c.args, args...)
}

// render 多个条件时逐个加括号，避免片段内的 OR 改变优先级
func (c *conditions) render(sb *strings.Builder) {
	switch len(c.exprs) {
	case 0:
		return
	case 1:
		sb.WriteString(" WHERE ")
		sb.WriteString(c.exprs[0])
	default:
		sb.WriteString(" WHERE (")
		sb.WriteString(strings.Join(c.exprs, ") AND ("))
		sb.WriteString(")")
	}
}

func quote(d dialect.Dialect, name, kind string) (string, error) {
	if !IsSafeIdentifier(name) {
		return "", errors.Newf(errors.ErrCodeInvalidInput, "unsafe %s name %q", kind, name)
	}
	return d.QuoteIdentifier(name), nil
}
