// Package db 定义通用的数据库抽象，隔离 database/sql 与具体驱动。
//
// 上层的 orm、repo 只依赖这里的接口；SQL 中统一使用 ? 占位符，
// 由实现按方言重新绑定。
package db

import (
	"context"
	"database/sql"
	"time"
)

// IDatabase 通用数据库接口
type IDatabase interface {
	Query(ctx context.Context, query string, args ...any) (IRows, error)
	QueryRow(ctx context.Context, query string, args ...any) IRow
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	Begin(ctx context.Context) (ITransaction, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (ITransaction, error)

	Ping(ctx context.Context) error
	Close() error

	// Raw 返回底层连接（*sql.DB 或 *sql.Tx）
	Raw() any
}

// IDialectNameProvider 可选接口：返回 "mysql"、"sqlite"、"postgres" 等方言名
type IDialectNameProvider interface {
	GetDialectName() string
}

// ITransaction 事务接口
type ITransaction interface {
	IDatabase

	Commit() error
	Rollback() error
}

// IRows 查询结果集接口
type IRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
	Columns() ([]string, error)
}

// IRow 单行结果接口
type IRow interface {
	Scan(dest ...any) error
}

// DBConfig 数据库配置
type DBConfig struct {
	// Driver 为 database/sql 注册的驱动名，默认 sqlite
	Driver string
	// DSN 数据源，sqlite 下为文件路径或 ":memory:"
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// PingTimeout 打开连接后的可用性检查超时，默认 3 秒
	PingTimeout time.Duration
	// ConnectRetries 首次连接失败后的重试次数
	ConnectRetries int
}

// Enabled DSN 为空表示未配置数据库
func (c DBConfig) Enabled() bool {
	return c.DSN != ""
}
