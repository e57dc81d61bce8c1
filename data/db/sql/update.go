package sql

import (
	"context"
	"database/sql"
	"strings"

	core "goeasy/data/db"
	"goeasy/data/db/dialect"
	"goeasy/errors"
)

type updateBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table   string
	setCols []string
	setArgs []any
	where   conditions
}

// Set 按调用顺序生成 SET 子句
func (b *updateBuilder) Set(col string, val any) IUpdateBuilder {
	if col != "" {
		b.setCols = append(b.setCols, col)
		b.setArgs = append(b.setArgs, val)
	}
	return b
}

func (b *updateBuilder) Where(cond string, args ...any) IUpdateBuilder {
	b.where.add(cond, args)
	return b
}

func (b *updateBuilder) Build() (string, []any, error) {
	if len(b.setCols) == 0 {
		return "", nil, errors.NewError(errors.ErrCodeInvalidInput, "update requires at least one column")
	}
	table, err := quote(b.dialect, b.table, "table")
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	for i, c := range b.setCols {
		col, err := quote(b.dialect, c, "column")
		if err != nil {
			return "", nil, err
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = ?")
	}

	args := make([]any, 0, len(b.setArgs)+len(b.where.args))
	args = append(args, b.setArgs...)
	args = append(args, b.where.args...)
	b.where.render(&sb)
	return sb.String(), args, nil
}

func (b *updateBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	return b.db.Exec(ctx, q, args...)
}
