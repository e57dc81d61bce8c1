package sql

import (
	"context"
	"database/sql"
	"strings"

	core "goeasy/data/db"
	"goeasy/data/db/dialect"
	"goeasy/errors"
)

type deleteBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table string
	where conditions
}

func (b *deleteBuilder) Where(cond string, args ...any) IDeleteBuilder {
	b.where.add(cond, args)
	return b
}

// Build 不带条件的 DELETE 被拒绝
func (b *deleteBuilder) Build() (string, []any, error) {
	if len(b.where.exprs) == 0 {
		return "", nil, errors.NewError(errors.ErrCodeInvalidInput, "delete without where is not allowed")
	}
	table, err := quote(b.dialect, b.table, "table")
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(table)
	b.where.render(&sb)
	return sb.String(), append([]any(nil), b.where.args...), nil
}

func (b *deleteBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	return b.db.Exec(ctx, q, args...)
}
