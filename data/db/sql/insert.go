package sql

import (
	"context"
	"database/sql"
	"strings"

	core "goeasy/data/db"
	"goeasy/data/db/dialect"
	"goeasy/errors"
)

type insertBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table   string
	columns []string
	rows    [][]any
}

func (b *insertBuilder) Columns(cols ...string) IInsertBuilder {
	b.columns = cols
	return b
}

func (b *insertBuilder) Values(vals ...any) IInsertBuilder {
	if len(vals) > 0 {
		b.rows = append(b.rows, vals)
	}
	return b
}

func (b *insertBuilder) Build() (string, []any, error) {
	if len(b.columns) == 0 || len(b.rows) == 0 {
		return "", nil, errors.NewError(errors.ErrCodeInvalidInput, "insert requires columns and at least one row")
	}
	table, err := quote(b.dialect, b.table, "table")
	if err != nil {
		return "", nil, err
	}
	cols := make([]string, len(b.columns))
	for i, c := range b.columns {
		if cols[i], err = quote(b.dialect, c, "column"); err != nil {
			return "", nil, err
		}
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	args := make([]any, 0, len(b.rows)*len(cols))

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")
	for i, row := range b.rows {
		if len(row) != len(cols) {
			return "", nil, errors.Newf(errors.ErrCodeInvalidInput,
				"insert row %d has %d values for %d columns", i, len(row), len(cols))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholder)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

func (b *insertBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args, err := b.Build()
	if err != nil {
		return nil, err
	}
	return b.db.Exec(ctx, q, args...)
}
