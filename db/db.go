package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erptools/go-applus/internal/debug"
	"github.com/erptools/go-applus/sqlgen"
)

// Statement is anything that renders to a single SQL string, usually a
// *sqlgen.SelectStatement or a Raw string.
type Statement interface {
	SQL() (string, error)
}

// Raw is a SQL string used verbatim.
type Raw string

func (r Raw) SQL() (string, error) { return string(r), nil }

// RowMap is a result row keyed by upper-cased column name.
type RowMap map[string]any

func logStatement(sql string, args []any) {
	if len(args) > 0 {
		debug.Debug("executing sql", "sql", sql, "args", args)
	} else {
		debug.Debug("executing sql", "sql", sql)
	}
}

func render(stmt Statement) (string, error) {
	s, err := stmt.SQL()
	if err != nil {
		return "", fmt.Errorf("db: render statement: %w", err)
	}
	return s, nil
}

func scanRow(rows *sql.Rows, cols []string) (RowMap, error) {
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(RowMap, len(cols))
	for i, c := range cols {
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[strings.ToUpper(c)] = v
	}
	return row, nil
}

// QueryAll runs the statement and returns every row.
func QueryAll(ctx context.Context, conn *sql.DB, stmt Statement, args ...any) ([]RowMap, error) {
	var out []RowMap
	err := Query(ctx, conn, stmt, func(row RowMap) error {
		out = append(out, row)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Query runs the statement and calls f once per row, stopping at the
// first error f returns.
func Query(ctx context.Context, conn *sql.DB, stmt Statement, f func(RowMap) error, args ...any) error {
	s, err := render(stmt)
	if err != nil {
		return err
	}
	logStatement(s, args)

	rows, err := conn.QueryContext(ctx, s, args...)
	if err != nil {
		return fmt.Errorf("db: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("db: columns: %w", err)
	}
	for rows.Next() {
		row, err := scanRow(rows, cols)
		if err != nil {
			return fmt.Errorf("db: scan: %w", err)
		}
		if err := f(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// QueryColumn runs a statement and returns the first column of every
// row.
func QueryColumn(ctx context.Context, conn *sql.DB, stmt Statement, args ...any) ([]any, error) {
	s, err := render(stmt)
	if err != nil {
		return nil, err
	}
	logStatement(s, args)

	rows, err := conn.QueryContext(ctx, s, args...)
	if err != nil {
		return nil, fmt.Errorf("db: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("db: columns: %w", err)
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	var out []any
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("db: scan: %w", err)
		}
		v := vals[0]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// QuerySingleRow runs a statement expected to return at most one row.
// It returns nil without error when the result is empty.
func QuerySingleRow(ctx context.Context, conn *sql.DB, stmt Statement, args ...any) (RowMap, error) {
	var out RowMap
	err := Query(ctx, conn, stmt, func(row RowMap) error {
		if out == nil {
			out = row
		}
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QuerySingleValue runs a statement expected to return at most one
// value, the first column of the first row. It returns nil without
// error when the result is empty.
func QuerySingleValue(ctx context.Context, conn *sql.DB, stmt Statement, args ...any) (any, error) {
	s, err := render(stmt)
	if err != nil {
		return nil, err
	}
	logStatement(s, args)

	var v any
	err = conn.QueryRowContext(ctx, s, args...).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db: query single value: %w", err)
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	return v, nil
}

// Execute runs a statement that returns no rows and reports the number
// of affected rows.
func Execute(ctx context.Context, conn *sql.DB, stmt Statement, args ...any) (int64, error) {
	s, err := render(stmt)
	if err != nil {
		return 0, err
	}
	logStatement(s, args)

	res, err := conn.ExecContext(ctx, s, args...)
	if err != nil {
		return 0, fmt.Errorf("db: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// UniqueFieldsOfTable returns the unique indexes of a table as a map
// from index name to the normalized fields that must be unique
// together.
func UniqueFieldsOfTable(ctx context.Context, conn *sql.DB, table string) (map[string][]string, error) {
	stmt := sqlgen.NewSelect("sys.indexes AS i")
	j := stmt.AddInnerJoin("sys.index_columns AS ic")
	j.On.AddRaw("i.OBJECT_ID = ic.OBJECT_ID")
	j.On.AddRaw("i.index_id = ic.index_id")
	stmt.Where.AddFieldEq("OBJECT_NAME(ic.OBJECT_ID)", table)
	stmt.Where.AddFieldEq("i.is_unique", true)
	stmt.AddFields("i.name AS INDEX_NAME", "COL_NAME(ic.OBJECT_ID,ic.column_id) AS COL")

	indices := map[string][]string{}
	err := Query(ctx, conn, stmt, func(row RowMap) error {
		name, _ := row["INDEX_NAME"].(string)
		col, _ := row["COL"].(string)
		indices[name] = append(indices[name], sqlgen.NormalizeField(col))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return indices, nil
}
