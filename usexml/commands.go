package usexml

import (
	"context"
	"fmt"

	"github.com/erptools/go-applus/sqlgen"
)

// InsertRow builds an insert for a new record.
type InsertRow struct {
	*Row
}

// NewInsert creates an insert row.
func NewInsert(executor Executor, table string) *InsertRow {
	return &InsertRow{Row: newRow(executor, table, "insert")}
}

// Insert submits the row and returns the ID of the new record.
func (r *InsertRow) Insert(ctx context.Context) (int64, error) {
	return r.execID(ctx)
}

// UpdateRow builds an update of an existing record. The id and
// timestamp fields are set on creation.
type UpdateRow struct {
	*Row
}

// NewUpdate creates an update row for the record with the given ID. A
// nil ts loads the record's current timestamp from the database; pass
// the timestamp from an earlier read to detect concurrent changes.
func NewUpdate(ctx context.Context, executor Executor, table string, id int64, ts []byte) (*UpdateRow, error) {
	r := &UpdateRow{Row: newRow(executor, table, "update")}
	if err := r.AddTimestampIDFields(ctx, id, ts); err != nil {
		return nil, err
	}
	return r, nil
}

// Update submits the row.
func (r *UpdateRow) Update(ctx context.Context) error {
	_, err := r.Exec(ctx)
	return err
}

// DeleteRow builds a delete of an existing record. The id and
// timestamp fields are the only fields it carries.
type DeleteRow struct {
	*Row
}

// NewDelete creates a delete row for the record with the given ID.
func NewDelete(ctx context.Context, executor Executor, table string, id int64, ts []byte) (*DeleteRow, error) {
	r := &DeleteRow{Row: newRow(executor, table, "delete")}
	if err := r.AddTimestampIDFields(ctx, id, ts); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete submits the row.
func (r *DeleteRow) Delete(ctx context.Context) error {
	_, err := r.Exec(ctx)
	return err
}

// UpsertRow builds a row that is inserted or updated depending on
// whether a matching record already exists. Existence is decided by
// comparing the set fields against the table's unique indexes.
type UpsertRow struct {
	*Row
}

// NewUpsert creates an insert-or-update row.
func NewUpsert(executor Executor, table string) *UpsertRow {
	return &UpsertRow{Row: newRow(executor, table, "")}
}

// CheckExists looks for an existing record matching any unique index
// whose fields are all set. It returns the record's ID when found.
func (r *UpsertRow) CheckExists(ctx context.Context) (int64, bool, error) {
	indexes, err := r.executor.UniqueFieldsOfTable(ctx, r.table)
	if err != nil {
		return 0, false, err
	}

	cond := sqlgen.NewOr()
	for _, fields := range indexes {
		if !r.FieldsSet(fields...) {
			continue
		}
		idx := sqlgen.NewAnd()
		for _, f := range fields {
			v, err := r.Field(ctx, f)
			if err != nil {
				return 0, false, err
			}
			idx.AddFieldEq(f, v)
		}
		cond.Add(idx)
	}
	if cond.Empty() {
		return 0, false, nil
	}

	stmt := sqlgen.NewSelect(r.table, "id")
	stmt.Where = cond
	v, err := r.executor.QuerySingleValue(ctx, stmt)
	if err != nil {
		return 0, false, err
	}
	if v == nil {
		return 0, false, nil
	}
	id, err := toInt64(v)
	if err != nil {
		return 0, false, fmt.Errorf("usexml: id of %s: %w", r.table, err)
	}
	return id, true, nil
}

// Insert submits the fields as a plain insert. The server rejects it
// when a matching record already exists.
func (r *UpsertRow) Insert(ctx context.Context) (int64, error) {
	ins := NewInsert(r.executor, r.table)
	for _, f := range r.fields {
		ins.AddField(f.name, f.value)
	}
	return ins.Insert(ctx)
}

// Update submits the fields as an update of the record with the given
// ID; id <= 0 looks the record up via CheckExists first.
func (r *UpsertRow) Update(ctx context.Context, id int64, ts []byte) (int64, error) {
	if id <= 0 {
		found, ok, err := r.CheckExists(ctx)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, fmt.Errorf("usexml: no record in %s to update", r.table)
		}
		id = found
	}
	upd, err := NewUpdate(ctx, r.executor, r.table, id, ts)
	if err != nil {
		return 0, err
	}
	for _, f := range r.fields {
		upd.AddField(f.name, f.value)
	}
	if err := upd.Update(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// Exec inserts or updates depending on whether the record exists and
// returns its ID either way.
func (r *UpsertRow) Exec(ctx context.Context) (int64, error) {
	id, ok, err := r.CheckExists(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return r.Insert(ctx)
	}
	return r.Update(ctx, id, nil)
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
