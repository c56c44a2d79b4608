// Package usexml builds row documents for the app server's useXML
// operation. Unlike direct database writes, rows submitted through
// useXML run the same checks and derived updates as the web client,
// e.g. INSDATE and UPDDATE are maintained automatically.
//
// A row is created for one of the commands insert, update or delete,
// filled via AddField and finally submitted with Exec.
package usexml

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/sqlgen"
)

// Executor is the part of the server connection a row needs: the
// useXML call itself plus the database lookups for timestamps and
// unique indexes.
type Executor interface {
	UseXML(ctx context.Context, doc string) (string, error)
	QuerySingleValue(ctx context.Context, stmt db.Statement, args ...any) (any, error)
	UniqueFieldsOfTable(ctx context.Context, table string) (map[string][]string, error)
	Mandant(ctx context.Context) (string, error)
}

type field struct {
	name  string
	value any
}

// Row is one useXML row document in the making. Fields keep their
// insertion order.
type Row struct {
	executor Executor
	table    string
	cmd      string

	fields []field
	index  map[string]int
}

func newRow(executor Executor, table, cmd string) *Row {
	return &Row{
		executor: executor,
		table:    table,
		cmd:      cmd,
		index:    map[string]int{},
	}
}

// NewRow creates a row with an arbitrary command. Most callers want
// NewInsert, NewUpdate or NewDelete instead.
func NewRow(executor Executor, table, cmd string) *Row {
	return newRow(executor, table, cmd)
}

// Table returns the table the row belongs to.
func (r *Row) Table() string { return r.table }

// AddField sets a field. Setting a field again overwrites its value in
// place.
func (r *Row) AddField(name string, value any) {
	name = sqlgen.NormalizeField(name)
	if i, ok := r.index[name]; ok {
		r.fields[i].value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, field{name: name, value: value})
}

// Field returns the value of a set field. MANDANT falls back to the
// server's current client when not set explicitly.
func (r *Row) Field(ctx context.Context, name string) (any, error) {
	name = sqlgen.NormalizeField(name)
	if i, ok := r.index[name]; ok {
		return r.fields[i].value, nil
	}
	if name == "MANDANT" {
		return r.executor.Mandant(ctx)
	}
	return nil, nil
}

// FieldSet reports whether a field is set. MANDANT always counts as
// set.
func (r *Row) FieldSet(name string) bool {
	name = sqlgen.NormalizeField(name)
	if _, ok := r.index[name]; ok {
		return true
	}
	return name == "MANDANT"
}

// FieldsSet reports whether all given fields are set.
func (r *Row) FieldsSet(names ...string) bool {
	for _, n := range names {
		if !r.FieldSet(n) {
			return false
		}
	}
	return true
}

// AddTimestampField adds the row's timestamp field. Updates and
// deletes need the timestamp so the server can reject the change when
// another user modified the record in between. A nil ts loads the
// current timestamp from the database.
func (r *Row) AddTimestampField(ctx context.Context, id int64, ts []byte) error {
	if ts == nil {
		v, err := r.executor.QuerySingleValue(ctx, db.Raw("select timestamp from "+r.table+" where id = ?"), id)
		if err != nil {
			return err
		}
		switch t := v.(type) {
		case []byte:
			ts = t
		case string:
			ts = []byte(t)
		}
	}
	if len(ts) == 0 {
		return fmt.Errorf("usexml: no record in table %s with id %d", r.table, id)
	}
	r.AddField("timestamp", hex.EncodeToString(ts))
	return nil
}

// AddTimestampIDFields adds the id field and the timestamp field.
func (r *Row) AddTimestampIDFields(ctx context.Context, id int64, ts []byte) error {
	r.AddField("id", id)
	return r.AddTimestampField(ctx, id, ts)
}

// XML renders the row document.
func (r *Row) XML() string {
	doc := etree.NewDocument()
	row := doc.CreateElement("row")
	row.CreateAttr("cmd", r.cmd)
	row.CreateAttr("table", r.table)
	row.CreateAttr("xmlns:dt", "urn:schemas-microsoft-com:datatypes")

	for _, f := range r.fields {
		el := row.CreateElement(f.name)
		if s := formatValue(f.value); s != "" {
			el.SetText(s)
		}
	}

	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

func (r *Row) String() string { return r.XML() }

// Exec submits the row and returns the server's raw answer.
func (r *Row) Exec(ctx context.Context) (string, error) {
	return r.executor.UseXML(ctx, r.XML())
}

// execID submits the row and parses the answer as record ID.
func (r *Row) execID(ctx context.Context) (int64, error) {
	res, err := r.Exec(ctx)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usexml: %s on %s returned %q, want record id: %w", r.cmd, r.table, res, err)
	}
	return id, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format("2006-01-02 15:04:05.000")
	case DateValue:
		return time.Time(t).Format("2006-01-02")
	case TimeValue:
		return time.Time(t).Format("15:04:05.000")
	default:
		return fmt.Sprint(v)
	}
}

// DateValue marks a time.Time to be rendered as plain date.
type DateValue time.Time

// TimeValue marks a time.Time to be rendered as plain time of day.
type TimeValue time.Time
