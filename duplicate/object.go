package duplicate

import (
	"context"

	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/internal/debug"
	"github.com/erptools/go-applus/sqlgen"
)

// FieldLink ties a field of the parent object to a field of a
// dependent object: when the parent's field changes or is generated on
// insert, the dependent's field follows.
type FieldLink struct {
	Parent string
	Sub    string
}

type dependent struct {
	obj   *BusinessObject
	links map[string]string
}

// BusinessObject holds the data of one record to duplicate, plus its
// dependent objects and how they are connected. A routing links its
// positions via ("APLAN", "APLAN"), an article its GUID-keyed property
// values via ("GUID", "INSTANZGUID").
type BusinessObject struct {
	// Table the object belongs to, upper-cased.
	Table string

	// Fields to write for the copy.
	Fields map[string]any

	// FieldsNotCopied holds the original's remaining fields, kept for
	// lookups but not written.
	FieldsNotCopied map[string]any

	// AllowUpdate updates an existing matching record instead of
	// failing the insert.
	AllowUpdate bool

	dependents []dependent
}

// NewBusinessObject creates an object for a table with the fields to
// copy.
func NewBusinessObject(table string, fields map[string]any) *BusinessObject {
	norm := map[string]any{}
	for f, v := range fields {
		norm[sqlgen.NormalizeField(f)] = v
	}
	return &BusinessObject{
		Table:           sqlgen.NormalizeField(table),
		Fields:          norm,
		FieldsNotCopied: map[string]any{},
	}
}

// AddDependent attaches a dependent object with the field links
// connecting it to this object. A nil object is skipped, so loaders
// may pass their result through unconditionally.
func (o *BusinessObject) AddDependent(sub *BusinessObject, links ...FieldLink) {
	if sub == nil {
		return
	}
	m := map[string]string{}
	for _, l := range links {
		m[sqlgen.NormalizeField(l.Parent)] = sqlgen.NormalizeField(l.Sub)
	}
	o.dependents = append(o.dependents, dependent{obj: sub, links: m})
}

// Dependents returns the attached dependent objects.
func (o *BusinessObject) Dependents() []*BusinessObject {
	out := make([]*BusinessObject, len(o.dependents))
	for i, d := range o.dependents {
		out[i] = d.obj
	}
	return out
}

// Field looks a field up, in the copied fields first. Unless
// onlyCopied is set, fields that will not be copied are consulted too.
func (o *BusinessObject) Field(name string, onlyCopied bool) any {
	f := sqlgen.NormalizeField(name)
	if v, ok := o.Fields[f]; ok {
		return v
	}
	if !onlyCopied {
		if v, ok := o.FieldsNotCopied[f]; ok {
			return v
		}
	}
	return nil
}

// SetFields overrides fields before inserting, e.g. to give the copy a
// new number, and pushes the changes through the field links into the
// dependent objects.
func (o *BusinessObject) SetFields(updates map[string]any) {
	norm := map[string]any{}
	for f, v := range updates {
		norm[sqlgen.NormalizeField(f)] = v
	}
	o.setFields(norm)
}

func (o *BusinessObject) setFields(updates map[string]any) {
	for f, v := range updates {
		o.Fields[f] = v
	}
	for _, d := range o.dependents {
		sub := map[string]any{}
		for pf, sf := range d.links {
			if v, ok := updates[pf]; ok {
				sub[sf] = v
			}
		}
		d.obj.setFields(sub)
	}
}

// Insert writes the object and its dependents to the database through
// useXML and returns the IDs of the created records grouped by table.
// Objects the server rejects are logged and skipped together with
// their dependents; the rest of the tree is still inserted.
func (o *BusinessObject) Insert(ctx context.Context, server Server) (*db.TableIDs, error) {
	res := db.NewTableIDs()
	id, ok := o.insertOne(ctx, server, res)
	if ok {
		if err := o.insertDependents(ctx, server, res, id); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (o *BusinessObject) insertOne(ctx context.Context, server Server, res *db.TableIDs) (int64, bool) {
	var id int64
	var err error
	if o.AllowUpdate {
		row := server.NewUpsert(o.Table)
		for f, v := range o.Fields {
			row.AddField(f, v)
		}
		id, err = row.Exec(ctx)
	} else {
		row := server.NewInsert(o.Table)
		for f, v := range o.Fields {
			row.AddField(f, v)
		}
		id, err = row.Insert(ctx)
	}
	if err != nil {
		debug.Error("inserting business object failed", "table", o.Table, "err", err)
		return 0, false
	}
	res.Add(o.Table, id)
	return id, true
}

func (o *BusinessObject) insertDependents(ctx context.Context, server Server, res *db.TableIDs, id int64) error {
	for _, d := range o.dependents {
		if err := o.insertDependent(ctx, server, res, id, d); err != nil {
			return err
		}
	}
	return nil
}

func (o *BusinessObject) insertDependent(ctx context.Context, server Server, res *db.TableIDs, parentID int64, d dependent) error {
	// take link values from the parent's fields where known
	missing := map[string]string{}
	for pf, sf := range d.links {
		if v, ok := o.Fields[pf]; ok {
			d.obj.Fields[sf] = v
		} else {
			missing[pf] = sf
		}
	}

	// the rest, e.g. a generated GUID, only exists in the database now
	if len(missing) > 0 {
		stmt := sqlgen.NewSelect(o.Table)
		stmt.Where.AddFieldEq("id", parentID)
		for pf := range missing {
			stmt.AddFields(pf)
		}
		row, err := server.QuerySingleRow(ctx, stmt)
		if err != nil {
			return err
		}
		if row != nil {
			for pf, sf := range missing {
				d.obj.Fields[sf] = row[pf]
			}
		}
	}

	id, ok := d.obj.insertOne(ctx, server, res)
	if !ok {
		return nil
	}
	return d.obj.insertDependents(ctx, server, res, id)
}
