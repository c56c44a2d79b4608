package duplicate

import (
	"context"

	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/sqlgen"
)

func fromRow(ctx context.Context, table string, row db.RowMap, cache *FieldsCache, allowUpdate bool) (*BusinessObject, error) {
	if row == nil {
		return nil, nil
	}
	toCopy, err := cache.FieldsToCopy(ctx, table)
	if err != nil {
		return nil, err
	}

	obj := NewBusinessObject(table, nil)
	obj.AllowUpdate = allowUpdate
	for f, v := range row {
		f = sqlgen.NormalizeField(f)
		if toCopy[f] {
			obj.Fields[f] = v
		} else {
			obj.FieldsNotCopied[f] = v
		}
	}
	return obj, nil
}

// Load reads a single object from the database. The condition should
// match one record; of several matches an arbitrary one is taken, and
// no match yields nil.
func Load(ctx context.Context, server Server, table string, cond sqlgen.Condition, cache *FieldsCache, allowUpdate bool) (*BusinessObject, error) {
	table = sqlgen.NormalizeField(table)
	cache = ensureCache(server, cache)

	stmt := sqlgen.NewSelect(table)
	stmt.Top = 1
	stmt.Where.Add(cond)
	row, err := server.QuerySingleRow(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return fromRow(ctx, table, row, cache, allowUpdate)
}

// LoadByField reads a single object selected by one field value.
func LoadByField(ctx context.Context, server Server, table, field string, value any, cache *FieldsCache, allowUpdate bool) (*BusinessObject, error) {
	return Load(ctx, server, table, sqlgen.FieldEq(field, value), cache, allowUpdate)
}

// LoadAll reads every object the condition matches.
func LoadAll(ctx context.Context, server Server, table string, cond sqlgen.Condition, cache *FieldsCache, allowUpdate bool) ([]*BusinessObject, error) {
	table = sqlgen.NormalizeField(table)
	cache = ensureCache(server, cache)

	stmt := sqlgen.NewSelect(table)
	stmt.Where.Add(cond)
	rows, err := server.QueryAll(ctx, stmt)
	if err != nil {
		return nil, err
	}
	out := make([]*BusinessObject, 0, len(rows))
	for _, row := range rows {
		obj, err := fromRow(ctx, table, row, cache, allowUpdate)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			out = append(out, obj)
		}
	}
	return out, nil
}

// LoadAllByField reads every object with one field value.
func LoadAllByField(ctx context.Context, server Server, table, field string, value any, cache *FieldsCache, allowUpdate bool) ([]*BusinessObject, error) {
	return LoadAll(ctx, server, table, sqlgen.FieldEq(field, value), cache, allowUpdate)
}

// LoadAPlan loads a routing with its positions.
func LoadAPlan(ctx context.Context, server Server, aplan string, cache *FieldsCache) (*BusinessObject, error) {
	cache = ensureCache(server, cache)

	main, err := LoadByField(ctx, server, "aplan", "APLAN", aplan, cache, false)
	if err != nil || main == nil {
		return main, err
	}
	positions, err := LoadAllByField(ctx, server, "aplanpos", "APLAN", aplan, cache, false)
	if err != nil {
		return nil, err
	}
	for _, pos := range positions {
		main.AddDependent(pos, FieldLink{Parent: "aplan", Sub: "aplan"})
	}
	return main, nil
}

// LoadStueli loads a bill of materials with its positions.
func LoadStueli(ctx context.Context, server Server, stueli string, cache *FieldsCache) (*BusinessObject, error) {
	cache = ensureCache(server, cache)

	main, err := LoadByField(ctx, server, "stueli", "STUELI", stueli, cache, false)
	if err != nil || main == nil {
		return main, err
	}
	positions, err := LoadAllByField(ctx, server, "stuelipos", "STUELI", stueli, cache, false)
	if err != nil {
		return nil, err
	}
	for _, pos := range positions {
		main.AddDependent(pos, FieldLink{Parent: "stueli", Sub: "stueli"})
	}
	return main, nil
}

// AddSachgruppeDependents attaches the object's property-group values
// (Sachgruppen) as dependents, linked via the generated GUID.
func AddSachgruppeDependents(ctx context.Context, server Server, obj *BusinessObject, cache *FieldsCache) error {
	cache = ensureCache(server, cache)

	klasse := obj.Field("SACHGRUPPENKLASSE", false)
	if klasse == nil {
		return nil
	}

	stmt := sqlgen.NewSelect("sachgruppenklassepos", "sachgruppe")
	stmt.Where.AddFieldEq("sachgruppenklasse", klasse)
	stmt.Where.AddFieldEq("tabelle", obj.Table)
	gruppen, err := server.QueryColumn(ctx, stmt)
	if err != nil {
		return err
	}

	values := make([]sqlgen.Value, 0, len(gruppen))
	for _, g := range gruppen {
		v, err := sqlgen.Lit(g)
		if err != nil {
			return err
		}
		values = append(values, v)
	}

	cond := sqlgen.NewAnd()
	cond.AddFieldEq("tabelle", obj.Table)
	cond.AddFieldEq("instanzguid", obj.Field("guid", false))
	cond.AddFieldEq("sachgruppenklasse", klasse)
	cond.AddFieldIn("sachgruppe", values...)
	cond.AddFieldNotEmpty("wert")

	werte, err := LoadAll(ctx, server, "sachwert", cond, cache, true)
	if err != nil {
		return err
	}
	for _, w := range werte {
		obj.AddDependent(w, FieldLink{Parent: "guid", Sub: "instanzguid"})
	}
	return nil
}

// LoadArtikel loads an article with its property-group values and,
// optionally, its routing and bill of materials. The routing and BOM
// carry the article's number, so renaming the article via SetFields
// renames them too.
func LoadArtikel(ctx context.Context, server Server, artikel string, cache *FieldsCache, dupAplan, dupStueli bool) (*BusinessObject, error) {
	cache = ensureCache(server, cache)

	main, err := LoadByField(ctx, server, "artikel", "ARTIKEL", artikel, cache, false)
	if err != nil || main == nil {
		return main, err
	}
	if err := AddSachgruppeDependents(ctx, server, main, cache); err != nil {
		return nil, err
	}

	if dupAplan {
		aplan, err := LoadAPlan(ctx, server, artikel, cache)
		if err != nil {
			return nil, err
		}
		main.AddDependent(aplan, FieldLink{Parent: "artikel", Sub: "aplan"})
	}
	if dupStueli {
		stueli, err := LoadStueli(ctx, server, artikel, cache)
		if err != nil {
			return nil, err
		}
		main.AddDependent(stueli, FieldLink{Parent: "artikel", Sub: "stueli"})
	}
	return main, nil
}
