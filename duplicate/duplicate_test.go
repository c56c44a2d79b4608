package duplicate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erptools/go-applus/db"
	"github.com/erptools/go-applus/scripttool"
	"github.com/erptools/go-applus/usexml"
)

// fakeServer serves canned rows and definitions and records the rows
// submitted through useXML. It also plays the usexml executor so the
// rows it hands out write back into it.
type fakeServer struct {
	definitions map[string]string
	tableFields map[string]map[string]bool
	rows        map[string][]db.RowMap
	columns     map[string][]any

	nextID   int64
	inserted []string
	failOn   map[string]bool

	defCalls int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		definitions: map[string]string{},
		tableFields: map[string]map[string]bool{},
		rows:        map[string][]db.RowMap{},
		columns:     map[string][]any{},
		nextID:      100,
		failOn:      map[string]bool{},
	}
}

func (f *fakeServer) QueryAll(ctx context.Context, stmt db.Statement, args ...any) ([]db.RowMap, error) {
	s, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	return f.rows[s], nil
}

func (f *fakeServer) QueryColumn(ctx context.Context, stmt db.Statement, args ...any) ([]any, error) {
	s, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	return f.columns[s], nil
}

func (f *fakeServer) QuerySingleRow(ctx context.Context, stmt db.Statement, args ...any) (db.RowMap, error) {
	rows, err := f.QueryAll(ctx, stmt, args...)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (f *fakeServer) TableFields(ctx context.Context, table string, isComputed *bool) (map[string]bool, error) {
	return f.tableFields[strings.ToUpper(table)], nil
}

func (f *fakeServer) XMLDefinition(ctx context.Context, obj string) (*scripttool.XMLDefinition, error) {
	f.defCalls++
	raw, ok := f.definitions[strings.ToUpper(obj)]
	if !ok {
		return nil, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, err
	}
	return &scripttool.XMLDefinition{Object: doc.Root()}, nil
}

func (f *fakeServer) NewInsert(table string) *usexml.InsertRow { return usexml.NewInsert(f, table) }
func (f *fakeServer) NewUpsert(table string) *usexml.UpsertRow { return usexml.NewUpsert(f, table) }

func (f *fakeServer) UseXML(ctx context.Context, doc string) (string, error) {
	for table := range f.failOn {
		if strings.Contains(doc, `table="`+table+`"`) {
			return "", fmt.Errorf("server rejected row for %s", table)
		}
	}
	f.inserted = append(f.inserted, doc)
	f.nextID++
	return fmt.Sprint(f.nextID), nil
}

func (f *fakeServer) QuerySingleValue(ctx context.Context, stmt db.Statement, args ...any) (any, error) {
	return nil, nil
}

func (f *fakeServer) UniqueFieldsOfTable(ctx context.Context, table string) (map[string][]string, error) {
	return nil, nil
}

func (f *fakeServer) Mandant(ctx context.Context) (string, error) { return "100", nil }

func TestFieldsToCopyExclude(t *testing.T) {
	f := newFakeServer()
	f.definitions["ARTIKEL"] = `<object><duplicate type="exclude"><property ref="ean"/></duplicate></object>`
	f.tableFields["ARTIKEL"] = map[string]bool{"ARTIKEL": true, "NAME": true, "EAN": true, "ID": true, "GUID": true}

	fields, err := FieldsToCopyForTable(context.Background(), f, "artikel")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"ARTIKEL": true, "NAME": true}, fields)
}

func TestFieldsToCopyInclude(t *testing.T) {
	f := newFakeServer()
	f.definitions["ARTIKEL"] = `<object><duplicate type="include"><property ref="artikel"/><property ref="name"/><property ref="id"/></duplicate></object>`

	fields, err := FieldsToCopyForTable(context.Background(), f, "artikel")
	require.NoError(t, err)
	// ID is never copied, include list or not
	assert.Equal(t, map[string]bool{"ARTIKEL": true, "NAME": true}, fields)
}

func TestFieldsToCopyWithoutDefinition(t *testing.T) {
	f := newFakeServer()
	f.tableFields["ARTIKEL"] = map[string]bool{"ARTIKEL": true, "ID": true, "TIMESTAMP": true}

	fields, err := FieldsToCopyForTable(context.Background(), f, "artikel")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"ARTIKEL": true}, fields)
}

func TestFieldsCache(t *testing.T) {
	f := newFakeServer()
	f.tableFields["ARTIKEL"] = map[string]bool{"ARTIKEL": true}
	cache := NewFieldsCache(f)
	ctx := context.Background()

	_, err := cache.FieldsToCopy(ctx, "artikel")
	require.NoError(t, err)
	_, err = cache.FieldsToCopy(ctx, "ARTIKEL")
	require.NoError(t, err)
	assert.Equal(t, 1, f.defCalls)
}

func TestFieldLookup(t *testing.T) {
	obj := NewBusinessObject("artikel", map[string]any{"name": "Schraube"})
	obj.FieldsNotCopied["GUID"] = "abc-123"

	assert.Equal(t, "Schraube", obj.Field("NAME", true))
	assert.Equal(t, "abc-123", obj.Field("guid", false))
	assert.Nil(t, obj.Field("guid", true))
	assert.Nil(t, obj.Field("unbekannt", false))
}

func TestSetFieldsPropagates(t *testing.T) {
	art := NewBusinessObject("artikel", map[string]any{"artikel": "A-100", "name": "Schraube"})
	aplan := NewBusinessObject("aplan", map[string]any{"aplan": "A-100"})
	pos := NewBusinessObject("aplanpos", map[string]any{"aplan": "A-100", "pos": 10})
	aplan.AddDependent(pos, FieldLink{Parent: "aplan", Sub: "aplan"})
	art.AddDependent(aplan, FieldLink{Parent: "artikel", Sub: "aplan"})

	art.SetFields(map[string]any{"artikel": "A-100-KOPIE"})

	assert.Equal(t, "A-100-KOPIE", art.Fields["ARTIKEL"])
	assert.Equal(t, "A-100-KOPIE", aplan.Fields["APLAN"])
	assert.Equal(t, "A-100-KOPIE", pos.Fields["APLAN"])
	// unrelated fields stay
	assert.Equal(t, "Schraube", art.Fields["NAME"])
	assert.Equal(t, 10, pos.Fields["POS"])
}

func TestInsertTree(t *testing.T) {
	f := newFakeServer()
	art := NewBusinessObject("artikel", map[string]any{"artikel": "A-200"})
	aplan := NewBusinessObject("aplan", map[string]any{})
	art.AddDependent(aplan, FieldLink{Parent: "artikel", Sub: "aplan"})

	ids, err := art.Insert(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, []int64{101}, ids.Table("artikel"))
	assert.Equal(t, []int64{102}, ids.Table("aplan"))
	require.Len(t, f.inserted, 2)
	// the link value flowed from the parent into the dependent row
	assert.Contains(t, f.inserted[1], "<APLAN>A-200</APLAN>")
}

func TestInsertLoadsGeneratedLinkValues(t *testing.T) {
	f := newFakeServer()
	// GUID is generated by the server, so the parent row is re-read
	f.rows["SELECT GUID FROM ARTIKEL WHERE (ID = 101)"] = []db.RowMap{{"GUID": "neu-456"}}

	art := NewBusinessObject("artikel", map[string]any{"artikel": "A-200"})
	wert := NewBusinessObject("sachwert", map[string]any{"wert": "rot"})
	art.AddDependent(wert, FieldLink{Parent: "guid", Sub: "instanzguid"})

	_, err := art.Insert(context.Background(), f)
	require.NoError(t, err)

	require.Len(t, f.inserted, 2)
	assert.Contains(t, f.inserted[1], "<INSTANZGUID>neu-456</INSTANZGUID>")
}

func TestInsertSkipsRejectedSubtree(t *testing.T) {
	f := newFakeServer()
	f.failOn["APLAN"] = true

	art := NewBusinessObject("artikel", map[string]any{"artikel": "A-200"})
	aplan := NewBusinessObject("aplan", map[string]any{})
	pos := NewBusinessObject("aplanpos", map[string]any{"pos": 10})
	aplan.AddDependent(pos, FieldLink{Parent: "aplan", Sub: "aplan"})
	art.AddDependent(aplan, FieldLink{Parent: "artikel", Sub: "aplan"})
	stueli := NewBusinessObject("stueli", map[string]any{})
	art.AddDependent(stueli, FieldLink{Parent: "artikel", Sub: "stueli"})

	ids, err := art.Insert(context.Background(), f)
	require.NoError(t, err)

	// the rejected routing and its position are skipped, the BOM is not
	assert.Equal(t, []int64{101}, ids.Table("artikel"))
	assert.Empty(t, ids.Table("aplan"))
	assert.Empty(t, ids.Table("aplanpos"))
	assert.Equal(t, []int64{102}, ids.Table("stueli"))
}

func TestLoadArtikel(t *testing.T) {
	f := newFakeServer()
	f.tableFields["ARTIKEL"] = map[string]bool{"ARTIKEL": true, "NAME": true}
	f.tableFields["APLAN"] = map[string]bool{"APLAN": true}
	f.tableFields["APLANPOS"] = map[string]bool{"APLAN": true, "POS": true}
	f.tableFields["STUELI"] = map[string]bool{"STUELI": true}
	f.tableFields["STUELIPOS"] = map[string]bool{"STUELI": true, "POS": true}

	f.rows["SELECT TOP 1 * FROM ARTIKEL WHERE (ARTIKEL = 'A-100')"] = []db.RowMap{
		{"ARTIKEL": "A-100", "NAME": "Schraube", "ID": int64(1), "GUID": "g-1"},
	}
	f.rows["SELECT TOP 1 * FROM APLAN WHERE (APLAN = 'A-100')"] = []db.RowMap{
		{"APLAN": "A-100", "ID": int64(2)},
	}
	f.rows["SELECT * FROM APLANPOS WHERE (APLAN = 'A-100')"] = []db.RowMap{
		{"APLAN": "A-100", "POS": int64(10)},
		{"APLAN": "A-100", "POS": int64(20)},
	}

	art, err := LoadArtikel(context.Background(), f, "A-100", nil, true, true)
	require.NoError(t, err)
	require.NotNil(t, art)

	assert.Equal(t, "A-100", art.Fields["ARTIKEL"])
	// GUID was filtered into the not-copied fields
	assert.Nil(t, art.Fields["GUID"])
	assert.Equal(t, "g-1", art.Field("guid", false))

	// routing with two positions; no BOM exists
	deps := art.Dependents()
	require.Len(t, deps, 1)
	assert.Equal(t, "APLAN", deps[0].Table)
	assert.Len(t, deps[0].Dependents(), 2)
}

func TestLoadMissing(t *testing.T) {
	f := newFakeServer()
	obj, err := LoadByField(context.Background(), f, "artikel", "ARTIKEL", "gibt-es-nicht", nil, false)
	require.NoError(t, err)
	assert.Nil(t, obj)
}
