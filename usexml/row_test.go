package usexml

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erptools/go-applus/db"
)

// fakeExecutor records submitted documents and serves canned query
// results.
type fakeExecutor struct {
	docs      []string
	useXMLRes string
	useXMLErr error

	singleValues map[string]any
	uniqueIdx    map[string][]string
	mandant      string
}

func (f *fakeExecutor) UseXML(ctx context.Context, doc string) (string, error) {
	f.docs = append(f.docs, doc)
	if f.useXMLErr != nil {
		return "", f.useXMLErr
	}
	return f.useXMLRes, nil
}

func (f *fakeExecutor) QuerySingleValue(ctx context.Context, stmt db.Statement, args ...any) (any, error) {
	s, err := stmt.SQL()
	if err != nil {
		return nil, err
	}
	v, ok := f.singleValues[s]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (f *fakeExecutor) UniqueFieldsOfTable(ctx context.Context, table string) (map[string][]string, error) {
	return f.uniqueIdx, nil
}

func (f *fakeExecutor) Mandant(ctx context.Context) (string, error) {
	return f.mandant, nil
}

func (f *fakeExecutor) lastDoc() string { return f.docs[len(f.docs)-1] }

func TestRowXML(t *testing.T) {
	r := NewRow(&fakeExecutor{}, "ARTIKEL", "insert")
	r.AddField("artikel", "A-100")
	r.AddField("name", "Schraube")
	r.AddField("menge", 5)

	doc := r.XML()
	assert.Contains(t, doc, `<row cmd="insert" table="ARTIKEL" xmlns:dt="urn:schemas-microsoft-com:datatypes">`)
	assert.Contains(t, doc, "<ARTIKEL>A-100</ARTIKEL>")
	assert.Contains(t, doc, "<NAME>Schraube</NAME>")
	assert.Contains(t, doc, "<MENGE>5</MENGE>")

	// insertion order is kept
	assert.Less(t, strings.Index(doc, "<ARTIKEL>"), strings.Index(doc, "<NAME>"))
	assert.Less(t, strings.Index(doc, "<NAME>"), strings.Index(doc, "<MENGE>"))
}

func TestRowXMLValueFormatting(t *testing.T) {
	dt := time.Date(2023, 1, 12, 9, 59, 12, 2344000, time.UTC)

	r := NewRow(&fakeExecutor{}, "T", "insert")
	r.AddField("f1", nil)
	r.AddField("f2", dt)
	r.AddField("f3", DateValue(dt))
	r.AddField("f4", TimeValue(dt))
	r.AddField("f5", 2.5)

	doc := r.XML()
	assert.Contains(t, doc, "<F1/>")
	assert.Contains(t, doc, "<F2>2023-01-12 09:59:12.002</F2>")
	assert.Contains(t, doc, "<F3>2023-01-12</F3>")
	assert.Contains(t, doc, "<F4>09:59:12.002</F4>")
	assert.Contains(t, doc, "<F5>2.5</F5>")
}

func TestAddFieldOverwritesInPlace(t *testing.T) {
	r := NewRow(&fakeExecutor{}, "T", "insert")
	r.AddField("a", 1)
	r.AddField("b", 2)
	r.AddField("A", 3)

	doc := r.XML()
	assert.Contains(t, doc, "<A>3</A>")
	assert.Less(t, strings.Index(doc, "<A>"), strings.Index(doc, "<B>"))
}

func TestFieldMandantFallback(t *testing.T) {
	r := NewRow(&fakeExecutor{mandant: "100"}, "T", "insert")
	ctx := context.Background()

	v, err := r.Field(ctx, "mandant")
	require.NoError(t, err)
	assert.Equal(t, "100", v)
	assert.True(t, r.FieldSet("MANDANT"))

	r.AddField("mandant", "200")
	v, err = r.Field(ctx, "mandant")
	require.NoError(t, err)
	assert.Equal(t, "200", v)

	v, err = r.Field(ctx, "unbekannt")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.False(t, r.FieldSet("unbekannt"))
}

func TestInsert(t *testing.T) {
	fake := &fakeExecutor{useXMLRes: "4711"}
	r := NewInsert(fake, "ARTIKEL")
	r.AddField("artikel", "A-100")

	id, err := r.Insert(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4711, id)
	assert.Contains(t, fake.lastDoc(), `cmd="insert"`)
}

func TestInsertBadResult(t *testing.T) {
	fake := &fakeExecutor{useXMLRes: "kein Ergebnis"}
	r := NewInsert(fake, "ARTIKEL")

	_, err := r.Insert(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want record id")
}

func TestUpdateLoadsTimestamp(t *testing.T) {
	fake := &fakeExecutor{
		singleValues: map[string]any{
			"select timestamp from ARTIKEL where id = ?": []byte{0x00, 0x1f, 0xa0},
		},
	}
	ctx := context.Background()

	r, err := NewUpdate(ctx, fake, "ARTIKEL", 42, nil)
	require.NoError(t, err)
	r.AddField("name", "Neu")
	require.NoError(t, r.Update(ctx))

	doc := fake.lastDoc()
	assert.Contains(t, doc, `cmd="update"`)
	assert.Contains(t, doc, "<ID>42</ID>")
	assert.Contains(t, doc, "<TIMESTAMP>001fa0</TIMESTAMP>")
	assert.Contains(t, doc, "<NAME>Neu</NAME>")
}

func TestUpdateUnknownID(t *testing.T) {
	fake := &fakeExecutor{singleValues: map[string]any{}}
	_, err := NewUpdate(context.Background(), fake, "ARTIKEL", 99, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no record in table ARTIKEL with id 99")
}

func TestDeleteWithExplicitTimestamp(t *testing.T) {
	fake := &fakeExecutor{}
	ctx := context.Background()

	r, err := NewDelete(ctx, fake, "ARTIKEL", 42, []byte{0xff})
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx))

	doc := fake.lastDoc()
	assert.Contains(t, doc, `cmd="delete"`)
	assert.Contains(t, doc, "<ID>42</ID>")
	assert.Contains(t, doc, "<TIMESTAMP>ff</TIMESTAMP>")
}
