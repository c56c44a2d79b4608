package usexml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upsertFake() *fakeExecutor {
	return &fakeExecutor{
		useXMLRes: "4711",
		mandant:   "100",
		uniqueIdx: map[string][]string{
			"UK_ARTIKEL": {"ARTIKEL", "MANDANT"},
		},
		singleValues: map[string]any{},
	}
}

func TestCheckExistsNotFound(t *testing.T) {
	fake := upsertFake()
	r := NewUpsert(fake, "ARTIKEL")
	r.AddField("artikel", "A-100")

	_, ok, err := r.CheckExists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckExistsFound(t *testing.T) {
	fake := upsertFake()
	fake.singleValues["SELECT id FROM ARTIKEL WHERE ((ARTIKEL = 'A-100') AND (MANDANT = '100'))"] = int64(7)

	r := NewUpsert(fake, "ARTIKEL")
	r.AddField("artikel", "A-100")

	id, ok, err := r.CheckExists(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 7, id)
}

func TestCheckExistsNoUsableIndex(t *testing.T) {
	fake := upsertFake()
	fake.uniqueIdx = map[string][]string{"UK": {"ARTIKEL", "WERK"}}

	r := NewUpsert(fake, "ARTIKEL")
	r.AddField("artikel", "A-100")

	// WERK is not set, so no index applies and no query runs
	_, ok, err := r.CheckExists(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecInsertsWhenMissing(t *testing.T) {
	fake := upsertFake()
	r := NewUpsert(fake, "ARTIKEL")
	r.AddField("artikel", "A-100")
	r.AddField("name", "Schraube")

	id, err := r.Exec(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4711, id)
	assert.Contains(t, fake.lastDoc(), `cmd="insert"`)
	assert.Contains(t, fake.lastDoc(), "<NAME>Schraube</NAME>")
}

func TestExecUpdatesWhenFound(t *testing.T) {
	fake := upsertFake()
	fake.singleValues["SELECT id FROM ARTIKEL WHERE ((ARTIKEL = 'A-100') AND (MANDANT = '100'))"] = int64(7)
	fake.singleValues["select timestamp from ARTIKEL where id = ?"] = []byte{0x01}

	r := NewUpsert(fake, "ARTIKEL")
	r.AddField("artikel", "A-100")
	r.AddField("name", "Schraube")

	id, err := r.Exec(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	doc := fake.lastDoc()
	assert.Contains(t, doc, `cmd="update"`)
	assert.Contains(t, doc, "<ID>7</ID>")
	assert.Contains(t, doc, "<TIMESTAMP>01</TIMESTAMP>")
}

func TestUpdateWithoutMatchFails(t *testing.T) {
	fake := upsertFake()
	r := NewUpsert(fake, "ARTIKEL")
	r.AddField("artikel", "A-100")

	_, err := r.Update(context.Background(), 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no record in ARTIKEL to update")
}
