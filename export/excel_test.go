package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erptools/go-applus/db"
)

func TestWriteExcel(t *testing.T) {
	sheet := NewSheet("Artikel", "Artikel", "Name", "Bestand")
	sheet.AddRow("A-100", "Schraube", 250)
	sheet.AddRow("A-200", "Mutter", 120)

	path := filepath.Join(t.TempDir(), "artikel.xlsx")
	require.NoError(t, WriteExcel(path, sheet))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Artikel"}, f.GetSheetList())

	rows, err := f.GetRows("Artikel")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Artikel", "Name", "Bestand"}, rows[0])
	assert.Equal(t, []string{"A-100", "Schraube", "250"}, rows[1])
	assert.Equal(t, []string{"A-200", "Mutter", "120"}, rows[2])
}

func TestWriteExcelMultipleSheets(t *testing.T) {
	s1 := NewSheet("Offen", "Auftrag")
	s1.AddRow("A-1")
	s2 := NewSheet("Erledigt", "Auftrag")
	s2.AddRow("A-2")

	path := filepath.Join(t.TempDir(), "auftraege.xlsx")
	require.NoError(t, WriteExcel(path, s1, s2))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Offen", "Erledigt"}, f.GetSheetList())
}

func TestFromRowMaps(t *testing.T) {
	rows := []db.RowMap{
		{"ARTIKEL": "A-100", "NAME": "Schraube"},
		{"ARTIKEL": "A-200", "NAME": "Mutter"},
	}
	sheet := FromRowMaps("Artikel", []string{"Artikel", "Name"}, rows)
	assert.Equal(t, 2, sheet.Rows())

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteExcel(path, sheet))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Artikel")
	require.NoError(t, err)
	assert.Equal(t, []string{"A-100", "Schraube"}, got[1])
}

func TestWriteExcelEmptySheet(t *testing.T) {
	sheet := NewSheet("Leer", "A", "B")

	path := filepath.Join(t.TempDir(), "leer.xlsx")
	require.NoError(t, WriteExcel(path, sheet))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Leer")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"A", "B"}, rows[0])
}

func TestHyperlinkFormula(t *testing.T) {
	assert.Equal(t,
		`=HYPERLINK("https://web/wp/wauftragRec.aspx?wauftrag=W-1", "W-1")`,
		HyperlinkFormula("W-1", "https://web/wp/wauftragRec.aspx?wauftrag=W-1"))

	assert.Equal(t,
		`=HYPERLINK("https://web/x", 42)`,
		HyperlinkFormula(42, "https://web/x"))

	// embedded quotes are doubled
	assert.Equal(t,
		`=HYPERLINK("https://web/x", "Profil ""XL""")`,
		HyperlinkFormula(`Profil "XL"`, "https://web/x"))

	assert.Equal(t, "", HyperlinkFormula("", "https://web/x"))
	assert.Equal(t, "", HyperlinkFormula(nil, "https://web/x"))
}
