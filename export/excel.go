// Package export writes query results to Excel workbooks, one sheet
// per result set, optionally with cell formulas linking records back
// into the web client.
package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/erptools/go-applus/db"
)

// Sheet is one worksheet in the making: a fixed column order plus data
// rows.
type Sheet struct {
	// Name of the worksheet.
	Name string

	// Columns are the header row, in order.
	Columns []string

	// Table renders the data as an Excel table with filter handles.
	Table bool

	rows [][]any
}

// NewSheet creates a sheet with the given header columns.
func NewSheet(name string, columns ...string) *Sheet {
	return &Sheet{Name: name, Columns: columns, Table: true}
}

// AddRow appends one row, values in column order.
func (s *Sheet) AddRow(values ...any) {
	s.rows = append(s.rows, values)
}

// AddRowMap appends one row taken from a query result, picking the
// sheet's columns by their upper-cased name.
func (s *Sheet) AddRowMap(row db.RowMap) {
	values := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		values[i] = row[strings.ToUpper(c)]
	}
	s.rows = append(s.rows, values)
}

// Rows returns the number of data rows.
func (s *Sheet) Rows() int { return len(s.rows) }

// FromRowMaps builds a sheet from query results.
func FromRowMaps(name string, columns []string, rows []db.RowMap) *Sheet {
	s := NewSheet(name, columns...)
	for _, r := range rows {
		s.AddRowMap(r)
	}
	return s
}

// WriteExcel writes the sheets into a new workbook at path.
func WriteExcel(path string, sheets ...*Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if err := writeSheet(f, i, sheet); err != nil {
			return fmt.Errorf("export: sheet %s: %w", sheet.Name, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, i int, sheet *Sheet) error {
	if i == 0 {
		if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(sheet.Name); err != nil {
		return err
	}

	header := make([]any, len(sheet.Columns))
	widths := make([]int, len(sheet.Columns))
	for c, name := range sheet.Columns {
		header[c] = name
		widths[c] = utf8.RuneCountInString(name)
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}

	for r, row := range sheet.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return err
		}
		for c, v := range row {
			if c < len(widths) {
				if w := utf8.RuneCountInString(fmt.Sprint(v)); w > widths[c] {
					widths[c] = w
				}
			}
		}
	}

	if sheet.Table && len(sheet.rows) > 0 && len(sheet.Columns) > 0 {
		end, err := excelize.CoordinatesToCellName(len(sheet.Columns), len(sheet.rows)+1)
		if err != nil {
			return err
		}
		if err := f.AddTable(sheet.Name, &excelize.Table{
			Range:     "A1:" + end,
			StyleName: "TableStyleMedium9",
		}); err != nil {
			return err
		}
	}

	// rough autofit, capped so a single long cell does not blow up the
	// layout
	for c, w := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if w > 60 {
			w = 60
		}
		if err := f.SetColWidth(sheet.Name, col, col, float64(w)+2); err != nil {
			return err
		}
	}
	return nil
}
