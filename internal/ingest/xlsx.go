package ingest

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Row is one sheet row keyed by header name. Cells under an empty header are
// dropped.
type Row map[string]string

// Table is the parsed first sheet of a workbook.
type Table struct {
	Header []string
	Rows   []Row
}

// ReadTable reads the first sheet of an XLSX file into header-keyed rows.
func ReadTable(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	return fileToTable(f)
}

// ReadTableBytes parses an in-memory workbook, as received from an upload.
func ReadTableBytes(data []byte) (*Table, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open workbook")
	}
	return fileToTable(f)
}

func fileToTable(f *xlsx.File) (*Table, error) {
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: workbook has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return &Table{}, nil
	}

	header := rowToStrings(sheet.Rows[0])
	t := &Table{Header: header}

	for _, raw := range sheet.Rows[1:] {
		cells := rowToStrings(raw)
		row := make(Row, len(header))
		empty := true
		for i, name := range header {
			name = strings.TrimSpace(name)
			if name == "" || i >= len(cells) {
				continue
			}
			row[name] = cells[i]
			if strings.TrimSpace(cells[i]) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
