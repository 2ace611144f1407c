package source

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yurifrl/contabilu/pkg/normalize"
)

// Sheet is a grid of cell text. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]string
}

type Workbook struct {
	Sheets []*Sheet
}

// Sheet finds a sheet by name ignoring case, accents and surrounding space.
func (w *Workbook) Sheet(name string) *Sheet {
	want := foldName(name)
	for _, s := range w.Sheets {
		if foldName(s.Name) == want {
			return s
		}
	}
	return nil
}

// SheetOrOnly is Sheet with a fallback to the single sheet of a one-sheet
// workbook, which is what delimited files produce.
func (w *Workbook) SheetOrOnly(name string) *Sheet {
	if s := w.Sheet(name); s != nil {
		return s
	}
	if len(w.Sheets) == 1 {
		return w.Sheets[0]
	}
	return nil
}

func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		names = append(names, s.Name)
	}
	return names
}

func foldName(s string) string {
	return strings.Join(strings.Fields(normalize.Fold(s)), " ")
}

// header maps folded column names to their index. The first occurrence of a
// repeated name wins.
func (s *Sheet) header() map[string]int {
	idx := map[string]int{}
	if len(s.Rows) == 0 {
		return idx
	}
	for i, name := range s.Rows[0] {
		key := foldName(name)
		if _, ok := idx[key]; !ok && key != "" {
			idx[key] = i
		}
	}
	return idx
}

// Spreadsheet applications store dates as day counts; the date column is
// rewritten as d/m/Y text so every format reaches the same date parser.
func convertSerialDates(s *Sheet) {
	col, ok := s.header()[foldName(ColDate)]
	if !ok {
		return
	}
	for _, row := range s.Rows[1:] {
		if col >= len(row) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil || serial <= 0 {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			continue
		}
		row[col] = t.Format("02/01/2006")
	}
}
