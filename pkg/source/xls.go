package source

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

func (r *Reader) readXLS(data []byte) (*Workbook, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}
	plainNumberFormats(workbook)

	wb := &Workbook{}
	for i := 0; i < workbook.NumSheets(); i++ {
		sheet := workbook.GetSheet(i)
		if sheet == nil {
			continue
		}

		s := &Sheet{Name: sheet.Name}
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheetRow(sheet, r)
			if row == nil {
				s.Rows = append(s.Rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			s.Rows = append(s.Rows, cells)
		}
		trimTrailingEmpty(s)
		r.logger.Debug("read xls sheet", "sheet", s.Name, "max_row", sheet.MaxRow)
		wb.Sheets = append(wb.Sheets, s)
	}
	return wb, nil
}

// plainNumberFormats points every cell style at the General format. The
// library renders date styled numbers as RFC3339 or "2006.01" and mangles
// numbers under custom formats; with General every numeric cell comes out as
// its raw value and dates stay Excel serials for convertSerialDates.
func plainNumberFormats(wb *xls.WorkBook) {
	for _, xf := range wb.Xfs {
		switch xf := xf.(type) {
		case *xls.Xf8:
			xf.Format = 0
		case *xls.Xf5:
			xf.Format = 0
		}
	}
}

// sheetRow returns nil for rows the file never wrote. WorkSheet.Row
// dereferences the missing map entry and panics on them.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// trimTrailingEmpty drops missing rows at the end of the sheet, including the
// lone row 0 of an empty sheet.
func trimTrailingEmpty(s *Sheet) {
	for len(s.Rows) > 0 && s.Rows[len(s.Rows)-1] == nil {
		s.Rows = s.Rows[:len(s.Rows)-1]
	}
}
