package source

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func (r *Reader) readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		// Raw values keep numbers free of display formatting (thousand
		// separators, currency) and dates as serials.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("error reading sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, &Sheet{Name: name, Rows: rows})
	}
	return wb, nil
}
