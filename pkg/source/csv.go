package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (r *Reader) readCSV(data []byte, name string) (*Workbook, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		// Bank exports saved from Excel on Windows are Latin-1.
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("error decoding latin-1: %w", err)
		}
		r.logger.Debug("decoded csv as latin-1", "sheet", name)
		data = decoded
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1 // ragged rows are validated per record
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return &Workbook{Sheets: []*Sheet{{Name: name, Rows: rows}}}, nil
}

// sniffDelimiter picks ';' when the header line has more of them than
// commas. Brazilian exports use ';' because ',' is the decimal separator.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}
