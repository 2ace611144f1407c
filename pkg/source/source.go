// Package source reads spreadsheet exports into typed records.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var ErrUnknownFormat = errors.New("unknown file format")

// DetectFormat picks the reader from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

type Reader struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Reader {
	return &Reader{
		logger: logger,
	}
}

// Read parses the bytes of a spreadsheet; filename is only used to pick the
// format and to name the sheet of delimited files.
func (r *Reader) Read(data []byte, filename string) (*Workbook, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("detected file format", "format", format, "filename", filename)

	var wb *Workbook
	switch format {
	case FormatXLSX:
		wb, err = r.readXLSX(data)
	case FormatXLS:
		wb, err = r.readXLS(data)
	case FormatCSV:
		wb, err = r.readCSV(data, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	for _, sheet := range wb.Sheets {
		// delimited files carry dates as typed; a bare number there is not a serial
		if format != FormatCSV {
			convertSerialDates(sheet)
		}
		r.logger.Debug("loaded sheet", "sheet", sheet.Name, "rows", len(sheet.Rows))
	}
	return wb, nil
}

func (r *Reader) ReadFile(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return r.Read(data, filepath.Base(path))
}
