package source

import (
	"fmt"
	"strings"
)

// Column headers of the bank movement sheet.
const (
	ColBranch      = "Filial Orig"
	ColBranchAlias = "Filial"
	ColDate        = "Data"
	ColBank        = "Banco"
	ColBankBranch  = "Agencia"
	ColAccount     = "Conta Banco"
	ColNatureCode  = "Natureza"
	ColNatureName  = "Nome Natureza"
	ColDocument    = "Documento"
	ColCredit      = "Entrada"
	ColDebit       = "Saida"
	ColNarrative   = "Historico"
)

// Column headers of the chart of accounts sheet.
const (
	ColCode        = "Codigo"
	ColDescription = "Descricao"
)

var (
	TransactionColumns = []string{ColDate, ColBank, ColNatureCode, ColNatureName, ColCredit, ColDebit, ColNarrative}
	NatureColumns      = []string{ColNatureCode, ColNatureName}
	AccountColumns     = []string{ColCode, ColDescription}
)

type MissingColumnsError struct {
	Sheet   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Sheet, strings.Join(e.Columns, ", "))
}

// TransactionRecord is the raw text of one bank movement row. Line is the
// 1-based spreadsheet line, header included.
type TransactionRecord struct {
	Line          int
	Branch        string
	Date          string
	Bank          string
	BankBranch    string
	AccountNumber string
	NatureCode    string
	NatureName    string
	Document      string
	Credit        string
	Debit         string
	Narrative     string
}

type AccountRecord struct {
	Line        int
	Code        string
	Description string
}

type columns struct {
	sheet string
	index map[string]int
}

func (s *Sheet) columns(required []string) (*columns, error) {
	c := &columns{sheet: s.Name, index: s.header()}
	var missing []string
	for _, name := range required {
		if _, ok := c.index[foldName(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Sheet: s.Name, Columns: missing}
	}
	return c, nil
}

// get returns the trimmed cell of the first column present among names.
func (c *columns) get(row []string, names ...string) string {
	for _, name := range names {
		i, ok := c.index[foldName(name)]
		if !ok {
			continue
		}
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return ""
}

// dataRows yields the non-blank rows below the header with their line number.
func (s *Sheet) dataRows(fn func(line int, row []string)) {
	for i := 1; i < len(s.Rows); i++ {
		if blank(s.Rows[i]) {
			continue
		}
		fn(i+1, s.Rows[i])
	}
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// TransactionRecords validates the header and extracts every movement row.
func (s *Sheet) TransactionRecords() ([]TransactionRecord, error) {
	c, err := s.columns(TransactionColumns)
	if err != nil {
		return nil, err
	}

	var records []TransactionRecord
	s.dataRows(func(line int, row []string) {
		records = append(records, TransactionRecord{
			Line:          line,
			Branch:        c.get(row, ColBranch, ColBranchAlias),
			Date:          c.get(row, ColDate),
			Bank:          c.get(row, ColBank),
			BankBranch:    c.get(row, ColBankBranch),
			AccountNumber: c.get(row, ColAccount),
			NatureCode:    c.get(row, ColNatureCode),
			NatureName:    c.get(row, ColNatureName),
			Document:      c.get(row, ColDocument),
			Credit:        c.get(row, ColCredit),
			Debit:         c.get(row, ColDebit),
			Narrative:     c.get(row, ColNarrative),
		})
	})
	return records, nil
}

// NatureRecords extracts the (code, name) pair of every movement row, in
// sheet order, as chart entries. Only the two nature columns are required.
func (s *Sheet) NatureRecords() ([]AccountRecord, error) {
	c, err := s.columns(NatureColumns)
	if err != nil {
		return nil, err
	}

	var records []AccountRecord
	s.dataRows(func(line int, row []string) {
		records = append(records, AccountRecord{
			Line:        line,
			Code:        c.get(row, ColNatureCode),
			Description: c.get(row, ColNatureName),
		})
	})
	return records, nil
}

// AccountRecords extracts an explicit chart of accounts.
func (s *Sheet) AccountRecords() ([]AccountRecord, error) {
	c, err := s.columns(AccountColumns)
	if err != nil {
		return nil, err
	}

	var records []AccountRecord
	s.dataRows(func(line int, row []string) {
		records = append(records, AccountRecord{
			Line:        line,
			Code:        c.get(row, ColCode),
			Description: c.get(row, ColDescription),
		})
	})
	return records, nil
}
