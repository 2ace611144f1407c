// Package csv exports persisted transactions in the same column layout the
// importer reads, so an export can be edited and imported back.
package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/source"
)

type Record interface {
	Fields() []string
}

type FilterFunc[T any] func(T) bool

// Create writes header and every record accepted by filter, ';' separated.
func Create[T Record](header []string, records []T, filter FilterFunc[T]) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range records {
		if filter == nil || filter(r) {
			if err := w.Write(r.Fields()); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

var TransactionHeader = []string{
	source.ColBranch, source.ColDate, source.ColBank, source.ColBankBranch, source.ColAccount,
	source.ColNatureCode, source.ColNatureName, source.ColDocument, source.ColCredit, source.ColDebit,
	source.ColNarrative, "Categoria", "Tipo Custo", "Contraparte", "Referencia",
}

type transactionRecord struct {
	*models.Transaction
}

func (r transactionRecord) Fields() []string {
	t := r.Transaction
	return []string{
		t.Branch,
		t.Date.Format("02/01/2006"),
		t.Bank,
		t.BankBranch,
		t.AccountNumber,
		t.NatureCode,
		t.NatureName,
		t.Document,
		formatAmount(t.CreditAmount),
		formatAmount(t.DebitAmount),
		t.Narrative,
		t.Category,
		string(t.CostType),
		t.Counterparty,
		t.DocumentReference,
	}
}

// formatAmount writes a comma decimal without grouping; absent is empty.
func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.Replace(strconv.FormatFloat(*v, 'f', 2, 64), ".", ",", 1)
}

// Transactions exports txs, keeping those accepted by filter.
func Transactions(txs []*models.Transaction, filter FilterFunc[*models.Transaction]) ([]byte, error) {
	records := make([]transactionRecord, len(txs))
	for i, t := range txs {
		records[i] = transactionRecord{t}
	}

	var recordFilter FilterFunc[transactionRecord]
	if filter != nil {
		recordFilter = func(r transactionRecord) bool { return filter(r.Transaction) }
	}
	return Create(TransactionHeader, records, recordFilter)
}
