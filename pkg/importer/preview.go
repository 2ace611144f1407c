package importer

import (
	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/source"
)

// Preview is what an import would write, computed without storage.
type Preview struct {
	Accounts     []*models.AccountCode
	Transactions []*models.Transaction
	Result       Result
}

// Preview normalizes wb the same way the two imports do. Missing sheets
// leave the matching part empty; missing columns are errors.
func (i *Importer) Preview(wb *source.Workbook) (*Preview, error) {
	p := &Preview{}

	var chart, natures []source.AccountRecord
	var err error
	chartSheet := wb.Sheet(i.accountsSheet)
	txSheet := wb.SheetOrOnly(i.transactionsSheet)
	if chartSheet != nil {
		if chart, err = chartSheet.AccountRecords(); err != nil {
			return nil, err
		}
	}
	if txSheet == nil || txSheet == chartSheet {
		p.Accounts = mergeAccounts(chart, nil)
		return p, nil
	}
	if natures, err = txSheet.NatureRecords(); err != nil {
		return nil, err
	}
	p.Accounts = mergeAccounts(chart, natures)

	records, err := txSheet.TransactionRecords()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		tx, err := i.buildTransaction(rec)
		if err != nil {
			i.reject(&p.Result, rec, err)
			continue
		}
		p.Transactions = append(p.Transactions, tx)
	}
	p.Result.Success = true
	p.Result.Count = len(p.Transactions)
	return p, nil
}
