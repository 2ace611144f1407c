package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/source"
)

// ImportTransactions replaces the transactions table with the normalized
// rows of the transactions sheet, committing every batchSize rows. A failed
// batch is rolled back; batches committed before it stay.
func (i *Importer) ImportTransactions(ctx context.Context, wb *source.Workbook) Result {
	sheet := wb.SheetOrOnly(i.transactionsSheet)
	if sheet == nil {
		return failure("error importing bank transactions: workbook has no %q sheet", i.transactionsSheet)
	}
	records, err := sheet.TransactionRecords()
	if err != nil {
		return failure("error importing bank transactions: %v", err)
	}

	res, err := i.loadTransactions(ctx, records)
	if err != nil {
		i.logger.Error("transaction import failed", "error", err, "committed", res.Count)
		failed := failure("error importing bank transactions: %v", err)
		failed.Count = res.Count
		return failed
	}

	i.logger.Info("imported bank transactions", "count", res.Count, "dropped", res.Dropped, "skipped", res.Skipped)
	res.Success = true
	res.Message = fmt.Sprintf("imported %d bank transactions", res.Count)
	return res
}

func (i *Importer) loadTransactions(ctx context.Context, records []source.TransactionRecord) (Result, error) {
	var res Result

	uow, err := i.sessions.NewSession(ctx)
	if err != nil {
		return res, err
	}
	defer uow.Close()

	if err := uow.Begin(); err != nil {
		return res, err
	}
	if err := uow.DeleteAll(&models.Transaction{}); err != nil {
		return res, i.rollback(uow, err)
	}

	batch := make([]*models.Transaction, 0, i.batchSize)
	flush := func() error {
		if err := uow.AddBatch(batch); err != nil {
			return err
		}
		if err := uow.Commit(); err != nil {
			return err
		}
		res.Count += len(batch)
		batch = make([]*models.Transaction, 0, i.batchSize)
		return nil
	}

	for _, rec := range records {
		tx, err := i.buildTransaction(rec)
		if err != nil {
			i.reject(&res, rec, err)
			continue
		}

		batch = append(batch, tx)
		if len(batch) >= i.batchSize {
			if err := flush(); err != nil {
				return res, i.rollback(uow, err)
			}
		}
	}

	switch {
	case len(batch) > 0:
		if err := flush(); err != nil {
			return res, i.rollback(uow, err)
		}
	case res.Count == 0:
		// nothing survived; the delete still has to land
		if err := uow.Commit(); err != nil {
			return res, i.rollback(uow, err)
		}
	}
	return res, nil
}

// reject counts a row that will not be persisted. Rows without a date or
// nature are subtotals and blank lines; anything else violates a column
// constraint.
func (i *Importer) reject(res *Result, rec source.TransactionRecord, err error) {
	if errors.Is(err, models.ErrMissingDate) || errors.Is(err, models.ErrMissingNature) {
		res.Dropped++
		i.logger.Debug("dropping row", "line", rec.Line, "reason", err)
		return
	}
	res.Skipped++
	i.logger.Warn("skipping row", "line", rec.Line, "error", err)
}

// buildTransaction normalizes one row. Amounts that do not parse are
// logged and left absent; the row itself is kept.
func (i *Importer) buildTransaction(rec source.TransactionRecord) (*models.Transaction, error) {
	b := models.NewTransaction().
		SetBranch(rec.Branch).
		SetDate(rec.Date).
		SetBank(rec.Bank).
		SetBankBranch(rec.BankBranch).
		SetAccountNumber(rec.AccountNumber).
		SetNature(rec.NatureCode, rec.NatureName).
		SetDocument(rec.Document).
		SetCredit(rec.Credit).
		SetDebit(rec.Debit).
		SetNarrative(rec.Narrative)

	tx, err := b.Build()
	if err != nil {
		return nil, err
	}
	for _, w := range b.Warnings() {
		i.logger.Warn("amount treated as absent", "line", rec.Line, "error", w)
	}
	return tx, nil
}
