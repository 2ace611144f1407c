package importer

import (
	"context"
	"fmt"

	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/normalize"
	"github.com/yurifrl/contabilu/pkg/source"
)

// ImportAccounts replaces the chart of accounts with the explicit chart
// sheet merged with the natures referenced by the transactions sheet.
// Existing transactions are deleted too, since they reference the chart.
func (i *Importer) ImportAccounts(ctx context.Context, wb *source.Workbook) Result {
	chartSheet := wb.Sheet(i.accountsSheet)
	txSheet := wb.SheetOrOnly(i.transactionsSheet)
	if txSheet == chartSheet {
		txSheet = nil
	}
	if chartSheet == nil && txSheet == nil {
		return failure("error importing account codes: workbook has no %q or %q sheet", i.accountsSheet, i.transactionsSheet)
	}

	var chart, natures []source.AccountRecord
	var err error
	if chartSheet != nil {
		if chart, err = chartSheet.AccountRecords(); err != nil {
			return failure("error importing account codes: %v", err)
		}
	}
	if txSheet != nil {
		if natures, err = txSheet.NatureRecords(); err != nil {
			return failure("error importing account codes: %v", err)
		}
	}

	accounts := mergeAccounts(chart, natures)
	i.logger.Debug("merged chart of accounts", "explicit", len(chart), "from_transactions", len(natures), "codes", len(accounts))

	if err := i.replaceAccounts(ctx, accounts); err != nil {
		i.logger.Error("account import failed", "error", err)
		return failure("error importing account codes: %v", err)
	}

	i.logger.Info("imported account codes", "count", len(accounts))
	return Result{
		Success: true,
		Message: fmt.Sprintf("imported %d account codes", len(accounts)),
		Count:   len(accounts),
	}
}

func (i *Importer) replaceAccounts(ctx context.Context, accounts []*models.AccountCode) error {
	uow, err := i.sessions.NewSession(ctx)
	if err != nil {
		return err
	}
	defer uow.Close()

	if err := uow.Begin(); err != nil {
		return err
	}
	// transactions first, they reference account codes
	if err := uow.DeleteAll(&models.Transaction{}); err != nil {
		return i.rollback(uow, err)
	}
	if err := uow.DeleteAll(&models.AccountCode{}); err != nil {
		return i.rollback(uow, err)
	}
	for start := 0; start < len(accounts); start += i.batchSize {
		end := min(start+i.batchSize, len(accounts))
		if err := uow.AddBatch(accounts[start:end]); err != nil {
			return i.rollback(uow, err)
		}
	}
	if err := uow.Commit(); err != nil {
		return i.rollback(uow, err)
	}
	return nil
}

// mergeAccounts keys entries by normalized code. Within the explicit chart
// a repeated code keeps its last description; natures only fill codes the
// chart does not define, first occurrence wins.
func mergeAccounts(chart, natures []source.AccountRecord) []*models.AccountCode {
	index := map[string]*models.AccountCode{}
	var merged []*models.AccountCode

	for _, r := range chart {
		code := normalize.Code(r.Code)
		if code == "" {
			continue
		}
		desc := normalize.Text(r.Description)
		if existing, ok := index[code]; ok {
			existing.Description = desc
			existing.Category = normalize.Categorize(code, desc)
			continue
		}
		account := &models.AccountCode{Code: code, Description: desc, Category: normalize.Categorize(code, desc)}
		index[code] = account
		merged = append(merged, account)
	}

	for _, r := range natures {
		code := normalize.Code(r.Code)
		desc := normalize.Text(r.Description)
		if code == "" || desc == "" {
			continue
		}
		if _, ok := index[code]; ok {
			continue
		}
		account := &models.AccountCode{Code: code, Description: desc, Category: normalize.Categorize(code, desc)}
		index[code] = account
		merged = append(merged, account)
	}

	return merged
}
