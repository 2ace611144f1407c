package executors

import (
	"fmt"

	"github.com/yurifrl/contabilu/pkg/models"
)

// Apply creates the local transactions missing from the YNAB account in one
// API call and returns how many were created.
func (e *Executor) Apply(local []*models.Transaction) (int, error) {
	report, err := e.reconcile(local)
	if err != nil {
		return 0, err
	}

	batch := report.Payloads(e.config.AccountID)
	e.logger.Info("transactions to create", "count", len(batch), "account_id", e.config.AccountID)
	if len(batch) == 0 {
		return 0, nil
	}

	if err := e.ynab.CreateTransactions(e.config.BudgetID, batch); err != nil {
		return 0, fmt.Errorf("failed to create transactions: %w", err)
	}
	e.logger.Info("created transactions", "count", len(batch), "account_id", e.config.AccountID)
	return len(batch), nil
}
