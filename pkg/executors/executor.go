// Package executors pushes persisted transactions to a YNAB account: Plan
// previews the difference, Apply creates what is missing.
package executors

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/charmbracelet/log"

	"github.com/yurifrl/contabilu/pkg/config"
	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/ynab"
)

type Executor struct {
	logger *log.Logger
	config config.YNABConfig
	ynab   ynab.TransactionAPI
	out    io.Writer
}

func New(logger *log.Logger, config config.YNABConfig, client ynab.TransactionAPI) *Executor {
	return &Executor{
		logger: logger,
		config: config,
		ynab:   client,
		out:    os.Stdout,
	}
}

// WithOutput redirects the plan preview.
func (e *Executor) WithOutput(w io.Writer) *Executor {
	e.out = w
	return e
}

// reconcile fetches the remote transactions since the earliest local date
// and matches them against local.
func (e *Executor) reconcile(local []*models.Transaction) (*Report, error) {
	if e.config.BudgetID == "" || e.config.AccountID == "" {
		return nil, errors.New("ynab budget_id and account_id are required")
	}

	var filter *transaction.Filter
	if since := earliest(local); !since.IsZero() {
		filter = &transaction.Filter{Since: &api.Date{Time: since}}
	}

	remote, err := e.ynab.GetTransactionsByAccount(e.config.BudgetID, e.config.AccountID, filter)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("fetched remote transactions", "count", len(remote), "account_id", e.config.AccountID)

	return BuildReport(local, remote, e.config.MatchByID), nil
}

func earliest(txs []*models.Transaction) time.Time {
	var first time.Time
	for _, t := range txs {
		if first.IsZero() || t.Date.Before(first) {
			first = t.Date
		}
	}
	return first
}
