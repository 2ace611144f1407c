// Package importer loads a workbook into storage: first the chart of
// accounts, then the bank transactions. Each load replaces its tables.
package importer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/contabilu/pkg/storage"
)

const (
	DefaultBatchSize         = 50
	DefaultAccountsSheet     = "Plano de Contas"
	DefaultTransactionsSheet = "Movimentacao Bancaria"
)

// SessionFactory opens the unit of work an import runs in.
type SessionFactory interface {
	NewSession(ctx context.Context) (storage.UnitOfWork, error)
}

// Result is what callers show to the user. Handled failures are reported
// here rather than as Go errors.
type Result struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
	Count   int    `json:"count" yaml:"count"`
	// Dropped counts rows without a date or nature code.
	Dropped int `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	// Skipped counts rows that failed to convert.
	Skipped int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

type Importer struct {
	sessions          SessionFactory
	logger            *log.Logger
	batchSize         int
	accountsSheet     string
	transactionsSheet string
}

type Option func(*Importer)

func WithBatchSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithSheets overrides the sheet names. Empty names keep the defaults.
func WithSheets(accounts, transactions string) Option {
	return func(i *Importer) {
		if accounts != "" {
			i.accountsSheet = accounts
		}
		if transactions != "" {
			i.transactionsSheet = transactions
		}
	}
}

func New(sessions SessionFactory, logger *log.Logger, opts ...Option) *Importer {
	i := &Importer{
		sessions:          sessions,
		logger:            logger,
		batchSize:         DefaultBatchSize,
		accountsSheet:     DefaultAccountsSheet,
		transactionsSheet: DefaultTransactionsSheet,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// rollback undoes in-flight work after err and returns err.
func (i *Importer) rollback(uow storage.UnitOfWork, err error) error {
	if rbErr := uow.Rollback(); rbErr != nil {
		i.logger.Error("rollback failed", "error", rbErr)
	}
	return err
}
