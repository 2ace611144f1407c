// Package service wires reader, importer and storage together for the CLI
// and the HTTP server.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yurifrl/contabilu/pkg/config"
	"github.com/yurifrl/contabilu/pkg/importer"
	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/report"
	"github.com/yurifrl/contabilu/pkg/source"
	"github.com/yurifrl/contabilu/pkg/storage"
)

// Store is the storage surface the service uses.
type Store interface {
	importer.SessionFactory
	Ping(ctx context.Context) error
	Status(ctx context.Context) (*storage.Status, error)
	Transactions(ctx context.Context, f storage.Filter) ([]*models.Transaction, error)
	Accounts(ctx context.Context) ([]*models.AccountCode, error)
	Close() error
}

type Service struct {
	config *config.Config
	logger *log.Logger
	store  Store
	reader *source.Reader
}

// Outcome reports one import run. Transactions is nil when the account
// import failed and the transaction import was not attempted.
type Outcome struct {
	RunID        string           `json:"run_id" yaml:"run_id"`
	File         string           `json:"file" yaml:"file"`
	Accounts     importer.Result  `json:"accounts" yaml:"accounts"`
	Transactions *importer.Result `json:"transactions,omitempty" yaml:"transactions,omitempty"`
	Duration     time.Duration    `json:"duration" yaml:"duration"`
}

func (o *Outcome) Success() bool {
	return o.Accounts.Success && o.Transactions != nil && o.Transactions.Success
}

// Open connects to the configured database.
func Open(cfg *config.Config, logger *log.Logger) (*Service, error) {
	store, err := storage.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger, store), nil
}

func New(cfg *config.Config, logger *log.Logger, store Store) *Service {
	return &Service{
		config: cfg,
		logger: logger,
		store:  store,
		reader: source.New(logger),
	}
}

func (s *Service) newImporter(logger *log.Logger) *importer.Importer {
	return importer.New(s.store, logger,
		importer.WithBatchSize(s.config.Import.BatchSize),
		importer.WithSheets(s.config.Import.AccountsSheet, s.config.Import.TransactionsSheet),
	)
}

// ImportBytes reads a workbook and runs the account import followed, when it
// succeeds, by the transaction import. Only unreadable input is an error;
// import failures are reported in the Outcome.
func (s *Service) ImportBytes(ctx context.Context, data []byte, filename string) (*Outcome, error) {
	wb, err := s.reader.Read(data, filename)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out := &Outcome{RunID: uuid.NewString(), File: filename}
	logger := s.logger.With("run", out.RunID)
	logger.Info("import started", "file", filename, "sheets", wb.SheetNames())

	imp := s.newImporter(logger)
	out.Accounts = imp.ImportAccounts(ctx, wb)
	if out.Accounts.Success {
		res := imp.ImportTransactions(ctx, wb)
		out.Transactions = &res
	}
	out.Duration = time.Since(start)

	logger.Info("import finished", "success", out.Success(), "duration", out.Duration)
	return out, nil
}

func (s *Service) ImportFile(ctx context.Context, path string) (*Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return s.ImportBytes(ctx, data, filepath.Base(path))
}

// Preview normalizes a file without writing anything.
func (s *Service) Preview(path string) (*importer.Preview, error) {
	wb, err := s.reader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.newImporter(s.logger).Preview(wb)
}

func (s *Service) Status(ctx context.Context) (*storage.Status, error) {
	return s.store.Status(ctx)
}

func (s *Service) Transactions(ctx context.Context, f storage.Filter) ([]*models.Transaction, error) {
	return s.store.Transactions(ctx, f)
}

func (s *Service) Accounts(ctx context.Context) ([]*models.AccountCode, error) {
	return s.store.Accounts(ctx)
}

// Report computes the indicators of the transactions within [from, to];
// zero bounds are open.
func (s *Service) Report(ctx context.Context, from, to time.Time) (*report.Report, error) {
	txs, err := s.store.Transactions(ctx, storage.Filter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	var period report.Period
	if !from.IsZero() {
		period.From = &from
	}
	if !to.IsZero() {
		period.To = &to
	}
	return report.Build(txs, period), nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Close() error {
	return s.store.Close()
}
