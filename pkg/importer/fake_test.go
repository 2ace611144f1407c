package importer

import (
	"context"
	"errors"

	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/storage"
)

type tables struct {
	accounts     []*models.AccountCode
	transactions []*models.Transaction
}

// fakeStore is an in-memory UnitOfWork that records every operation.
type fakeStore struct {
	committed tables
	staged    tables
	open      bool
	added     int

	ops       []string
	commits   []int // rows added by each commit
	rollbacks int
	addCalls  int
	sessions  int

	failAddOn  int // 1-based AddBatch call that fails, 0 never
	sessionErr error
}

func (f *fakeStore) NewSession(context.Context) (storage.UnitOfWork, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions++
	return f, nil
}

func (f *fakeStore) Begin() error {
	if !f.open {
		f.staged = tables{
			accounts:     append([]*models.AccountCode(nil), f.committed.accounts...),
			transactions: append([]*models.Transaction(nil), f.committed.transactions...),
		}
		f.open = true
		f.added = 0
		f.ops = append(f.ops, "begin")
	}
	return nil
}

func (f *fakeStore) DeleteAll(model any) error {
	f.Begin()
	switch model.(type) {
	case *models.Transaction:
		f.staged.transactions = nil
		f.ops = append(f.ops, "delete transactions")
	case *models.AccountCode:
		f.staged.accounts = nil
		f.ops = append(f.ops, "delete accounts")
	}
	return nil
}

func (f *fakeStore) AddBatch(records any) error {
	f.Begin()
	f.addCalls++
	if f.failAddOn == f.addCalls {
		return errors.New("disk full")
	}
	switch rows := records.(type) {
	case []*models.Transaction:
		f.staged.transactions = append(f.staged.transactions, rows...)
		f.added += len(rows)
		f.ops = append(f.ops, "add transactions")
	case []*models.AccountCode:
		f.staged.accounts = append(f.staged.accounts, rows...)
		f.added += len(rows)
		f.ops = append(f.ops, "add accounts")
	}
	return nil
}

func (f *fakeStore) Commit() error {
	if !f.open {
		return nil
	}
	f.committed = f.staged
	f.open = false
	f.commits = append(f.commits, f.added)
	f.ops = append(f.ops, "commit")
	return nil
}

func (f *fakeStore) Rollback() error {
	if f.open {
		f.open = false
		f.rollbacks++
		f.ops = append(f.ops, "rollback")
	}
	return nil
}

func (f *fakeStore) Close() error {
	return f.Rollback()
}
