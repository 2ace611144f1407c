package models

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/yurifrl/contabilu/pkg/normalize"
)

var (
	ErrMissingDate   = errors.New("missing or unparseable date")
	ErrMissingNature = errors.New("missing nature code")
	ErrFieldTooLong  = errors.New("field too long")
)

// column widths, matching the gorm size tags on Transaction
const (
	maxCodeLen = 32
	maxBankLen = 64
	maxDocLen  = 64
	maxNameLen = 255
)

// TransactionBuilder turns the raw text of one spreadsheet row into a
// classified Transaction. Setters never fail; problems surface from Build.
// Unparseable amounts are not errors: the amount is left absent and the
// problem is kept in Warnings.
type TransactionBuilder struct {
	tx       Transaction
	rawDate  string
	dateSet  bool
	warnings []error
}

func NewTransaction() *TransactionBuilder {
	return &TransactionBuilder{}
}

func (b *TransactionBuilder) SetBranch(v string) *TransactionBuilder {
	b.tx.Branch = normalize.Identifier(v)
	return b
}

func (b *TransactionBuilder) SetDate(v string) *TransactionBuilder {
	b.rawDate = v
	b.tx.Date, b.dateSet = normalize.ParseDate(v)
	return b
}

func (b *TransactionBuilder) SetBank(v string) *TransactionBuilder {
	b.tx.Bank = normalize.Text(v)
	return b
}

func (b *TransactionBuilder) SetBankBranch(v string) *TransactionBuilder {
	b.tx.BankBranch = normalize.Identifier(v)
	return b
}

func (b *TransactionBuilder) SetAccountNumber(v string) *TransactionBuilder {
	b.tx.AccountNumber = normalize.Identifier(v)
	return b
}

func (b *TransactionBuilder) SetNature(code, name string) *TransactionBuilder {
	b.tx.NatureCode = normalize.Code(code)
	b.tx.NatureName = normalize.Text(name)
	return b
}

func (b *TransactionBuilder) SetDocument(v string) *TransactionBuilder {
	b.tx.Document = normalize.Code(v)
	return b
}

func (b *TransactionBuilder) SetCredit(v string) *TransactionBuilder {
	amount, err := normalize.ParseAmount(v)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Errorf("credit: %w", err))
	}
	b.tx.CreditAmount = amount
	return b
}

func (b *TransactionBuilder) SetDebit(v string) *TransactionBuilder {
	amount, err := normalize.ParseAmount(v)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Errorf("debit: %w", err))
	}
	b.tx.DebitAmount = amount
	return b
}

func (b *TransactionBuilder) SetNarrative(v string) *TransactionBuilder {
	b.tx.Narrative = normalize.Text(v)
	return b
}

// Warnings lists the amounts that were present but could not be parsed.
func (b *TransactionBuilder) Warnings() []error {
	return b.warnings
}

// Build validates the row and derives category, cost type, counterparty and
// document reference. A row without a date or without a nature code is
// reported with ErrMissingDate or ErrMissingNature; a value wider than its
// column with ErrFieldTooLong.
func (b *TransactionBuilder) Build() (*Transaction, error) {
	if !b.dateSet {
		return nil, fmt.Errorf("%w: %q", ErrMissingDate, b.rawDate)
	}
	if b.tx.NatureCode == "" {
		return nil, ErrMissingNature
	}
	if err := b.checkWidths(); err != nil {
		return nil, err
	}

	tx := b.tx
	tx.Category = normalize.Categorize(tx.NatureCode, tx.NatureName)
	tx.CostType = CostVariable
	if normalize.IsFixedCost(tx.NatureName, tx.Narrative) {
		tx.CostType = CostFixed
	}
	counterparty, docRef := normalize.ExtractNarrative(tx.Narrative)
	tx.Counterparty = truncate(counterparty, maxNameLen)
	tx.DocumentReference = truncate(docRef, maxDocLen)
	return &tx, nil
}

func (b *TransactionBuilder) checkWidths() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"branch", b.tx.Branch, maxCodeLen},
		{"bank", b.tx.Bank, maxBankLen},
		{"bank branch", b.tx.BankBranch, maxCodeLen},
		{"account number", b.tx.AccountNumber, maxCodeLen},
		{"nature code", b.tx.NatureCode, maxCodeLen},
		{"nature name", b.tx.NatureName, maxNameLen},
		{"document", b.tx.Document, maxDocLen},
	}
	var errs []error
	for _, f := range fields {
		if n := utf8.RuneCountInString(f.value); n > f.max {
			errs = append(errs, fmt.Errorf("%w: %s has %d characters, limit %d", ErrFieldTooLong, f.name, n, f.max))
		}
	}
	return errors.Join(errs...)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
