package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/yurifrl/contabilu/pkg/models"
)

// Status summarizes what the last import left in the database.
type Status struct {
	Accounts     int64      `json:"accounts" yaml:"accounts"`
	Transactions int64      `json:"transactions" yaml:"transactions"`
	FirstDate    *time.Time `json:"first_date,omitempty" yaml:"first_date,omitempty"`
	LastDate     *time.Time `json:"last_date,omitempty" yaml:"last_date,omitempty"`
	TotalCredit  float64    `json:"total_credit" yaml:"total_credit"`
	TotalDebit   float64    `json:"total_debit" yaml:"total_debit"`
}

// Filter narrows a transaction listing. Zero values do not filter; From and
// To are inclusive.
type Filter struct {
	From       time.Time
	To         time.Time
	Category   string
	CostType   models.CostType
	NatureCode string
}

func (s *Store) Status(ctx context.Context) (*Status, error) {
	db := s.db.WithContext(ctx)
	st := &Status{}

	if err := db.Model(&models.AccountCode{}).Count(&st.Accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count account codes: %w", err)
	}
	if err := db.Model(&models.Transaction{}).Count(&st.Transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	if st.Transactions == 0 {
		return st, nil
	}

	var first, last models.Transaction
	if err := db.Select("date").Order("date asc").Limit(1).Find(&first).Error; err != nil {
		return nil, fmt.Errorf("failed to query first date: %w", err)
	}
	if err := db.Select("date").Order("date desc").Limit(1).Find(&last).Error; err != nil {
		return nil, fmt.Errorf("failed to query last date: %w", err)
	}
	st.FirstDate, st.LastDate = &first.Date, &last.Date

	var sums struct {
		Credit float64
		Debit  float64
	}
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(credit_amount), 0) AS credit, COALESCE(SUM(debit_amount), 0) AS debit").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum amounts: %w", err)
	}
	st.TotalCredit, st.TotalDebit = sums.Credit, sums.Debit
	return st, nil
}

// Transactions lists persisted transactions ordered by date then id.
func (s *Store) Transactions(ctx context.Context, f Filter) ([]*models.Transaction, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{})
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("date <= ?", f.To)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.CostType != "" {
		q = q.Where("cost_type = ?", f.CostType)
	}
	if f.NatureCode != "" {
		q = q.Where("nature_code = ?", f.NatureCode)
	}

	var txs []*models.Transaction
	if err := q.Order("date asc, id asc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

func (s *Store) Accounts(ctx context.Context) ([]*models.AccountCode, error) {
	var accounts []*models.AccountCode
	if err := s.db.WithContext(ctx).Order("code asc").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list account codes: %w", err)
	}
	return accounts, nil
}
