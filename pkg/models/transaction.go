package models

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// CostType tags an expense as recurring or volume dependent.
type CostType string

const (
	CostFixed    CostType = "Fixed"
	CostVariable CostType = "Variable"
)

// Transaction is a normalized bank movement.
type Transaction struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Branch            string    `gorm:"size:32" json:"branch" yaml:"branch"`
	Date              time.Time `gorm:"type:date;not null;index" json:"date" yaml:"date"`
	Bank              string    `gorm:"size:64" json:"bank" yaml:"bank"`
	BankBranch        string    `gorm:"size:32" json:"bank_branch" yaml:"bank_branch"`
	AccountNumber     string    `gorm:"size:32" json:"account_number" yaml:"account_number"`
	NatureCode        string    `gorm:"size:32;index" json:"nature_code" yaml:"nature_code"`
	NatureName        string    `gorm:"size:255" json:"nature_name" yaml:"nature_name"`
	Document          string    `gorm:"size:64" json:"document" yaml:"document"`
	CreditAmount      *float64  `json:"credit_amount" yaml:"credit_amount"`
	DebitAmount       *float64  `json:"debit_amount" yaml:"debit_amount"`
	Narrative         string    `gorm:"type:text" json:"narrative" yaml:"narrative"`
	Category          string    `gorm:"size:64;index" json:"category" yaml:"category"`
	CostType          CostType  `gorm:"size:16" json:"cost_type" yaml:"cost_type"`
	Counterparty      string    `gorm:"size:255" json:"counterparty" yaml:"counterparty"`
	DocumentReference string    `gorm:"size:64" json:"document_reference" yaml:"document_reference"`
}

func (Transaction) TableName() string { return "transactions" }

// Credit returns the credit amount or zero when absent.
func (t *Transaction) Credit() float64 {
	if t.CreditAmount == nil {
		return 0
	}
	return *t.CreditAmount
}

// Debit returns the debit amount or zero when absent.
func (t *Transaction) Debit() float64 {
	if t.DebitAmount == nil {
		return 0
	}
	return *t.DebitAmount
}

// Amount is the signed value of the movement: credits are positive.
func (t *Transaction) Amount() float64 {
	return t.Credit() - t.Debit()
}

// Payee is the counterparty when the narrative names one, the nature name
// otherwise.
func (t *Transaction) Payee() string {
	if t.Counterparty != "" {
		return t.Counterparty
	}
	return t.NatureName
}

// CustomID is a short stable digest identifying the movement outside the
// database, where the surrogate ID is meaningless.
func (t *Transaction) CustomID() string {
	input := fmt.Sprintf("%s-%s-%.2f-%s",
		t.Date.Format("2006-01-02"),
		strings.ToLower(strings.TrimSpace(t.Payee())),
		t.Amount(),
		t.Document,
	)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash)[:8]
}
