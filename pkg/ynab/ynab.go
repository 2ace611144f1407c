package ynab

import (
	"strings"

	"github.com/brunomvsouza/ynab.go"
	"github.com/brunomvsouza/ynab.go/api/transaction"
)

// MemoTag marks memos written by this program.
const MemoTag = "contabilu"

// TransactionAPI is the part of the YNAB API the executors need.
type TransactionAPI interface {
	GetTransactionsByAccount(budgetID, accountID string, filter *transaction.Filter) ([]*Transaction, error)
	CreateTransactions(budgetID string, payloads []transaction.PayloadTransaction) error
}

// YNABClient wraps the upstream client and exposes the wrapped services
type YNABClient struct {
	client ynab.ClientServicer
}

// TransactionService narrows the upstream transaction service to what the executors use
type TransactionService struct {
	upstream *transaction.Service
}

// Transaction wraps the core YNAB transaction adding CustomID extracted from
// the memo first CSV field.
type Transaction struct {
	*transaction.Transaction
	customID string
}

func New(token string) *YNABClient {
	return &YNABClient{
		client: ynab.NewClient(token),
	}
}

func (c *YNABClient) Transaction() *TransactionService {
	return &TransactionService{upstream: c.client.Transaction()}
}

// Memo builds a memo whose first field is the custom ID.
func Memo(customID string, fields ...string) string {
	return strings.Join(append([]string{customID, MemoTag}, fields...), ",")
}

func extractCustomID(tx *transaction.Transaction) string {
	if tx == nil || tx.Memo == nil {
		return ""
	}
	memo := strings.Trim(*tx.Memo, "\"")
	if idx := strings.Index(memo, ","); idx > 0 {
		return memo[:idx]
	}
	return ""
}

// Wrap decorates a raw API transaction.
func Wrap(tx *transaction.Transaction) *Transaction {
	return &Transaction{Transaction: tx, customID: extractCustomID(tx)}
}

func (ts *TransactionService) GetTransactionsByAccount(budgetID, accountID string, filter *transaction.Filter) ([]*Transaction, error) {
	txs, err := ts.upstream.GetTransactionsByAccount(budgetID, accountID, filter)
	if err != nil {
		return nil, err
	}

	transactions := make([]*Transaction, 0, len(txs))
	for _, tx := range txs {
		transactions = append(transactions, Wrap(tx))
	}
	return transactions, nil
}

// CreateTransactions creates multiple transactions in one API call
func (ts *TransactionService) CreateTransactions(budgetID string, payloads []transaction.PayloadTransaction) error {
	if len(payloads) == 0 {
		return nil
	}
	_, err := ts.upstream.CreateTransactions(budgetID, payloads)
	return err
}

func (t *Transaction) CustomID() string {
	return t.customID
}

func (t *Transaction) Payee() string {
	if t.PayeeName == nil {
		return ""
	}
	return *t.PayeeName
}
