package executors

import (
	"fmt"

	"github.com/brunomvsouza/ynab.go/api"
	"github.com/brunomvsouza/ynab.go/api/transaction"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/ynab"
)

// Status indicates the reconciliation result for a local transaction.
type Status int

const (
	Synced Status = iota
	ToAdd
)

// Entry links a local transaction with its remote counterpart, if any.
type Entry struct {
	Local  *models.Transaction
	Remote *ynab.Transaction // nil when status == ToAdd
	Status Status
}

func (e Entry) RemoteCustomID() string {
	if e.Remote == nil {
		return ""
	}
	return e.Remote.CustomID()
}

type Report struct {
	Items  []Entry
	toSync []*models.Transaction
}

// BuildReport matches local transactions against the remote ones, by the
// memo-encoded custom ID or, when useCustomID is false, by
// amount/payee/date.
func BuildReport(local []*models.Transaction, remote []*ynab.Transaction, useCustomID bool) *Report {
	key := func(rt *ynab.Transaction) string { return rt.CustomID() }
	localKey := func(lt *models.Transaction) string { return lt.CustomID() }
	if !useCustomID {
		key = func(rt *ynab.Transaction) string {
			return fmt.Sprintf("%d|%s|%s", rt.Amount, rt.Payee(), rt.Date.Format("2006-01-02"))
		}
		localKey = func(lt *models.Transaction) string {
			return fmt.Sprintf("%d|%s|%s", Milliunits(lt.Amount()), lt.Payee(), lt.Date.Format("2006-01-02"))
		}
	}

	// each remote transaction satisfies at most one local one
	idx := make(map[string][]*ynab.Transaction, len(remote))
	for _, rt := range remote {
		if k := key(rt); k != "" {
			idx[k] = append(idx[k], rt)
		}
	}

	items := make([]Entry, 0, len(local))
	toSync := make([]*models.Transaction, 0)
	for _, lt := range local {
		k := localKey(lt)
		var found *ynab.Transaction
		if candidates := idx[k]; len(candidates) > 0 {
			found = candidates[0]
			idx[k] = candidates[1:]
		}

		status := ToAdd
		if found != nil {
			status = Synced
		} else {
			toSync = append(toSync, lt)
		}
		items = append(items, Entry{Local: lt, Remote: found, Status: status})
	}

	return &Report{Items: items, toSync: toSync}
}

func (r *Report) InSyncCount() int {
	return len(r.Items) - len(r.toSync)
}

func (r *Report) MissingCount() int {
	return len(r.toSync)
}

func (r *Report) TransactionsToSync() []*models.Transaction {
	return r.toSync
}

// Milliunits converts a currency amount to YNAB's integer representation.
func Milliunits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(3).Round(0).IntPart()
}

// Payloads converts the transactions that still need syncing into YNAB API payloads.
func (r *Report) Payloads(accountID string) []transaction.PayloadTransaction {
	out := make([]transaction.PayloadTransaction, 0, len(r.toSync))
	for _, lt := range r.toSync {
		customID := lt.CustomID()
		payee := lt.Payee()
		memo := ynab.Memo(customID, lt.NatureCode, lt.Category)
		importID := ynab.MemoTag + ":" + customID
		out = append(out, transaction.PayloadTransaction{
			AccountID: accountID,
			Date:      api.Date{Time: lt.Date},
			Amount:    Milliunits(lt.Amount()),
			Cleared:   transaction.ClearingStatusCleared,
			Approved:  true,
			PayeeName: &payee,
			Memo:      &memo,
			ImportID:  &importID,
		})
	}
	return out
}
