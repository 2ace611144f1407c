package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/normalize"
	"github.com/yurifrl/contabilu/pkg/source"
)

var movementHeader = []string{
	"Filial Orig", "Data", "Banco", "Agencia", "Conta Banco", "Natureza",
	"Nome Natureza", "Documento", "Entrada", "Saida", "Historico",
}

func movement(date, code, name, credit, debit, narrative string) []string {
	return []string{"1.0", date, "Itaú", "1234.0", "56789.0", code, name, "", credit, debit, narrative}
}

func workbook(chart [][]string, movements [][]string) *source.Workbook {
	wb := &source.Workbook{}
	if chart != nil {
		wb.Sheets = append(wb.Sheets, &source.Sheet{
			Name: "Plano de Contas",
			Rows: append([][]string{{"Codigo", "Descricao"}}, chart...),
		})
	}
	wb.Sheets = append(wb.Sheets, &source.Sheet{
		Name: "Movimentação Bancária",
		Rows: append([][]string{movementHeader}, movements...),
	})
	return wb
}

func validMovements(n int) [][]string {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		day := i%28 + 1
		rows = append(rows, movement(fmt.Sprintf("%d/03/2023", day), "4001", "Papelaria", "", fmt.Sprintf("%d,50", i+1), "Compra"))
	}
	return rows
}

func newImporter(store *fakeStore) *Importer {
	return New(store, log.Default())
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	imp := newImporter(store)

	wb := workbook(
		[][]string{{"1001", "Receita de Vendas"}, {"2001", "Aluguel"}},
		[][]string{movement("15/01/2023", "2001", "Aluguel", "", "1.500,00", "Pagamento aluguel sede")},
	)

	accounts := imp.ImportAccounts(ctx, wb)
	require.True(t, accounts.Success, accounts.Message)
	assert.Equal(t, "imported 2 account codes", accounts.Message)
	require.Len(t, store.committed.accounts, 2)

	transactions := imp.ImportTransactions(ctx, wb)
	require.True(t, transactions.Success, transactions.Message)
	assert.Equal(t, "imported 1 bank transactions", transactions.Message)
	assert.Len(t, store.committed.accounts, 2)
	require.Len(t, store.committed.transactions, 1)

	tx := store.committed.transactions[0]
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	require.NotNil(t, tx.DebitAmount)
	assert.InDelta(t, 1500.0, *tx.DebitAmount, 1e-9)
	assert.Nil(t, tx.CreditAmount)
	assert.Equal(t, normalize.CategoryLiabilities, tx.Category)
	assert.Equal(t, models.CostFixed, tx.CostType)
	assert.Equal(t, "1", tx.Branch)
	assert.Equal(t, "1234", tx.BankBranch)
}

func TestImportAccountsDeletesTransactionsFirst(t *testing.T) {
	store := &fakeStore{}
	store.committed.transactions = []*models.Transaction{{NatureCode: "1"}}

	res := newImporter(store).ImportAccounts(context.Background(), workbook([][]string{{"1001", "Caixa"}}, nil))
	require.True(t, res.Success, res.Message)

	assert.Equal(t, []string{"begin", "delete transactions", "delete accounts", "add accounts", "commit"}, store.ops)
	assert.Empty(t, store.committed.transactions)
}

func TestMergeAccounts(t *testing.T) {
	chart := []source.AccountRecord{
		{Code: "1001.0", Description: "Receita de Vendas"},
		{Code: "2001", Description: "Aluguel"},
		{Code: "1001", Description: "Receita Bruta"},
		{Code: "", Description: "Sem código"},
	}
	natures := []source.AccountRecord{
		{Code: "2001.0", Description: "Aluguel Sede"},
		{Code: "3001", Description: "Juros Recebidos"},
		{Code: "3001", Description: "Juros"},
		{Code: "5001", Description: ""},
		{Code: "nan", Description: "Subtotal"},
	}

	merged := mergeAccounts(chart, natures)
	require.Len(t, merged, 3)

	assert.Equal(t, &models.AccountCode{Code: "1001", Description: "Receita Bruta", Category: normalize.CategoryOperatingRevenue}, merged[0])
	assert.Equal(t, &models.AccountCode{Code: "2001", Description: "Aluguel", Category: normalize.CategoryLiabilities}, merged[1])
	assert.Equal(t, &models.AccountCode{Code: "3001", Description: "Juros Recebidos", Category: normalize.CategoryRevenue}, merged[2])
}

func TestBatchBoundaries(t *testing.T) {
	store := &fakeStore{}
	res := newImporter(store).ImportTransactions(context.Background(), workbook(nil, validMovements(101)))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 101, res.Count)
	assert.Len(t, store.committed.transactions, 101)
	assert.Equal(t, []int{50, 50, 1}, store.commits)
}

func TestBatchSizeOption(t *testing.T) {
	store := &fakeStore{}
	res := New(store, log.Default(), WithBatchSize(10)).ImportTransactions(context.Background(), workbook(nil, validMovements(25)))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, []int{10, 10, 5}, store.commits)
}

func TestMalformedRowIsSkipped(t *testing.T) {
	rows := validMovements(9)
	oversized := movement("05/03/2023", strings.Repeat("4", 40), "Papelaria", "", "10,00", "Compra")
	rows = append(rows[:4], append([][]string{oversized}, rows[4:]...)...)
	require.Len(t, rows, 10)

	store := &fakeStore{}
	res := newImporter(store).ImportTransactions(context.Background(), workbook(nil, rows))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 9, res.Count)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, store.committed.transactions, 9)
}

func TestPlaceholderAmountsKeepRows(t *testing.T) {
	rows := [][]string{
		movement("15/01/2023", "2001", "Aluguel", "-", "1.500,00", "Pagamento aluguel sede"),
		movement("16/01/2023", "1001", "Receita de Vendas", "R$ 2.000,00", "R$ -", "Cliente A: venda"),
		movement("17/01/2023", "4001", "Papelaria", "abc", "", "Compra"),
	}

	store := &fakeStore{}
	res := newImporter(store).ImportTransactions(context.Background(), workbook(nil, rows))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 3, res.Count)
	assert.Zero(t, res.Skipped)
	require.Len(t, store.committed.transactions, 3)

	rent := store.committed.transactions[0]
	assert.Nil(t, rent.CreditAmount)
	require.NotNil(t, rent.DebitAmount)
	assert.InDelta(t, 1500.0, *rent.DebitAmount, 1e-9)

	sale := store.committed.transactions[1]
	assert.Nil(t, sale.DebitAmount)
	assert.InDelta(t, 2000.0, sale.Credit(), 1e-9)

	assert.Nil(t, store.committed.transactions[2].CreditAmount)
}

func TestDroppedRows(t *testing.T) {
	rows := [][]string{
		movement("15/01/2023", "2001", "Aluguel", "", "100,00", "x"),
		movement("", "2001", "Aluguel", "", "100,00", "no date"),
		movement("Total", "", "", "", "9.999,00", "subtotal"),
		movement("16/01/2023", "", "", "", "100,00", "no nature"),
		movement("16/01/2023", "nan", "", "", "100,00", "nan nature"),
	}

	store := &fakeStore{}
	res := newImporter(store).ImportTransactions(context.Background(), workbook(nil, rows))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 4, res.Dropped)
	assert.Zero(t, res.Skipped)
}

func TestNoSurvivingRowsStillClearsTable(t *testing.T) {
	store := &fakeStore{}
	store.committed.transactions = []*models.Transaction{{NatureCode: "1"}, {NatureCode: "2"}}

	res := newImporter(store).ImportTransactions(context.Background(), workbook(nil, [][]string{
		movement("", "2001", "Aluguel", "", "1,00", ""),
	}))

	require.True(t, res.Success, res.Message)
	assert.Equal(t, "imported 0 bank transactions", res.Message)
	assert.Empty(t, store.committed.transactions)
	assert.Equal(t, []int{0}, store.commits)
}

func TestMissingColumnsFailBeforeMutation(t *testing.T) {
	store := &fakeStore{}
	wb := &source.Workbook{Sheets: []*source.Sheet{{
		Name: "Movimentacao Bancaria",
		Rows: [][]string{{"Data", "Banco", "Natureza", "Nome Natureza", "Entrada", "Historico"}},
	}}}

	imp := newImporter(store)
	res := imp.ImportTransactions(context.Background(), wb)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Saida")

	wb.Sheets[0].Rows = [][]string{{"Data", "Banco"}}
	res = imp.ImportAccounts(context.Background(), wb)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Natureza")

	assert.Zero(t, store.sessions)
	assert.Empty(t, store.ops)
}

func TestMissingSheet(t *testing.T) {
	store := &fakeStore{}
	wb := &source.Workbook{Sheets: []*source.Sheet{{Name: "A"}, {Name: "B"}}}

	res := newImporter(store).ImportTransactions(context.Background(), wb)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "Movimentacao Bancaria")

	res = newImporter(store).ImportAccounts(context.Background(), wb)
	assert.False(t, res.Success)
	assert.Empty(t, store.ops)
}

func TestBatchFailureRollsBackInFlightOnly(t *testing.T) {
	store := &fakeStore{failAddOn: 2}
	res := newImporter(store).ImportTransactions(context.Background(), workbook(nil, validMovements(60)))

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "disk full")
	assert.Equal(t, 50, res.Count)
	assert.Len(t, store.committed.transactions, 50, "first batch stays committed")
	assert.Equal(t, 1, store.rollbacks)
	assert.False(t, store.open)
}

func TestAccountInsertFailureRollsBack(t *testing.T) {
	store := &fakeStore{failAddOn: 1}
	store.committed.accounts = []*models.AccountCode{{Code: "9"}}

	res := newImporter(store).ImportAccounts(context.Background(), workbook([][]string{{"1001", "Caixa"}}, nil))
	assert.False(t, res.Success)
	assert.Equal(t, []*models.AccountCode{{Code: "9"}}, store.committed.accounts)
	assert.Equal(t, 1, store.rollbacks)
}

func TestSessionError(t *testing.T) {
	store := &fakeStore{sessionErr: errors.New("database unreachable")}

	res := newImporter(store).ImportTransactions(context.Background(), workbook(nil, validMovements(1)))
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "database unreachable")
}

func TestReimportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	imp := newImporter(store)
	wb := workbook([][]string{{"4001", "Papelaria"}}, validMovements(75))

	run := func() ([]*models.AccountCode, []*models.Transaction) {
		require.True(t, imp.ImportAccounts(ctx, wb).Success)
		require.True(t, imp.ImportTransactions(ctx, wb).Success)
		return store.committed.accounts, store.committed.transactions
	}

	accounts1, txs1 := run()
	accounts2, txs2 := run()

	assert.Equal(t, accounts1, accounts2)
	require.Len(t, txs2, len(txs1))
	for i := range txs1 {
		assert.Equal(t, *txs1[i], *txs2[i])
	}
}

func TestPreviewDoesNotTouchStorage(t *testing.T) {
	store := &fakeStore{}
	rows := append(validMovements(3), movement("", "4001", "Papelaria", "", "1,00", "subtotal"))
	wb := workbook([][]string{{"1001", "Receita de Vendas"}}, rows)

	p, err := newImporter(store).Preview(wb)
	require.NoError(t, err)

	require.Len(t, p.Accounts, 2)
	assert.Equal(t, "4001", p.Accounts[1].Code)
	assert.Len(t, p.Transactions, 3)
	assert.Equal(t, 3, p.Result.Count)
	assert.Equal(t, 1, p.Result.Dropped)
	assert.Zero(t, store.sessions)
}
