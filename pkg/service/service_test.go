package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yurifrl/contabilu/pkg/config"
	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/normalize"
	"github.com/yurifrl/contabilu/pkg/storage"
)

func openService(t *testing.T) *Service {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: "sqlite://" + filepath.Join(t.TempDir(), "svc.db"), SlowQuery: 200},
		Import: config.ImportConfig{
			BatchSize:         50,
			AccountsSheet:     "Plano de Contas",
			TransactionsSheet: "Movimentacao Bancaria",
		},
	}
	svc, err := Open(cfg, log.Default())
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func agencyWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Plano de Contas"))
	require.NoError(t, f.SetSheetRow("Plano de Contas", "A1", &[]interface{}{"Codigo", "Descricao"}))
	require.NoError(t, f.SetSheetRow("Plano de Contas", "A2", &[]interface{}{"1001", "Receita de Vendas"}))
	require.NoError(t, f.SetSheetRow("Plano de Contas", "A3", &[]interface{}{"2001", "Aluguel"}))

	_, err := f.NewSheet("Movimentacao Bancaria")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Movimentacao Bancaria", "A1", &[]interface{}{
		"Filial Orig", "Data", "Banco", "Agencia", "Conta Banco", "Natureza", "Nome Natureza", "Documento", "Entrada", "Saida", "Historico",
	}))
	require.NoError(t, f.SetSheetRow("Movimentacao Bancaria", "A2", &[]interface{}{
		"1", "15/01/2023", "Itaú", "1234", "56789", "2001", "Aluguel", "", "", "1.500,00", "Pagamento aluguel sede",
	}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportWorkbookEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := openService(t)

	out, err := svc.ImportBytes(ctx, agencyWorkbook(t), "agencia.xlsx")
	require.NoError(t, err)
	require.True(t, out.Success(), "%+v", out)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, "imported 2 account codes", out.Accounts.Message)
	assert.Equal(t, "imported 1 bank transactions", out.Transactions.Message)

	accounts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	txs, err := svc.Transactions(ctx, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].DebitAmount)
	assert.InDelta(t, 1500.0, *txs[0].DebitAmount, 1e-9)
	assert.Nil(t, txs[0].CreditAmount)
	assert.Equal(t, normalize.CategoryLiabilities, txs[0].Category)
	assert.Equal(t, models.CostFixed, txs[0].CostType)
	assert.True(t, txs[0].Date.Equal(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestReimportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := openService(t)
	data := agencyWorkbook(t)

	for i := 0; i < 2; i++ {
		out, err := svc.ImportBytes(ctx, data, "agencia.xlsx")
		require.NoError(t, err)
		require.True(t, out.Success())
	}

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Accounts)
	assert.Equal(t, int64(1), st.Transactions)
	assert.InDelta(t, 1500.0, st.TotalDebit, 1e-9)
}

func TestImportCSVBatches(t *testing.T) {
	ctx := context.Background()
	svc := openService(t)

	csv := "Data;Banco;Natureza;Nome Natureza;Entrada;Saida;Historico\n"
	for i := 0; i < 101; i++ {
		csv += "10/03/2023;Itaú;4001;Material de escritório;;10,00;Compra\n"
	}
	csv += ";;;;;1.010,00;Total\n"

	out, err := svc.ImportBytes(ctx, []byte(csv), "marco.csv")
	require.NoError(t, err)
	require.True(t, out.Success(), "%+v", out)
	assert.Equal(t, 1, out.Accounts.Count, "natures found only in transactions")
	assert.Equal(t, 101, out.Transactions.Count)
	assert.Equal(t, 1, out.Transactions.Dropped)

	r, err := svc.Report(ctx, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1010.0, r.Expenses)
	assert.Equal(t, 101, r.Transactions)
	require.NotNil(t, r.Period.From)
	assert.Nil(t, r.Period.To)
}

func TestImportFailureSkipsTransactions(t *testing.T) {
	svc := openService(t)

	out, err := svc.ImportBytes(context.Background(), []byte("Data;Banco\n01/01/2023;Itaú\n"), "ruim.csv")
	require.NoError(t, err)
	assert.False(t, out.Success())
	assert.False(t, out.Accounts.Success)
	assert.Nil(t, out.Transactions)

	_, err = svc.ImportBytes(context.Background(), []byte("x"), "relatorio.pdf")
	assert.Error(t, err)
}
