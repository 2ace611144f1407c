package normalize

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"slashes", "31/12/2023", want, true},
		{"dashes", "31-12-2023", want, true},
		{"iso", "2023-12-31", want, true},
		{"dots", "31.12.2023", want, true},
		{"us fallback", "12/31/2023", want, true},
		{"single digits", "5/1/2023", time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"day first wins", "01/02/2023", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"padded", "  15/01/2023 ", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
		{"subtotal label", "Total", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"R$ 1.234,56", 1234.56},
		{"1.500,00", 1500},
		{"100,5", 100.5},
		{"42", 42},
		{"1500.25", 1500.25},
		{"1.234", 1.234},
		{"R$ 1.234.567,89", 1234567.89},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestParseAmountAbsent(t *testing.T) {
	for _, input := range []string{"", "   ", "nan", "-", "--", "R$ -", "R$", "abc"} {
		got, err := ParseAmount(input)
		require.NoError(t, err, "input %q", input)
		assert.Nil(t, got, "input %q", input)
	}
}

func TestParseAmountInvalid(t *testing.T) {
	got, err := ParseAmount("1" + strings.Repeat("0", 400))
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrInvalidAmount), "%v", err)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "1001", Code("1001.0"))
	assert.Equal(t, "1001", Code(" 1001 "))
	assert.Equal(t, "", Code("nan"))
	assert.Equal(t, "10.01", Code("10.01"))
}

func TestCodeKeepsInnerZeroes(t *testing.T) {
	// nature codes only lose a trailing .0; identifiers lose every .0
	assert.Equal(t, "10.05", Code("10.05"))
	assert.Equal(t, "105", Identifier("10.05"))
	assert.Equal(t, Code("2001.0"), Identifier("2001.0"))
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "1234", Identifier("1234.0"))
	assert.Equal(t, "", Identifier("nan"))
	assert.Equal(t, "", Identifier("  "))
	assert.Equal(t, "12-3", Identifier("12-3"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "salario", Fold("Salário"))
	assert.Equal(t, "condominio agua", Fold("CONDOMÍNIO Água"))
	assert.Equal(t, "movimentacao", Fold("Movimentação"))
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		code, name, want string
	}{
		{"1001", "Receita de Vendas", CategoryOperatingRevenue},
		{"4001", "Custo de Produção", CategoryServiceCosts},
		{"4002", "Despesas de Escritório", CategoryAdministrative},
		{"9", "Salário", CategoryPayroll},
		{"1", "salario", CategoryPayroll},
		{"4100", "Publicidade Online", CategoryMarketing},
		{"4200", "Impostos Federais", CategoryTaxes},
		{"5000", "Transferência entre contas", CategoryFinancial},
		{"1500", "Caixa", CategoryAssets},
		{"2001", "Aluguel", CategoryLiabilities},
		{"3001.0", "Outros", CategoryRevenue},
		{"4999", "Diversos", CategoryExpenses},
		{"9999", "Diversos", CategoryOther},
		{"", "Receita", CategoryUncategorized},
		{"nan", "Receita", CategoryUncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.code, tt.name))
			// pure: same inputs, same output
			assert.Equal(t, Categorize(tt.code, tt.name), Categorize(tt.code, tt.name))
		})
	}
}

func TestIsFixedCost(t *testing.T) {
	assert.True(t, IsFixedCost("Diversos", "Pagamento aluguel sede"))
	assert.True(t, IsFixedCost("Aluguel", ""))
	assert.True(t, IsFixedCost("Condomínio", ""))
	assert.True(t, IsFixedCost("", "conta de AGUA"))
	assert.True(t, IsFixedCost("Honorários contábeis", ""))
	assert.False(t, IsFixedCost("Material de consumo", "Compra papelaria"))
	assert.False(t, IsFixedCost("", ""))
}

func TestExtractNarrative(t *testing.T) {
	tests := []struct {
		narrative    string
		counterparty string
		docRef       string
	}{
		{"ACME LTDA: pagamento NF 1234", "ACME LTDA", "1234"},
		{"Fornecedor X: Nota Fiscal nº 987", "Fornecedor X", "987"},
		{"TED recebida DOC-55", "", "55"},
		{"nf1234 servicos", "", "1234"},
		{"Pagamento aluguel sede", "", ""},
		{"", "", ""},
		{": sem nome", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.narrative, func(t *testing.T) {
			counterparty, docRef := ExtractNarrative(tt.narrative)
			assert.Equal(t, tt.counterparty, counterparty)
			assert.Equal(t, tt.docRef, docRef)
		})
	}
}
