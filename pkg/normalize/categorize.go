package normalize

import "strings"

// Category labels assigned to account codes and transactions.
const (
	CategoryOperatingRevenue = "Operating Revenue"
	CategoryServiceCosts     = "Service Costs"
	CategoryAdministrative   = "Administrative Expenses"
	CategoryPayroll          = "Payroll Expenses"
	CategoryMarketing        = "Marketing Expenses"
	CategoryTaxes            = "Taxes and Fees"
	CategoryFinancial        = "Financial Movements"
	CategoryAssets           = "Assets"
	CategoryLiabilities      = "Liabilities"
	CategoryRevenue          = "Revenue"
	CategoryExpenses         = "Expenses"
	CategoryOther            = "Other"
	CategoryUncategorized    = "Uncategorized"
)

type keywordRule struct {
	category string
	terms    []string
}

// Evaluated in order, first match wins.
var keywordRules = []keywordRule{
	{CategoryOperatingRevenue, []string{"receita", "venda", "faturamento", "entrada"}},
	{CategoryServiceCosts, []string{"custo", "produto", "materia"}},
	{CategoryAdministrative, []string{"despesa", "administrativ", "escritorio"}},
	{CategoryPayroll, []string{"salario", "folha", "pessoal"}},
	{CategoryMarketing, []string{"marketing", "propaganda", "publicidade"}},
	{CategoryTaxes, []string{"imposto", "tributo", "taxa", "fiscal"}},
	{CategoryFinancial, []string{"transferencia", "aplicacao", "investimento"}},
}

var digitCategories = map[byte]string{
	'1': CategoryAssets,
	'2': CategoryLiabilities,
	'3': CategoryRevenue,
	'4': CategoryExpenses,
}

var fixedCostTerms = []string{
	"aluguel", "condominio", "iptu", "luz", "energia", "agua",
	"telefone", "internet", "assinatura", "mensalidade",
	"salario", "folha", "pro-labore", "honorarios",
}

// Categorize derives the accounting category of a nature from its name,
// falling back to the first digit of its code.
func Categorize(code, name string) string {
	code = Code(code)
	if code == "" {
		return CategoryUncategorized
	}

	folded := Fold(name)
	for _, rule := range keywordRules {
		if containsAny(folded, rule.terms) {
			return rule.category
		}
	}

	if category, ok := digitCategories[code[0]]; ok {
		return category
	}
	return CategoryOther
}

// IsFixedCost reports whether a nature label or a narrative names a
// recurring expense such as rent, utilities or payroll.
func IsFixedCost(label, narrative string) bool {
	return containsAny(Fold(label), fixedCostTerms) || containsAny(Fold(narrative), fixedCostTerms)
}

func containsAny(s string, terms []string) bool {
	if s == "" {
		return false
	}
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
