// Package report computes the financial indicators of a period from the
// persisted transactions.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/contabilu/pkg/models"
)

const (
	RatingRigid    = "rigid"
	RatingModerate = "moderate"
	RatingFlexible = "flexible"

	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingRegular   = "regular"
	RatingNegative  = "negative"
)

type Period struct {
	From *time.Time `json:"from,omitempty" yaml:"from,omitempty"`
	To   *time.Time `json:"to,omitempty" yaml:"to,omitempty"`
}

// Share is one line of the vertical analysis.
type Share struct {
	Category string  `json:"category" yaml:"category"`
	Amount   float64 `json:"amount" yaml:"amount"`
	Percent  float64 `json:"percent" yaml:"percent"`
}

type MonthFlow struct {
	Month   string  `json:"month" yaml:"month"`
	Credits float64 `json:"credits" yaml:"credits"`
	Debits  float64 `json:"debits" yaml:"debits"`
	Net     float64 `json:"net" yaml:"net"`
	Balance float64 `json:"balance" yaml:"balance"`
}

type Report struct {
	Period       Period `json:"period" yaml:"period"`
	Transactions int    `json:"transactions" yaml:"transactions"`

	Revenue       float64 `json:"revenue" yaml:"revenue"`
	Expenses      float64 `json:"expenses" yaml:"expenses"`
	Balance       float64 `json:"balance" yaml:"balance"`
	FixedCosts    float64 `json:"fixed_costs" yaml:"fixed_costs"`
	VariableCosts float64 `json:"variable_costs" yaml:"variable_costs"`

	ProfitMargin   float64 `json:"profit_margin" yaml:"profit_margin"`
	MarginRating   string  `json:"margin_rating" yaml:"margin_rating"`
	FixationIndex  float64 `json:"fixation_index" yaml:"fixation_index"`
	FixationRating string  `json:"fixation_rating" yaml:"fixation_rating"`

	ContributionMargin float64 `json:"contribution_margin" yaml:"contribution_margin"`
	ContributionRatio  float64 `json:"contribution_ratio" yaml:"contribution_ratio"`
	BreakEven          float64 `json:"break_even" yaml:"break_even"`
	SafetyMargin       float64 `json:"safety_margin" yaml:"safety_margin"`

	ExpenseShares []Share     `json:"expense_shares" yaml:"expense_shares"`
	RevenueShares []Share     `json:"revenue_shares" yaml:"revenue_shares"`
	CashFlow      []MonthFlow `json:"cash_flow" yaml:"cash_flow"`
}

var hundred = decimal.NewFromInt(100)

func amount(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}

// percent returns part/whole*100, zero when whole is not positive.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Build computes the report over txs. The period is informational; txs are
// expected to be filtered already.
func Build(txs []*models.Transaction, period Period) *Report {
	var revenue, expenses, fixed, variable decimal.Decimal
	expenseBy := map[string]decimal.Decimal{}
	revenueBy := map[string]decimal.Decimal{}
	months := map[string]*[2]decimal.Decimal{}

	for _, tx := range txs {
		credit, debit := amount(tx.CreditAmount), amount(tx.DebitAmount)
		revenue = revenue.Add(credit)
		expenses = expenses.Add(debit)

		switch tx.CostType {
		case models.CostFixed:
			fixed = fixed.Add(debit)
		case models.CostVariable:
			variable = variable.Add(debit)
		}

		category := tx.Category
		if category == "" {
			category = "-"
		}
		if !debit.IsZero() {
			expenseBy[category] = expenseBy[category].Add(debit)
		}
		if !credit.IsZero() {
			revenueBy[category] = revenueBy[category].Add(credit)
		}

		key := tx.Date.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &[2]decimal.Decimal{}
			months[key] = m
		}
		m[0] = m[0].Add(credit)
		m[1] = m[1].Add(debit)
	}

	balance := revenue.Sub(expenses)
	margin := percent(balance, revenue)
	fixation := percent(fixed, expenses)
	contribution := revenue.Sub(variable)

	var ratio, breakEven decimal.Decimal
	if revenue.IsPositive() {
		ratio = contribution.Div(revenue)
	}
	if ratio.IsPositive() {
		breakEven = fixed.Div(ratio)
	}

	return &Report{
		Period:             period,
		Transactions:       len(txs),
		Revenue:            money(revenue),
		Expenses:           money(expenses),
		Balance:            money(balance),
		FixedCosts:         money(fixed),
		VariableCosts:      money(variable),
		ProfitMargin:       money(margin),
		MarginRating:       rateMargin(margin),
		FixationIndex:      money(fixation),
		FixationRating:     rateFixation(fixation),
		ContributionMargin: money(contribution),
		ContributionRatio:  ratio.Round(4).InexactFloat64(),
		BreakEven:          money(breakEven),
		SafetyMargin:       money(revenue.Sub(breakEven)),
		ExpenseShares:      shares(expenseBy, expenses),
		RevenueShares:      shares(revenueBy, revenue),
		CashFlow:           cashFlow(months),
	}
}

func rateFixation(fixation decimal.Decimal) string {
	switch {
	case fixation.GreaterThan(decimal.NewFromInt(70)):
		return RatingRigid
	case fixation.LessThan(decimal.NewFromInt(30)):
		return RatingFlexible
	}
	return RatingModerate
}

func rateMargin(margin decimal.Decimal) string {
	switch {
	case margin.GreaterThan(decimal.NewFromInt(20)):
		return RatingExcellent
	case margin.GreaterThan(decimal.NewFromInt(10)):
		return RatingGood
	case margin.IsPositive():
		return RatingRegular
	}
	return RatingNegative
}

// shares sorts by amount descending, then by category.
func shares(by map[string]decimal.Decimal, total decimal.Decimal) []Share {
	out := make([]Share, 0, len(by))
	for category, value := range by {
		out = append(out, Share{Category: category, Amount: money(value), Percent: money(percent(value, total))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func cashFlow(months map[string]*[2]decimal.Decimal) []MonthFlow {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flows := make([]MonthFlow, 0, len(keys))
	running := decimal.Zero
	for _, k := range keys {
		m := months[k]
		net := m[0].Sub(m[1])
		running = running.Add(net)
		flows = append(flows, MonthFlow{
			Month:   k,
			Credits: money(m[0]),
			Debits:  money(m[1]),
			Net:     money(net),
			Balance: money(running),
		})
	}
	return flows
}
