package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		_, err := io.WriteString(w, renderTables(r))
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}

var (
	printer     = message.NewPrinter(language.BrazilianPortuguese)
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	lossStyle   = cellStyle.Foreground(lipgloss.Color("9"))
)

func brl(v float64) string {
	return printer.Sprintf("R$ %.2f", v)
}

func pct(v float64) string {
	return printer.Sprintf("%.2f%%", v)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderTables(r *Report) string {
	var b strings.Builder

	period := "all transactions"
	if r.Period.From != nil || r.Period.To != nil {
		from, to := "…", "…"
		if r.Period.From != nil {
			from = r.Period.From.Format("02/01/2006")
		}
		if r.Period.To != nil {
			to = r.Period.To.Format("02/01/2006")
		}
		period = from + " - " + to
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Financial report (%s, %d transactions)", period, r.Transactions)))
	b.WriteString("\n")

	balance := brl(r.Balance)
	if r.Balance < 0 {
		balance = lossStyle.Render(balance)
	}
	summary := newTable("Indicator", "Value").
		Row("Revenue", brl(r.Revenue)).
		Row("Expenses", brl(r.Expenses)).
		Row("Balance", balance).
		Row("Profit margin", pct(r.ProfitMargin)+" ("+r.MarginRating+")").
		Row("Fixed costs", brl(r.FixedCosts)).
		Row("Variable costs", brl(r.VariableCosts)).
		Row("Fixation index", pct(r.FixationIndex)+" ("+r.FixationRating+")").
		Row("Contribution margin", brl(r.ContributionMargin)).
		Row("Break-even revenue", brl(r.BreakEven)).
		Row("Safety margin", brl(r.SafetyMargin))
	b.WriteString(summary.String())
	b.WriteString("\n")

	for _, section := range []struct {
		title  string
		shares []Share
	}{
		{"Expenses by category", r.ExpenseShares},
		{"Revenue by category", r.RevenueShares},
	} {
		if len(section.shares) == 0 {
			continue
		}
		t := newTable("Category", "Amount", "%")
		for _, s := range section.shares {
			t.Row(s.Category, brl(s.Amount), pct(s.Percent))
		}
		b.WriteString(titleStyle.Render(section.title))
		b.WriteString("\n")
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	if len(r.CashFlow) > 0 {
		t := newTable("Month", "Credits", "Debits", "Net", "Balance")
		for _, m := range r.CashFlow {
			t.Row(m.Month, brl(m.Credits), brl(m.Debits), brl(m.Net), brl(m.Balance))
		}
		b.WriteString(titleStyle.Render("Monthly cash flow"))
		b.WriteString("\n")
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	return b.String()
}
