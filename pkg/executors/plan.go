package executors

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/contabilu/pkg/models"
)

var (
	syncedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	addedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
)

// Plan prints which local transactions already exist in the YNAB account
// (=) and which Apply would create (+).
func (e *Executor) Plan(local []*models.Transaction) (*Report, error) {
	report, err := e.reconcile(local)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("processing plan report", "total", len(report.Items), "in_sync", report.InSyncCount(), "to_add", report.MissingCount())

	for _, m := range report.Items {
		line := fmt.Sprintf("%s | %-30s | %s | R$ %.2f", m.Local.Date.Format("2006-01-02"), m.Local.Payee(), m.Local.CustomID(), m.Local.Amount())
		if m.Status == Synced {
			fmt.Fprintln(e.out, syncedStyle.Render("= "+line))
			continue
		}
		fmt.Fprintln(e.out, addedStyle.Render("+ "+line))
	}

	if report.MissingCount() == 0 {
		fmt.Fprintf(e.out, "\nPlan: All %d transaction(s) are in sync\n", report.InSyncCount())
	} else {
		fmt.Fprintf(e.out, "\nPlan: %d transaction(s) will be added, %d already in sync\n", report.MissingCount(), report.InSyncCount())
	}
	return report, nil
}
