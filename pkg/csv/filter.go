package csv

import (
	"strings"

	"github.com/yurifrl/contabilu/pkg/models"
)

// Criteria filters on computed fields the database does not index.
// Zero values do not filter.
type Criteria struct {
	MinAmount float64
	MaxAmount float64
	Payee     string
}

func (c Criteria) Func() FilterFunc[*models.Transaction] {
	payee := strings.ToLower(c.Payee)
	return func(t *models.Transaction) bool {
		if c.MinAmount != 0 && t.Amount() < c.MinAmount {
			return false
		}
		if c.MaxAmount != 0 && t.Amount() > c.MaxAmount {
			return false
		}
		if payee != "" && !strings.Contains(strings.ToLower(t.Payee()), payee) {
			return false
		}
		return true
	}
}
