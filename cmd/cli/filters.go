package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/yurifrl/contabilu/pkg/csv"
	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/storage"
)

const dateLayout = "2006-01-02"

type filters struct {
	startDate string
	endDate   string
	category  string
	costType  string
	nature    string
	minAmount float64
	maxAmount float64
	payee     string
}

func (f *filters) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.startDate, "from", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&f.endDate, "to", "", "End date (YYYY-MM-DD)")
	fs.StringVar(&f.category, "category", "", "Filter by category")
	fs.StringVar(&f.costType, "cost-type", "", "Filter by cost type (Fixed|Variable)")
	fs.StringVar(&f.nature, "nature", "", "Filter by nature code")
	fs.Float64Var(&f.minAmount, "min", 0, "Minimum amount")
	fs.Float64Var(&f.maxAmount, "max", 0, "Maximum amount")
	fs.StringVar(&f.payee, "payee", "", "Filter by payee (case insensitive)")
}

func (f *filters) period() (from, to time.Time, err error) {
	if f.startDate != "" {
		if from, err = time.Parse(dateLayout, f.startDate); err != nil {
			return from, to, fmt.Errorf("invalid --from date %q", f.startDate)
		}
	}
	if f.endDate != "" {
		if to, err = time.Parse(dateLayout, f.endDate); err != nil {
			return from, to, fmt.Errorf("invalid --to date %q", f.endDate)
		}
	}
	return from, to, nil
}

// storage returns the part of the filters the database evaluates.
func (f *filters) storage() (storage.Filter, error) {
	from, to, err := f.period()
	if err != nil {
		return storage.Filter{}, err
	}
	var costType models.CostType
	switch {
	case f.costType == "":
	case strings.EqualFold(f.costType, string(models.CostFixed)):
		costType = models.CostFixed
	case strings.EqualFold(f.costType, string(models.CostVariable)):
		costType = models.CostVariable
	default:
		return storage.Filter{}, fmt.Errorf("invalid --cost-type %q", f.costType)
	}
	return storage.Filter{
		From:       from,
		To:         to,
		Category:   f.category,
		CostType:   costType,
		NatureCode: f.nature,
	}, nil
}

func (f *filters) criteria() csv.Criteria {
	return csv.Criteria{MinAmount: f.minAmount, MaxAmount: f.maxAmount, Payee: f.payee}
}
