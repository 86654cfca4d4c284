package stats

import (
	"bytes"
	"encoding/csv"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(stats MonthStats) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

var csvHeader = []string{"Budget", "Type", "Allocated", "Paid", "Unpaid", "Remaining", "Used %", "Status"}

// RenderStats writes one row per budget, system budgets first, followed by the priority totals.
func (t *CsvStatsRendererImpl) RenderStats(stats MonthStats) (string, error) {
	data := make([][]string, 0, len(stats.SystemBudgets)+len(stats.CustomBudgets)+len(stats.Priorities)+3)
	data = append(data, csvHeader)
	for _, s := range stats.SystemBudgets {
		data = append(data, budgetRow(s, string(s.Priority)))
	}
	for _, s := range stats.CustomBudgets {
		data = append(data, budgetRow(s, string(s.Kind)))
	}

	data = append(data, []string{"Income", "", amountToString(stats.Income), "", "", "", "", ""})
	for _, p := range stats.Priorities {
		data = append(data, []string{
			"Total " + string(p.Priority),
			"",
			amountToString(p.Allocated),
			amountToString(p.Paid),
			amountToString(p.Unpaid),
			amountToString(p.Allocated.Sub(p.Total)),
			amountToString(p.PercentOfIncome),
			"",
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func budgetRow(s BudgetStats, budgetType string) []string {
	return []string{
		s.Name,
		budgetType,
		amountToString(s.Allocated),
		amountToString(s.PaidAmount),
		amountToString(s.UnpaidAmount),
		amountToString(s.Remaining),
		amountToString(s.PercentageUsed),
		s.StatusLabel,
	}
}

func amountToString(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
