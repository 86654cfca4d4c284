package stats

import (
	"testing"

	"github.com/klokku/budgetwise/pkg/budget"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvStatsRendererImpl_RenderStats(t *testing.T) {
	stats := MonthStats{
		Month:  january,
		Income: decimal.NewFromInt(6200),
		SystemBudgets: []BudgetStats{
			{
				Name: "Needs Jan 2025", Kind: budget.KindSystem, Priority: priority.Needs,
				Allocated: decimal.NewFromInt(3100), PaidAmount: decimal.NewFromInt(1500), UnpaidAmount: decimal.Zero,
				Remaining: decimal.NewFromInt(1600), PercentageUsed: decimal.RequireFromString("48.39"), StatusLabel: StatusWithinBudget,
			},
		},
		CustomBudgets: []BudgetStats{
			{
				Name: "Vacation Fund, summer", Kind: budget.KindCustom, Priority: priority.Wants,
				Allocated: decimal.NewFromInt(2000), PaidAmount: decimal.NewFromInt(900), UnpaidAmount: decimal.NewFromInt(400),
				Remaining: decimal.NewFromInt(700), PercentageUsed: decimal.NewFromInt(65), StatusLabel: StatusWithinBudget,
			},
		},
		Priorities: []PriorityTotals{
			{Priority: priority.Needs, Allocated: decimal.NewFromInt(3100), Paid: decimal.NewFromInt(1500), Unpaid: decimal.Zero,
				Total: decimal.NewFromInt(1500), PercentOfIncome: decimal.RequireFromString("24.19")},
		},
	}

	csv, err := NewCsvStatsRenderer().RenderStats(stats)

	require.NoError(t, err)
	expected := "Budget,Type,Allocated,Paid,Unpaid,Remaining,Used %,Status\n" +
		"Needs Jan 2025,needs,3100.00,1500.00,0.00,1600.00,48.39,Within Budget\n" +
		"\"Vacation Fund, summer\",custom,2000.00,900.00,400.00,700.00,65.00,Within Budget\n" +
		"Income,,6200.00,,,,,\n" +
		"Total needs,,3100.00,1500.00,0.00,1600.00,24.19,\n"
	assert.Equal(t, expected, csv)
}
