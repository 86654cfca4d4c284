package budget

import (
	"testing"

	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClampSplits(t *testing.T) {
	tests := []struct {
		name           string
		split1, split2 int
		want1, want2   int
	}{
		{"classic 50/30/20", 50, 80, 50, 80},
		{"split points too close", 50, 52, 50, 55},
		{"split2 before split1", 60, 40, 60, 65},
		{"needs below minimum", 0, 50, 5, 50},
		{"savings below minimum", 50, 100, 50, 95},
		{"needs leaves no room", 99, 99, 90, 95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got1, got2 := ClampSplits(tt.split1, tt.split2)
			assert.Equal(t, tt.want1, got1)
			assert.Equal(t, tt.want2, got2)
		})
	}
}

func TestGoalsFromSplits(t *testing.T) {
	goals := GoalsFromSplits(50, 80)

	byPriority := GoalsByPriority(goals)
	assert.True(t, decimal.NewFromInt(50).Equal(byPriority[priority.Needs].TargetPercentage))
	assert.True(t, decimal.NewFromInt(30).Equal(byPriority[priority.Wants].TargetPercentage))
	assert.True(t, decimal.NewFromInt(20).Equal(byPriority[priority.Savings].TargetPercentage))
}

func TestGoalsFromSplits_SharesAlwaysSumToHundred(t *testing.T) {
	for split1 := -10; split1 <= 110; split1 += 7 {
		for split2 := -10; split2 <= 110; split2 += 9 {
			total := decimal.Zero
			for _, g := range GoalsFromSplits(split1, split2) {
				assert.True(t, g.TargetPercentage.GreaterThanOrEqual(decimal.NewFromInt(5)), "%d/%d", split1, split2)
				total = total.Add(g.TargetPercentage)
			}
			assert.True(t, decimal.NewFromInt(100).Equal(total), "%d/%d", split1, split2)
		}
	}
}

func TestGoalsByPriority_FillsMissingFromDefaults(t *testing.T) {
	byPriority := GoalsByPriority([]Goal{{Priority: priority.Wants, TargetPercentage: decimal.NewFromInt(25)}})

	assert.True(t, decimal.NewFromInt(50).Equal(byPriority[priority.Needs].TargetPercentage))
	assert.True(t, decimal.NewFromInt(25).Equal(byPriority[priority.Wants].TargetPercentage))
	assert.True(t, decimal.NewFromInt(20).Equal(byPriority[priority.Savings].TargetPercentage))
}

func TestValidateGoals(t *testing.T) {
	assert.NoError(t, validateGoals(DefaultGoals()))
	assert.Error(t, validateGoals([]Goal{{Priority: "other"}}))
	assert.Error(t, validateGoals([]Goal{{Priority: priority.Needs}, {Priority: priority.Needs}}))
	assert.Error(t, validateGoals([]Goal{{Priority: priority.Needs, TargetPercentage: decimal.NewFromInt(120)}}))
	assert.Error(t, validateGoals([]Goal{{Priority: priority.Needs, IsAbsolute: true, AbsoluteAmount: decimal.NewFromInt(-1)}}))
}
