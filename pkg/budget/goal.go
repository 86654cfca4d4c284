package budget

import (
	"fmt"

	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
)

// Goal is the share of income a user wants to give one priority.
// With IsAbsolute set the goal is the fixed AbsoluteAmount instead of a percentage.
type Goal struct {
	Priority         priority.Priority
	TargetPercentage decimal.Decimal
	IsAbsolute       bool
	AbsoluteAmount   decimal.Decimal
}

const minSplitGap = 5

// DefaultGoals is the classic 50/30/20 split.
func DefaultGoals() []Goal {
	return []Goal{
		{Priority: priority.Needs, TargetPercentage: decimal.NewFromInt(50)},
		{Priority: priority.Wants, TargetPercentage: decimal.NewFromInt(30)},
		{Priority: priority.Savings, TargetPercentage: decimal.NewFromInt(20)},
	}
}

// GoalsByPriority indexes goals, filling missing priorities from DefaultGoals.
func GoalsByPriority(goals []Goal) map[priority.Priority]Goal {
	byPriority := make(map[priority.Priority]Goal, 3)
	for _, g := range DefaultGoals() {
		byPriority[g.Priority] = g
	}
	for _, g := range goals {
		if g.Priority.IsValid() {
			byPriority[g.Priority] = g
		}
	}
	return byPriority
}

// ClampSplits normalises the two split points of the percentage slider so that
// split1 <= split2 and every resulting share is at least 5 percent.
func ClampSplits(split1, split2 int) (int, int) {
	split1 = clamp(split1, minSplitGap, 100-2*minSplitGap)
	split2 = clamp(split2, split1+minSplitGap, 100-minSplitGap)
	return split1, split2
}

// GoalsFromSplits converts slider split points into percentage goals:
// needs = split1, wants = split2 - split1, savings = 100 - split2.
func GoalsFromSplits(split1, split2 int) []Goal {
	split1, split2 = ClampSplits(split1, split2)
	return []Goal{
		{Priority: priority.Needs, TargetPercentage: decimal.NewFromInt(int64(split1))},
		{Priority: priority.Wants, TargetPercentage: decimal.NewFromInt(int64(split2 - split1))},
		{Priority: priority.Savings, TargetPercentage: decimal.NewFromInt(int64(100 - split2))},
	}
}

func validateGoals(goals []Goal) error {
	seen := map[priority.Priority]bool{}
	for _, g := range goals {
		if !g.Priority.IsValid() {
			return fmt.Errorf("invalid goal priority: %q", g.Priority)
		}
		if seen[g.Priority] {
			return fmt.Errorf("duplicate goal for priority %s", g.Priority)
		}
		seen[g.Priority] = true
		if g.IsAbsolute {
			if g.AbsoluteAmount.IsNegative() {
				return fmt.Errorf("absolute goal for %s cannot be negative", g.Priority)
			}
			continue
		}
		if g.TargetPercentage.IsNegative() || g.TargetPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("goal percentage for %s must be between 0 and 100", g.Priority)
		}
	}
	return nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
