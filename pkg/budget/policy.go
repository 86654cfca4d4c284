package budget

import (
	"github.com/klokku/budgetwise/pkg/money"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/klokku/budgetwise/pkg/user"
	"github.com/shopspring/decimal"
)

// AllocationPolicy turns monthly income and goals into the target amount of each system budget.
type AllocationPolicy interface {
	Targets(income decimal.Decimal, goals []Goal) map[priority.Priority]decimal.Decimal
}

// GoalPolicy applies each goal as configured: income × percentage / 100, or the absolute amount.
type GoalPolicy struct{}

func (GoalPolicy) Targets(income decimal.Decimal, goals []Goal) map[priority.Priority]decimal.Decimal {
	targets := make(map[priority.Priority]decimal.Decimal, len(priority.All))
	byPriority := GoalsByPriority(goals)
	for _, p := range priority.All {
		goal := byPriority[p]
		if goal.IsAbsolute {
			targets[p] = money.Round(goal.AbsoluteAmount)
			continue
		}
		targets[p] = money.PercentOf(money.NonNegative(income), goal.TargetPercentage)
	}
	return targets
}

// FixedLifestylePolicy keeps the needs budget at PinnedNeeds when the wrapped policy would
// give needs more than that, and moves the difference to savings. When income drops so
// that needs would get less than the pinned amount, the wrapped targets are kept as they are.
type FixedLifestylePolicy struct {
	Base        AllocationPolicy
	PinnedNeeds decimal.Decimal
}

func (f FixedLifestylePolicy) Targets(income decimal.Decimal, goals []Goal) map[priority.Priority]decimal.Decimal {
	targets := f.Base.Targets(income, goals)
	if !f.PinnedNeeds.IsPositive() {
		return targets
	}
	needs := targets[priority.Needs]
	if needs.LessThanOrEqual(f.PinnedNeeds) {
		return targets
	}
	surplus := needs.Sub(f.PinnedNeeds)
	targets[priority.Needs] = f.PinnedNeeds
	targets[priority.Savings] = targets[priority.Savings].Add(surplus)
	return targets
}

// PolicyFor picks the allocation policy matching the user's settings.
func PolicyFor(settings user.Settings) AllocationPolicy {
	if settings.FixedLifestyleMode {
		return FixedLifestylePolicy{Base: GoalPolicy{}, PinnedNeeds: settings.FixedNeedsAmount}
	}
	return GoalPolicy{}
}
